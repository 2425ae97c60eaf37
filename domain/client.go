// Package domain contains core concepts of the chat relay.
// This file defines client lifecycle states and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// ClientState tracks one connected participant through its lifecycle.
// A client is Joining between transport accept and the name handshake,
// Active while it can send and receive, and Leaving once teardown started.
type ClientState int

const (
	Joining ClientState = iota
	Active
	Leaving
)

func (s ClientState) String() string {
	switch s {
	case Joining:
		return "Joining"
	case Active:
		return "Active"
	case Leaving:
		return "Leaving"
	default:
		return "Unknown"
	}
}
