// Package domain contains core concepts of the chat relay.
// This file defines inbound messages and the events emitted after routing.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one logical unit of inbound text from a client. The transport
// carries no framing, so one physical read produces exactly one Message.
type Message struct {
	Sender string
	Raw    []byte
}

// Kind classifies the outcome of routing one message.
type Kind int

const (
	PublicBroadcast Kind = iota
	PrivateDirect
	SystemAnnouncement
	UserListUpdate
)

func (k Kind) String() string {
	switch k {
	case PublicBroadcast:
		return "PublicBroadcast"
	case PrivateDirect:
		return "PrivateDirect"
	case SystemAnnouncement:
		return "SystemAnnouncement"
	case UserListUpdate:
		return "UserListUpdate"
	default:
		return "Unknown"
	}
}

// RoutedMessage is the classification of one inbound Message.
// Target is set only for PrivateDirect.
type RoutedMessage struct {
	Kind   Kind
	Sender string
	Target string
	Body   string
}

// TranscriptEvent is handed to sinks after delivery. Line is the exact wire
// line (without its trailing newline) so the transcript stays byte-faithful
// to what clients received.
type TranscriptEvent struct {
	ID     uuid.UUID
	Kind   Kind
	Sender string
	Target string
	Line   string
	At     time.Time
}
