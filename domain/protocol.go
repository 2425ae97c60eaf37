// Package domain contains core concepts of the chat relay.
// This file defines the ad hoc wire protocol: classification of inbound
// bytes, wire line formatting, and the roster control message.
//
// The protocol has no framing: each physical read is one logical message,
// and correctness relies on peers issuing writes small enough to keep
// logical messages aligned with physical reads. That is a known limitation
// of the wire format, kept as-is for compatibility.
package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	// NameLen sizes a display name buffer. A name carries at most
	// NameLen-1 bytes, matching the handshake read limit.
	NameLen = 32

	// MaxMessageSize bounds a single inbound read.
	MaxMessageSize = 4096

	// ControlByte prefixes server control messages. Nothing stops a
	// client from sending it inside a regular message; such bytes are
	// relayed untouched (unresolved protocol ambiguity, kept as-is).
	ControlByte = 0x01

	// ServerName is the announced sender of join/leave notices.
	ServerName = "server"

	rosterLiteral = "USERS:"
)

// Classify decides the destination kind of one inbound message.
// A leading '@' addresses a single recipient: the target is the maximal run
// of non-space bytes after '@', capped at NameLen-1 bytes, and the body is
// the remainder starting at the delimiter (leading space included).
// Everything else is a public broadcast.
func Classify(sender string, raw []byte) RoutedMessage {
	if len(raw) > 0 && raw[0] == '@' {
		target, body := parseTarget(raw)
		return RoutedMessage{Kind: PrivateDirect, Sender: sender, Target: target, Body: body}
	}
	return RoutedMessage{Kind: PublicBroadcast, Sender: sender, Body: string(raw)}
}

func parseTarget(raw []byte) (target, body string) {
	i := 1
	for i < len(raw) && raw[i] != ' ' && i-1 < NameLen-1 {
		i++
	}
	return string(raw[1:i]), string(raw[i:])
}

// FormatPublic renders a broadcast wire line, sender echo included.
func FormatPublic(sender, body string) string {
	return fmt.Sprintf("%s: %s\n", sender, body)
}

// FormatPrivate renders a private-message wire line. The body carries its
// own leading space when the sender typed one after the target name.
func FormatPrivate(sender, target, body string) string {
	return fmt.Sprintf("(private) %s -> %s:%s\n", sender, target, body)
}

// JoinAnnouncement and LeaveAnnouncement are broadcast with ServerName as
// the sender, so peers see "server: *** bob joined".
func JoinAnnouncement(name string) string {
	return fmt.Sprintf("*** %s joined", name)
}

func LeaveAnnouncement(name string) string {
	return fmt.Sprintf("*** %s left", name)
}

// EncodeRoster builds the roster control message: ControlByte, the literal
// "USERS:", then every active name followed by a comma. The full roster is
// re-sent on every membership change; there is no incremental form.
func EncodeRoster(names []string) []byte {
	var b strings.Builder
	b.WriteByte(ControlByte)
	b.WriteString(rosterLiteral)
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(',')
	}
	return []byte(b.String())
}

// DecodeRoster parses a roster control message back into the name list.
// It reports false when the payload is not a roster message. Empty tokens
// from the trailing comma are dropped.
func DecodeRoster(payload []byte) ([]string, bool) {
	if len(payload) < 1+len(rosterLiteral) || payload[0] != ControlByte {
		return nil, false
	}
	if string(payload[1:1+len(rosterLiteral)]) != rosterLiteral {
		return nil, false
	}
	tokens := strings.Split(string(payload[1+len(rosterLiteral):]), ",")
	names := lo.Filter(tokens, func(token string, _ int) bool {
		return token != ""
	})
	return names, true
}
