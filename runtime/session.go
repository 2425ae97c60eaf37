package runtime

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

// Session owns one connection's lifecycle:
//
//	Connecting -> AwaitingName -> Active -> Closed
//
// It registers the connection, consumes the name handshake, then loops on
// blocking reads, handing each read to the router as one logical message.
// There is no read timeout and no heartbeat: a session blocks until its
// peer closes or errors. Teardown runs exactly once, even when the read
// loop panics, so the registry never leaks an entry.
type Session struct {
	stream         contract.MessageStream
	registry       *Registry
	router         *Router
	log            *slog.Logger
	readBufferSize int

	entry     *Entry
	closeOnce sync.Once
}

func NewSession(
	stream contract.MessageStream,
	registry *Registry,
	router *Router,
	log *slog.Logger,
	readBufferSize int,
) *Session {
	return &Session{
		stream:         stream,
		registry:       registry,
		router:         router,
		log:            log,
		readBufferSize: readBufferSize,
	}
}

// Run drives the state machine to completion. It always returns nil:
// transport errors are local to this session by design, and a panic is
// absorbed after teardown so one misbehaving connection can never take
// the supervisor loop, the registry, or any other session with it.
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("Session panicked", "panic", rec)
			err = nil
		}
	}()

	entry, addErr := s.registry.Add(s.stream)
	if addErr != nil {
		// Capacity exhausted. The connection is dropped silently at the
		// transport level; no diagnostic reaches the peer.
		s.log.Warn("Rejecting connection", "error", addErr)
		_ = s.stream.Close()
		return nil
	}
	s.entry = entry
	defer s.teardown(ctx)

	// Reads have no timeout contract, so shutdown unblocks them by
	// closing the stream. Teardown still runs exactly once.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.stream.Close()
		case <-watchDone:
		}
	}()

	name, ok := s.awaitName()
	if !ok {
		// Peer vanished before announcing a name. The entry never became
		// Active, so teardown stays silent: no announcement, no roster.
		return nil
	}
	if setErr := s.registry.SetName(s.entry, name); setErr != nil {
		return nil
	}
	s.router.Announce(ctx, domain.JoinAnnouncement(name))
	s.router.BroadcastRoster()
	s.log.Info("Client joined", "name", name)

	s.readLoop(ctx)
	return nil
}

// awaitName performs the single handshake read. The protocol sends the
// display name as the connection's first write, at most NameLen-1 bytes,
// with no terminator.
func (s *Session) awaitName() (string, bool) {
	buf := make([]byte, domain.NameLen-1)
	n, err := s.stream.Read(buf)
	if n <= 0 || err != nil {
		return "", false
	}
	return string(buf[:n]), true
}

// readLoop treats each physical read as one logical message, the
// protocol's defining (and limiting) framing assumption.
func (s *Session) readLoop(ctx context.Context) {
	buf := make([]byte, s.readBufferSize)
	for {
		n, err := s.stream.Read(buf)
		if n > 0 {
			raw := make([]byte, n)
			copy(raw, buf[:n])
			s.router.Route(ctx, s.entry, raw)
		}
		if err != nil || n == 0 {
			return
		}
	}
}

// teardown enters the Closed state exactly once. Removal is idempotent at
// the registry, and the leave announcement plus roster update fire only
// when the entry actually reached Active, so a double close can never
// double-announce and a never-named connection disappears silently.
func (s *Session) teardown(ctx context.Context) {
	s.closeOnce.Do(func() {
		_ = s.stream.Close()
		name := s.entry.Name()
		if wasActive := s.registry.Remove(s.entry); wasActive {
			s.router.Announce(ctx, domain.LeaveAnnouncement(name))
			s.router.BroadcastRoster()
			s.log.Info("Client left", "name", name)
		}
	})
}
