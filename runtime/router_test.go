package runtime

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
)

type fakePeer struct {
	name string
	mu   sync.Mutex
	sent []string
}

func (p *fakePeer) Name() string { return p.name }

func (p *fakePeer) Send(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, string(b))
	return nil
}

func (p *fakePeer) Sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.sent...)
}

type fakeRegistry struct {
	peers []contract.Peer
}

func (r *fakeRegistry) FindByName(name string) (contract.Peer, bool) {
	for _, p := range r.peers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (r *fakeRegistry) SnapshotActive() []contract.Peer { return r.peers }

type recordingSink struct {
	mu     sync.Mutex
	events []domain.TranscriptEvent
}

func (s *recordingSink) Consume(_ context.Context, e domain.TranscriptEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Events() []domain.TranscriptEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TranscriptEvent(nil), s.events...)
}

func TestRouter_Broadcast_EchoesToEveryoneIncludingSender(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	alice := &fakePeer{name: "alice"}
	bob := &fakePeer{name: "bob"}
	carol := &fakePeer{name: "carol"}
	registry := &fakeRegistry{peers: []contract.Peer{alice, bob, carol}}
	transcript := &recordingSink{}
	router := NewRouter(log, registry, &observability.Stats{}, nil, transcript)

	// When alice broadcasts
	router.Route(context.Background(), alice, []byte("hello"))

	// Then every active client receives the line, sender included
	for _, peer := range []*fakePeer{alice, bob, carol} {
		req.Equal([]string{"alice: hello\n"}, peer.Sent())
	}

	// And the transcript receives exactly one line with that text
	events := transcript.Events()
	req.Len(events, 1)
	req.Equal(domain.PublicBroadcast, events[0].Kind)
	req.Equal("alice: hello", events[0].Line)
}

func TestRouter_Private_DeliversToTargetAndSender(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	alice := &fakePeer{name: "alice"}
	bob := &fakePeer{name: "bob"}
	carol := &fakePeer{name: "carol"}
	registry := &fakeRegistry{peers: []contract.Peer{alice, bob, carol}}
	transcript := &recordingSink{}
	router := NewRouter(log, registry, &observability.Stats{}, nil, transcript)

	// When alice sends a private message to bob
	router.Route(context.Background(), alice, []byte("@bob hello"))

	// Then bob and alice each receive it, carol does not
	want := "(private) alice -> bob: hello\n"
	req.Equal([]string{want}, bob.Sent())
	req.Equal([]string{want}, alice.Sent())
	req.Empty(carol.Sent())

	// And it is logged once
	events := transcript.Events()
	req.Len(events, 1)
	req.Equal(domain.PrivateDirect, events[0].Kind)
	req.Equal("bob", events[0].Target)
}

func TestRouter_Private_UnknownRecipientFailsSilently(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	alice := &fakePeer{name: "alice"}
	registry := &fakeRegistry{peers: []contract.Peer{alice}}
	transcript := &recordingSink{}
	stats := &observability.Stats{}
	router := NewRouter(log, registry, stats, nil, transcript)

	// When the target is not active
	router.Route(context.Background(), alice, []byte("@bob hello"))

	// Then only the sender echo is delivered, no error is surfaced
	req.Equal([]string{"(private) alice -> bob: hello\n"}, alice.Sent())

	// And the line is still logged once
	req.Len(transcript.Events(), 1)
	req.Equal(uint64(1), stats.Snapshot().PrivateMisses)
}

func TestRouter_Announce_UsesServerSender(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	alice := &fakePeer{name: "alice"}
	registry := &fakeRegistry{peers: []contract.Peer{alice}}
	transcript := &recordingSink{}
	router := NewRouter(log, registry, &observability.Stats{}, nil, transcript)

	router.Announce(context.Background(), domain.JoinAnnouncement("bob"))

	req.Equal([]string{"server: *** bob joined\n"}, alice.Sent())
	events := transcript.Events()
	req.Len(events, 1)
	req.Equal(domain.SystemAnnouncement, events[0].Kind)
}

func TestRouter_BroadcastRoster_SendsFullListToEveryone(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	alice := &fakePeer{name: "alice"}
	bob := &fakePeer{name: "bob"}
	registry := &fakeRegistry{peers: []contract.Peer{alice, bob}}
	transcript := &recordingSink{}
	router := NewRouter(log, registry, &observability.Stats{}, nil, transcript)

	router.BroadcastRoster()

	for _, peer := range []*fakePeer{alice, bob} {
		sent := peer.Sent()
		req.Len(sent, 1)
		names, ok := domain.DecodeRoster([]byte(sent[0]))
		req.True(ok)
		req.Equal([]string{"alice", "bob"}, names)
	}

	// Roster updates are control traffic, never transcribed
	req.Empty(transcript.Events())
}

func TestRouter_Censor_AppliesToPublicBroadcastOnly(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	alice := &fakePeer{name: "alice"}
	bob := &fakePeer{name: "bob"}
	registry := &fakeRegistry{peers: []contract.Peer{alice, bob}}
	censor := func(body string) string { return strings.ReplaceAll(body, "bad", "***") }
	router := NewRouter(log, registry, &observability.Stats{}, censor, &recordingSink{})

	router.Route(context.Background(), alice, []byte("bad word"))
	req.Equal([]string{"alice: *** word\n"}, bob.Sent())

	router.Route(context.Background(), alice, []byte("@bob bad word"))
	req.Equal([]string{"alice: *** word\n", "(private) alice -> bob: bad word\n"}, bob.Sent())
}
