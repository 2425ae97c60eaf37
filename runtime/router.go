package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
)

// CensorFunc rewrites a public broadcast body before delivery.
// A nil CensorFunc leaves the wire bytes untouched.
type CensorFunc func(string) string

// Router classifies inbound messages, fans them out to their recipients,
// and emits one transcript event per delivered/logged line.
//
// Delivery is best-effort, at-most-once, fire-and-forget: a failed write
// to one recipient never affects the others, there is no retry, and no
// error ever travels back to the sender. Fan-out is not atomic across
// recipients; a concurrently joining or leaving client may miss a given
// broadcast. Each individual recipient write is serialized by its Peer.
type Router struct {
	registry contract.IRegistry
	sinks    []contract.EventSink
	censor   CensorFunc
	stats    *observability.Stats
	log      *slog.Logger
}

func NewRouter(
	log *slog.Logger,
	registry contract.IRegistry,
	stats *observability.Stats,
	censor CensorFunc,
	sinks ...contract.EventSink,
) *Router {
	return &Router{registry: registry, sinks: sinks, censor: censor, stats: stats, log: log}
}

// Route classifies one inbound message from an active client and delivers
// it. The sender Peer is needed for the private echo-back; broadcast echo
// falls out of the snapshot naturally.
func (r *Router) Route(ctx context.Context, from contract.Peer, raw []byte) {
	msg := domain.Message{Sender: from.Name(), Raw: raw}
	routed := domain.Classify(msg.Sender, msg.Raw)

	switch routed.Kind {
	case domain.PrivateDirect:
		r.deliverPrivate(ctx, from, routed)
	default:
		body := routed.Body
		if r.censor != nil {
			body = r.censor(body)
		}
		r.broadcast(ctx, domain.PublicBroadcast, routed.Sender, body)
	}
}

// Announce broadcasts a server-originated join/leave notice. It reuses the
// public broadcast path with ServerName as the sender, so every peer sees
// "server: *** bob joined".
func (r *Router) Announce(ctx context.Context, notice string) {
	r.broadcast(ctx, domain.SystemAnnouncement, domain.ServerName, notice)
}

// BroadcastRoster re-sends the full active-name roster to every active
// connection. It is triggered on every membership change, never by client
// input, and bypasses classification entirely: the control payload is
// written verbatim and is not recorded in the transcript.
func (r *Router) BroadcastRoster() {
	peers := r.registry.SnapshotActive()
	names := lo.Map(peers, func(p contract.Peer, _ int) string {
		return p.Name()
	})
	payload := domain.EncodeRoster(names)
	for _, peer := range peers {
		if err := peer.Send(payload); err != nil {
			r.log.Debug("Roster delivery failed", "peer", peer.Name(), "error", err)
		}
	}
	r.stats.IncrRosterUpdates()
}

func (r *Router) broadcast(ctx context.Context, kind domain.Kind, sender, body string) {
	line := domain.FormatPublic(sender, body)
	payload := []byte(line)
	for _, peer := range r.registry.SnapshotActive() {
		if err := peer.Send(payload); err != nil {
			r.log.Debug("Broadcast delivery failed", "peer", peer.Name(), "error", err)
		}
	}
	r.stats.IncrBroadcasts()
	r.emit(ctx, kind, sender, "", line)
}

// deliverPrivate writes the formatted line to the resolved target, if any,
// and always echoes it back to the sender. An unknown target is a normal
// outcome, not an error: the line is still logged and the sender learns
// nothing beyond the silence of the missing user.
func (r *Router) deliverPrivate(ctx context.Context, from contract.Peer, routed domain.RoutedMessage) {
	line := domain.FormatPrivate(routed.Sender, routed.Target, routed.Body)
	payload := []byte(line)

	if target, ok := r.registry.FindByName(routed.Target); ok {
		if err := target.Send(payload); err != nil {
			r.log.Debug("Private delivery failed", "target", target.Name(), "error", err)
		}
	} else {
		r.stats.IncrPrivateMisses()
	}
	if err := from.Send(payload); err != nil {
		r.log.Debug("Private echo failed", "sender", from.Name(), "error", err)
	}
	r.stats.IncrPrivates()
	r.emit(ctx, domain.PrivateDirect, routed.Sender, routed.Target, line)
}

// emit hands the delivered line to every sink. Sink failures are counted
// and logged, never propagated: the transcript is a side channel.
func (r *Router) emit(ctx context.Context, kind domain.Kind, sender, target, line string) {
	event := domain.TranscriptEvent{
		ID:     uuid.New(),
		Kind:   kind,
		Sender: sender,
		Target: target,
		Line:   strings.TrimSuffix(line, "\n"),
		At:     time.Now(),
	}
	for _, sink := range r.sinks {
		if err := sink.Consume(ctx, event); err != nil {
			r.stats.IncrSinkErrors()
			r.log.Error("Transcript sink failed", "kind", kind.String(), "error", err)
		}
	}
}
