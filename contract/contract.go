package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
)

// MessageStream is one client's transport endpoint. The wire protocol has
// no framing, so a single Read must yield exactly one logical message and
// a single Write must emit exactly one. Stream sockets only approximate
// this; the gap is a documented protocol limitation, not something a
// stream implementation should paper over with its own framing.
type MessageStream interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
}

// Peer is a registered, named participant as the router sees it.
// Send serializes writes to the underlying stream so concurrent fan-outs
// never interleave bytes on one connection.
type Peer interface {
	Name() string
	Send(p []byte) error
}

// IRegistry is the read side of the registry consumed by the router.
// Both operations observe a point-in-time consistent view: no half-added
// or half-removed entry, and no entry still awaiting its name.
type IRegistry interface {
	FindByName(name string) (Peer, bool)
	SnapshotActive() []Peer
}

// EventSink consumes transcript events after delivery. Sinks are
// best-effort side channels (log file, archive); a failing sink never
// affects delivery.
type EventSink interface {
	Consume(ctx context.Context, e domain.TranscriptEvent) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
