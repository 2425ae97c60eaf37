package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
)

// Entry is one registered connection. The pointer returned by Add acts as
// the session's private handle: only the owning session may pass it to
// SetName and Remove.
type Entry struct {
	stream contract.MessageStream

	// sendMu serializes writes so concurrent fan-outs never interleave
	// bytes on one connection.
	sendMu sync.Mutex

	// name and state are guarded by the registry mutex. The name is set
	// exactly once, before the entry becomes visible to readers, and is
	// immutable afterwards.
	name  string
	state domain.ClientState
}

func (e *Entry) Name() string { return e.name }

func (e *Entry) Send(p []byte) error {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()
	_, err := e.stream.Write(p)
	return err
}

// Registry is the concurrent collection of connected clients. All five
// operations share one mutex so that full scans (FindByName,
// SnapshotActive) observe a point-in-time consistent view: no entry is
// ever seen half-added, half-removed, or with a partially set name.
//
// Capacity is bounded; Add fails once the bound is reached and the caller
// must close the transport without registering.
type Registry struct {
	mu       sync.Mutex
	capacity int
	entries  []*Entry // live entries, insertion order
}

func NewRegistry(capacity int) *Registry {
	return &Registry{capacity: capacity}
}

// Add reserves a slot for a freshly accepted connection. The entry starts
// in the Joining state with an empty name and stays invisible to
// FindByName and SnapshotActive until SetName promotes it.
func (r *Registry) Add(stream contract.MessageStream) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.capacity {
		return nil, errors.ErrCapacityExceeded
	}
	entry := &Entry{stream: stream, state: domain.Joining}
	r.entries = append(r.entries, entry)
	return entry, nil
}

// SetName records the handshake name and promotes the entry to Active.
// It fails when called twice, or after the entry was removed.
func (r *Registry) SetName(entry *Entry, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.contains(entry) {
		return errors.ErrEntryRemoved
	}
	if entry.state != domain.Joining {
		return errors.ErrNameAlreadySet
	}
	entry.name = name
	entry.state = domain.Active
	return nil
}

// Remove deletes the entry and reports whether it was Active at the time.
// Removing an already-removed entry is a no-op: network teardown can race
// with an explicit close, and both paths funnel through here.
func (r *Registry) Remove(entry *Entry) (wasActive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e == entry {
			wasActive = e.state == domain.Active
			e.state = domain.Leaving
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return wasActive
		}
	}
	return false
}

// FindByName returns the first Active entry with the given name, in
// insertion order. Duplicate names are neither checked nor rejected, so
// which duplicate wins is deliberately unspecified beyond "first match".
// Absence is a normal result, not an error.
func (r *Registry) FindByName(name string) (contract.Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.state == domain.Active && e.name == name {
			return e, true
		}
	}
	return nil, false
}

// SnapshotActive returns a point-in-time copy of all Active entries in
// insertion order, for broadcast fan-out and roster updates. The copy is
// taken under the same exclusion as mutation; delivery to it happens
// outside the lock and is deliberately not atomic across recipients.
func (r *Registry) SnapshotActive() []contract.Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	peers := make([]contract.Peer, 0, len(r.entries))
	for _, e := range r.entries {
		if e.state == domain.Active {
			peers = append(peers, e)
		}
	}
	return peers
}

// ActiveCount reports the number of Active entries, for telemetry.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, e := range r.entries {
		if e.state == domain.Active {
			count++
		}
	}
	return count
}

// contains expects r.mu to be held.
func (r *Registry) contains(entry *Entry) bool {
	for _, e := range r.entries {
		if e == entry {
			return true
		}
	}
	return false
}
