// Package observability collects runtime counters for the relay.
package observability

import "sync/atomic"

// Stats aggregates delivery counters. Counters are atomic so router and
// sessions update them without coordination; readers get a consistent
// point-in-time view through Snapshot.
type Stats struct {
	broadcasts    uint64
	privates      uint64
	privateMisses uint64
	rosterUpdates uint64
	sinkErrors    uint64
}

// View is a read-only copy of the counters.
type View struct {
	Broadcasts    uint64
	Privates      uint64
	PrivateMisses uint64
	RosterUpdates uint64
	SinkErrors    uint64
}

func (s *Stats) IncrBroadcasts()    { atomic.AddUint64(&s.broadcasts, 1) }
func (s *Stats) IncrPrivates()      { atomic.AddUint64(&s.privates, 1) }
func (s *Stats) IncrPrivateMisses() { atomic.AddUint64(&s.privateMisses, 1) }
func (s *Stats) IncrRosterUpdates() { atomic.AddUint64(&s.rosterUpdates, 1) }
func (s *Stats) IncrSinkErrors()    { atomic.AddUint64(&s.sinkErrors, 1) }

func (s *Stats) Snapshot() View {
	return View{
		Broadcasts:    atomic.LoadUint64(&s.broadcasts),
		Privates:      atomic.LoadUint64(&s.privates),
		PrivateMisses: atomic.LoadUint64(&s.privateMisses),
		RosterUpdates: atomic.LoadUint64(&s.rosterUpdates),
		SinkErrors:    atomic.LoadUint64(&s.sinkErrors),
	}
}
