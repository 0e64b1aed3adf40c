package routing

import (
	"github.com/GNS-S/ripv2-simulation/sim"
)

// A SnapshotEntry is the point-in-time copy of one route entry.
type SnapshotEntry struct {
	Dest    RouterID
	Metric  int
	NextHop PortID
	Age     sim.VTimeInSec
	Changed bool
	Garbage bool
}

// A Snapshot is a consistent point-in-time copy of a router's table, taken
// whenever the table gains new information. Snapshots are what the logging
// and recording layers consume; they never alias the live table.
type Snapshot struct {
	Router  RouterID
	Time    sim.VTimeInSec
	Seq     int
	Entries []SnapshotEntry
}

// Snapshot copies the table state at the given time. The sequence number
// distinguishes successive snapshots of the same router.
func (t *Table) Snapshot(now sim.VTimeInSec, seq int) Snapshot {
	t.selfMustBeValid()

	s := Snapshot{
		Router: t.self,
		Time:   now,
		Seq:    seq,
	}

	for _, entry := range t.Entries() {
		age := entry.Age(now)
		if entry.Dest == t.self {
			age = 0
		}

		s.Entries = append(s.Entries, SnapshotEntry{
			Dest:    entry.Dest,
			Metric:  entry.Metric,
			NextHop: entry.NextHop,
			Age:     age,
			Changed: entry.Changed,
			Garbage: entry.Garbage,
		})
	}

	return s
}

// Reachable returns the entries that are not marked unreachable.
func (s Snapshot) Reachable() []SnapshotEntry {
	entries := make([]SnapshotEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Garbage {
			continue
		}
		entries = append(entries, e)
	}

	return entries
}
