package routing

import (
	"fmt"

	"github.com/GNS-S/ripv2-simulation/sim"
)

// A Table is the routing table owned by one router. It maps destination
// router ids to the best known route. Storage is a fixed array indexed by
// the dense router ids. The owning router is the only mutator; no internal
// locking is needed.
type Table struct {
	self     RouterID
	infinity int
	entries  [MaxRouters]*RouteEntry
}

// NewTable creates a routing table for the given router with a single
// self entry at metric 0.
func NewTable(self RouterID, infinity int) *Table {
	if self < 0 || self >= MaxRouters {
		panic(fmt.Sprintf("router id %d out of range", self))
	}

	if infinity < 2 {
		panic("infinity sentinel must be at least 2")
	}

	t := &Table{
		self:     self,
		infinity: infinity,
	}
	t.entries[self] = &RouteEntry{
		Dest:    self,
		Metric:  0,
		NextHop: 0,
	}

	return t
}

// Self returns the id of the owning router.
func (t *Table) Self() RouterID {
	return t.self
}

// Infinity returns the unreachable-metric sentinel of the table.
func (t *Table) Infinity() int {
	return t.infinity
}

// Entry returns the route entry for the destination, or nil if the
// destination is unknown.
func (t *Table) Entry(dst RouterID) *RouteEntry {
	if dst < 0 || dst >= MaxRouters {
		return nil
	}
	return t.entries[dst]
}

// Entries returns all known entries, self first, then ordered by
// destination id.
func (t *Table) Entries() []*RouteEntry {
	entries := make([]*RouteEntry, 0, MaxRouters)
	entries = append(entries, t.entries[t.self])

	for id := RouterID(0); id < MaxRouters; id++ {
		if id == t.self {
			continue
		}
		if t.entries[id] != nil {
			entries = append(entries, t.entries[id])
		}
	}

	return entries
}

// Apply relaxes the table against one received advertisement. The link is
// the receiving router's own output link toward the advertising neighbor;
// its metric is the cost of the hop and its local port becomes the next hop
// of any route learned from this neighbor.
//
// It returns true if the table gained new information, which obliges the
// owning router to emit a snapshot and schedule a triggered update.
func (t *Table) Apply(
	adv *Advertisement,
	link Link,
	now sim.VTimeInSec,
) bool {
	t.selfMustBeValid()

	changed := false

	for _, pair := range adv.Routes {
		if pair.Dest == t.self {
			continue
		}

		if pair.Dest < 0 || pair.Dest >= MaxRouters {
			continue
		}

		candidate := pair.Metric + link.Metric
		if candidate > t.infinity {
			candidate = t.infinity
		}

		if t.applyOne(pair.Dest, candidate, link.OutPort(), now) {
			changed = true
		}
	}

	return changed
}

func (t *Table) applyOne(
	dst RouterID,
	candidate int,
	viaPort PortID,
	now sim.VTimeInSec,
) bool {
	current := t.entries[dst]

	if current == nil {
		// A brand-new destination that is already unreachable carries
		// no usable information.
		if candidate >= t.infinity {
			return false
		}

		t.entries[dst] = &RouteEntry{
			Dest:      dst,
			Metric:    candidate,
			NextHop:   viaPort,
			LastHeard: now,
			Changed:   true,
		}

		return true
	}

	if candidate < current.Metric {
		current.Metric = candidate
		current.NextHop = viaPort
		current.LastHeard = now
		current.Changed = true
		current.Garbage = false

		return true
	}

	if current.NextHop == viaPort {
		return t.applyFromNextHop(current, candidate, now)
	}

	// A worse or equal route from a non-authoritative neighbor is a
	// designed no-op.
	return false
}

// applyFromNextHop handles an advertisement from the neighbor that is the
// current next hop for the destination. The current path owner is
// authoritative, so metric increases and withdrawals propagate too.
func (t *Table) applyFromNextHop(
	current *RouteEntry,
	candidate int,
	now sim.VTimeInSec,
) bool {
	if candidate == current.Metric {
		if !current.Garbage {
			current.LastHeard = now
		}
		return false
	}

	if candidate >= t.infinity {
		current.Metric = t.infinity
		current.Garbage = true
		current.Changed = true
		current.LastHeard = now

		return true
	}

	current.Metric = candidate
	current.Garbage = false
	current.Changed = true
	current.LastHeard = now

	return true
}

// ExpireStale marks every entry whose age exceeded the route timeout as
// unreachable. The self entry never expires. Expired entries are kept as
// garbage so the withdrawal propagates to the neighbors before the entry is
// purged. It returns true if any entry expired on this call.
func (t *Table) ExpireStale(now, timeout sim.VTimeInSec) bool {
	t.selfMustBeValid()

	expired := false

	for id := RouterID(0); id < MaxRouters; id++ {
		entry := t.entries[id]
		if entry == nil || id == t.self || entry.Garbage {
			continue
		}

		if entry.Age(now) > timeout {
			entry.Metric = t.infinity
			entry.Garbage = true
			entry.Changed = true
			// The garbage hold period is measured from the moment of
			// expiry.
			entry.LastHeard = now

			expired = true
		}
	}

	return expired
}

// PurgeGarbage deletes entries that stayed garbage for the whole hold
// period and returns their destinations.
func (t *Table) PurgeGarbage(now, holdFor sim.VTimeInSec) []RouterID {
	var purged []RouterID

	for id := RouterID(0); id < MaxRouters; id++ {
		entry := t.entries[id]
		if entry == nil || !entry.Garbage {
			continue
		}

		if entry.Age(now) >= holdFor {
			t.entries[id] = nil
			purged = append(purged, id)
		}
	}

	return purged
}

// AdvertisedRoutes builds the (destination, metric) pairs to advertise out
// of one output port, applying split horizon: a route is never advertised
// back out the port it was learned from. Garbage entries are advertised at
// the sentinel so neighbors withdraw them too.
func (t *Table) AdvertisedRoutes(outPort PortID) []RoutePair {
	routes := make([]RoutePair, 0, MaxRouters)

	for _, entry := range t.Entries() {
		if entry.Dest != t.self && entry.NextHop == outPort {
			continue
		}

		routes = append(routes, RoutePair{
			Dest:   entry.Dest,
			Metric: entry.Metric,
		})
	}

	return routes
}

// ClearChanged resets the per-entry change markers after a snapshot has
// been taken.
func (t *Table) ClearChanged() {
	for id := RouterID(0); id < MaxRouters; id++ {
		if t.entries[id] != nil {
			t.entries[id].Changed = false
		}
	}
}

func (t *Table) selfMustBeValid() {
	self := t.entries[t.self]
	if self == nil || self.Metric != 0 || self.Garbage {
		panic(fmt.Sprintf(
			"router %d self entry invariant violated: %+v", t.self, self))
	}
}
