// Package routing defines the distance-vector routing model: router and
// port identifiers, links, route entries, the per-router routing table, and
// the advertisement messages that routers exchange.
package routing

import (
	"fmt"

	"github.com/GNS-S/ripv2-simulation/sim"
)

// A RouterID identifies a router in the simulated network. IDs are dense
// integers in [0, MaxRouters).
type RouterID int

// A PortID identifies an input or output port. Ports are unique across the
// whole simulation and are never reused across routers.
type PortID int

const (
	// MaxRouters is the largest number of routers a simulation can hold.
	MaxRouters = 9

	// MinPort and MaxPort bound the usable port identifier range.
	MinPort PortID = 1024
	MaxPort PortID = 49151

	// DefaultInfinity is the default unreachable-metric sentinel. Any
	// metric at or above the sentinel means the destination cannot be
	// reached. 16 is the classic RIP infinity and is always strictly
	// greater than any valid path metric in a 9-router topology with
	// per-link metrics below it.
	DefaultInfinity = 16
)

// A Link is a directed edge from an output port on one router to an input
// port on another, carrying a static metric. Links are established at
// topology load and never change. The output port at the sending side is
// identified by the destination input port number, which is unique across
// the whole simulation.
type Link struct {
	Dest     RouterID
	DestPort PortID
	Metric   int
}

// OutPort returns the identifier of the output port this link is bound to.
func (l Link) OutPort() PortID {
	return l.DestPort
}

func (l Link) String() string {
	return fmt.Sprintf("%d:%d:%d", l.Dest, l.DestPort, l.Metric)
}

// A RouteEntry is the best route known for one destination.
type RouteEntry struct {
	Dest    RouterID
	Metric  int
	NextHop PortID

	// LastHeard is the last time this entry was refreshed by an
	// advertisement, or the time it was marked garbage.
	LastHeard sim.VTimeInSec

	// Changed is set when the entry was modified since the last
	// advertisement that carried it.
	Changed bool

	// Garbage marks an unreachable entry that is kept around so the
	// withdrawal can still be advertised before the entry is purged.
	Garbage bool
}

// Age returns how long ago the entry was last refreshed.
func (e *RouteEntry) Age(now sim.VTimeInSec) sim.VTimeInSec {
	return now - e.LastHeard
}

// A RoutePair is one (destination, metric) element of an advertisement
// payload.
type RoutePair struct {
	Dest   RouterID
	Metric int
}

// An Advertisement carries a router's view of its routing table to one
// neighbor. It is delivered verbatim to the input port the sending output
// port is linked to.
type Advertisement struct {
	sim.MsgMeta

	From   RouterID
	Routes []RoutePair
}

// Meta returns the meta data of the advertisement.
func (a *Advertisement) Meta() *sim.MsgMeta {
	return &a.MsgMeta
}

// Clone returns a cloned advertisement with a different ID.
func (a *Advertisement) Clone() sim.Msg {
	cloneMsg := *a
	cloneMsg.ID = sim.GetIDGenerator().Generate()
	cloneMsg.Routes = make([]RoutePair, len(a.Routes))
	copy(cloneMsg.Routes, a.Routes)

	return &cloneMsg
}

// An AdvertisementBuilder can build advertisements.
type AdvertisementBuilder struct {
	src, dst sim.RemotePort
	from     RouterID
	routes   []RoutePair
}

// WithSrc sets the source port of the advertisement.
func (b AdvertisementBuilder) WithSrc(src sim.RemotePort) AdvertisementBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the advertisement.
func (b AdvertisementBuilder) WithDst(dst sim.RemotePort) AdvertisementBuilder {
	b.dst = dst
	return b
}

// WithFrom sets the router that originates the advertisement.
func (b AdvertisementBuilder) WithFrom(from RouterID) AdvertisementBuilder {
	b.from = from
	return b
}

// WithRoutes sets the advertised (destination, metric) pairs.
func (b AdvertisementBuilder) WithRoutes(
	routes []RoutePair,
) AdvertisementBuilder {
	b.routes = routes
	return b
}

// Build creates the advertisement.
func (b AdvertisementBuilder) Build() *Advertisement {
	a := &Advertisement{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		From:   b.from,
		Routes: b.routes,
	}

	return a
}
