// Package router implements the simulated router component. A router owns
// its routing table exclusively and updates it as a strictly ordered
// sequence of tick events: ingest advertisements, relax the table, expire
// stale routes, then advertise.
package router

import (
	"fmt"

	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

// HookPosTableChanged marks when a router's table gained new information.
// The hook item is the routing.Snapshot taken at that moment.
var HookPosTableChanged = &sim.HookPos{Name: "Router Table Changed"}

// HookPosAdvertDropped marks when a router dropped an advertisement it
// could not attribute to a known neighbor.
var HookPosAdvertDropped = &sim.HookPos{Name: "Router Advert Dropped"}

// State describes the lifecycle state of a router.
type State int

// Router lifecycle states. Stable is not terminal; any advertisement or
// expiry moves the router back to Converging.
const (
	StateInitialized State = iota
	StateConverging
	StateStable
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateConverging:
		return "Converging"
	case StateStable:
		return "Stable"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// A RunController decides whether a router should keep scheduling ticks.
// The simulation's convergence tracker implements it to halt the run once
// the whole network has been change-free for long enough.
type RunController interface {
	ShouldContinue(id routing.RouterID, now sim.VTimeInSec) bool
}

// Comp is the router component.
type Comp struct {
	*sim.TickingComponent

	id    routing.RouterID
	table *routing.Table

	inputPorts    map[routing.PortID]sim.Port
	inputsInOrder []sim.Port
	outputPorts   map[routing.PortID]sim.Port
	links         []routing.Link
	linkByPeer    map[routing.RouterID]routing.Link
	linkDst       map[routing.PortID]sim.RemotePort

	updateInterval sim.VTimeInSec
	routeTimeout   sim.VTimeInSec
	garbageHold    sim.VTimeInSec
	debounce       sim.VTimeInSec
	lifespan       sim.VTimeInSec

	controller RunController

	nextPeriodic sim.VTimeInSec
	triggerDue   sim.VTimeInSec
	lastChange   sim.VTimeInSec
	snapshotSeq  int
	state        State
}

// ID returns the router id.
func (c *Comp) ID() routing.RouterID {
	return c.id
}

// Table returns the routing table owned by this router. Only the router's
// own tick processing may mutate it; everyone else must go through
// Snapshot.
func (c *Comp) Table() *routing.Table {
	return c.table
}

// State returns the current lifecycle state of the router.
func (c *Comp) State() State {
	return c.state
}

// Links returns the static output links of the router.
func (c *Comp) Links() []routing.Link {
	links := make([]routing.Link, len(c.links))
	copy(links, c.links)
	return links
}

// InputPort returns the input port with the given simulated port id.
func (c *Comp) InputPort(id routing.PortID) sim.Port {
	return c.inputPorts[id]
}

// OutputPort returns the output port bound to the given local port id.
func (c *Comp) OutputPort(id routing.PortID) sim.Port {
	return c.outputPorts[id]
}

// SetLinkDestination records where the advertisements sent on a local
// output port must be delivered. The network connector calls this once
// when it wires the topology.
func (c *Comp) SetLinkDestination(
	localPort routing.PortID,
	dst sim.RemotePort,
) {
	c.linkDst[localPort] = dst
}

// Tick runs one simulated second of router work. The order is fixed:
// ingestion and relaxation first, expiry after relaxation so a refreshed
// entry never expires on the tick it was refreshed, then sending.
//
// A router past its lifespan does no work at all. Deliveries to its input
// ports still wake it up, so the lifespan gate here is what keeps a dead
// router from advertising and refreshing its neighbors' routes.
func (c *Comp) Tick() bool {
	now := c.CurrentTime()

	if now >= c.lifespan {
		return false
	}

	gained := c.processInbox(now)
	expired := c.table.ExpireStale(now, c.routeTimeout)
	purged := c.table.PurgeGarbage(now, c.garbageHold)

	if gained || expired {
		c.recordChange(now)
		c.armTriggeredUpdate(now)
	} else if len(purged) > 0 {
		c.recordChange(now)
	}

	c.sendTriggeredUpdate(now)
	c.sendPeriodicUpdate(now)

	c.updateLifecycleState(now)

	return c.shouldKeepTicking(now)
}

func (c *Comp) processInbox(now sim.VTimeInSec) bool {
	gained := false

	for _, port := range c.inputsInOrder {
		for {
			msg := port.RetrieveIncoming()
			if msg == nil {
				break
			}

			adv, ok := msg.(*routing.Advertisement)
			if !ok {
				continue
			}

			if c.ingest(adv, now) {
				gained = true
			}
		}
	}

	return gained
}

func (c *Comp) ingest(adv *routing.Advertisement, now sim.VTimeInSec) bool {
	link, ok := c.linkByPeer[adv.From]
	if !ok {
		// No output link back to the sender means the incoming link
		// metric is unknown. A validated topology never produces this.
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosAdvertDropped,
			Item:   adv,
		})
		return false
	}

	return c.table.Apply(adv, link, now)
}

func (c *Comp) recordChange(now sim.VTimeInSec) {
	c.snapshotSeq++
	snapshot := c.table.Snapshot(now, c.snapshotSeq)
	c.table.ClearChanged()

	c.lastChange = now
	c.state = StateConverging

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTableChanged,
		Item:   snapshot,
	})
}

func (c *Comp) armTriggeredUpdate(now sim.VTimeInSec) {
	due := now + c.debounce
	if c.triggerDue >= 0 && c.triggerDue <= due {
		return // coalesce with the already armed update
	}
	c.triggerDue = due
}

func (c *Comp) sendTriggeredUpdate(now sim.VTimeInSec) {
	if c.triggerDue < 0 || now < c.triggerDue {
		return
	}

	if c.advertise() {
		c.triggerDue = -1
	}
}

func (c *Comp) sendPeriodicUpdate(now sim.VTimeInSec) {
	if now < c.nextPeriodic {
		return
	}

	if c.advertise() {
		c.nextPeriodic = now + c.updateInterval
		// The periodic update already carried the full table.
		c.triggerDue = -1
	}
}

// advertise builds and sends one advertisement per output link, applying
// split horizon per port. It returns false if any outgoing buffer was full;
// the whole round is then retried on the next tick, which is harmless
// because relaxation is idempotent.
func (c *Comp) advertise() bool {
	complete := true

	for _, link := range c.links {
		port := c.outputPorts[link.OutPort()]
		dst, ok := c.linkDst[link.OutPort()]
		if !ok {
			panic(fmt.Sprintf(
				"router %d: output port %d has no wired destination",
				c.id, link.OutPort()))
		}

		adv := routing.AdvertisementBuilder{}.
			WithSrc(port.AsRemote()).
			WithDst(dst).
			WithFrom(c.id).
			WithRoutes(c.table.AdvertisedRoutes(link.OutPort())).
			Build()

		if err := port.Send(adv); err != nil {
			complete = false
		}
	}

	return complete
}

func (c *Comp) updateLifecycleState(now sim.VTimeInSec) {
	switch {
	case c.lastChange < 0:
		c.state = StateInitialized
	case now-c.lastChange >= c.updateInterval:
		c.state = StateStable
	default:
		c.state = StateConverging
	}
}

func (c *Comp) shouldKeepTicking(now sim.VTimeInSec) bool {
	if now >= c.lifespan {
		return false
	}

	if c.controller != nil && !c.controller.ShouldContinue(c.id, now) {
		return false
	}

	return true
}
