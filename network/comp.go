// Package network provides the bus that carries advertisements from a
// router's output ports to the matching input ports of its neighbors.
package network

import (
	"github.com/GNS-S/ripv2-simulation/sim"
)

// Comp is the network bus. It is a ticking component that, every cycle,
// moves queued outgoing advertisements to the destination input port
// recorded in the message metadata. Messages from a given sender to a given
// receiver are delivered in the order they were sent.
type Comp struct {
	*sim.TickingComponent

	nextPortID int
	ports      []sim.Port
	registered map[sim.RemotePort]sim.Port
}

// PlugIn marks the port as connected to this bus.
func (c *Comp) PlugIn(port sim.Port) {
	c.Lock()
	defer c.Unlock()

	if _, found := c.registered[port.AsRemote()]; found {
		panic("port " + port.Name() + " already plugged in")
	}

	c.ports = append(c.ports, port)
	c.registered[port.AsRemote()] = port

	port.SetConnection(c)
}

// Unplug marks the port as no longer connected to this bus. Links are
// immutable for the simulation's duration, so this is never exercised.
func (c *Comp) Unplug(_ sim.Port) {
	panic("not implemented")
}

// NotifyAvailable is called by a port to notify that the connection can
// deliver to the port again.
func (c *Comp) NotifyAvailable(p sim.Port) {
	for _, port := range c.ports {
		if port == p {
			continue
		}

		port.NotifyAvailable()
	}

	c.TickNow()
}

// NotifySend is called by a port to notify that the bus can start to tick
// now.
func (c *Comp) NotifySend() {
	c.TickNow()
}

// Tick moves messages between ports. It returns true if any message moved.
func (c *Comp) Tick() bool {
	madeProgress := false

	for i := 0; i < len(c.ports); i++ {
		portID := (i + c.nextPortID) % len(c.ports)
		port := c.ports[portID]
		madeProgress = c.forwardMany(port) || madeProgress
	}

	c.nextPortID = (c.nextPortID + 1) % len(c.ports)
	return madeProgress
}

func (c *Comp) forwardMany(port sim.Port) bool {
	madeProgress := false
	for {
		head := port.PeekOutgoing()
		if head == nil {
			break
		}

		dst, found := c.registered[head.Meta().Dst]
		if !found {
			// A dangling destination is a topology bug; the message is
			// dropped, the rest of the simulation keeps running.
			port.RetrieveOutgoing()
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    sim.HookPosConnDrop,
				Item:   head,
			})

			madeProgress = true
			continue
		}

		if err := dst.Deliver(head); err != nil {
			break
		}

		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    sim.HookPosConnDeliver,
			Item:   head,
		})

		madeProgress = true
		port.RetrieveOutgoing()
	}

	return madeProgress
}
