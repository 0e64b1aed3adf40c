package network

import (
	"fmt"

	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
)

// A Connector wires router components to a network bus following their
// static links. Wiring happens once; links are immutable afterwards.
type Connector struct {
	bus     *Comp
	routers map[routing.RouterID]*router.Comp
}

// NewConnector creates a connector that wires routers to the given bus.
func NewConnector(bus *Comp) *Connector {
	return &Connector{
		bus:     bus,
		routers: make(map[routing.RouterID]*router.Comp),
	}
}

// Connect plugs all the routers' ports into the bus and resolves every
// output link to the destination router's input port. It fails if a link
// references a router or input port that does not exist.
func (c *Connector) Connect(routers ...*router.Comp) error {
	for _, r := range routers {
		if _, found := c.routers[r.ID()]; found {
			return fmt.Errorf("router %d connected twice", r.ID())
		}

		c.routers[r.ID()] = r

		for _, port := range r.Ports() {
			c.bus.PlugIn(port)
		}
	}

	for _, r := range routers {
		if err := c.resolveLinks(r); err != nil {
			return err
		}
	}

	return nil
}

func (c *Connector) resolveLinks(r *router.Comp) error {
	for _, link := range r.Links() {
		peer, found := c.routers[link.Dest]
		if !found {
			return fmt.Errorf(
				"router %d links to unknown router %d", r.ID(), link.Dest)
		}

		in := peer.InputPort(link.DestPort)
		if in == nil {
			return fmt.Errorf(
				"router %d links to router %d port %d, which is not one of "+
					"its input ports", r.ID(), link.Dest, link.DestPort)
		}

		r.SetLinkDestination(link.OutPort(), in.AsRemote())
	}

	return nil
}
