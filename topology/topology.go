// Package topology parses and validates the textual network description
// that a simulation is built from.
package topology

import (
	"fmt"

	"github.com/GNS-S/ripv2-simulation/routing"
)

// A RouterSpec describes one router: its id, its input ports, and its
// directed, metric-weighted links to other routers' input ports.
type RouterSpec struct {
	ID     routing.RouterID
	Inputs []routing.PortID
	Links  []routing.Link
}

// A Topology is the parsed set of routers. It is data only; the simulation
// builder turns it into components.
type Topology struct {
	Routers []RouterSpec
}

// Router returns the spec for the given id, or nil if the topology does not
// contain it.
func (t *Topology) Router(id routing.RouterID) *RouterSpec {
	for i := range t.Routers {
		if t.Routers[i].ID == id {
			return &t.Routers[i]
		}
	}
	return nil
}

// HasInputPort reports whether the router spec owns the given input port.
func (s *RouterSpec) HasInputPort(port routing.PortID) bool {
	for _, p := range s.Inputs {
		if p == port {
			return true
		}
	}
	return false
}

// A ConfigurationError describes a malformed or semantically invalid
// topology. It is fatal; the simulation does not start.
type ConfigurationError struct {
	Line   int
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("topology line %d: %s", e.Line, e.Reason)
	}
	return "topology: " + e.Reason
}

func configErrf(line int, format string, args ...interface{}) error {
	return &ConfigurationError{
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
	}
}
