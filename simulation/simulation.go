// Package simulation assembles routers, the network bus, and the supporting
// services into a runnable distance-vector simulation.
package simulation

import (
	"github.com/GNS-S/ripv2-simulation/datarecording"
	"github.com/GNS-S/ripv2-simulation/monitoring"
	"github.com/GNS-S/ripv2-simulation/network"
	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
	"github.com/GNS-S/ripv2-simulation/snapshotting"
)

// A Simulation provides the services required to define and run a routing
// simulation.
type Simulation struct {
	id     string
	engine sim.Engine

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	tracker      *ConvergenceTracker
	tableHook    *snapshotting.TableChangeHook

	components    []sim.Component
	compNameIndex map[string]int
	ports         []sim.Port
	portNameIndex map[string]int

	bus      *network.Comp
	routers  map[routing.RouterID]*router.Comp
	lifespan sim.VTimeInSec
}

// ID returns the unique identifier of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// RegisterEngine registers the engine used in the simulation.
func (s *Simulation) RegisterEngine(e sim.Engine) {
	s.engine = e
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation. It is
// nil when data recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetTracker returns the convergence tracker of the simulation.
func (s *Simulation) GetTracker() *ConvergenceTracker {
	return s.tracker
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if r, ok := c.(*router.Comp); ok {
		s.routers[r.ID()] = r
	}

	for _, p := range c.Ports() {
		s.registerPort(p)
	}

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

func (s *Simulation) registerPort(p sim.Port) {
	portName := p.Name()
	if _, ok := s.portNameIndex[portName]; ok {
		panic("port " + portName + " already registered")
	}

	s.ports = append(s.ports, p)
	s.portNameIndex[portName] = len(s.ports) - 1
}

// Components returns all the registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// GetComponentByName returns the component with the given name, or nil if
// no such component is registered.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	index, ok := s.compNameIndex[name]
	if !ok {
		return nil
	}

	return s.components[index]
}

// GetPortByName returns the port with the given name, or nil if no such
// port is registered.
func (s *Simulation) GetPortByName(name string) sim.Port {
	index, ok := s.portNameIndex[name]
	if !ok {
		return nil
	}

	return s.ports[index]
}

// Routers returns the routers of the simulation, sorted by id.
func (s *Simulation) Routers() []*router.Comp {
	routers := make([]*router.Comp, 0, len(s.routers))
	for id := routing.RouterID(0); id < routing.MaxRouters; id++ {
		if r, ok := s.routers[id]; ok {
			routers = append(routers, r)
		}
	}

	return routers
}

// Router returns the router with the given id, or nil.
func (s *Simulation) Router(id routing.RouterID) *router.Comp {
	return s.routers[id]
}

// Terminate terminates the simulation.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}
}
