package simulation

import (
	"fmt"

	"github.com/GNS-S/ripv2-simulation/network"
	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
	"github.com/GNS-S/ripv2-simulation/topology"
)

// Config carries the timing parameters shared by all routers in a run.
type Config struct {
	Freq           sim.Freq
	Infinity       int
	UpdateInterval sim.VTimeInSec
	RouteTimeout   sim.VTimeInSec
	GarbageHold    sim.VTimeInSec
	Debounce       sim.VTimeInSec
	Lifespan       sim.VTimeInSec

	// StableAfter stops the run early once no table in the network has
	// changed for this long. Zero keeps every router ticking until its
	// lifespan is over.
	StableAfter sim.VTimeInSec
}

// DefaultConfig returns the timing parameters of the original simulated
// network.
func DefaultConfig() Config {
	return Config{
		Freq:           1 * sim.Hz,
		Infinity:       routing.DefaultInfinity,
		UpdateInterval: router.DefaultUpdateInterval,
		RouteTimeout:   router.DefaultRouteTimeout,
		GarbageHold:    router.DefaultGarbageHold,
		Debounce:       router.DefaultDebounce,
		Lifespan:       router.DefaultLifespan,
	}
}

// BuildNetwork instantiates one router per topology entry, a shared bus, and
// the wiring between them.
func (s *Simulation) BuildNetwork(topo *topology.Topology, cfg Config) error {
	s.tracker.SetStableAfter(cfg.StableAfter)
	s.lifespan = cfg.Lifespan

	s.bus = network.MakeBuilder().
		WithEngine(s.engine).
		WithFreq(cfg.Freq).
		Build("Bus")
	s.RegisterComponent(s.bus)

	for _, spec := range topo.Routers {
		r := router.MakeBuilder().
			WithEngine(s.engine).
			WithFreq(cfg.Freq).
			WithID(spec.ID).
			WithInputPorts(spec.Inputs...).
			WithLinks(spec.Links...).
			WithInfinity(cfg.Infinity).
			WithUpdateInterval(cfg.UpdateInterval).
			WithRouteTimeout(cfg.RouteTimeout).
			WithGarbageHold(cfg.GarbageHold).
			WithDebounce(cfg.Debounce).
			WithLifespan(cfg.Lifespan).
			WithController(s.tracker).
			Build(fmt.Sprintf("Router%d", spec.ID))

		r.AcceptHook(s.tableHook)
		s.RegisterComponent(r)
	}

	connector := network.NewConnector(s.bus)
	return connector.Connect(s.Routers()...)
}

// Run schedules the first tick of every router, drives the engine until the
// event queue drains, and waits for simulation-end handlers.
func (s *Simulation) Run() error {
	if len(s.routers) == 0 {
		return fmt.Errorf("no routers to run; call BuildNetwork first")
	}

	if s.monitor != nil {
		bar := s.monitor.CreateProgressBar(
			"simulated seconds", uint64(s.lifespan))
		s.tracker.attachProgress(bar)
		defer s.monitor.CompleteProgressBar(bar)
	}

	for _, r := range s.Routers() {
		r.TickNow()
	}

	if err := s.engine.Run(); err != nil {
		return err
	}

	s.engine.Finished()

	return nil
}
