package router

import (
	"fmt"
	"sort"

	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

// Defaults match the original simulated network: advertisements every 5
// seconds, routes time out after six missed intervals, garbage is held for
// the same period, and a router lives for 60 seconds.
const (
	DefaultUpdateInterval sim.VTimeInSec = 5
	DefaultRouteTimeout   sim.VTimeInSec = 30
	DefaultGarbageHold    sim.VTimeInSec = 30
	DefaultDebounce       sim.VTimeInSec = 2
	DefaultLifespan       sim.VTimeInSec = 60
)

// Builder can build router components.
type Builder struct {
	engine         sim.Engine
	freq           sim.Freq
	id             routing.RouterID
	inputPorts     []routing.PortID
	links          []routing.Link
	infinity       int
	updateInterval sim.VTimeInSec
	routeTimeout   sim.VTimeInSec
	garbageHold    sim.VTimeInSec
	debounce       sim.VTimeInSec
	lifespan       sim.VTimeInSec
	controller     RunController
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:           1 * sim.Hz,
		infinity:       routing.DefaultInfinity,
		updateInterval: DefaultUpdateInterval,
		routeTimeout:   DefaultRouteTimeout,
		garbageHold:    DefaultGarbageHold,
		debounce:       DefaultDebounce,
		lifespan:       DefaultLifespan,
	}
}

// WithEngine sets the engine that drives the router.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency at which the router processes events.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithID sets the router id.
func (b Builder) WithID(id routing.RouterID) Builder {
	b.id = id
	return b
}

// WithInputPorts sets the simulated input port ids of the router.
func (b Builder) WithInputPorts(ports ...routing.PortID) Builder {
	b.inputPorts = ports
	return b
}

// WithLinks sets the static output links of the router.
func (b Builder) WithLinks(links ...routing.Link) Builder {
	b.links = links
	return b
}

// WithInfinity sets the unreachable-metric sentinel.
func (b Builder) WithInfinity(infinity int) Builder {
	b.infinity = infinity
	return b
}

// WithUpdateInterval sets the periodic advertisement interval.
func (b Builder) WithUpdateInterval(interval sim.VTimeInSec) Builder {
	b.updateInterval = interval
	return b
}

// WithRouteTimeout sets how long an entry may stay unrefreshed before it is
// marked unreachable.
func (b Builder) WithRouteTimeout(timeout sim.VTimeInSec) Builder {
	b.routeTimeout = timeout
	return b
}

// WithGarbageHold sets how long an unreachable entry is kept before it is
// purged from the table.
func (b Builder) WithGarbageHold(hold sim.VTimeInSec) Builder {
	b.garbageHold = hold
	return b
}

// WithDebounce sets the triggered-update coalescing window. Zero disables
// coalescing entirely.
func (b Builder) WithDebounce(window sim.VTimeInSec) Builder {
	b.debounce = window
	return b
}

// WithLifespan sets how long the router keeps scheduling ticks.
func (b Builder) WithLifespan(lifespan sim.VTimeInSec) Builder {
	b.lifespan = lifespan
	return b
}

// WithController sets the controller consulted before scheduling further
// ticks.
func (b Builder) WithController(controller RunController) Builder {
	b.controller = controller
	return b
}

// Build creates a router component with the given name.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		id:          b.id,
		table:       routing.NewTable(b.id, b.infinity),
		inputPorts:  make(map[routing.PortID]sim.Port),
		outputPorts: make(map[routing.PortID]sim.Port),
		linkByPeer:  make(map[routing.RouterID]routing.Link),
		linkDst:     make(map[routing.PortID]sim.RemotePort),

		updateInterval: b.updateInterval,
		routeTimeout:   b.routeTimeout,
		garbageHold:    b.garbageHold,
		debounce:       b.debounce,
		lifespan:       b.lifespan,
		controller:     b.controller,

		triggerDue: -1,
		lastChange: -1,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	b.buildInputPorts(c, name)
	b.buildOutputPorts(c, name)

	return c
}

func (b Builder) buildInputPorts(c *Comp, name string) {
	sorted := make([]routing.PortID, len(b.inputPorts))
	copy(sorted, b.inputPorts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		port := sim.NewPort(c, 16, 16,
			fmt.Sprintf("%s.In%d", name, id))
		c.inputPorts[id] = port
		c.inputsInOrder = append(c.inputsInOrder, port)
		c.AddPort(fmt.Sprintf("In%d", id), port)
	}
}

func (b Builder) buildOutputPorts(c *Comp, name string) {
	for _, link := range b.links {
		port := sim.NewPort(c, 16, 16,
			fmt.Sprintf("%s.Out%d", name, link.OutPort()))
		c.outputPorts[link.OutPort()] = port
		c.links = append(c.links, link)
		c.linkByPeer[link.Dest] = link
		c.AddPort(fmt.Sprintf("Out%d", link.OutPort()), port)
	}
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("router must have an engine")
	}

	if b.id < 0 || b.id >= routing.MaxRouters {
		panic(fmt.Sprintf("router id %d out of range [0, %d]",
			b.id, routing.MaxRouters-1))
	}

	if b.updateInterval <= 0 {
		panic("update interval must be positive")
	}

	if b.debounce < 0 {
		panic("debounce window cannot be negative")
	}

	for _, link := range b.links {
		if link.Metric < 1 || link.Metric >= b.infinity {
			panic(fmt.Sprintf("link %s metric out of range", link))
		}
	}
}
