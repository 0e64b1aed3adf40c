package network

import (
	"github.com/GNS-S/ripv2-simulation/sim"
)

// Builder can build network buses.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.Hz,
	}
}

// WithEngine sets the engine that drives the bus.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency at which the bus forwards messages.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// Build creates a bus with the given name.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("network bus must have an engine")
	}

	c := &Comp{
		registered: make(map[sim.RemotePort]sim.Port),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
