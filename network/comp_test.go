package network

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

type fakeEngine struct {
	sim.HookableBase

	now sim.VTimeInSec
}

func (e *fakeEngine) CurrentTime() sim.VTimeInSec { return e.now }

func (e *fakeEngine) Schedule(sim.Event) {}

func (e *fakeEngine) Run() error { return nil }

func (e *fakeEngine) Pause() {}

func (e *fakeEngine) Continue() {}

func (e *fakeEngine) RegisterSimulationEndHandler(sim.SimulationEndHandler) {}

func (e *fakeEngine) Finished() {}

type dropCounter struct {
	drops int
}

func (d *dropCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos == sim.HookPosConnDrop {
		d.drops++
	}
}

func buildRouter(
	engine sim.Engine,
	id routing.RouterID,
	inputs []routing.PortID,
	links ...routing.Link,
) *router.Comp {
	return router.MakeBuilder().
		WithEngine(engine).
		WithID(id).
		WithInputPorts(inputs...).
		WithLinks(links...).
		Build(fmt.Sprintf("Router%d", id))
}

var _ = Describe("Bus", func() {
	var (
		engine *fakeEngine
		bus    *Comp
		r1, r2 *router.Comp
	)

	BeforeEach(func() {
		engine = &fakeEngine{}
		bus = MakeBuilder().WithEngine(engine).Build("Bus")

		r1 = buildRouter(engine, 1, []routing.PortID{1000},
			routing.Link{Dest: 2, DestPort: 2000, Metric: 1})
		r2 = buildRouter(engine, 2, []routing.PortID{2000},
			routing.Link{Dest: 1, DestPort: 1000, Metric: 1})

		err := NewConnector(bus).Connect(r1, r2)
		Expect(err).To(BeNil())
	})

	It("should deliver advertisements to the linked input port", func() {
		r1.Tick()

		bus.Tick()

		msg := r2.InputPort(2000).RetrieveIncoming()
		Expect(msg).NotTo(BeNil())

		adv := msg.(*routing.Advertisement)
		Expect(adv.From).To(Equal(routing.RouterID(1)))
	})

	It("should deliver messages from one sender in order", func() {
		r1.Tick()

		engine.now = 5
		r1.Tick()

		bus.Tick()

		first := r2.InputPort(2000).RetrieveIncoming().(*routing.Advertisement)
		second := r2.InputPort(2000).RetrieveIncoming().(*routing.Advertisement)
		Expect(first.Meta().ID).NotTo(Equal(second.Meta().ID))
		Expect(first.Routes).To(ConsistOf(
			routing.RoutePair{Dest: 1, Metric: 0}))
		Expect(second.Routes).NotTo(BeEmpty())
	})

	It("should drop messages to unregistered destinations", func() {
		drops := &dropCounter{}
		bus.AcceptHook(drops)

		r1.SetLinkDestination(2000, "Nowhere.In999")
		r1.Tick()

		madeProgress := bus.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(drops.drops).To(Equal(1))
		Expect(r2.InputPort(2000).PeekIncoming()).To(BeNil())
	})

	It("should make no progress when idle", func() {
		Expect(bus.Tick()).To(BeFalse())
	})

	It("should refuse plugging the same port twice", func() {
		Expect(func() { bus.PlugIn(r1.InputPort(1000)) }).To(Panic())
	})
})

var _ = Describe("Connector", func() {
	var (
		engine *fakeEngine
		bus    *Comp
	)

	BeforeEach(func() {
		engine = &fakeEngine{}
		bus = MakeBuilder().WithEngine(engine).Build("Bus")
	})

	It("should reject links to unknown routers", func() {
		r1 := buildRouter(engine, 1, []routing.PortID{1000},
			routing.Link{Dest: 2, DestPort: 2000, Metric: 1})

		err := NewConnector(bus).Connect(r1)

		Expect(err).To(HaveOccurred())
	})

	It("should reject links to ports the peer does not own", func() {
		r1 := buildRouter(engine, 1, []routing.PortID{1000},
			routing.Link{Dest: 2, DestPort: 2500, Metric: 1})
		r2 := buildRouter(engine, 2, []routing.PortID{2000})

		err := NewConnector(bus).Connect(r1, r2)

		Expect(err).To(HaveOccurred())
	})

	It("should reject connecting a router twice", func() {
		r1 := buildRouter(engine, 1, []routing.PortID{1000})

		connector := NewConnector(bus)
		err := connector.Connect(r1)
		Expect(err).To(BeNil())

		err = connector.Connect(r1)
		Expect(err).To(HaveOccurred())
	})
})
