package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		s = MakeBuilder().
			WithoutMonitoring().
			Build()
	})

	AfterEach(func() {
		s.Terminate()
	})

	It("should assign an id", func() {
		Expect(s.ID()).NotTo(BeEmpty())
	})

	It("should register components and their ports", func() {
		r := router.MakeBuilder().
			WithEngine(s.GetEngine()).
			WithFreq(1 * sim.Hz).
			WithID(1).
			WithInputPorts(1024).
			WithLinks(routing.Link{Dest: 2, DestPort: 2048, Metric: 1}).
			Build("Router1")

		s.RegisterComponent(r)

		Expect(s.Components()).To(HaveLen(1))
		Expect(s.GetComponentByName("Router1")).To(
			BeIdenticalTo(sim.Component(r)))
		Expect(s.GetPortByName("Router1.In1024")).To(
			BeIdenticalTo(r.InputPort(1024)))
		Expect(s.Router(1)).To(BeIdenticalTo(r))
	})

	It("should panic when a component name is reused", func() {
		r := router.MakeBuilder().
			WithEngine(s.GetEngine()).
			WithFreq(1 * sim.Hz).
			WithID(1).
			WithInputPorts(1024).
			WithLinks(routing.Link{Dest: 2, DestPort: 2048, Metric: 1}).
			Build("Router1")

		s.RegisterComponent(r)

		Expect(func() {
			s.RegisterComponent(r)
		}).To(Panic())
	})

	It("should return nil for unknown names", func() {
		Expect(s.GetComponentByName("Nowhere")).To(BeNil())
		Expect(s.GetPortByName("Nowhere.In1")).To(BeNil())
		Expect(s.Router(5)).To(BeNil())
	})
})

var _ = Describe("Builder", func() {
	It("should panic when a monitor port is set without monitoring", func() {
		Expect(func() {
			MakeBuilder().
				WithoutMonitoring().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})

	It("should panic when the dashboard is requested without monitoring",
		func() {
			Expect(func() {
				MakeBuilder().
					WithoutMonitoring().
					WithDashboard().
					Build()
			}).To(Panic())
		})
})
