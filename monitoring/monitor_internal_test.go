package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should register components and recognize routers", func() {
		engine := sim.NewSerialEngine()
		r := router.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.Hz).
			WithID(1).
			WithInputPorts(1024).
			WithLinks(routing.Link{Dest: 2, DestPort: 2048, Metric: 1}).
			Build("Router1")

		m.RegisterComponent(r)

		Expect(m.components).To(HaveLen(1))
		Expect(m.routers).To(HaveLen(1))
	})

	It("should refuse privileged port numbers", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})

	It("should accept regular port numbers", func() {
		m.WithPortNumber(8080)

		Expect(m.portNumber).To(Equal(8080))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("ticks", 100)
		bar.IncrementFinished(30)
		bar.SetFinished(60)

		Expect(m.progressBars).To(HaveLen(1))
		Expect(bar.Finished).To(Equal(uint64(60)))

		m.CompleteProgressBar(bar)

		Expect(m.progressBars).To(BeEmpty())
	})

	It("should report the current time", func() {
		m.RegisterEngine(sim.NewSerialEngine())

		w := httptest.NewRecorder()
		m.now(w, httptest.NewRequest("GET", "/api/now", nil))

		rsp := struct {
			Now float64 `json:"now"`
		}{}
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(Equal(0.0))
	})

	It("should list registered routers", func() {
		engine := sim.NewSerialEngine()
		r := router.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.Hz).
			WithID(3).
			WithInputPorts(3072).
			WithLinks(routing.Link{Dest: 2, DestPort: 2048, Metric: 1}).
			Build("Router3")
		m.RegisterComponent(r)

		w := httptest.NewRecorder()
		m.listRouters(w, httptest.NewRequest("GET", "/api/routers", nil))

		var listed []struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			State string `json:"state"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &listed)).To(Succeed())
		Expect(listed).To(HaveLen(1))
		Expect(listed[0].ID).To(Equal(3))
		Expect(listed[0].Name).To(Equal("Router3"))
		Expect(listed[0].State).To(Equal("Initialized"))
	})
})
