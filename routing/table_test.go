package routing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNS-S/ripv2-simulation/sim"
)

func adv(from RouterID, routes ...RoutePair) *Advertisement {
	return AdvertisementBuilder{}.
		WithSrc("src").
		WithDst("dst").
		WithFrom(from).
		WithRoutes(routes).
		Build()
}

var _ = Describe("Table", func() {
	var (
		table *Table
		link  Link
	)

	BeforeEach(func() {
		table = NewTable(1, DefaultInfinity)
		link = Link{Dest: 2, DestPort: 2000, Metric: 3}
	})

	It("should start with only the self entry", func() {
		entries := table.Entries()

		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Dest).To(Equal(RouterID(1)))
		Expect(entries[0].Metric).To(Equal(0))
	})

	It("should reject out-of-range self ids", func() {
		Expect(func() { NewTable(-1, DefaultInfinity) }).To(Panic())
		Expect(func() { NewTable(9, DefaultInfinity) }).To(Panic())
	})

	It("should reject a degenerate infinity", func() {
		Expect(func() { NewTable(1, 1) }).To(Panic())
	})

	Describe("Apply", func() {
		It("should learn a new destination through the link", func() {
			changed := table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			Expect(changed).To(BeTrue())

			entry := table.Entry(3)
			Expect(entry).NotTo(BeNil())
			Expect(entry.Metric).To(Equal(5))
			Expect(entry.NextHop).To(Equal(PortID(2000)))
			Expect(entry.LastHeard).To(Equal(sim.VTimeInSec(10)))
			Expect(entry.Changed).To(BeTrue())
		})

		It("should never relax the self entry", func() {
			changed := table.Apply(adv(2, RoutePair{Dest: 1, Metric: 1}), link, 10)

			Expect(changed).To(BeFalse())
			Expect(table.Entry(1).Metric).To(Equal(0))
		})

		It("should not insert an unreachable new destination", func() {
			changed := table.Apply(
				adv(2, RoutePair{Dest: 3, Metric: DefaultInfinity}), link, 10)

			Expect(changed).To(BeFalse())
			Expect(table.Entry(3)).To(BeNil())
		})

		It("should clamp the candidate metric at infinity", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 200}), link, 20)

			Expect(table.Entry(3).Metric).To(Equal(DefaultInfinity))
			Expect(table.Entry(3).Garbage).To(BeTrue())
		})

		It("should replace a route with a better one", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 10}), link, 10)

			otherLink := Link{Dest: 4, DestPort: 4000, Metric: 1}
			changed := table.Apply(
				adv(4, RoutePair{Dest: 3, Metric: 2}), otherLink, 20)

			Expect(changed).To(BeTrue())

			entry := table.Entry(3)
			Expect(entry.Metric).To(Equal(3))
			Expect(entry.NextHop).To(Equal(PortID(4000)))
		})

		It("should ignore a worse route from another neighbor", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			otherLink := Link{Dest: 4, DestPort: 4000, Metric: 9}
			changed := table.Apply(
				adv(4, RoutePair{Dest: 3, Metric: 9}), otherLink, 20)

			Expect(changed).To(BeFalse())
			Expect(table.Entry(3).Metric).To(Equal(5))
			Expect(table.Entry(3).NextHop).To(Equal(PortID(2000)))
		})

		It("should refresh the entry on an equal readvertisement", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			changed := table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 25)

			Expect(changed).To(BeFalse())
			Expect(table.Entry(3).LastHeard).To(Equal(sim.VTimeInSec(25)))
		})

		It("should accept a metric increase from the next hop", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			changed := table.Apply(adv(2, RoutePair{Dest: 3, Metric: 7}), link, 20)

			Expect(changed).To(BeTrue())
			Expect(table.Entry(3).Metric).To(Equal(10))
		})

		It("should poison a route withdrawn by the next hop", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			changed := table.Apply(
				adv(2, RoutePair{Dest: 3, Metric: DefaultInfinity}), link, 20)

			Expect(changed).To(BeTrue())

			entry := table.Entry(3)
			Expect(entry.Metric).To(Equal(DefaultInfinity))
			Expect(entry.Garbage).To(BeTrue())
			Expect(entry.Changed).To(BeTrue())
		})

		It("should revive a garbage entry on a reachable readvertisement", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)
			table.Apply(
				adv(2, RoutePair{Dest: 3, Metric: DefaultInfinity}), link, 20)

			changed := table.Apply(adv(2, RoutePair{Dest: 3, Metric: 4}), link, 30)

			Expect(changed).To(BeTrue())

			entry := table.Entry(3)
			Expect(entry.Metric).To(Equal(7))
			Expect(entry.Garbage).To(BeFalse())
		})

		It("should be idempotent", func() {
			a := adv(2,
				RoutePair{Dest: 3, Metric: 2},
				RoutePair{Dest: 4, Metric: 6})

			first := table.Apply(a, link, 10)
			second := table.Apply(a, link, 10)

			Expect(first).To(BeTrue())
			Expect(second).To(BeFalse())
		})
	})

	Describe("ExpireStale", func() {
		BeforeEach(func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)
		})

		It("should expire an entry older than the timeout", func() {
			expired := table.ExpireStale(41, 30)

			Expect(expired).To(BeTrue())

			entry := table.Entry(3)
			Expect(entry.Metric).To(Equal(DefaultInfinity))
			Expect(entry.Garbage).To(BeTrue())
			Expect(entry.LastHeard).To(Equal(sim.VTimeInSec(41)))
		})

		It("should keep an entry at exactly the timeout", func() {
			expired := table.ExpireStale(40, 30)

			Expect(expired).To(BeFalse())
			Expect(table.Entry(3).Garbage).To(BeFalse())
		})

		It("should never expire the self entry", func() {
			table.ExpireStale(1000, 30)

			Expect(table.Entry(1).Metric).To(Equal(0))
			Expect(table.Entry(1).Garbage).To(BeFalse())
		})
	})

	Describe("PurgeGarbage", func() {
		BeforeEach(func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)
			table.ExpireStale(41, 30)
		})

		It("should hold garbage entries before the hold period ends", func() {
			purged := table.PurgeGarbage(50, 30)

			Expect(purged).To(BeEmpty())
			Expect(table.Entry(3)).NotTo(BeNil())
		})

		It("should purge garbage entries after the hold period", func() {
			purged := table.PurgeGarbage(71, 30)

			Expect(purged).To(Equal([]RouterID{3}))
			Expect(table.Entry(3)).To(BeNil())
		})
	})

	Describe("AdvertisedRoutes", func() {
		BeforeEach(func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			otherLink := Link{Dest: 4, DestPort: 4000, Metric: 1}
			table.Apply(adv(4, RoutePair{Dest: 5, Metric: 1}), otherLink, 10)
		})

		It("should apply split horizon per port", func() {
			routes := table.AdvertisedRoutes(2000)

			dests := make([]RouterID, 0, len(routes))
			for _, r := range routes {
				dests = append(dests, r.Dest)
			}

			Expect(dests).To(ConsistOf(RouterID(1), RouterID(5)))
		})

		It("should always advertise the self route", func() {
			routes := table.AdvertisedRoutes(2000)

			Expect(routes[0].Dest).To(Equal(RouterID(1)))
			Expect(routes[0].Metric).To(Equal(0))
		})

		It("should advertise garbage entries at the sentinel", func() {
			table.ExpireStale(100, 30)

			routes := table.AdvertisedRoutes(9000)

			for _, r := range routes {
				if r.Dest == 3 || r.Dest == 5 {
					Expect(r.Metric).To(Equal(DefaultInfinity))
				}
			}
		})
	})

	Describe("Snapshot", func() {
		It("should copy the table state", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			snapshot := table.Snapshot(15, 7)

			Expect(snapshot.Router).To(Equal(RouterID(1)))
			Expect(snapshot.Seq).To(Equal(7))
			Expect(snapshot.Entries).To(HaveLen(2))
			Expect(snapshot.Entries[0].Dest).To(Equal(RouterID(1)))
			Expect(snapshot.Entries[0].Age).To(Equal(sim.VTimeInSec(0)))
			Expect(snapshot.Entries[1].Dest).To(Equal(RouterID(3)))
			Expect(snapshot.Entries[1].Age).To(Equal(sim.VTimeInSec(5)))
		})

		It("should not alias the live table", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)

			snapshot := table.Snapshot(10, 1)
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 1}), link, 20)

			Expect(snapshot.Entries[1].Metric).To(Equal(5))
		})

		It("should filter garbage entries from Reachable", func() {
			table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)
			table.ExpireStale(100, 30)

			snapshot := table.Snapshot(100, 1)

			Expect(snapshot.Entries).To(HaveLen(2))
			Expect(snapshot.Reachable()).To(HaveLen(1))
		})
	})

	It("should reset change markers with ClearChanged", func() {
		table.Apply(adv(2, RoutePair{Dest: 3, Metric: 2}), link, 10)
		Expect(table.Entry(3).Changed).To(BeTrue())

		table.ClearChanged()

		Expect(table.Entry(3).Changed).To(BeFalse())
	})
})
