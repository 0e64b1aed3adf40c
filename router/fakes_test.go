package router

import (
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

// fakeEngine lets tests set the current time and collects scheduled events
// without running them.
type fakeEngine struct {
	sim.HookableBase

	now       sim.VTimeInSec
	scheduled []sim.Event
}

func (e *fakeEngine) CurrentTime() sim.VTimeInSec {
	return e.now
}

func (e *fakeEngine) Schedule(evt sim.Event) {
	e.scheduled = append(e.scheduled, evt)
}

func (e *fakeEngine) Run() error { return nil }

func (e *fakeEngine) Pause() {}

func (e *fakeEngine) Continue() {}

func (e *fakeEngine) RegisterSimulationEndHandler(sim.SimulationEndHandler) {}

func (e *fakeEngine) Finished() {}

// fakeConn absorbs the notifications a port sends to its connection.
type fakeConn struct {
	sim.HookableBase

	notifySendCount int
}

func (c *fakeConn) Name() string { return "FakeConn" }

func (c *fakeConn) PlugIn(port sim.Port) {
	port.SetConnection(c)
}

func (c *fakeConn) Unplug(sim.Port) {}

func (c *fakeConn) NotifyAvailable(sim.Port) {}

func (c *fakeConn) NotifySend() {
	c.notifySendCount++
}

// snapshotCollector records the snapshots emitted through the
// table-changed hook.
type snapshotCollector struct {
	snapshots []routing.Snapshot
}

func (s *snapshotCollector) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosTableChanged {
		return
	}

	s.snapshots = append(s.snapshots, ctx.Item.(routing.Snapshot))
}

// dropCollector records dropped advertisements.
type dropCollector struct {
	dropped []*routing.Advertisement
}

func (d *dropCollector) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosAdvertDropped {
		return
	}

	d.dropped = append(d.dropped, ctx.Item.(*routing.Advertisement))
}

// vetoController refuses further ticks once tripped.
type vetoController struct {
	veto bool
}

func (c *vetoController) ShouldContinue(
	routing.RouterID,
	sim.VTimeInSec,
) bool {
	return !c.veto
}
