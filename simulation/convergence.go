package simulation

import (
	"sync"

	"github.com/GNS-S/ripv2-simulation/monitoring"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

// A ConvergenceTracker observes routing-table snapshots to decide when the
// whole network has stopped changing. Routers consult it before scheduling
// their next tick, so a stable network lets the event queue drain before the
// router lifespan is over.
type ConvergenceTracker struct {
	mu          sync.Mutex
	stableAfter sim.VTimeInSec
	lastChange  sim.VTimeInSec
	snapshots   map[routing.RouterID]int
	progress    *monitoring.ProgressBar
}

// NewConvergenceTracker creates a tracker that never stops the simulation
// until a stability window is set with SetStableAfter.
func NewConvergenceTracker() *ConvergenceTracker {
	return &ConvergenceTracker{
		snapshots: make(map[routing.RouterID]int),
	}
}

// SetStableAfter sets how long the network must stay unchanged before the
// tracker reports convergence. A non-positive window disables early
// termination.
func (t *ConvergenceTracker) SetStableAfter(window sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stableAfter = window
}

// LogSnapshot records a table change. It makes the tracker usable as a
// snapshot logger.
func (t *ConvergenceTracker) LogSnapshot(s routing.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.Time > t.lastChange {
		t.lastChange = s.Time
	}

	t.snapshots[s.Router]++

	if t.progress != nil {
		t.progress.SetFinished(uint64(s.Time))
	}
}

// ShouldContinue reports whether the router with the given id should keep
// ticking at the given time.
func (t *ConvergenceTracker) ShouldContinue(
	_ routing.RouterID,
	now sim.VTimeInSec,
) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stableAfter <= 0 {
		return true
	}

	return now-t.lastChange < t.stableAfter
}

// LastChange returns the virtual time of the most recent table change seen
// anywhere in the network.
func (t *ConvergenceTracker) LastChange() sim.VTimeInSec {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastChange
}

// SnapshotCount returns how many snapshots the given router has produced.
func (t *ConvergenceTracker) SnapshotCount(id routing.RouterID) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshots[id]
}

// TotalSnapshots returns the number of snapshots produced by all routers.
func (t *ConvergenceTracker) TotalSnapshots() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, n := range t.snapshots {
		total += n
	}

	return total
}

func (t *ConvergenceTracker) attachProgress(bar *monitoring.ProgressBar) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress = bar
}
