// Package snapshotting persists routing-table snapshots. A snapshot is
// taken whenever a router's table gains new information; each consumer
// receives the same point-in-time copy.
package snapshotting

import (
	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
)

// A Logger consumes routing-table snapshots.
type Logger interface {
	LogSnapshot(s routing.Snapshot)
}

// A TableChangeHook listens for table changes on router components and
// fans the snapshots out to the registered loggers.
type TableChangeHook struct {
	loggers []Logger
}

// NewTableChangeHook creates a hook that forwards snapshots to the given
// loggers.
func NewTableChangeHook(loggers ...Logger) *TableChangeHook {
	return &TableChangeHook{loggers: loggers}
}

// AddLogger registers one more snapshot consumer.
func (h *TableChangeHook) AddLogger(l Logger) {
	h.loggers = append(h.loggers, l)
}

// Func forwards the snapshot carried by a table-changed hook invocation.
func (h *TableChangeHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != router.HookPosTableChanged {
		return
	}

	snapshot, ok := ctx.Item.(routing.Snapshot)
	if !ok {
		return
	}

	for _, l := range h.loggers {
		l.LogSnapshot(snapshot)
	}
}
