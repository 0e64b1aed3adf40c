package snapshotting

import (
	"github.com/GNS-S/ripv2-simulation/datarecording"
	"github.com/GNS-S/ripv2-simulation/routing"
)

const snapshotTableName = "route_snapshots"

// A snapshotRow is one route entry of one snapshot, flattened for the data
// recorder.
type snapshotRow struct {
	Router  int
	Seq     int
	Time    float64
	Dest    int
	Metric  int
	NextHop int
	Age     float64
	Changed bool
	Garbage bool
}

// A Recorder stores snapshots through a DataRecorder, one row per route
// entry.
type Recorder struct {
	recorder datarecording.DataRecorder
}

// NewRecorder creates a snapshot recorder on top of the given data
// recorder.
func NewRecorder(recorder datarecording.DataRecorder) *Recorder {
	recorder.CreateTable(snapshotTableName, snapshotRow{})

	return &Recorder{recorder: recorder}
}

// LogSnapshot records every entry of the snapshot.
func (r *Recorder) LogSnapshot(s routing.Snapshot) {
	for _, e := range s.Entries {
		r.recorder.InsertData(snapshotTableName, snapshotRow{
			Router:  int(s.Router),
			Seq:     s.Seq,
			Time:    float64(s.Time),
			Dest:    int(e.Dest),
			Metric:  e.Metric,
			NextHop: int(e.NextHop),
			Age:     float64(e.Age),
			Changed: e.Changed,
			Garbage: e.Garbage,
		})
	}
}
