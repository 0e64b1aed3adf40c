package simulation

import (
	"github.com/rs/xid"

	"github.com/GNS-S/ripv2-simulation/datarecording"
	"github.com/GNS-S/ripv2-simulation/monitoring"
	"github.com/GNS-S/ripv2-simulation/router"
	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
	"github.com/GNS-S/ripv2-simulation/snapshotting"
)

// Builder can be used to build a simulation.
type Builder struct {
	parallelEngine bool
	monitorOn      bool
	monitorPort    int
	openDashboard  bool
	recordingOn    bool
	outputFileName string
	logDir         string
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		parallelEngine: false,
		monitorOn:      true,
	}
}

// WithParallelEngine sets the simulation to use a parallel engine.
func (b Builder) WithParallelEngine() Builder {
	b.parallelEngine = true
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithDashboard makes the monitor open the local browser once the server is
// listening.
func (b Builder) WithDashboard() Builder {
	b.openDashboard = true
	return b
}

// WithDataRecording enables recording routing-table snapshots into a SQLite
// database.
func (b Builder) WithDataRecording() Builder {
	b.recordingOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It implies data recording.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordingOn = true
	b.outputFileName = filename
	return b
}

// WithLogDir enables writing one plain-text routing table file per snapshot
// into the given directory.
func (b Builder) WithLogDir(dir string) Builder {
	b.logDir = dir
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openDashboard {
		panic("dashboard cannot be opened when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		compNameIndex: make(map[string]int),
		portNameIndex: make(map[string]int),
		routers:       make(map[routing.RouterID]*router.Comp),
	}

	s.id = xid.New().String()

	s.engine = sim.NewSerialEngine()
	if b.parallelEngine {
		s.engine = sim.NewParallelEngine()
	}

	s.tracker = NewConvergenceTracker()
	s.tableHook = snapshotting.NewTableChangeHook(s.tracker)

	if b.logDir != "" {
		s.tableHook.AddLogger(snapshotting.NewFileWriter(b.logDir))
	}

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "ripsim_" + s.id
		}
		s.dataRecorder = datarecording.New(outputPath)
		s.tableHook.AddLogger(snapshotting.NewRecorder(s.dataRecorder))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer(b.openDashboard)
	}

	return s
}
