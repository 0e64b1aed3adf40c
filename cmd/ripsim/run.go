package main

import (
	"fmt"
	stdlog "log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GNS-S/ripv2-simulation/routing"
	"github.com/GNS-S/ripv2-simulation/sim"
	"github.com/GNS-S/ripv2-simulation/simulation"
	"github.com/GNS-S/ripv2-simulation/topology"
)

var runFlags = struct {
	logDir      string
	dbName      string
	record      bool
	parallel    bool
	monitor     bool
	monitorPort int
	dashboard   bool
	traceFile   string

	interval    float64
	timeout     float64
	garbageHold float64
	debounce    float64
	lifespan    float64
	stableAfter float64
	infinity    int
}{}

var runCmd = &cobra.Command{
	Use:   "run <topology-file>",
	Short: "Run the simulation described by a topology file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runSimulation(args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runFlags.logDir, "logs",
		envOr("RIPSIM_LOG_DIR", "logs"),
		"directory for routing-table snapshot files; empty disables them")
	f.StringVar(&runFlags.dbName, "db", "",
		"SQLite output file name for snapshot recording; implies --record")
	f.BoolVar(&runFlags.record, "record", false,
		"record snapshots into a SQLite database")
	f.BoolVar(&runFlags.parallel, "parallel", false,
		"use the parallel event engine")
	f.BoolVar(&runFlags.monitor, "monitor", false,
		"serve the monitoring API over HTTP")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server; 0 picks a random port")
	f.BoolVar(&runFlags.dashboard, "dashboard", false,
		"open the monitoring page in the local browser")
	f.StringVar(&runFlags.traceFile, "trace", "",
		"write an event trace to the given file")

	f.Float64Var(&runFlags.interval, "interval", 5,
		"seconds between periodic advertisements")
	f.Float64Var(&runFlags.timeout, "timeout", 30,
		"seconds before an unrefreshed route is marked unreachable")
	f.Float64Var(&runFlags.garbageHold, "garbage-hold", 30,
		"seconds an unreachable route is kept before it is purged")
	f.Float64Var(&runFlags.debounce, "debounce", 2,
		"triggered-update coalescing window in seconds")
	f.Float64Var(&runFlags.lifespan, "lifespan", 60,
		"seconds each router keeps running")
	f.Float64Var(&runFlags.stableAfter, "stable-after", 0,
		"stop early after this many change-free seconds; 0 disables")
	f.IntVar(&runFlags.infinity, "infinity", routing.DefaultInfinity,
		"metric value treated as unreachable")
}

func runSimulation(topologyPath string) error {
	topo, err := topology.Load(topologyPath)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}

	log.WithFields(logrus.Fields{
		"topology": topologyPath,
		"routers":  len(topo.Routers),
	}).Info("Topology loaded")

	builder := simulation.MakeBuilder()
	if runFlags.parallel {
		builder = builder.WithParallelEngine()
		sim.UseParallelIDGenerator()
	}

	if !runFlags.monitor {
		builder = builder.WithoutMonitoring()
	} else {
		if runFlags.monitorPort > 0 {
			builder = builder.WithMonitorPort(runFlags.monitorPort)
		}
		if runFlags.dashboard {
			builder = builder.WithDashboard()
		}
	}

	if runFlags.logDir != "" {
		builder = builder.WithLogDir(runFlags.logDir)
	}

	if runFlags.dbName != "" {
		builder = builder.WithOutputFileName(runFlags.dbName)
	} else if runFlags.record {
		builder = builder.WithDataRecording()
	}

	s := builder.Build()
	defer s.Terminate()

	if runFlags.traceFile != "" {
		traceOut, err := os.Create(runFlags.traceFile)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer traceOut.Close()

		s.GetEngine().AcceptHook(
			sim.NewEventLogger(stdlog.New(traceOut, "", 0)))
	}

	cfg := simulation.DefaultConfig()
	cfg.Infinity = runFlags.infinity
	cfg.UpdateInterval = sim.VTimeInSec(runFlags.interval)
	cfg.RouteTimeout = sim.VTimeInSec(runFlags.timeout)
	cfg.GarbageHold = sim.VTimeInSec(runFlags.garbageHold)
	cfg.Debounce = sim.VTimeInSec(runFlags.debounce)
	cfg.Lifespan = sim.VTimeInSec(runFlags.lifespan)
	cfg.StableAfter = sim.VTimeInSec(runFlags.stableAfter)

	if err := s.BuildNetwork(topo, cfg); err != nil {
		return fmt.Errorf("building network: %w", err)
	}

	if err := s.Run(); err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	reportResults(s)

	return nil
}

func reportResults(s *simulation.Simulation) {
	tracker := s.GetTracker()

	for _, r := range s.Routers() {
		now := s.GetEngine().CurrentTime()
		snapshot := r.Table().Snapshot(now, 0)

		log.WithFields(logrus.Fields{
			"router":    r.ID(),
			"state":     r.State().String(),
			"reachable": len(snapshot.Reachable()),
			"snapshots": tracker.SnapshotCount(r.ID()),
		}).Info("Router finished")
	}

	log.WithFields(logrus.Fields{
		"end":        float64(s.GetEngine().CurrentTime()),
		"lastChange": float64(tracker.LastChange()),
		"snapshots":  tracker.TotalSnapshots(),
	}).Info("Simulation complete")
}
