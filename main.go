package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/universe/config"
	"github.com/pthm-cable/universe/telemetry"
	"github.com/pthm-cable/universe/universe"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = use config; config 0 = time-based)")
	ticks := flag.Int("ticks", 10000, "Number of ticks to simulate")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Int64("stats-window", 0, "Stats window size in ticks (0 = use config)")
	logEvents := flag.Bool("log-events", false, "Write the raw event log to events.csv")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	windowTicks := int64(cfg.Telemetry.StatsWindow)
	if *statsWindow > 0 {
		windowTicks = *statsWindow
	}
	if windowTicks < 1 {
		windowTicks = 1
	}

	u, err := universe.New(cfg)
	if err != nil {
		slog.Error("failed to create universe", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", cfg.Seed,
		"nodes", u.Space().NumNodes(),
		"edges", u.Space().NumEdges(),
		"entities", u.Stats().EntityCount,
		"ticks", *ticks,
		"stats_window", windowTicks,
	)

	collector := telemetry.NewCollector(windowTicks)
	for remaining := *ticks; remaining > 0; {
		step := int(windowTicks)
		if step > remaining {
			step = remaining
		}
		u.Run(step)
		remaining -= step

		events := u.EventLog()
		collector.RecordAll(events)
		if *logEvents {
			if err := output.WriteEvents(events); err != nil {
				slog.Error("failed to write events", "error", err)
				os.Exit(1)
			}
		}
		u.ClearEventLog()

		if collector.ShouldFlush(u.Tick()) {
			stats := u.Stats()
			energies := make([]float64, 0, stats.EntityCount)
			for _, view := range u.Entities() {
				energies = append(energies, view.Energy)
			}
			window := collector.Flush(stats, energies, u.ConservationError())
			if *logStats {
				window.LogStats()
			}
			if err := output.WriteTelemetry(window); err != nil {
				slog.Error("failed to write telemetry", "error", err)
				os.Exit(1)
			}
		}

		if u.Stats().EntityCount == 0 {
			slog.Info("population extinct", "tick", u.Tick())
			break
		}
	}

	final := u.Stats()
	slog.Info("simulation complete",
		"tick", final.Tick,
		"entities", final.EntityCount,
		"artifacts", final.ArtifactCount,
		"births", final.Counts.Births,
		"deaths", final.Counts.Deaths,
		"reactions", final.Counts.Reactions,
		"total_energy", final.Energy.Total(),
		"conservation_error", u.ConservationError(),
	)
}
