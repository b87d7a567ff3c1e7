package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Seed:             rngSeed,
		LogStats:         *logStats,
		StatsWindowTicks: *statsWindow,
		OutputDir:        *outputDir,
	}

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"agents", config.Cfg().Agents.Count,
		"max_ticks", *maxTicks,
	)

	for {
		g.Step()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "delivered", g.Delivered())
			return
		}
	}
}
