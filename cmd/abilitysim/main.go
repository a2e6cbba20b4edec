package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/milk9111/abilities/config"
	"github.com/milk9111/abilities/prefabs"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.IntVar(&cfg.TickRate, "rate", cfg.TickRate, "ticks per second")
	flag.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "ticks to run (0 uses the timeline's count)")
	flag.StringVar(&cfg.PrefabDir, "prefabs", cfg.PrefabDir, "on-disk prefab directory overriding embedded prefabs")
	flag.StringVar(&cfg.Timeline, "timeline", cfg.Timeline, "timeline prefab to replay")
	flag.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	flag.BoolVar(&cfg.LogJSON, "json", cfg.LogJSON, "log JSON lines instead of console output")
	flag.BoolVar(&cfg.Watch, "watch", cfg.Watch, "hot reload edited ability prefabs and scripts; runs in real time until interrupted")
	flag.Parse()

	rateSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "rate" {
			rateSet = true
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := cfg.NewLogger(os.Stderr).With().Str("run_id", uuid.NewString()).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, rateSet, logger); err != nil {
		logger.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, rateSet bool, logger zerolog.Logger) error {
	prefabs.Dir = cfg.PrefabDir

	timeline, err := prefabs.LoadTimelineSpec(cfg.Timeline)
	if err != nil {
		return err
	}
	if timeline.TickRate > 0 && !rateSet {
		cfg.TickRate = timeline.TickRate
	}
	ticks := cfg.Ticks
	if ticks == 0 {
		ticks = timeline.Ticks
	}

	sim, err := newSimulation(timeline, nil, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("timeline", timeline.Name).
		Int("units", len(sim.order)).
		Int("ticks", ticks).
		Int("rate", cfg.TickRate).
		Msg("simulation starting")

	dt := cfg.TickDuration()
	if !cfg.Watch {
		for i := 0; i < ticks; i++ {
			if ctx.Err() != nil {
				break
			}
			sim.step(dt)
		}
		sim.report()
		return nil
	}

	watcher, err := prefabs.WatchTree(cfg.PrefabDir)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sim.report()
			return nil
		case name, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := sim.reload(name); err != nil {
				logger.Error().Err(err).Str("file", name).Msg("reload failed")
			}
		case err, ok := <-watcher.Errors:
			if ok {
				logger.Warn().Err(err).Msg("watcher error")
			}
		case <-ticker.C:
			sim.step(dt)
			if ticks > 0 && sim.world.Tick() == uint64(ticks) {
				sim.report()
			}
		}
	}
}
