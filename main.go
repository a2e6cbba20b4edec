package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/abilities/config"
	"github.com/milk9111/abilities/prefabs"
)

type demoFlags struct {
	cfg      config.Config
	unitPath string
	instant  bool
}

// parseFlags applies command line overrides on top of cfg and validates the
// result.
func parseFlags(cfg config.Config, args []string) (demoFlags, error) {
	out := demoFlags{cfg: cfg}
	fs := flag.NewFlagSet("abilities", flag.ContinueOnError)
	fs.StringVar(&out.unitPath, "unit", "units/mage.yaml", "unit prefab to control")
	fs.BoolVar(&out.instant, "instant", true, "abilities finish one tick after they start")
	fs.StringVar(&out.cfg.PrefabDir, "prefabs", cfg.PrefabDir, "on-disk prefab directory overriding embedded prefabs")
	fs.StringVar(&out.cfg.LogLevel, "log", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return demoFlags{}, err
	}
	if err := out.cfg.Validate(); err != nil {
		return demoFlags{}, err
	}
	return out, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opts, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg = opts.cfg

	logger := cfg.NewLogger(os.Stderr)
	prefabs.Dir = cfg.PrefabDir

	ebiten.SetTPS(cfg.TickRate)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("abilities")

	game, err := NewGame(opts.unitPath, opts.instant, cfg.TickDuration(), logger)
	if err != nil {
		logger.Fatal().Err(err).Str("unit", opts.unitPath).Msg("build demo")
	}

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal().Err(err).Msg("run game")
	}
}
