package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Prefix is prepended to every environment variable name.
const Prefix = "ABILITIES_"

// Config holds the simulation settings. Environment variables are read first;
// command line flags override them.
type Config struct {
	TickRate  int    `env:"TICK_RATE" envDefault:"60"`
	Ticks     int    `env:"TICKS"`
	PrefabDir string `env:"PREFAB_DIR" envDefault:"prefabs"`
	Timeline  string `env:"TIMELINE" envDefault:"timelines/duel.yaml"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON   bool   `env:"LOG_JSON"`
	Watch     bool   `env:"WATCH"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, eris.Wrap(err, "config: parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return eris.Errorf("config: tick rate %d must be positive", c.TickRate)
	}
	if c.Ticks < 0 {
		return eris.Errorf("config: tick count %d is negative", c.Ticks)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// TickDuration is the fixed simulation step.
func (c Config) TickDuration() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TickRate)
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return zerolog.NoLevel, eris.Wrapf(err, "config: log level %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger builds the process logger. Output goes to out, or stderr when out
// is nil, as JSON lines or through a console writer.
func (c Config) NewLogger(out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if !c.LogJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	level, err := c.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
