package world

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pelletier/go-toml"
)

// Config holds the construction-time tunables for a Dimension, mirroring
// the defaulting pattern of the reference implementation's server.Config:
// an exported, documented field set with a New method that fills in
// zero-valued fields before constructing the real thing.
type Config struct {
	// Log is used for throttled diagnostic messages (generation
	// backpressure, tick overrun). Defaults to slog.Default().
	Log *slog.Logger

	// TickRate is the target duration of one world tick. Defaults to
	// 50ms (20Hz).
	TickRate time.Duration

	// GeneratorWorkers is the size of the generation worker pool.
	// Defaults to 4.
	GeneratorWorkers int
	// GeneratorQueueSize bounds the internal task/result channel
	// capacity. Defaults to 256.
	GeneratorQueueSize int

	// ViewDistance and VerticalViewDistance are the default per-viewer
	// tracking-view radii, overridable per viewer. Default to 12 and 8.
	ViewDistance         uint8
	VerticalViewDistance uint8

	// Window is the default vertical window applied to new viewers.
	// Defaults to DefaultVerticalWindow().
	Window VerticalWindow

	// Seed feeds the generator; Generate must be pure for a fixed seed
	// and region position (§4.4).
	Seed int64

	// Generator produces region contents. A nil Generator is replaced by
	// a generator that yields empty (all-air) regions.
	Generator Generator
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.TickRate <= 0 {
		conf.TickRate = 50 * time.Millisecond
	}
	if conf.GeneratorWorkers <= 0 {
		conf.GeneratorWorkers = 4
	}
	if conf.GeneratorQueueSize <= 0 {
		conf.GeneratorQueueSize = 256
	}
	if conf.ViewDistance == 0 {
		conf.ViewDistance = 12
	}
	if conf.VerticalViewDistance == 0 {
		conf.VerticalViewDistance = 8
	}
	if conf.Window == (VerticalWindow{}) {
		conf.Window = DefaultVerticalWindow()
	}
	if conf.Generator == nil {
		conf.Generator = GeneratorFunc(func(pos RegionPos, seed int64, params GenerateParams) (*PalettedContainer[BlockStateId], *PalettedContainer[BiomeId]) {
			return NewPalettedContainer[BlockStateId](16, 0), NewPalettedContainer[BiomeId](4, 0)
		})
	}
	return conf
}

// New constructs a Dimension from conf, defaulting any zero-valued fields.
func (conf Config) New() *Dimension {
	conf = conf.withDefaults()
	return newDimension(conf)
}

// fileConfig is the on-disk TOML shape of Config: durations are plain
// strings (TOML has no native duration type), parsed by LoadConfig.
type fileConfig struct {
	TickRate             string `toml:"tick-rate"`
	GeneratorWorkers      int    `toml:"generator-workers"`
	GeneratorQueueSize    int    `toml:"generator-queue-size"`
	ViewDistance          uint8  `toml:"view-distance"`
	VerticalViewDistance  uint8  `toml:"vertical-view-distance"`
	Seed                  int64  `toml:"seed"`
}

// LoadConfig reads a Config from a TOML file at path, following the
// reference implementation's own config.toml layout and defaulting pattern
// (server/conf.go): present fields override, absent ones keep their zero
// value ready for withDefaults to fill in. Log and Generator are not
// file-configurable and are left for the caller to set on the result.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if err := func() error {
		tree, err := toml.LoadFile(path)
		if err != nil {
			return err
		}
		return tree.Unmarshal(&fc)
	}(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	conf := Config{
		GeneratorWorkers:     fc.GeneratorWorkers,
		GeneratorQueueSize:   fc.GeneratorQueueSize,
		ViewDistance:         fc.ViewDistance,
		VerticalViewDistance: fc.VerticalViewDistance,
		Seed:                 fc.Seed,
	}
	if fc.TickRate != "" {
		d, err := time.ParseDuration(fc.TickRate)
		if err != nil {
			return Config{}, fmt.Errorf("load config: tick-rate: %w", err)
		}
		conf.TickRate = d
	}
	return conf, nil
}
