package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Scene     SceneConfig     `toml:"scene"`
	Scripting ScriptingConfig `toml:"scripting"`
	Gameplay  GameplayConfig  `toml:"gameplay"`
	Logging   LoggingConfig   `toml:"logging"`
	Profiling ProfilingConfig `toml:"profiling"`
	Snapshot  SnapshotConfig  `toml:"snapshot"`
}

type EngineConfig struct {
	TickRate        time.Duration `toml:"tick_rate"`
	MaxEntities     int           `toml:"max_entities"` // 0 = unbounded
	InitialCapacity int           `toml:"initial_capacity"`
	ParallelSystems bool          `toml:"parallel_systems"`
	MaxFrames       uint64        `toml:"max_frames"` // 0 = run until signalled
}

type SceneConfig struct {
	Path string `toml:"path"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type GameplayConfig struct {
	RegenInterval time.Duration `toml:"regen_interval"`
	XPPerKill     int64         `toml:"xp_per_kill"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfilingConfig struct {
	Mode string `toml:"mode"` // "off", "cpu" or "mem"
	Path string `toml:"path"`
}

type SnapshotConfig struct {
	Path          string `toml:"path"`            // final snapshot; empty disables it
	ChecksumEvery uint64 `toml:"checksum_every"` // frames between logged checksums; 0 disables
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	var errs []error
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.tick_rate must be positive, got %s", c.Engine.TickRate))
	}
	if c.Engine.MaxEntities < 0 {
		errs = append(errs, fmt.Errorf("engine.max_entities must not be negative, got %d", c.Engine.MaxEntities))
	}
	if c.Gameplay.RegenInterval <= 0 {
		errs = append(errs, fmt.Errorf("gameplay.regen_interval must be positive, got %s", c.Gameplay.RegenInterval))
	}
	switch c.Profiling.Mode {
	case "", "off", "cpu", "mem":
	default:
		errs = append(errs, fmt.Errorf("profiling.mode %q: want off, cpu or mem", c.Profiling.Mode))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:        16 * time.Millisecond,
			InitialCapacity: 1024,
		},
		Scene: SceneConfig{
			Path: "scenes/arena.yaml",
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Gameplay: GameplayConfig{
			RegenInterval: time.Second,
			XPPerKill:     50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profiling: ProfilingConfig{
			Mode: "off",
			Path: "profiles",
		},
	}
}
