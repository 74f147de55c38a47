package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/whale2d/internal/component"
	"github.com/l1jgo/whale2d/internal/config"
	"github.com/l1jgo/whale2d/internal/core/ecs"
	"github.com/l1jgo/whale2d/internal/core/event"
	coresys "github.com/l1jgo/whale2d/internal/core/system"
	"github.com/l1jgo/whale2d/internal/scene"
	"github.com/l1jgo/whale2d/internal/scripting"
	"github.com/l1jgo/whale2d/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("WHALE2D_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(cfg.Profiling); p != nil {
		defer p.Stop()
	}

	// 3. Gameplay rules
	var rules scripting.Rules = scripting.DefaultRules{}
	if cfg.Scripting.Enabled {
		lua, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer lua.Close()
		rules = lua
		log.Info("lua rules loaded", zap.Int("scripts", len(lua.Scripts())))
	}

	// 4. World, components and systems
	w := ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithInitialCapacity(cfg.Engine.InitialCapacity),
		ecs.WithMaxEntities(cfg.Engine.MaxEntities),
		ecs.WithParallelSystems(cfg.Engine.ParallelSystems),
	)
	ct, err := component.Register(w)
	if err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	bus := event.NewBus()
	set := system.NewSet(system.Deps{
		Types:         ct,
		Bus:           bus,
		Rules:         rules,
		RegenInterval: cfg.Gameplay.RegenInterval,
		XPPerKill:     cfg.Gameplay.XPPerKill,
	})
	runner := coresys.NewRunner()
	set.Register(runner)
	runner.Install(w)
	for _, c := range w.Scheduler().Conflicts() {
		log.Debug("system access overlap", zap.Stringer("systems", c))
	}

	// 5. Scene
	sc, err := scene.Load(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	if _, err := sc.Spawn(w, ct); err != nil {
		return err
	}

	// 6. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	dt := cfg.Engine.TickRate.Seconds()
	log.Info("engine started",
		zap.Stringer("world", w.ID()),
		zap.Duration("tick", cfg.Engine.TickRate),
		zap.Bool("parallel", cfg.Engine.ParallelSystems),
		zap.Int("entities", w.EntityCount()),
	)

	var frameErr error
loop:
	for {
		select {
		case <-ticker.C:
			if err := w.Update(dt); err != nil {
				frameErr = fmt.Errorf("frame %d: %w", w.Frame(), err)
				break loop
			}
			if n := cfg.Snapshot.ChecksumEvery; n > 0 && w.Frame()%n == 0 {
				log.Info("state checksum",
					zap.Uint64("frame", w.Frame()),
					zap.String("checksum", strconv.FormatUint(scene.Take(w).Checksum(), 16)),
					zap.Int("entities", w.EntityCount()),
				)
			}
			if cfg.Engine.MaxFrames > 0 && w.Frame() >= cfg.Engine.MaxFrames {
				log.Info("frame limit reached", zap.Uint64("frames", w.Frame()))
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			break loop
		}
	}

	// 7. Final snapshot, then tear the scene down
	if cfg.Snapshot.Path != "" {
		snap := scene.Take(w)
		if err := snap.WriteYAML(cfg.Snapshot.Path); err != nil {
			log.Error("final snapshot", zap.Error(err))
		} else {
			log.Info("final snapshot written",
				zap.String("path", cfg.Snapshot.Path),
				zap.Uint64("frame", snap.Frame),
				zap.String("checksum", strconv.FormatUint(snap.Checksum(), 16)),
			)
		}
	}
	sc.Unload(w)
	log.Info("engine stopped", zap.Uint64("frames", w.Frame()))
	return frameErr
}

func startProfile(cfg config.ProfilingConfig) interface{ Stop() } {
	opts := []func(*profile.Profile){profile.ProfilePath(cfg.Path), profile.NoShutdownHook}
	switch cfg.Mode {
	case "cpu":
		return profile.Start(append(opts, profile.CPUProfile)...)
	case "mem":
		return profile.Start(append(opts, profile.MemProfileAllocs)...)
	default:
		return nil
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
