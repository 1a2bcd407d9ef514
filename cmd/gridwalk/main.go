package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/l1jgo/gridwalk/internal/config"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/curve"
	"github.com/l1jgo/gridwalk/internal/data"
	"github.com/l1jgo/gridwalk/internal/feed"
	"github.com/l1jgo/gridwalk/internal/grid"
	"github.com/l1jgo/gridwalk/internal/persist"
	"github.com/l1jgo/gridwalk/internal/scripting"
	"github.com/l1jgo/gridwalk/internal/system"
	"github.com/l1jgo/gridwalk/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/gridwalk.toml"
	if p := os.Getenv("GRIDWALK_CONFIG"); p != "" {
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

	// 3. Curves
	standard, err := curve.New(cfg.Movement.StandardCurve)
	if err != nil {
		return fmt.Errorf("standard curve: %w", err)
	}
	if _, err := curve.New(cfg.Movement.JumpCurve); err != nil {
		return fmt.Errorf("jump curve: %w", err)
	}

	// 4. Scenario and world state
	scenario, err := data.LoadScenario(cfg.Scenario.Path)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	ws := world.NewState(cfg.Grid, log)

	// 5. Optional persistence: restore saved cells before spawning
	var (
		positions *persist.PositionRepo
		journal   *persist.JournalRepo
		restore   map[string]grid.Cell
	)
	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}

		positions = persist.NewPositionRepo(db)
		journal = persist.NewJournalRepo(db)
		saved, err := positions.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load positions: %w", err)
		}
		restore = persist.Cells(saved)
		// Restored positions already include every journalled change.
		if err := journal.MarkProcessed(ctx); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		log.Info("positions restored", zap.Int("objects", len(restore)))
	}

	if err := scenario.Apply(ws, restore, log); err != nil {
		return fmt.Errorf("apply scenario: %w", err)
	}
	log.Info("scenario loaded",
		zap.String("path", cfg.Scenario.Path),
		zap.Int("width", ws.Index.Width()),
		zap.Int("height", ws.Index.Height()),
		zap.Int("objects", len(ws.Objects())))

	// 6. Optional Lua scripting
	var (
		engine  *scripting.Engine
		script  system.WanderScript
		watcher *scripting.Watcher
	)
	if cfg.Scripting.Dir != "" {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		script = engine

		aiDir := filepath.Join(cfg.Scripting.Dir, "ai")
		if cfg.Scripting.HotReload {
			if _, err := os.Stat(aiDir); err == nil {
				watcher, err = scripting.NewWatcher(log, aiDir)
				if err != nil {
					return fmt.Errorf("script watcher: %w", err)
				}
				defer watcher.Close()
			}
		}
	}

	// 7. Optional websocket feed
	commands := make(chan world.Command, cfg.Loop.CommandQueueSize)
	var hub *feed.Hub
	if cfg.Feed.BindAddress != "" {
		hub = feed.NewHub(cfg.Feed, commands, log)
		if err := hub.Listen(); err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		go hub.Serve()
		log.Info("feed listening", zap.String("addr", hub.Addr().String()))
	}

	// 8. Systems
	steps := system.NewStepController(ws, cfg.Movement, log)
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(ws, commands, cfg.Loop.MaxCommandsPerTick, log))
	runner.Register(system.NewAISystem(ws, script, cfg.AI, log))
	if watcher != nil {
		runner.Register(system.NewScriptReloadSystem(watcher.Events, engine, log))
	}
	runner.Register(system.NewEventDispatchSystem(ws.Bus))
	runner.Register(system.NewDirectMoveSystem(ws, steps, log))
	runner.Register(system.NewSeekSystem(ws, steps, log))
	runner.Register(system.NewActionSystem(ws))
	runner.Register(system.NewInterpolateSystem(ws, standard))
	runner.Register(system.NewFinalizeSystem(ws))
	if hub != nil {
		runner.Register(system.NewFeedSystem(ws, hub, cfg.Feed.PublishEveryN, log))
	}
	var persister *system.PersistSystem
	if positions != nil {
		persister = system.NewPersistSystem(ws, positions, journal, cfg.Database, log)
		runner.Register(persister)
	}
	runner.Register(system.NewCleanupSystem(ws, log))

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()
	log.Info("game loop started", zap.Duration("tick", cfg.Loop.TickRate))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if persister != nil {
				persister.Flush()
			}
			if hub != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := hub.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					log.Warn("feed shutdown", zap.Error(err))
				}
				cancel()
			}
			log.Info("stopped")
			return nil
		}
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

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return log, nil
	}

	// Rotated file output alongside the console.
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	fileCore := zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), zapCfg.Level)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
