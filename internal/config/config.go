package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Movement  MovementConfig  `toml:"movement"`
	Loop      LoopConfig      `toml:"loop"`
	Logging   LoggingConfig   `toml:"logging"`
	Database  DatabaseConfig  `toml:"database"`
	Scripting ScriptingConfig `toml:"scripting"`
	Feed      FeedConfig      `toml:"feed"`
	AI        AIConfig        `toml:"ai"`
	Scenario  ScenarioConfig  `toml:"scenario"`
}

type GridConfig struct {
	CellWidth  float64 `toml:"cell_width"`  // world units per cell on X
	CellHeight float64 `toml:"cell_height"` // world units per cell on Y
	Width      int     `toml:"width"`       // cell count on X
	Height     int     `toml:"height"`      // cell count on Y
}

type MovementConfig struct {
	Speed         float64     `toml:"speed"` // action progress units per second
	StandardCurve CurveConfig `toml:"standard_curve"`
	JumpCurve     CurveConfig `toml:"jump_curve"`
	Jump          bool        `toml:"jump"` // carried on every step; no interpolation rule selects JumpCurve yet
}

// CurveConfig describes an easing curve either by preset name or by
// explicit [time, value] keyframes. Keys win when both are set.
type CurveConfig struct {
	Preset string       `toml:"preset"`
	Keys   [][2]float64 `toml:"keys"`
}

type LoopConfig struct {
	TickRate           time.Duration `toml:"tick_rate"`
	MaxCommandsPerTick int           `toml:"max_commands_per_tick"`
	CommandQueueSize   int           `toml:"command_queue_size"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	File       string `toml:"file"`   // empty = stdout only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	SaveInterval    int           `toml:"save_interval"` // ticks between saves
	Timeout         time.Duration `toml:"timeout"`
}

type ScriptingConfig struct {
	Dir       string `toml:"dir"` // empty disables Lua
	HotReload bool   `toml:"hot_reload"`
}

type FeedConfig struct {
	BindAddress   string        `toml:"bind_address"` // empty disables the websocket feed
	OutQueueSize  int           `toml:"out_queue_size"`
	WriteTimeout  time.Duration `toml:"write_timeout"`
	PingInterval  time.Duration `toml:"ping_interval"`
	PublishEveryN int           `toml:"publish_every"` // ticks between snapshots
}

type AIConfig struct {
	Seed   int64        `toml:"seed"`
	Idle   IdleConfig   `toml:"idle"`
	Wander WanderConfig `toml:"wander"`
}

type IdleConfig struct {
	Priority int           `toml:"priority"`
	MinTime  time.Duration `toml:"min_time"`
	MaxTime  time.Duration `toml:"max_time"`
}

type WanderConfig struct {
	Priority    int `toml:"priority"`
	MinDistance int `toml:"min_distance"`
	MaxDistance int `toml:"max_distance"`
	MaxAttempts int `toml:"max_attempts"`
}

type ScenarioConfig struct {
	Path string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Grid.CellWidth <= 0 || c.Grid.CellHeight <= 0 {
		errs = append(errs, fmt.Errorf("grid: cell size must be positive, got %gx%g", c.Grid.CellWidth, c.Grid.CellHeight))
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid: size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height))
	}
	if c.Movement.Speed <= 0 {
		errs = append(errs, fmt.Errorf("movement: speed must be positive, got %g", c.Movement.Speed))
	}
	if c.Loop.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("loop: tick_rate must be positive, got %s", c.Loop.TickRate))
	}
	if c.AI.Wander.MinDistance < 1 || c.AI.Wander.MaxDistance < c.AI.Wander.MinDistance {
		errs = append(errs, fmt.Errorf("ai.wander: need 1 <= min_distance <= max_distance, got %d..%d",
			c.AI.Wander.MinDistance, c.AI.Wander.MaxDistance))
	}
	if c.AI.Idle.MaxTime < c.AI.Idle.MinTime {
		errs = append(errs, fmt.Errorf("ai.idle: max_time %s below min_time %s", c.AI.Idle.MaxTime, c.AI.Idle.MinTime))
	}
	return errors.Join(errs...)
}

// Default returns the built-in configuration. Load decodes on top of it.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			CellWidth:  1,
			CellHeight: 1,
			Width:      10,
			Height:     10,
		},
		Movement: MovementConfig{
			Speed:         1,
			StandardCurve: CurveConfig{Preset: "linear"},
			JumpCurve:     CurveConfig{Preset: "arc"},
			Jump:          true,
		},
		Loop: LoopConfig{
			TickRate:           50 * time.Millisecond,
			MaxCommandsPerTick: 64,
			CommandQueueSize:   256,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			SaveInterval:    1200, // 1200 ticks × 50ms = 1 minute
			Timeout:         5 * time.Second,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Feed: FeedConfig{
			OutQueueSize:  64,
			WriteTimeout:  5 * time.Second,
			PingInterval:  30 * time.Second,
			PublishEveryN: 1,
		},
		AI: AIConfig{
			Seed: 1,
			Idle: IdleConfig{
				Priority: 1,
				MinTime:  1 * time.Second,
				MaxTime:  5 * time.Second,
			},
			Wander: WanderConfig{
				Priority:    1,
				MinDistance: 1,
				MaxDistance: 5,
				MaxAttempts: 50,
			},
		},
		Scenario: ScenarioConfig{
			Path: "data/scenario.yaml",
		},
	}
}
