package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/world"
)

// InputSystem drains the command queue filled by the feed and applies at
// most maxPerTick commands per tick. Phase 0 (Input).
type InputSystem struct {
	world      *world.State
	commands   <-chan world.Command
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(ws *world.State, commands <-chan world.Command, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		world:      ws,
		commands:   commands,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; s.maxPerTick <= 0 || i < s.maxPerTick; i++ {
		select {
		case cmd, ok := <-s.commands:
			if !ok {
				return
			}
			if err := s.world.Apply(cmd); err != nil {
				s.log.Debug("input: command rejected",
					zap.Stringer("kind", cmd.Kind), zap.String("name", cmd.Name), zap.Error(err))
			}
		default:
			return
		}
	}
}

// Reloader is implemented by *scripting.Engine.
type Reloader interface {
	Reload() error
}

// ScriptReloadSystem drains file-change notifications and reloads the
// script engine at most once per tick, on the game loop. Phase 0 (Input).
type ScriptReloadSystem struct {
	events <-chan string
	engine Reloader
	log    *zap.Logger
}

func NewScriptReloadSystem(events <-chan string, engine Reloader, log *zap.Logger) *ScriptReloadSystem {
	return &ScriptReloadSystem{events: events, engine: engine, log: log}
}

func (s *ScriptReloadSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ScriptReloadSystem) Update(_ time.Duration) {
	var changed []string
drain:
	for {
		select {
		case name, ok := <-s.events:
			if !ok {
				s.events = nil
				break drain
			}
			changed = append(changed, name)
		default:
			break drain
		}
	}
	if len(changed) == 0 {
		return
	}
	if err := s.engine.Reload(); err != nil {
		s.log.Error("script reload failed, keeping previous scripts",
			zap.Strings("changed", changed), zap.Error(err))
	}
}
