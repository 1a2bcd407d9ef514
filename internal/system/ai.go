package system

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/grid"
	"github.com/l1jgo/gridwalk/internal/scripting"
	"github.com/l1jgo/gridwalk/internal/world"
)

// WanderScript supplies wander offsets from a script. Implemented by
// *scripting.Engine.
type WanderScript interface {
	PickWanderOffset(ctx scripting.WanderContext) (grid.Cell, bool)
}

// AISystem produces targets for AIControlled objects. An object without an
// AIState picks idle or wander by weighted priority; the state exits when
// its timer runs out (idle) or its target is gone (wander). Go handles the
// validity checks; a Lua pick_wander_offset, when defined, chooses the
// candidate offsets. Phase 0 (Input).
type AISystem struct {
	world  *world.State
	script WanderScript // nil = built-in polar pick
	cfg    config.AIConfig
	rng    *rand.Rand
	log    *zap.Logger
}

func NewAISystem(ws *world.State, script WanderScript, cfg config.AIConfig, log *zap.Logger) *AISystem {
	return &AISystem{
		world:  ws,
		script: script,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    log,
	}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *AISystem) Update(dt time.Duration) {
	s.world.AI.Each(func(id ecs.EntityID, _ *component.AIControlled) {
		st, ok := s.world.AIStates.Get(id)
		if !ok {
			s.enter(id)
			return
		}
		switch st.Kind {
		case component.AIIdle:
			st.Elapsed += dt
			if st.Elapsed >= st.MaxTime {
				s.world.AIStates.Remove(id)
			}
		case component.AIWander:
			st.Elapsed += dt
			if !s.world.Target.Has(id) && !s.world.Steps.Has(id) {
				s.world.AIStates.Remove(id)
			}
		default:
			s.world.AIStates.Remove(id)
		}
	})
}

func (s *AISystem) enter(id ecs.EntityID) {
	// A target given by someone else is followed as a wander.
	if t, ok := s.world.Target.Get(id); ok {
		s.world.AIStates.Set(id, &component.AIState{Kind: component.AIWander, Target: t.Cell})
		return
	}

	switch s.pick() {
	case component.AIIdle:
		s.world.AIStates.Set(id, &component.AIState{
			Kind:    component.AIIdle,
			MaxTime: s.idleDuration(),
		})
	case component.AIWander:
		on, ok := s.world.OnCell.Get(id)
		if !ok {
			return
		}
		target, ok := s.wanderTarget(on.Cell)
		if !ok || !s.world.SetTarget(id, target) {
			s.log.Debug("ai: no wander target", zap.Stringer("entity", id), zap.Stringer("cell", on.Cell))
			return
		}
		s.world.AIStates.Set(id, &component.AIState{Kind: component.AIWander, Target: target})
	}
}

// pick chooses a behaviour with probability proportional to its priority.
func (s *AISystem) pick() component.AIKind {
	idle, wander := max(s.cfg.Idle.Priority, 0), max(s.cfg.Wander.Priority, 0)
	total := idle + wander
	if total == 0 {
		return 0
	}
	if s.rng.Intn(total) < idle {
		return component.AIIdle
	}
	return component.AIWander
}

func (s *AISystem) idleDuration() time.Duration {
	lo, hi := s.cfg.Idle.MinTime, s.cfg.Idle.MaxTime
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Int63n(int64(hi-lo)+1))
}

// wanderTarget tries up to MaxAttempts candidates around from. A candidate
// must be a different cell inside the grid and not an obstacle.
func (s *AISystem) wanderTarget(from grid.Cell) (grid.Cell, bool) {
	idx := s.world.Index
	for attempt := 1; attempt <= s.cfg.Wander.MaxAttempts; attempt++ {
		off, ok := s.scriptOffset(from, attempt)
		if !ok {
			off = s.polarOffset()
		}
		c := from.Add(off)
		if c == from || !idx.Contains(c) || idx.IsObstacle(c) {
			continue
		}
		return c, true
	}
	return grid.Cell{}, false
}

func (s *AISystem) scriptOffset(from grid.Cell, attempt int) (grid.Cell, bool) {
	if s.script == nil {
		return grid.Cell{}, false
	}
	return s.script.PickWanderOffset(scripting.WanderContext{
		X:           from.X,
		Y:           from.Y,
		Width:       s.world.Index.Width(),
		Height:      s.world.Index.Height(),
		MinDistance: s.cfg.Wander.MinDistance,
		MaxDistance: s.cfg.Wander.MaxDistance,
		Attempt:     attempt,
		R1:          s.rng.Float64(),
		R2:          s.rng.Float64(),
	})
}

// polarOffset picks a random direction and a distance in
// [MinDistance, MaxDistance], rounded to the nearest cell.
func (s *AISystem) polarOffset() grid.Cell {
	lo, hi := float64(s.cfg.Wander.MinDistance), float64(s.cfg.Wander.MaxDistance)
	dist := lo + s.rng.Float64()*(hi-lo)
	angle := s.rng.Float64() * 2 * math.Pi
	return grid.Cell{
		X: int(math.Round(math.Cos(angle) * dist)),
		Y: int(math.Round(math.Sin(angle) * dist)),
	}
}
