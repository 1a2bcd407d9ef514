package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/grid"
	"github.com/l1jgo/gridwalk/internal/world"
)

// StepController claims the next cell for an object and starts the timed
// action that carries it there. It is shared by the direct-move and seek
// paths and is not a System itself.
type StepController struct {
	world *world.State
	speed float64
	jump  bool
	log   *zap.Logger
}

func NewStepController(ws *world.State, cfg config.MovementConfig, log *zap.Logger) *StepController {
	return &StepController{
		world: ws,
		speed: cfg.Speed,
		jump:  cfg.Jump,
		log:   log,
	}
}

// Request starts a step from one cell to another. It returns false and
// changes nothing when from == to, when the object already has a step, when
// the destination is an obstacle, or when the destination lock is taken.
func (c *StepController) Request(id ecs.EntityID, from, to grid.Cell) bool {
	if from == to {
		return false
	}
	if c.world.Steps.Has(id) {
		return false
	}
	if c.world.Index.IsObstacle(to) {
		c.log.Debug("step: destination is an obstacle",
			zap.Stringer("entity", id), zap.Stringer("to", to))
		return false
	}
	if !c.world.Locks.TryLock(to) {
		c.log.Debug("step: destination claimed",
			zap.Stringer("entity", id), zap.Stringer("from", from), zap.Stringer("to", to))
		return false
	}

	c.world.Steps.Set(id, &component.Step{
		OldCell:  from,
		NewCell:  to,
		OldWorld: c.world.Index.WorldOf(from),
		NewWorld: c.world.Index.WorldOf(to),
		Jump:     c.jump,
	})
	c.world.Actions.Set(id, &component.Action{Speed: c.speed})
	return true
}

// DirectMoveSystem turns pending move requests into steps, skipping the
// pathfinder. A request lives one tick: it is consumed whether or not the
// step starts. Phase 2 (Move), registered before SeekSystem.
type DirectMoveSystem struct {
	world *world.State
	steps *StepController
	log   *zap.Logger
}

func NewDirectMoveSystem(ws *world.State, steps *StepController, log *zap.Logger) *DirectMoveSystem {
	return &DirectMoveSystem{world: ws, steps: steps, log: log}
}

func (s *DirectMoveSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *DirectMoveSystem) Update(_ time.Duration) {
	s.world.MoveReq.Each(func(id ecs.EntityID, req *component.MoveRequest) {
		s.world.MoveReq.Remove(id)
		if s.world.Steps.Has(id) {
			s.log.Debug("direct move: step in flight, request dropped", zap.Stringer("entity", id))
			return
		}
		on, ok := s.world.OnCell.Get(id)
		if !ok || on.Cell != req.From {
			s.log.Debug("direct move: stale request dropped", zap.Stringer("entity", id))
			return
		}
		s.steps.Request(id, req.From, req.To)
	})
}
