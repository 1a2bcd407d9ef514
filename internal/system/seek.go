package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/core/event"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/path"
	"github.com/l1jgo/gridwalk/internal/world"
)

// SeekSystem moves objects toward their TargetCell one step at a time.
// The full route is recomputed every tick and everything past the first
// step is discarded, so new obstacles and claimed cells are routed around
// as soon as they appear. A step whose lock fails keeps the target and is
// retried next tick with no backoff. Phase 2 (Move).
type SeekSystem struct {
	world *world.State
	steps *StepController
	log   *zap.Logger
}

func NewSeekSystem(ws *world.State, steps *StepController, log *zap.Logger) *SeekSystem {
	return &SeekSystem{world: ws, steps: steps, log: log}
}

func (s *SeekSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *SeekSystem) Update(_ time.Duration) {
	s.world.Target.Each(func(id ecs.EntityID, target *component.TargetCell) {
		if s.world.Steps.Has(id) {
			return
		}
		on, ok := s.world.OnCell.Get(id)
		if !ok {
			return
		}
		if on.Cell == target.Cell {
			s.clear(id, target, event.ReasonArrived)
			return
		}
		idx := s.world.Index
		if !idx.Contains(target.Cell) || idx.IsObstacle(target.Cell) {
			s.log.Warn("seek: target outside grid or obstacle",
				zap.Stringer("entity", id), zap.Stringer("target", target.Cell))
			s.clear(id, target, event.ReasonInvalid)
			return
		}

		route := path.FindPath(on.Cell, target.Cell, idx.Blocked)
		if len(route) < 2 {
			s.log.Debug("seek: target unreachable",
				zap.Stringer("entity", id),
				zap.Stringer("from", on.Cell),
				zap.Stringer("target", target.Cell))
			s.clear(id, target, event.ReasonUnreachable)
			return
		}
		s.steps.Request(id, on.Cell, route[1])
	})
}

func (s *SeekSystem) clear(id ecs.EntityID, target *component.TargetCell, reason event.ClearReason) {
	cell := target.Cell
	s.world.Target.Remove(id)
	event.Emit(s.world.Bus, event.TargetCleared{Entity: id, Target: cell, Reason: reason})
}
