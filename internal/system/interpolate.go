package system

import (
	"time"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/curve"
	"github.com/l1jgo/gridwalk/internal/grid"
	"github.com/l1jgo/gridwalk/internal/world"
)

// InterpolateSystem places objects with a step in flight between the two
// cells, sampling the standard curve at the action's raw progress. A
// finished step snaps to the destination. Phase 4 (Interpolate).
type InterpolateSystem struct {
	world *world.State
	curve curve.Curve
}

func NewInterpolateSystem(ws *world.State, standard curve.Curve) *InterpolateSystem {
	return &InterpolateSystem{world: ws, curve: standard}
}

func (s *InterpolateSystem) Phase() coresys.Phase { return coresys.PhaseInterpolate }

func (s *InterpolateSystem) Update(_ time.Duration) {
	ecs.Each2(s.world.Steps, s.world.Position, func(id ecs.EntityID, step *component.Step, pos *component.WorldPosition) {
		if s.world.Finished.Has(id) {
			pos.Pos = step.NewWorld
			return
		}
		a, ok := s.world.Actions.Get(id)
		if !ok {
			return
		}
		pos.Pos = grid.LerpUnclamped(step.OldWorld, step.NewWorld, s.curve.Evaluate(a.Progress))
	})
}
