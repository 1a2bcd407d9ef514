package system

import (
	"time"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/core/event"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/world"
)

// FinalizeSystem commits finished steps: releases the old cell, moves the
// logical cell, drops the step with its action and marker, and raises
// CellChanged. The lock on the new cell stays held as occupancy.
// No other system writes OnCell. Phase 5 (Finalize).
type FinalizeSystem struct {
	world *world.State
}

func NewFinalizeSystem(ws *world.State) *FinalizeSystem {
	return &FinalizeSystem{world: ws}
}

func (s *FinalizeSystem) Phase() coresys.Phase { return coresys.PhaseFinalize }

func (s *FinalizeSystem) Update(_ time.Duration) {
	ws := s.world
	// Markers without a step are left for CleanupSystem to report.
	ecs.Each3(ws.Finished, ws.Steps, ws.OnCell, func(id ecs.EntityID, _ *component.ActionFinished, step *component.Step, on *component.OnCell) {
		ws.Locks.Unlock(step.OldCell)
		on.Cell = step.NewCell
		if pos, ok := ws.Position.Get(id); ok {
			pos.Pos = step.NewWorld
		}

		from, to := step.OldCell, step.NewCell
		ws.Steps.Remove(id)
		ws.Actions.Remove(id)
		ws.Finished.Remove(id)
		event.Emit(ws.Bus, event.CellChanged{Entity: id, From: from, To: to})
	})
}
