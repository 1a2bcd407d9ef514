package system

import (
	"time"

	"github.com/l1jgo/gridwalk/internal/component"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/world"
)

// ActionSystem advances every running timed action by speed×dt, then marks
// the ones that reached ActionMax as finished in the same tick. Progress is
// never clamped. Phase 3 (Action).
type ActionSystem struct {
	world *world.State
}

func NewActionSystem(ws *world.State) *ActionSystem {
	return &ActionSystem{world: ws}
}

func (s *ActionSystem) Phase() coresys.Phase { return coresys.PhaseAction }

func (s *ActionSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	actions := s.world.Actions
	finished := s.world.Finished

	ids := actions.SortedIDs()
	for _, id := range ids {
		if finished.Has(id) {
			continue
		}
		a, _ := actions.Get(id)
		a.Progress += a.Speed * sec
	}
	for _, id := range ids {
		if finished.Has(id) {
			continue
		}
		if a, _ := actions.Get(id); a.Progress >= component.ActionMax {
			finished.Set(id, &component.ActionFinished{})
		}
	}
}

