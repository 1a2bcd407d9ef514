package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/world"
)

// CleanupSystem removes one-frame markers nobody consumed and flushes the
// deferred entity destruction queue at tick end. Phase 8 (Cleanup).
type CleanupSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.Finished.Each(func(id ecs.EntityID, _ *component.ActionFinished) {
		s.log.Warn("cleanup: finished marker was not consumed", zap.Stringer("entity", id))
		s.world.Finished.Remove(id)
	})
	s.world.World.FlushDestroyQueue()
}
