package system

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/feed"
	"github.com/l1jgo/gridwalk/internal/world"
)

// FeedSystem publishes a snapshot to every feed client each N ticks.
// Clients with a viewport get only the objects near it. Phase 6 (Output).
type FeedSystem struct {
	world *world.State
	hub   *feed.Hub
	every uint64
	tick  uint64
	log   *zap.Logger
}

func NewFeedSystem(ws *world.State, hub *feed.Hub, every int, log *zap.Logger) *FeedSystem {
	if every < 1 {
		every = 1
	}
	return &FeedSystem{world: ws, hub: hub, every: uint64(every), log: log}
}

func (s *FeedSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *FeedSystem) Update(_ time.Duration) {
	s.tick++
	if s.tick%s.every != 0 {
		return
	}
	clients := s.hub.Clients()
	if len(clients) == 0 {
		return
	}

	var full []byte
	for _, c := range clients {
		if v := c.View(); v != nil {
			data, ok := s.encode(s.world.SnapshotNear(s.tick, v.Center, v.Radius))
			if !ok {
				return
			}
			c.Send(data)
			continue
		}
		if full == nil {
			data, ok := s.encode(s.world.Snapshot(s.tick))
			if !ok {
				return
			}
			full = data
		}
		c.Send(full)
	}
}

func (s *FeedSystem) encode(snap world.Snapshot) ([]byte, bool) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("feed: encode snapshot", zap.Error(err))
		return nil, false
	}
	return data, true
}
