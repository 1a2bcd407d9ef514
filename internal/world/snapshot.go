package world

import (
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/grid"
)

// ObjectView is the presentation-facing state of one object.
type ObjectView struct {
	ID     ecs.EntityID `json:"id"`
	Name   string       `json:"name,omitempty"`
	Cell   grid.Cell    `json:"cell"`
	Pos    grid.Vec2    `json:"pos"`
	Moving bool         `json:"moving"`
	Target *grid.Cell   `json:"target,omitempty"`
}

// Snapshot is the per-tick output consumed by presentation.
type Snapshot struct {
	Tick    uint64       `json:"tick"`
	Objects []ObjectView `json:"objects"`
}

// Snapshot captures every movable object in ascending id order.
func (s *State) Snapshot(tick uint64) Snapshot {
	return s.snapshotOf(tick, s.Movable.SortedIDs())
}

// SnapshotNear captures only the objects within radius of center.
func (s *State) SnapshotNear(tick uint64, center grid.Cell, radius int) Snapshot {
	return s.snapshotOf(tick, s.Near(center, radius))
}

func (s *State) snapshotOf(tick uint64, ids []ecs.EntityID) Snapshot {
	snap := Snapshot{Tick: tick, Objects: make([]ObjectView, 0, len(ids))}
	for _, id := range ids {
		on, ok := s.OnCell.Get(id)
		if !ok {
			continue
		}
		v := ObjectView{
			ID:     id,
			Name:   s.NameOf(id),
			Cell:   on.Cell,
			Moving: s.Steps.Has(id),
		}
		if p, ok := s.Position.Get(id); ok {
			v.Pos = p.Pos
		}
		if t, ok := s.Target.Get(id); ok {
			c := t.Cell
			v.Target = &c
		}
		snap.Objects = append(snap.Objects, v)
	}
	return snap
}
