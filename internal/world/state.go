package world

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/core/event"
	"github.com/l1jgo/gridwalk/internal/grid"
)

var (
	ErrUnknownObject = errors.New("unknown object")
	ErrDuplicateName = errors.New("duplicate object name")
	ErrCellUnknown   = errors.New("cell outside grid")
	ErrCellObstacle  = errors.New("cell is an obstacle")
	ErrCellLocked    = errors.New("cell is locked")
	ErrNotManual     = errors.New("object does not accept movement commands")
)

// State owns the ECS world, the movement component stores, the grid and
// its lock table. Single-goroutine access only (game loop).
type State struct {
	World *ecs.World
	Bus   *event.Bus
	Index *grid.Index
	Locks *grid.LockTable

	OnCell   *ecs.PtrComponentStore[component.OnCell]
	Position *ecs.PtrComponentStore[component.WorldPosition]
	Target   *ecs.PtrComponentStore[component.TargetCell]
	MoveReq  *ecs.PtrComponentStore[component.MoveRequest]
	Steps    *ecs.PtrComponentStore[component.Step]
	Actions  *ecs.PtrComponentStore[component.Action]
	Finished *ecs.PtrComponentStore[component.ActionFinished]
	Movable  *ecs.PtrComponentStore[component.Movable]
	Names    *ecs.PtrComponentStore[component.Name]
	AI       *ecs.PtrComponentStore[component.AIControlled]
	AIStates *ecs.PtrComponentStore[component.AIState]

	byName map[string]ecs.EntityID
	aoi    *AOIGrid
	log    *zap.Logger
}

// SpawnSpec describes one movable object.
type SpawnSpec struct {
	Name   string
	Cell   grid.Cell
	Manual bool
	AI     bool
	Target *grid.Cell
}

func NewState(cfg config.GridConfig, log *zap.Logger) *State {
	w := ecs.NewWorld()
	idx := grid.NewIndex(cfg, w)
	s := &State{
		World: w,
		Bus:   event.NewBus(),
		Index: idx,
		Locks: grid.NewLockTable(idx, log),

		OnCell:   ecs.NewStore[component.OnCell](w),
		Position: ecs.NewStore[component.WorldPosition](w),
		Target:   ecs.NewStore[component.TargetCell](w),
		MoveReq:  ecs.NewStore[component.MoveRequest](w),
		Steps:    ecs.NewStore[component.Step](w),
		Actions:  ecs.NewStore[component.Action](w),
		Finished: ecs.NewStore[component.ActionFinished](w),
		Movable:  ecs.NewStore[component.Movable](w),
		Names:    ecs.NewStore[component.Name](w),
		AI:       ecs.NewStore[component.AIControlled](w),
		AIStates: ecs.NewStore[component.AIState](w),

		byName: make(map[string]ecs.EntityID),
		aoi:    NewAOIGrid(),
		log:    log,
	}
	event.Subscribe(s.Bus, func(e event.CellChanged) {
		if s.Movable.Has(e.Entity) {
			s.aoi.Move(e.Entity, e.To)
		}
	})
	return s
}

// MarkObstacle flags a free cell as permanently blocked.
func (s *State) MarkObstacle(c grid.Cell) error {
	if !s.Index.Contains(c) {
		return fmt.Errorf("obstacle %s: %w", c, ErrCellUnknown)
	}
	if s.Locks.IsLocked(c) {
		return fmt.Errorf("obstacle %s: %w", c, ErrCellLocked)
	}
	s.Index.MarkObstacle(c)
	return nil
}

// Spawn creates a movable object and locks its cell as occupancy.
func (s *State) Spawn(spec SpawnSpec) (ecs.EntityID, error) {
	if spec.Name != "" {
		if _, dup := s.byName[spec.Name]; dup {
			return 0, fmt.Errorf("spawn %q: %w", spec.Name, ErrDuplicateName)
		}
	}
	switch {
	case !s.Index.Contains(spec.Cell):
		return 0, fmt.Errorf("spawn %q at %s: %w", spec.Name, spec.Cell, ErrCellUnknown)
	case s.Index.IsObstacle(spec.Cell):
		return 0, fmt.Errorf("spawn %q at %s: %w", spec.Name, spec.Cell, ErrCellObstacle)
	case !s.Locks.TryLock(spec.Cell):
		return 0, fmt.Errorf("spawn %q at %s: %w", spec.Name, spec.Cell, ErrCellLocked)
	}

	id := s.World.CreateEntity()
	s.OnCell.Set(id, &component.OnCell{Cell: spec.Cell})
	s.Position.Set(id, &component.WorldPosition{Pos: s.Index.WorldOf(spec.Cell)})
	s.Movable.Set(id, &component.Movable{Manual: spec.Manual})
	if spec.Name != "" {
		s.Names.Set(id, &component.Name{Value: spec.Name})
		s.byName[spec.Name] = id
	}
	if spec.AI {
		s.AI.Set(id, &component.AIControlled{})
	}
	if spec.Target != nil {
		s.SetTarget(id, *spec.Target)
	}
	s.aoi.Add(id, spec.Cell)

	s.log.Debug("object spawned",
		zap.Stringer("entity", id),
		zap.String("name", spec.Name),
		zap.Stringer("cell", spec.Cell))
	return id, nil
}

// Despawn releases every lock the object holds and queues it for
// destruction at the end of the tick.
func (s *State) Despawn(id ecs.EntityID) bool {
	if !s.World.Alive(id) {
		return false
	}
	if on, ok := s.OnCell.Get(id); ok {
		s.Locks.Unlock(on.Cell)
	}
	s.aoi.Remove(id)
	if step, ok := s.Steps.Get(id); ok {
		s.Locks.Unlock(step.NewCell)
	}
	if n, ok := s.Names.Get(id); ok {
		delete(s.byName, n.Value)
	}
	// Keep later systems in this tick from acting on it.
	s.Movable.Remove(id)
	s.Target.Remove(id)
	s.MoveReq.Remove(id)
	s.Steps.Remove(id)
	s.Actions.Remove(id)
	s.Finished.Remove(id)
	s.World.MarkForDestruction(id)
	return true
}

// SetTarget gives an object a long-range destination, replacing any prior
// one. Targeting the current cell is ignored.
func (s *State) SetTarget(id ecs.EntityID, c grid.Cell) bool {
	on, ok := s.movable(id)
	if !ok {
		return false
	}
	if on.Cell == c {
		return false
	}
	s.Target.Set(id, &component.TargetCell{Cell: c})
	return true
}

func (s *State) ClearTarget(id ecs.EntityID) {
	s.Target.Remove(id)
}

// RequestMove queues a direct one-step move from the current cell to c,
// replacing any request not yet consumed.
func (s *State) RequestMove(id ecs.EntityID, c grid.Cell) bool {
	on, ok := s.movable(id)
	if !ok {
		return false
	}
	s.MoveReq.Set(id, &component.MoveRequest{From: on.Cell, To: c})
	return true
}

// Lookup resolves an object by name.
func (s *State) Lookup(name string) (ecs.EntityID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

func (s *State) NameOf(id ecs.EntityID) string {
	if n, ok := s.Names.Get(id); ok {
		return n.Value
	}
	return ""
}

// Objects returns every movable object in ascending id order.
func (s *State) Objects() []ecs.EntityID {
	return append([]ecs.EntityID(nil), s.Movable.SortedIDs()...)
}

// Near returns the objects whose logical cell lies within radius
// (Chebyshev) of center, in ascending id order.
func (s *State) Near(center grid.Cell, radius int) []ecs.EntityID {
	// Region membership follows CellChanged, which lags one step.
	candidates := s.aoi.Candidates(center, radius+1)
	out := candidates[:0]
	for _, id := range candidates {
		on, ok := s.OnCell.Get(id)
		if !ok || !s.Movable.Has(id) {
			continue
		}
		if abs(on.Cell.X-center.X) <= radius && abs(on.Cell.Y-center.Y) <= radius {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *State) movable(id ecs.EntityID) (*component.OnCell, bool) {
	if !s.World.Alive(id) || !s.Movable.Has(id) {
		return nil, false
	}
	return s.OnCell.Get(id)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
