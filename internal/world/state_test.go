package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/component"
	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/event"
	"github.com/l1jgo/gridwalk/internal/grid"
)

func newTestState(t *testing.T, w, h int) *State {
	t.Helper()
	return NewState(config.GridConfig{CellWidth: 1, CellHeight: 1, Width: w, Height: h}, zap.NewNop())
}

func TestSpawn_LocksCell(t *testing.T) {
	s := newTestState(t, 3, 3)
	id, err := s.Spawn(SpawnSpec{Name: "a", Cell: grid.Cell{X: 1, Y: 2}})
	require.NoError(t, err)

	assert.True(t, s.Locks.IsLocked(grid.Cell{X: 1, Y: 2}))
	on, ok := s.OnCell.Get(id)
	require.True(t, ok)
	assert.Equal(t, grid.Cell{X: 1, Y: 2}, on.Cell)
	pos, ok := s.Position.Get(id)
	require.True(t, ok)
	assert.Equal(t, grid.Vec2{X: 1, Y: 2}, pos.Pos)

	got, ok := s.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestSpawn_Rejections(t *testing.T) {
	s := newTestState(t, 3, 3)
	require.NoError(t, s.MarkObstacle(grid.Cell{X: 2, Y: 2}))
	_, err := s.Spawn(SpawnSpec{Name: "a", Cell: grid.Cell{X: 0, Y: 0}})
	require.NoError(t, err)

	_, err = s.Spawn(SpawnSpec{Name: "a", Cell: grid.Cell{X: 1, Y: 0}})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = s.Spawn(SpawnSpec{Name: "b", Cell: grid.Cell{X: 0, Y: 0}})
	assert.ErrorIs(t, err, ErrCellLocked)

	_, err = s.Spawn(SpawnSpec{Name: "c", Cell: grid.Cell{X: 2, Y: 2}})
	assert.ErrorIs(t, err, ErrCellObstacle)

	_, err = s.Spawn(SpawnSpec{Name: "d", Cell: grid.Cell{X: 5, Y: 0}})
	assert.ErrorIs(t, err, ErrCellUnknown)

	assert.Equal(t, 1, s.Locks.LockedCount())
	assert.Equal(t, 1, s.Movable.Len())
}

func TestMarkObstacle_Rejections(t *testing.T) {
	s := newTestState(t, 3, 3)
	_, err := s.Spawn(SpawnSpec{Cell: grid.Cell{X: 1, Y: 1}})
	require.NoError(t, err)

	assert.ErrorIs(t, s.MarkObstacle(grid.Cell{X: 1, Y: 1}), ErrCellLocked)
	assert.ErrorIs(t, s.MarkObstacle(grid.Cell{X: -1, Y: 1}), ErrCellUnknown)
}

func TestDespawn_ReleasesLocks(t *testing.T) {
	s := newTestState(t, 3, 3)
	id, err := s.Spawn(SpawnSpec{Name: "a", Cell: grid.Cell{X: 0, Y: 0}})
	require.NoError(t, err)

	// Simulate an in-flight step holding the destination.
	require.True(t, s.Locks.TryLock(grid.Cell{X: 1, Y: 0}))
	s.Steps.Set(id, &component.Step{OldCell: grid.Cell{X: 0, Y: 0}, NewCell: grid.Cell{X: 1, Y: 0}})
	s.Actions.Set(id, &component.Action{Speed: 1})

	require.True(t, s.Despawn(id))
	assert.Equal(t, 0, s.Locks.LockedCount())
	assert.False(t, s.Steps.Has(id))
	assert.False(t, s.Movable.Has(id))
	_, ok := s.Lookup("a")
	assert.False(t, ok)

	assert.Equal(t, 1, s.World.FlushDestroyQueue())
	assert.False(t, s.World.Alive(id))
	assert.False(t, s.OnCell.Has(id))
	assert.False(t, s.Despawn(id))
}

func TestDespawn_AfterRegionChangeLeavesNoAOIEntry(t *testing.T) {
	s := newTestState(t, 20, 3)
	id, err := s.Spawn(SpawnSpec{Name: "a", Cell: grid.Cell{X: RegionSize - 1, Y: 0}})
	require.NoError(t, err)

	// A committed step into the next region; CellChanged not yet delivered.
	on, _ := s.OnCell.Get(id)
	from := on.Cell
	on.Cell = grid.Cell{X: RegionSize, Y: 0}
	event.Emit(s.Bus, event.CellChanged{Entity: id, From: from, To: on.Cell})

	require.True(t, s.Despawn(id))
	s.Bus.SwapBuffers()
	s.Bus.DispatchAll()

	assert.Empty(t, s.aoi.regions)
	assert.Empty(t, s.aoi.where)
	assert.Empty(t, s.Near(from, 2))
}

func TestSetTarget(t *testing.T) {
	s := newTestState(t, 3, 3)
	id, err := s.Spawn(SpawnSpec{Cell: grid.Cell{X: 0, Y: 0}})
	require.NoError(t, err)

	assert.False(t, s.SetTarget(id, grid.Cell{X: 0, Y: 0}), "self-target is ignored")
	assert.False(t, s.Target.Has(id))

	require.True(t, s.SetTarget(id, grid.Cell{X: 2, Y: 2}))
	require.True(t, s.SetTarget(id, grid.Cell{X: 2, Y: 1}))
	tc, _ := s.Target.Get(id)
	assert.Equal(t, grid.Cell{X: 2, Y: 1}, tc.Cell)

	s.ClearTarget(id)
	assert.False(t, s.Target.Has(id))
}

func TestSpawn_WithTarget(t *testing.T) {
	s := newTestState(t, 3, 3)
	target := grid.Cell{X: 2, Y: 2}
	id, err := s.Spawn(SpawnSpec{Cell: grid.Cell{X: 0, Y: 0}, Target: &target})
	require.NoError(t, err)
	tc, ok := s.Target.Get(id)
	require.True(t, ok)
	assert.Equal(t, target, tc.Cell)
}

func TestApply(t *testing.T) {
	s := newTestState(t, 4, 4)
	manual, err := s.Spawn(SpawnSpec{Name: "hero", Cell: grid.Cell{X: 1, Y: 1}, Manual: true})
	require.NoError(t, err)
	npc, err := s.Spawn(SpawnSpec{Name: "npc", Cell: grid.Cell{X: 3, Y: 3}})
	require.NoError(t, err)

	require.NoError(t, s.Apply(Command{Kind: CommandStep, Name: "hero", Cell: grid.Up}))
	req, ok := s.MoveReq.Get(manual)
	require.True(t, ok)
	assert.Equal(t, component.MoveRequest{From: grid.Cell{X: 1, Y: 1}, To: grid.Cell{X: 1, Y: 2}}, *req)

	assert.ErrorIs(t, s.Apply(Command{Kind: CommandStep, Entity: npc, Cell: grid.Left}), ErrNotManual)
	assert.Error(t, s.Apply(Command{Kind: CommandStep, Name: "hero", Cell: grid.Cell{X: 1, Y: 1}}))

	require.NoError(t, s.Apply(Command{Kind: CommandMove, Entity: manual, Cell: grid.Cell{X: 2, Y: 1}}))
	req, _ = s.MoveReq.Get(manual)
	assert.Equal(t, grid.Cell{X: 2, Y: 1}, req.To)

	require.NoError(t, s.Apply(Command{Kind: CommandTarget, Name: "hero", Cell: grid.Cell{X: 0, Y: 0}}))
	assert.True(t, s.Target.Has(manual))
	require.NoError(t, s.Apply(Command{Kind: CommandStop, Name: "hero"}))
	assert.False(t, s.Target.Has(manual))

	assert.ErrorIs(t, s.Apply(Command{Kind: CommandTarget, Name: "ghost"}), ErrUnknownObject)
}

func TestApply_MovementNeedsManualObject(t *testing.T) {
	s := newTestState(t, 4, 4)
	rat, err := s.Spawn(SpawnSpec{Name: "rat", Cell: grid.Cell{X: 3, Y: 3}, AI: true})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Apply(Command{Kind: CommandMove, Entity: rat, Cell: grid.Cell{X: 3, Y: 2}}), ErrNotManual)
	assert.False(t, s.MoveReq.Has(rat))
	assert.ErrorIs(t, s.Apply(Command{Kind: CommandTarget, Name: "rat", Cell: grid.Cell{X: 0, Y: 0}}), ErrNotManual)
	assert.False(t, s.Target.Has(rat))
	assert.ErrorIs(t, s.Apply(Command{Kind: CommandStop, Name: "rat"}), ErrNotManual)
}

func TestApply_Despawn(t *testing.T) {
	s := newTestState(t, 4, 4)
	rat, err := s.Spawn(SpawnSpec{Name: "rat", Cell: grid.Cell{X: 3, Y: 3}, AI: true})
	require.NoError(t, err)

	require.NoError(t, s.Apply(Command{Kind: CommandDespawn, Name: "rat"}))
	assert.False(t, s.Locks.IsLocked(grid.Cell{X: 3, Y: 3}))
	_, ok := s.Lookup("rat")
	assert.False(t, ok)
	assert.ErrorIs(t, s.Apply(Command{Kind: CommandDespawn, Entity: rat}), ErrUnknownObject)
}

func TestParseCommandKind(t *testing.T) {
	for _, k := range []CommandKind{CommandMove, CommandStep, CommandTarget, CommandStop, CommandDespawn} {
		got, ok := ParseCommandKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseCommandKind("jump")
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	s := newTestState(t, 4, 4)
	a, err := s.Spawn(SpawnSpec{Name: "a", Cell: grid.Cell{X: 0, Y: 0}})
	require.NoError(t, err)
	b, err := s.Spawn(SpawnSpec{Name: "b", Cell: grid.Cell{X: 3, Y: 3}})
	require.NoError(t, err)
	s.SetTarget(b, grid.Cell{X: 0, Y: 3})

	snap := s.Snapshot(7)
	assert.Equal(t, uint64(7), snap.Tick)
	require.Len(t, snap.Objects, 2)
	assert.Equal(t, a, snap.Objects[0].ID)
	assert.Equal(t, "b", snap.Objects[1].Name)
	assert.Equal(t, grid.Vec2{X: 3, Y: 3}, snap.Objects[1].Pos)
	require.NotNil(t, snap.Objects[1].Target)
	assert.Equal(t, grid.Cell{X: 0, Y: 3}, *snap.Objects[1].Target)
	assert.Nil(t, snap.Objects[0].Target)
}

func TestNear_FollowsCellChanged(t *testing.T) {
	s := newTestState(t, 32, 32)
	a, err := s.Spawn(SpawnSpec{Cell: grid.Cell{X: 2, Y: 2}})
	require.NoError(t, err)
	b, err := s.Spawn(SpawnSpec{Cell: grid.Cell{X: 20, Y: 20}})
	require.NoError(t, err)

	assert.Equal(t, []ecsID{a}, ids(s.Near(grid.Cell{X: 0, Y: 0}, 3)))
	assert.Empty(t, s.Near(grid.Cell{X: 10, Y: 10}, 2))

	// Move b next to the origin the way the finalizer does.
	on, _ := s.OnCell.Get(b)
	from := on.Cell
	on.Cell = grid.Cell{X: 3, Y: 3}
	event.Emit(s.Bus, event.CellChanged{Entity: b, From: from, To: on.Cell})
	s.Bus.SwapBuffers()
	s.Bus.DispatchAll()

	assert.Equal(t, []ecsID{a, b}, ids(s.Near(grid.Cell{X: 0, Y: 0}, 3)))
	assert.Equal(t, 2, len(s.SnapshotNear(0, grid.Cell{X: 1, Y: 1}, 2).Objects))
}
