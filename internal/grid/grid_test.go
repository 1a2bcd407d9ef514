package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
)

func newTestIndex(t *testing.T, cw, ch float64, w, h int) (*Index, *LockTable) {
	t.Helper()
	idx := NewIndex(config.GridConfig{CellWidth: cw, CellHeight: ch, Width: w, Height: h}, ecs.NewWorld())
	return idx, NewLockTable(idx, zap.NewNop())
}

func TestIndex_RoundTrip(t *testing.T) {
	for _, size := range [][2]float64{{1, 1}, {2, 2}, {0.32, 0.5}, {1.7, 0.1}} {
		idx, _ := newTestIndex(t, size[0], size[1], 12, 9)
		for x := 0; x < idx.Width(); x++ {
			for y := 0; y < idx.Height(); y++ {
				c := Cell{X: x, Y: y}
				require.Equal(t, c, idx.CellOf(idx.WorldOf(c)), "cell size %v", size)
				w := idx.WorldOf(c)
				require.Equal(t, w, idx.WorldOf(idx.CellOf(w)))
			}
		}
	}
}

func TestIndex_CellOfRoundsToNearest(t *testing.T) {
	idx, _ := newTestIndex(t, 2, 2, 5, 5)
	tests := []struct {
		in   Vec2
		want Cell
	}{
		{Vec2{X: 0.9, Y: 0.9}, Cell{X: 0, Y: 0}},
		{Vec2{X: 1.1, Y: 2.9}, Cell{X: 1, Y: 1}},
		{Vec2{X: 3.2, Y: 4.0}, Cell{X: 2, Y: 2}},
		{Vec2{X: -0.6, Y: -3.1}, Cell{X: 0, Y: -2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, idx.CellOf(tt.in), "CellOf(%v)", tt.in)
	}
}

func TestIndex_LookupOutsideRectangle(t *testing.T) {
	idx, _ := newTestIndex(t, 1, 1, 3, 3)
	assert.Equal(t, 9, idx.Len())

	_, ok := idx.Lookup(Cell{X: 2, Y: 2})
	assert.True(t, ok)
	for _, c := range []Cell{{X: 3, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 3}} {
		_, ok := idx.Lookup(c)
		assert.False(t, ok, "%v", c)
		assert.True(t, idx.Blocked(c), "%v", c)
		assert.False(t, idx.MarkObstacle(c))
	}
}

func TestIndex_LookupDistinctEntities(t *testing.T) {
	idx, _ := newTestIndex(t, 1, 1, 2, 2)
	seen := map[ecs.EntityID]bool{}
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			id, ok := idx.Lookup(Cell{X: x, Y: y})
			require.True(t, ok)
			require.False(t, seen[id])
			seen[id] = true
		}
	}
}

func TestIndex_Obstacle(t *testing.T) {
	idx, locks := newTestIndex(t, 1, 1, 3, 3)
	c := Cell{X: 1, Y: 1}
	require.True(t, idx.MarkObstacle(c))
	assert.True(t, idx.IsObstacle(c))
	assert.True(t, idx.Blocked(c))
	assert.False(t, locks.IsLocked(c), "obstacle and lock are separate flags")
}

func TestLockTable_Exclusive(t *testing.T) {
	_, locks := newTestIndex(t, 1, 1, 3, 3)
	c := Cell{X: 1, Y: 0}

	require.True(t, locks.TryLock(c))
	assert.False(t, locks.TryLock(c), "second claim must fail")
	assert.True(t, locks.IsLocked(c))
	assert.Equal(t, 1, locks.LockedCount())

	locks.Unlock(c)
	assert.False(t, locks.IsLocked(c))
	assert.True(t, locks.TryLock(c), "free again after unlock")
}

func TestLockTable_UnknownAndIdempotent(t *testing.T) {
	idx, locks := newTestIndex(t, 1, 1, 3, 3)
	outside := Cell{X: 7, Y: 7}

	assert.False(t, locks.TryLock(outside))
	locks.Unlock(outside)
	assert.Equal(t, 0, locks.LockedCount())

	c := Cell{X: 0, Y: 0}
	locks.Unlock(c)
	locks.Unlock(c)
	assert.False(t, locks.IsLocked(c))

	require.True(t, locks.TryLock(c))
	assert.True(t, idx.Blocked(c))
}

func TestLerpUnclamped(t *testing.T) {
	a, b := Vec2{X: 0, Y: 0}, Vec2{X: 2, Y: -4}
	assert.Equal(t, Vec2{X: 1, Y: -2}, LerpUnclamped(a, b, 0.5))

	over := LerpUnclamped(a, b, 1.1)
	assert.InDelta(t, 2.2, over.X, 1e-9)
	assert.InDelta(t, -4.4, over.Y, 1e-9)

	under := LerpUnclamped(a, b, -0.1)
	assert.InDelta(t, -0.2, under.X, 1e-9)
	assert.InDelta(t, 0.4, under.Y, 1e-9)
}
