package world

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/grid"
)

type ecsID = ecs.EntityID

func ids(in []ecs.EntityID) []ecs.EntityID {
	out := append([]ecs.EntityID(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestRegionCoord(t *testing.T) {
	assert.Equal(t, 0, toRegionCoord(0))
	assert.Equal(t, 0, toRegionCoord(RegionSize-1))
	assert.Equal(t, 1, toRegionCoord(RegionSize))
	assert.Equal(t, -1, toRegionCoord(-1))
	assert.Equal(t, -1, toRegionCoord(-RegionSize))
	assert.Equal(t, -2, toRegionCoord(-RegionSize-1))
}

func TestAOIGrid(t *testing.T) {
	g := NewAOIGrid()
	a, b := ecs.NewEntityID(1, 0), ecs.NewEntityID(2, 0)
	g.Add(a, grid.Cell{X: 1, Y: 1})
	g.Add(b, grid.Cell{X: 30, Y: 30})

	assert.Equal(t, []ecs.EntityID{a}, ids(g.Candidates(grid.Cell{X: 0, Y: 0}, 2)))

	g.Move(b, grid.Cell{X: 2, Y: 2})
	assert.Equal(t, []ecs.EntityID{a, b}, ids(g.Candidates(grid.Cell{X: 0, Y: 0}, 2)))

	g.Remove(a)
	g.Remove(b)
	assert.Empty(t, g.Candidates(grid.Cell{X: 0, Y: 0}, 2))
	assert.Empty(t, g.regions)
	assert.Empty(t, g.where)
}

func TestAOIGrid_RemoveUsesLastRegion(t *testing.T) {
	g := NewAOIGrid()
	a := ecs.NewEntityID(1, 0)
	g.Add(a, grid.Cell{X: 7, Y: 0})

	// The object's cell already moved on, but the region update has not
	// been applied yet.
	g.Remove(a)
	assert.Empty(t, g.regions)
	assert.Empty(t, g.Candidates(grid.Cell{X: 7, Y: 0}, 1))
}

