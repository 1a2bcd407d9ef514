package grid

import (
	"math"

	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/ecs"
)

// cellRecord is the per-cell occupancy state. Only this package touches it:
// obstacle through Index.MarkObstacle, locked through LockTable.
type cellRecord struct {
	entity   ecs.EntityID
	obstacle bool
	locked   bool
}

// Index maps cell coordinates to world coordinates and to the cell record
// entity. It is populated once for the configured rectangle; cells outside
// it have no entry.
// Accessed only from the game loop goroutine; no locks.
type Index struct {
	cellWidth  float64
	cellHeight float64
	width      int
	height     int
	cells      map[Cell]*cellRecord
}

// NewIndex creates one cell entity per cell of the width×height rectangle.
func NewIndex(cfg config.GridConfig, w *ecs.World) *Index {
	idx := &Index{
		cellWidth:  cfg.CellWidth,
		cellHeight: cfg.CellHeight,
		width:      cfg.Width,
		height:     cfg.Height,
		cells:      make(map[Cell]*cellRecord, cfg.Width*cfg.Height),
	}
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			idx.cells[Cell{X: x, Y: y}] = &cellRecord{entity: w.CreateEntity()}
		}
	}
	return idx
}

// CellOf rounds a world position to the nearest cell.
func (g *Index) CellOf(p Vec2) Cell {
	return Cell{
		X: int(math.Round(p.X / g.cellWidth)),
		Y: int(math.Round(p.Y / g.cellHeight)),
	}
}

// WorldOf returns the world position of a cell's origin.
func (g *Index) WorldOf(c Cell) Vec2 {
	return Vec2{
		X: float64(c.X) * g.cellWidth,
		Y: float64(c.Y) * g.cellHeight,
	}
}

// Lookup returns the entity representing the cell.
func (g *Index) Lookup(c Cell) (ecs.EntityID, bool) {
	rec, ok := g.cells[c]
	if !ok {
		return 0, false
	}
	return rec.entity, true
}

func (g *Index) Contains(c Cell) bool {
	_, ok := g.cells[c]
	return ok
}

func (g *Index) Width() int  { return g.width }
func (g *Index) Height() int { return g.height }
func (g *Index) Len() int    { return len(g.cells) }

// MarkObstacle flags a cell as permanently unusable. Returns false for
// cells outside the grid.
func (g *Index) MarkObstacle(c Cell) bool {
	rec, ok := g.cells[c]
	if !ok {
		return false
	}
	rec.obstacle = true
	return true
}

func (g *Index) IsObstacle(c Cell) bool {
	rec, ok := g.cells[c]
	return ok && rec.obstacle
}

// Blocked reports whether a cell cannot be entered: outside the grid,
// an obstacle, or locked by another claimant.
func (g *Index) Blocked(c Cell) bool {
	rec, ok := g.cells[c]
	if !ok {
		return true
	}
	return rec.obstacle || rec.locked
}

