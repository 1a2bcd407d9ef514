package world

import (
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/grid"
)

// RegionSize is the edge of one AOI region in cells.
const RegionSize = 8

type regionKey struct {
	rx, ry int
}

func toRegionCoord(v int) int {
	if v < 0 {
		return (v - RegionSize + 1) / RegionSize
	}
	return v / RegionSize
}

func regionOf(c grid.Cell) regionKey {
	return regionKey{rx: toRegionCoord(c.X), ry: toRegionCoord(c.Y)}
}

// AOIGrid buckets objects by coarse region so viewport queries touch only
// the regions they overlap. Accessed only from the game loop goroutine.
type AOIGrid struct {
	regions map[regionKey]map[ecs.EntityID]struct{}
	where   map[ecs.EntityID]regionKey
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		regions: make(map[regionKey]map[ecs.EntityID]struct{}),
		where:   make(map[ecs.EntityID]regionKey),
	}
}

// Add places id in the region of c, leaving any region it was in before.
func (g *AOIGrid) Add(id ecs.EntityID, c grid.Cell) {
	k := regionOf(c)
	if old, ok := g.where[id]; ok {
		if old == k {
			return
		}
		g.Remove(id)
	}
	g.where[id] = k
	region := g.regions[k]
	if region == nil {
		region = make(map[ecs.EntityID]struct{})
		g.regions[k] = region
	}
	region[id] = struct{}{}
}

// Remove drops id from whatever region it was last placed in.
func (g *AOIGrid) Remove(id ecs.EntityID) {
	k, ok := g.where[id]
	if !ok {
		return
	}
	delete(g.where, id)
	region := g.regions[k]
	if region != nil {
		delete(region, id)
		if len(region) == 0 {
			delete(g.regions, k)
		}
	}
}

// Move updates an object's region when its cell changes.
func (g *AOIGrid) Move(id ecs.EntityID, to grid.Cell) {
	g.Add(id, to)
}

// Candidates returns every id in the regions overlapping the square of
// the given radius around center, unordered. The caller does the exact
// distance filter.
func (g *AOIGrid) Candidates(center grid.Cell, radius int) []ecs.EntityID {
	lo := regionOf(grid.Cell{X: center.X - radius, Y: center.Y - radius})
	hi := regionOf(grid.Cell{X: center.X + radius, Y: center.Y + radius})
	var out []ecs.EntityID
	for rx := lo.rx; rx <= hi.rx; rx++ {
		for ry := lo.ry; ry <= hi.ry; ry++ {
			for id := range g.regions[regionKey{rx: rx, ry: ry}] {
				out = append(out, id)
			}
		}
	}
	return out
}
