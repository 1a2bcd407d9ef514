// Package path computes shortest 4-directional routes on the cell grid.
package path

import (
	"container/heap"

	"github.com/l1jgo/gridwalk/internal/grid"
)

// BlockedFunc reports whether a cell cannot be entered. Cells outside the
// grid must report true.
type BlockedFunc func(grid.Cell) bool

// Manhattan is the 4-neighbour distance between two cells.
func Manhattan(a, b grid.Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// FindPath runs A* from start to goal with unit edge costs and a Manhattan
// heuristic. The result runs from start to goal inclusive.
//
// When start == goal, or when no route exists, the result is [start]: a
// caller that still has somewhere to go treats a single-cell path as
// "unreachable". The start cell itself is never tested against blocked.
func FindPath(start, goal grid.Cell, blocked BlockedFunc) []grid.Cell {
	if start == goal {
		return []grid.Cell{start}
	}

	open := &openHeap{}
	nodes := make(map[grid.Cell]*node)
	closed := make(map[grid.Cell]struct{})
	seq := 0

	first := &node{cell: start, h: Manhattan(start, goal)}
	heap.Push(open, first)
	nodes[start] = first

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.cell == goal {
			return reconstruct(current)
		}
		closed[current.cell] = struct{}{}

		for _, dir := range grid.Directions {
			next := current.cell.Add(dir)
			if _, done := closed[next]; done {
				continue
			}
			if blocked(next) {
				continue
			}

			g := current.g + 1
			n, seen := nodes[next]
			if !seen {
				seq++
				n = &node{
					cell:   next,
					g:      g,
					h:      Manhattan(next, goal),
					seq:    seq,
					parent: current,
				}
				nodes[next] = n
				heap.Push(open, n)
				continue
			}
			if g < n.g {
				n.g = g
				n.parent = current
				heap.Fix(open, n.index)
			}
		}
	}

	return []grid.Cell{start}
}

func reconstruct(n *node) []grid.Cell {
	length := n.g + 1
	out := make([]grid.Cell, length)
	for i := length - 1; n != nil; i-- {
		out[i] = n.cell
		n = n.parent
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
