package path

import "github.com/l1jgo/gridwalk/internal/grid"

// node is one entry of the A* open set.
type node struct {
	cell   grid.Cell
	g      int // cost from start
	h      int // Manhattan distance to goal
	seq    int // discovery order, last tie-break
	parent *node
	index  int // position in openHeap, -1 once popped
}

func (n *node) f() int { return n.g + n.h }

// openHeap is a binary min-heap over f, used through container/heap. Each
// node tracks its own index so a decrease-key is a heap.Fix, not a re-insert.
//
// Ties on f prefer the smaller h (the node closer to the goal), then the
// node discovered first. With the fixed neighbour order this makes the
// returned path independent of map iteration.
type openHeap []*node

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if fa, fb := a.f(), b.f(); fa != fb {
		return fa < fb
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *openHeap) Pop() any {
	old := *h
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*h = old[:last]
	return n
}
