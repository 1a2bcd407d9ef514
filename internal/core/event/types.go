package event

import (
	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/grid"
)

// CellChanged is raised by the step finalizer after an object's logical
// cell has been committed. Economy and transfer logic listen for it.
type CellChanged struct {
	Entity ecs.EntityID
	From   grid.Cell
	To     grid.Cell
}

// TargetCleared is raised when a seeker drops its target.
type TargetCleared struct {
	Entity ecs.EntityID
	Target grid.Cell
	Reason ClearReason
}

type ClearReason int

const (
	ReasonArrived ClearReason = iota
	ReasonUnreachable
	ReasonInvalid // outside the grid or an obstacle
)

func (r ClearReason) String() string {
	switch r {
	case ReasonArrived:
		return "arrived"
	case ReasonUnreachable:
		return "unreachable"
	case ReasonInvalid:
		return "invalid"
	}
	return "unknown"
}
