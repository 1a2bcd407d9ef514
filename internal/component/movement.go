package component

import "github.com/l1jgo/gridwalk/internal/grid"

// Movement components. Pure data, zero methods; all mutations happen in
// System functions.

// OnCell is the logical cell of a movable object. Only the step finalizer
// writes it after spawn.
type OnCell struct {
	Cell grid.Cell
}

// WorldPosition is the continuous position read by presentation.
type WorldPosition struct {
	Pos grid.Vec2
}

// TargetCell is a long-range destination followed one step per tick.
type TargetCell struct {
	Cell grid.Cell
}

// MoveRequest is a pending direct one-step move. It lives for one tick.
type MoveRequest struct {
	From grid.Cell
	To   grid.Cell
}

// Step is an in-flight move from OldCell to NewCell. While it exists the
// object holds the lock on NewCell.
type Step struct {
	OldCell  grid.Cell
	NewCell  grid.Cell
	OldWorld grid.Vec2
	NewWorld grid.Vec2
	Jump     bool
}

// ActionMax is the progress at which a timed action finishes.
const ActionMax = 1.0

// Action is a timed action. Progress is raw, never clamped.
type Action struct {
	Progress float64
	Speed    float64 // progress units per second
}

// ActionFinished marks an action that crossed ActionMax this tick.
type ActionFinished struct{}

// Movable tags objects the movement systems act on. Manual objects accept
// step commands from the feed.
type Movable struct {
	Manual bool
}

// Name is a stable human-readable key used by scenarios and persistence.
type Name struct {
	Value string
}
