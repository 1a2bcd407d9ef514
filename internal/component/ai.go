package component

import (
	"time"

	"github.com/l1jgo/gridwalk/internal/grid"
)

// AIControlled tags objects driven by AISystem.
type AIControlled struct{}

type AIKind uint8

const (
	AIIdle AIKind = iota + 1
	AIWander
)

func (k AIKind) String() string {
	switch k {
	case AIIdle:
		return "idle"
	case AIWander:
		return "wander"
	}
	return "none"
}

// AIState is the active behaviour of an AI object. Absent means a new
// behaviour is picked next tick.
type AIState struct {
	Kind    AIKind
	Elapsed time.Duration
	MaxTime time.Duration // idle only
	Target  grid.Cell     // wander only
}
