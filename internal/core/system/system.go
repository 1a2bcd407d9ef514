package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput       Phase = iota // 0: drain command queues, AI producers
	PhasePreUpdate                // 1: dispatch last tick's events
	PhaseMove                     // 2: direct moves, seekers, step claims
	PhaseAction                   // 3: advance timed actions
	PhaseInterpolate              // 4: world positions of in-flight steps
	PhaseFinalize                 // 5: commit finished steps
	PhaseOutput                   // 6: publish snapshots
	PhasePersist                  // 7: batch save
	PhaseCleanup                  // 8: one-frame markers, destroy queue
)

var phaseNames = [...]string{
	"input", "pre-update", "move", "action", "interpolate",
	"finalize", "output", "persist", "cleanup",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
