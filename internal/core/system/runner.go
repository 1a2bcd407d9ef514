package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. Used by tests that need to
// observe state between phases.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
