// Package curve holds the easing curves sampled by the position
// interpolator. A curve maps action progress to a blend parameter; values
// outside [0,1] are allowed and produce overshoot.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/l1jgo/gridwalk/internal/config"
)

// Curve maps progress to an interpolation parameter.
type Curve interface {
	Evaluate(t float64) float64
}

// Func adapts a plain function to Curve.
type Func func(t float64) float64

func (f Func) Evaluate(t float64) float64 { return f(t) }

const (
	backC1 = 1.70158
	backC3 = backC1 + 1
)

var presets = map[string]Func{
	"linear": func(t float64) float64 { return t },
	"ease_in_out": func(t float64) float64 {
		return t * t * (3 - 2*t)
	},
	// Passes 1 at about t=0.6, peaks near 1.1, settles at 1.
	"ease_out_back": func(t float64) float64 {
		u := t - 1
		return 1 + backC3*u*u*u + backC1*u*u
	},
	// Height profile for a hop: 0 at both ends, 1 at the apex.
	"arc": func(t float64) float64 {
		return 4 * t * (1 - t)
	},
}

// Presets returns the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a curve from configuration. Keyframes take precedence over a
// preset name; an empty config is linear.
func New(cfg config.CurveConfig) (Curve, error) {
	if len(cfg.Keys) > 0 {
		return NewKeyframes(cfg.Keys)
	}
	if cfg.Preset == "" {
		return presets["linear"], nil
	}
	fn, ok := presets[cfg.Preset]
	if !ok {
		return nil, fmt.Errorf("unknown curve preset %q (have %v)", cfg.Preset, Presets())
	}
	return fn, nil
}

// Keyframes is a piecewise-linear curve through [time, value] points.
// Outside the first and last key the end values hold.
type Keyframes struct {
	times  []float64
	values []float64
}

func NewKeyframes(keys [][2]float64) (*Keyframes, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("curve: no keyframes")
	}
	sorted := append([][2]float64(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	k := &Keyframes{
		times:  make([]float64, len(sorted)),
		values: make([]float64, len(sorted)),
	}
	for i, kv := range sorted {
		if math.IsNaN(kv[0]) || math.IsNaN(kv[1]) {
			return nil, fmt.Errorf("curve: key %d is NaN", i)
		}
		if i > 0 && kv[0] == sorted[i-1][0] {
			return nil, fmt.Errorf("curve: duplicate key time %g", kv[0])
		}
		k.times[i] = kv[0]
		k.values[i] = kv[1]
	}
	return k, nil
}

func (k *Keyframes) Evaluate(t float64) float64 {
	last := len(k.times) - 1
	if t <= k.times[0] {
		return k.values[0]
	}
	if t >= k.times[last] {
		return k.values[last]
	}
	// First key strictly after t; i >= 1 here.
	i := sort.SearchFloat64s(k.times, t)
	if k.times[i] == t {
		return k.values[i]
	}
	t0, t1 := k.times[i-1], k.times[i]
	v0, v1 := k.values[i-1], k.values[i]
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}
