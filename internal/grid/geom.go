package grid

import "fmt"

// Cell is an integer tile coordinate. It is comparable and used as a map key.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Unit steps in the fixed neighbour order used by the pathfinder.
var (
	Up    = Cell{X: 0, Y: 1}
	Down  = Cell{X: 0, Y: -1}
	Left  = Cell{X: -1, Y: 0}
	Right = Cell{X: 1, Y: 0}
)

// Directions lists the four neighbour offsets: up, down, left, right.
var Directions = [4]Cell{Up, Down, Left, Right}

// Vec2 is a continuous world-space position.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) String() string { return fmt.Sprintf("(%.3f,%.3f)", v.X, v.Y) }

// LerpUnclamped blends a toward b by t without clamping t, so curves that
// leave [0,1] overshoot.
func LerpUnclamped(a, b Vec2, t float64) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
