package world

import (
	"fmt"

	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/grid"
)

type CommandKind uint8

const (
	CommandMove   CommandKind = iota + 1 // direct move to Cell
	CommandStep                          // direct move by the offset in Cell
	CommandTarget                        // seek toward Cell
	CommandStop                          // drop the target
	CommandDespawn                       // remove the object, releasing its cells
)

var commandNames = map[CommandKind]string{
	CommandMove:    "move",
	CommandStep:    "step",
	CommandTarget:  "target",
	CommandStop:    "stop",
	CommandDespawn: "despawn",
}

func (k CommandKind) String() string {
	if n, ok := commandNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseCommandKind maps a wire name back to its kind.
func ParseCommandKind(name string) (CommandKind, bool) {
	for k, n := range commandNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Command is an inbound request from a producer outside the game loop.
// The object is addressed by Entity, or by Name when Entity is zero.
type Command struct {
	Kind   CommandKind
	Entity ecs.EntityID
	Name   string
	Cell   grid.Cell
}

// Apply routes a command to the matching State operation. Movement
// commands are accepted only for manual objects; AI and scripted objects
// are driven by their own producers. Errors are rejections; a command that
// is valid but ignored (self-target) is not an error.
func (s *State) Apply(cmd Command) error {
	id := cmd.Entity
	if id.IsZero() {
		var ok bool
		if id, ok = s.Lookup(cmd.Name); !ok {
			return fmt.Errorf("%s %q: %w", cmd.Kind, cmd.Name, ErrUnknownObject)
		}
	}
	if !s.World.Alive(id) || !s.Movable.Has(id) {
		return fmt.Errorf("%s %s: %w", cmd.Kind, id, ErrUnknownObject)
	}
	if cmd.Kind == CommandDespawn {
		s.Despawn(id)
		return nil
	}

	if mv, _ := s.Movable.Get(id); !mv.Manual {
		return fmt.Errorf("%s %s: %w", cmd.Kind, id, ErrNotManual)
	}
	switch cmd.Kind {
	case CommandMove:
		s.RequestMove(id, cmd.Cell)
	case CommandStep:
		if !isUnitStep(cmd.Cell) {
			return fmt.Errorf("step %s: offset %s is not a unit step", id, cmd.Cell)
		}
		on, _ := s.OnCell.Get(id)
		s.RequestMove(id, on.Cell.Add(cmd.Cell))
	case CommandTarget:
		s.SetTarget(id, cmd.Cell)
	case CommandStop:
		s.ClearTarget(id)
	default:
		return fmt.Errorf("command kind %d: unsupported", cmd.Kind)
	}
	return nil
}

func isUnitStep(d grid.Cell) bool {
	for _, dir := range grid.Directions {
		if d == dir {
			return true
		}
	}
	return false
}
