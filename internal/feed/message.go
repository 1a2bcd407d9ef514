package feed

import (
	"fmt"

	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/grid"
	"github.com/l1jgo/gridwalk/internal/world"
)

const opView = "view"

// Inbound is one client message. The object is addressed by id or name.
//
//	{"op":"target","name":"hero","x":4,"y":2}
//	{"op":"step","id":7,"x":0,"y":1}
//	{"op":"despawn","name":"rat"}
//	{"op":"view","x":10,"y":10,"radius":8}
type Inbound struct {
	Op     string `json:"op"`
	ID     uint64 `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius,omitempty"`
}

// Command converts a movement message into a world command.
func (m Inbound) Command() (world.Command, error) {
	kind, ok := world.ParseCommandKind(m.Op)
	if !ok {
		return world.Command{}, fmt.Errorf("unknown op %q", m.Op)
	}
	if m.ID == 0 && m.Name == "" {
		return world.Command{}, fmt.Errorf("%s: no id or name", m.Op)
	}
	return world.Command{
		Kind:   kind,
		Entity: ecs.EntityID(m.ID),
		Name:   m.Name,
		Cell:   grid.Cell{X: m.X, Y: m.Y},
	}, nil
}
