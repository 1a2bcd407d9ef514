package data

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/gridwalk/internal/grid"
	"github.com/l1jgo/gridwalk/internal/world"
)

// SpawnEntry places one movable object.
type SpawnEntry struct {
	Name   string     `yaml:"name"`
	X      int        `yaml:"x"`
	Y      int        `yaml:"y"`
	Manual bool       `yaml:"manual"`
	AI     bool       `yaml:"ai"`
	Target *grid.Cell `yaml:"target"`
}

func (e SpawnEntry) Cell() grid.Cell { return grid.Cell{X: e.X, Y: e.Y} }

// Scenario is the initial world: obstacles and spawns.
//
// Layout rows are drawn top-down: the first row is the highest y. '#' marks
// an obstacle; any other character is a free cell.
type Scenario struct {
	Layout    string       `yaml:"layout"`
	Obstacles []grid.Cell  `yaml:"obstacles"`
	Spawns    []SpawnEntry `yaml:"spawns"`
}

// LoadScenario loads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := ParseScenario(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	seen := make(map[string]bool, len(sc.Spawns))
	var errs []error
	for i, s := range sc.Spawns {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("spawn %d: missing name", i))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("spawn %d: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ObstacleCells returns the layout obstacles followed by the listed ones.
func (sc *Scenario) ObstacleCells() []grid.Cell {
	var out []grid.Cell
	rows := layoutRows(sc.Layout)
	for r, row := range rows {
		y := len(rows) - 1 - r
		for x, ch := range row {
			if ch == '#' {
				out = append(out, grid.Cell{X: x, Y: y})
			}
		}
	}
	return append(out, sc.Obstacles...)
}

func layoutRows(layout string) []string {
	var rows []string
	for _, line := range strings.Split(layout, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows
}

// Apply marks obstacles then spawns every object. Objects with a saved
// cell in restore are placed first; a saved cell that can no longer be
// used falls back to the scenario cell. A scenario cell already taken by a
// restored object is skipped with a warning.
func (sc *Scenario) Apply(ws *world.State, restore map[string]grid.Cell, log *zap.Logger) error {
	for _, c := range sc.ObstacleCells() {
		if err := ws.MarkObstacle(c); err != nil {
			return err
		}
	}

	placed := make(map[string]bool, len(restore))
	taken := make(map[grid.Cell]string, len(restore))
	for _, s := range sc.Spawns {
		saved, ok := restore[s.Name]
		if !ok {
			continue
		}
		if _, err := ws.Spawn(s.spec(saved)); err != nil {
			log.Warn("scenario: saved cell rejected, using spawn cell",
				zap.String("name", s.Name), zap.Stringer("saved", saved), zap.Error(err))
			continue
		}
		placed[s.Name] = true
		taken[saved] = s.Name
	}

	for _, s := range sc.Spawns {
		if placed[s.Name] {
			continue
		}
		if holder, ok := taken[s.Cell()]; ok {
			log.Warn("scenario: spawn cell held by a restored object, skipped",
				zap.String("name", s.Name), zap.Stringer("cell", s.Cell()), zap.String("holder", holder))
			continue
		}
		if _, err := ws.Spawn(s.spec(s.Cell())); err != nil {
			return err
		}
	}
	return nil
}

func (e SpawnEntry) spec(at grid.Cell) world.SpawnSpec {
	return world.SpawnSpec{
		Name:   e.Name,
		Cell:   at,
		Manual: e.Manual,
		AI:     e.AI,
		Target: e.Target,
	}
}
