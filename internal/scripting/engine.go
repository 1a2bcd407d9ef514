package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/grid"
)

// Engine wraps a single gopher-lua VM for behaviour hooks.
// Single-goroutine access only (game loop). Reload swaps the VM in place.
type Engine struct {
	dir string
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts under dir/ai.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := &Engine{dir: scriptsDir, log: log}
	vm, err := e.load()
	if err != nil {
		return nil, err
	}
	e.vm = vm
	return e, nil
}

func (e *Engine) load() (*lua.LState, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	p := filepath.Join(e.dir, "ai")
	if err := loadDir(vm, p, e.log); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load ai scripts: %w", err)
	}
	return vm, nil
}

// loadDir loads all .lua files in a directory.
func loadDir(vm *lua.LState, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reload rebuilds the VM from disk. On error the running VM is kept.
func (e *Engine) Reload() error {
	vm, err := e.load()
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	e.log.Info("lua scripts reloaded", zap.String("dir", e.dir))
	return nil
}

// WanderContext is the input of pick_wander_offset. R1 and R2 are uniform
// draws in [0,1) from the simulation's seeded source so scripts stay
// deterministic.
type WanderContext struct {
	X, Y        int
	Width       int
	Height      int
	MinDistance int
	MaxDistance int
	Attempt     int
	R1, R2      float64
}

// PickWanderOffset calls Lua pick_wander_offset(ctx), which returns a table
// {dx=, dy=} or nil. ok is false when the function is missing, fails, or
// returns nothing.
func (e *Engine) PickWanderOffset(ctx WanderContext) (off grid.Cell, ok bool) {
	fn := e.vm.GetGlobal("pick_wander_offset")
	if fn == lua.LNil {
		return grid.Cell{}, false
	}

	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("width", lua.LNumber(ctx.Width))
	t.RawSetString("height", lua.LNumber(ctx.Height))
	t.RawSetString("min_distance", lua.LNumber(ctx.MinDistance))
	t.RawSetString("max_distance", lua.LNumber(ctx.MaxDistance))
	t.RawSetString("attempt", lua.LNumber(ctx.Attempt))
	t.RawSetString("r1", lua.LNumber(ctx.R1))
	t.RawSetString("r2", lua.LNumber(ctx.R2))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua pick_wander_offset error", zap.Error(err))
		return grid.Cell{}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, isTable := result.(*lua.LTable)
	if !isTable {
		return grid.Cell{}, false
	}
	return grid.Cell{X: lInt(rt, "dx"), Y: lInt(rt, "dy")}, true
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
