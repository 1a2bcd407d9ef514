package system

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/core/ecs"
	"github.com/l1jgo/gridwalk/internal/world"
)

func spawnManual(t *testing.T, h *harness, name string, x, y int) ecs.EntityID {
	t.Helper()
	id, err := h.ws.Spawn(world.SpawnSpec{Name: name, Cell: c(x, y), Manual: true})
	require.NoError(t, err)
	return id
}

func TestInput_AppliesCommands(t *testing.T) {
	h := newHarness(t, 5, 5)
	id := spawnManual(t, h, "hero", 0, 0)
	cmds := make(chan world.Command, 4)
	in := NewInputSystem(h.ws, cmds, 0, zap.NewNop())

	cmds <- world.Command{Kind: world.CommandTarget, Name: "hero", Cell: c(3, 3)}
	in.Update(0)
	tc, ok := h.ws.Target.Get(id)
	require.True(t, ok)
	assert.Equal(t, c(3, 3), tc.Cell)

	cmds <- world.Command{Kind: world.CommandStop, Entity: id}
	in.Update(0)
	assert.False(t, h.ws.Target.Has(id))
}

func TestInput_MaxPerTick(t *testing.T) {
	h := newHarness(t, 5, 5)
	spawnManual(t, h, "hero", 0, 0)
	cmds := make(chan world.Command, 8)
	for i := 0; i < 5; i++ {
		cmds <- world.Command{Kind: world.CommandTarget, Name: "hero", Cell: c(i, 4)}
	}
	in := NewInputSystem(h.ws, cmds, 2, zap.NewNop())

	in.Update(0)
	assert.Len(t, cmds, 3)
	in.Update(0)
	assert.Len(t, cmds, 1)
	in.Update(0)
	assert.Empty(t, cmds)
}

func TestInput_RejectedCommandsAreDropped(t *testing.T) {
	h := newHarness(t, 5, 5)
	npc := h.spawn("npc", 2, 2)
	hero := spawnManual(t, h, "hero", 0, 0)
	cmds := make(chan world.Command, 4)
	cmds <- world.Command{Kind: world.CommandTarget, Name: "ghost", Cell: c(1, 1)}
	cmds <- world.Command{Kind: world.CommandMove, Entity: npc, Cell: c(2, 3)} // not manual
	cmds <- world.Command{Kind: world.CommandMove, Entity: hero, Cell: c(0, 1)}
	in := NewInputSystem(h.ws, cmds, 0, zap.NewNop())

	in.Update(0)

	assert.Empty(t, cmds)
	assert.False(t, h.ws.MoveReq.Has(npc))
	req, ok := h.ws.MoveReq.Get(hero)
	require.True(t, ok)
	assert.Equal(t, c(0, 1), req.To)
}

func TestInput_ClosedChannel(t *testing.T) {
	h := newHarness(t, 2, 2)
	cmds := make(chan world.Command)
	close(cmds)
	in := NewInputSystem(h.ws, cmds, 0, zap.NewNop())
	assert.NotPanics(t, func() { in.Update(0) })
}

type fakeReloader struct {
	calls int
	err   error
}

func (f *fakeReloader) Reload() error {
	f.calls++
	return f.err
}

func TestScriptReload_OncePerTick(t *testing.T) {
	events := make(chan string, 4)
	r := &fakeReloader{}
	s := NewScriptReloadSystem(events, r, zap.NewNop())

	s.Update(0)
	assert.Equal(t, 0, r.calls)

	events <- "ai/wander.lua"
	events <- "ai/wander.lua"
	events <- "ai/other.lua"
	s.Update(0)
	assert.Equal(t, 1, r.calls)
	assert.Empty(t, events)

	s.Update(0)
	assert.Equal(t, 1, r.calls)
}

func TestScriptReload_ErrorKeepsRunning(t *testing.T) {
	events := make(chan string, 2)
	r := &fakeReloader{err: errors.New("syntax error")}
	s := NewScriptReloadSystem(events, r, zap.NewNop())

	events <- "ai/wander.lua"
	s.Update(0)
	events <- "ai/wander.lua"
	s.Update(0)
	assert.Equal(t, 2, r.calls)
}

func TestScriptReload_ClosedChannel(t *testing.T) {
	events := make(chan string, 1)
	r := &fakeReloader{}
	s := NewScriptReloadSystem(events, r, zap.NewNop())

	events <- "ai/wander.lua"
	close(events)
	s.Update(0)
	assert.Equal(t, 1, r.calls)

	s.Update(0)
	assert.Equal(t, 1, r.calls)
}
