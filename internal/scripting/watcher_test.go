package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher_ReportsLuaChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(zap.NewNop(), dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	target := filepath.Join(dir, "wander.lua")
	require.NoError(t, os.WriteFile(target, []byte("-- v1"), 0o644))

	select {
	case name := <-w.Events:
		assert.Equal(t, target, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for .lua write")
	}
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	w, err := NewWatcher(zap.NewNop(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Events
	assert.False(t, open)
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(zap.NewNop(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestIsScriptFile(t *testing.T) {
	assert.True(t, isScriptFile("a/b/wander.LUA"))
	assert.False(t, isScriptFile("a/b/wander.lua.swp"))
}
