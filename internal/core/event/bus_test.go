package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/gridwalk/internal/grid"
)

func TestBus_DeliversOnNextTickOnly(t *testing.T) {
	b := NewBus()
	var got []CellChanged
	Subscribe(b, func(ev CellChanged) { got = append(got, ev) })

	Emit(b, CellChanged{From: grid.Cell{X: 0, Y: 0}, To: grid.Cell{X: 1, Y: 0}})
	assert.Equal(t, 0, b.DispatchAll(), "nothing readable before the swap")

	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	require.Len(t, got, 1)
	assert.Equal(t, grid.Cell{X: 1, Y: 0}, got[0].To)

	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll(), "events are discarded after one dispatch")
	assert.Len(t, got, 1)
}

func TestBus_TypesAreIsolated(t *testing.T) {
	b := NewBus()
	changed, cleared := 0, 0
	Subscribe(b, func(CellChanged) { changed++ })
	Subscribe(b, func(TargetCleared) { cleared++ })

	Emit(b, TargetCleared{Reason: ReasonUnreachable})
	Emit(b, TargetCleared{Reason: ReasonArrived})
	assert.Len(t, Pending[TargetCleared](b), 2)
	assert.Empty(t, Pending[CellChanged](b))

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 0, changed)
	assert.Equal(t, 2, cleared)
}

func TestClearReason_String(t *testing.T) {
	assert.Equal(t, "unreachable", ReasonUnreachable.String())
	assert.Equal(t, "unknown", ClearReason(42).String())
}

func TestBus_DispatchOrderIsStable(t *testing.T) {
	for run := 0; run < 50; run++ {
		b := NewBus()
		var order []string
		Subscribe(b, func(CellChanged) { order = append(order, "changed") })
		Subscribe(b, func(TargetCleared) { order = append(order, "cleared") })

		// Emission order does not matter; first subscription does.
		Emit(b, TargetCleared{Reason: ReasonArrived})
		Emit(b, CellChanged{To: grid.Cell{X: 1}})
		Emit(b, TargetCleared{Reason: ReasonInvalid})

		b.SwapBuffers()
		require.Equal(t, 3, b.DispatchAll())
		require.Equal(t, []string{"changed", "cleared", "cleared"}, order)
	}
}
