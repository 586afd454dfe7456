package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressTracker(t *testing.T) {
	var changes []PressState
	pt := NewPressTracker(func(s PressState) { changes = append(changes, s) })

	assert.Equal(t, PressState{}, pt.State())

	pt.Down(PointerEvent{Kind: Mouse, Point: Point{X: 12, Y: 34}})
	assert.Equal(t, PressState{IsPressed: true, X: 12, Y: 34}, pt.State())

	pt.Up(PointerEvent{Kind: Mouse, Point: Point{X: 99, Y: 99}})
	assert.Equal(t, PressState{IsPressed: false, X: 12, Y: 34}, pt.State())

	// Releasing again does not emit a change.
	pt.Leave(PointerEvent{})
	assert.Len(t, changes, 2)
}

func TestPressTracker_TouchThenLeave(t *testing.T) {
	pt := NewPressTracker(nil)
	h := pt.Handlers()

	h.Down(PointerEvent{Kind: Touch, Point: Point{X: 1, Y: 2}})
	assert.True(t, pt.State().IsPressed)
	h.Leave(PointerEvent{Kind: Touch})
	assert.False(t, pt.State().IsPressed)
}

func TestHandlers_NilCallbacksAreSafe(t *testing.T) {
	var h Handlers
	assert.NotPanics(t, func() {
		h.Down(PointerEvent{})
		h.Up(PointerEvent{})
		h.Leave(PointerEvent{})
	})
}

func TestElement_DispatchOrder(t *testing.T) {
	var order []string
	a := Handlers{OnDown: func(PointerEvent) { order = append(order, "a") }}
	b := Handlers{OnDown: func(PointerEvent) { order = append(order, "b") }}
	el := NewElement(a)
	el.Attach(b)

	el.Dispatch(PointerEvent{Phase: PhaseDown})
	el.Dispatch(PointerEvent{Phase: PhaseUp})
	assert.Equal(t, []string{"a", "b"}, order)
}
