package gesture

import "sync"

// PressState is the live pressed flag and last pointer position, used for
// visual feedback such as a ripple origin.
type PressState struct {
	IsPressed bool    `json:"isPressed"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// PressTracker updates PressState synchronously on every pointer event. It
// carries no timers.
type PressTracker struct {
	mu       sync.Mutex
	state    PressState
	onChange func(PressState)
}

func NewPressTracker(onChange func(PressState)) *PressTracker {
	return &PressTracker{onChange: onChange}
}

func (t *PressTracker) Down(ev PointerEvent) {
	t.set(PressState{IsPressed: true, X: ev.Point.X, Y: ev.Point.Y})
}

func (t *PressTracker) Up(PointerEvent) { t.release() }

func (t *PressTracker) Leave(PointerEvent) { t.release() }

func (t *PressTracker) State() PressState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *PressTracker) Handlers() Handlers {
	return Handlers{OnDown: t.Down, OnUp: t.Up, OnLeave: t.Leave}
}

func (t *PressTracker) release() {
	t.mu.Lock()
	s := t.state
	t.mu.Unlock()
	if !s.IsPressed {
		return
	}
	s.IsPressed = false
	t.set(s)
}

func (t *PressTracker) set(s PressState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	if t.onChange != nil {
		t.onChange(s)
	}
}
