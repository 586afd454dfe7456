// Package gesture turns raw motion, touch and pointer events into intents:
// shake, swipe, long-press, and live press state for visual feedback.
//
// Detectors are safe for use from multiple goroutines, but callbacks are
// always invoked without internal locks held, so a callback may call back
// into the detector.
package gesture

import "time"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Button follows DOM MouseEvent.button numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

type PointerKind string

const (
	Mouse PointerKind = "mouse"
	Touch PointerKind = "touch"
)

type Phase string

const (
	PhaseDown  Phase = "down"
	PhaseUp    Phase = "up"
	PhaseLeave Phase = "leave"
)

// PointerEvent is a mouse or touch event on an element.
type PointerEvent struct {
	Phase  Phase
	Kind   PointerKind
	Button Button
	Point  Point
	At     time.Time
	Target string
}

// PointerHandler consumes pointer events for one element.
type PointerHandler interface {
	Down(PointerEvent)
	Up(PointerEvent)
	Leave(PointerEvent)
}

// Handlers is a bundle of callbacks that can be attached to an element.
type Handlers struct {
	OnDown  func(PointerEvent)
	OnUp    func(PointerEvent)
	OnLeave func(PointerEvent)
}

func (h Handlers) Down(ev PointerEvent) {
	if h.OnDown != nil {
		h.OnDown(ev)
	}
}

func (h Handlers) Up(ev PointerEvent) {
	if h.OnUp != nil {
		h.OnUp(ev)
	}
}

func (h Handlers) Leave(ev PointerEvent) {
	if h.OnLeave != nil {
		h.OnLeave(ev)
	}
}

// Element fans each pointer event out to every attached handler in
// attachment order.
type Element struct {
	handlers []PointerHandler
}

func NewElement(hs ...PointerHandler) *Element {
	return &Element{handlers: hs}
}

func (e *Element) Attach(h PointerHandler) {
	e.handlers = append(e.handlers, h)
}

func (e *Element) Dispatch(ev PointerEvent) {
	for _, h := range e.handlers {
		switch ev.Phase {
		case PhaseDown:
			h.Down(ev)
		case PhaseUp:
			h.Up(ev)
		case PhaseLeave:
			h.Leave(ev)
		}
	}
}

func isSecondaryMouse(ev PointerEvent) bool {
	return ev.Kind == Mouse && ev.Button != ButtonPrimary
}
