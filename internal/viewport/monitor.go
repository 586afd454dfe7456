// Package viewport tracks the visible viewport size and derives the
// portrait/landscape classification and on-screen keyboard inset used by
// layout.
package viewport

import (
	"fmt"
	"sync"
)

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

const DefaultKeyboardMinInset = 100.0

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// State is what layout consumes.
type State struct {
	Orientation  Orientation `json:"orientation"`
	ViewportSize Size        `json:"viewportSize"`
	IsPortrait   bool        `json:"isPortrait"`
}

// DefaultState is reported before the first observation.
func DefaultState() State {
	return State{Orientation: Portrait, IsPortrait: true}
}

// Classify derives the state for a size. A square viewport is landscape.
func Classify(s Size) State {
	portrait := s.Height > s.Width
	o := Landscape
	if portrait {
		o = Portrait
	}
	return State{Orientation: o, ViewportSize: s, IsPortrait: portrait}
}

// Resolve prefers the visual viewport and falls back to the window size per
// dimension when the visual viewport reports zero.
func Resolve(visual, window Size) Size {
	s := visual
	if s.Width == 0 {
		s.Width = window.Width
	}
	if s.Height == 0 {
		s.Height = window.Height
	}
	return s
}

// SizeSource pushes a size on every change until stop is called.
type SizeSource interface {
	ObserveSize(fn func(Size)) (stop func(), err error)
}

type Option func(*Monitor)

// WithKeyboardMinInset sets how much the height must shrink below the first
// observed height before it is treated as an on-screen keyboard.
func WithKeyboardMinInset(v float64) Option { return func(m *Monitor) { m.minInset = v } }

type Monitor struct {
	mu       sync.Mutex
	state    State
	observed bool
	baseline float64
	inset    float64
	minInset float64
	subs     map[int]func(State)
	nextID   int
	stop     func()
	closed   bool
}

func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		state:    DefaultState(),
		minInset: DefaultKeyboardMinInset,
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe starts watching src. A nil source (no viewport, e.g. a headless
// render) leaves the monitor at its default state.
func (m *Monitor) Observe(src SizeSource) error {
	if src == nil {
		return nil
	}

	m.mu.Lock()
	if m.closed || m.stop != nil {
		m.mu.Unlock()
		return fmt.Errorf("viewport monitor already observing or closed")
	}
	m.mu.Unlock()

	stop, err := src.ObserveSize(m.Update)
	if err != nil {
		if stop != nil {
			stop()
		}
		return fmt.Errorf("observe viewport: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.stop != nil {
		if stop != nil {
			stop()
		}
		return fmt.Errorf("viewport monitor already observing or closed")
	}
	if stop == nil {
		stop = func() {}
	}
	m.stop = stop
	return nil
}

// Update records a new size and notifies subscribers.
func (m *Monitor) Update(s Size) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if !m.observed {
		m.observed = true
		m.baseline = s.Height
	}
	m.inset = 0
	if shrink := m.baseline - s.Height; shrink > m.minInset {
		m.inset = shrink
	}
	m.state = Classify(s)
	st := m.state
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// KeyboardInset returns how far the viewport has shrunk below its initial
// height when that exceeds the minimum inset, else 0. Layout pads the bottom
// by this amount.
func (m *Monitor) KeyboardInset() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inset
}

// Subscribe registers fn for state changes and returns its cancel func.
func (m *Monitor) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Close stops observing and drops all subscribers.
func (m *Monitor) Close() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.closed = true
	m.subs = make(map[int]func(State))
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
}
