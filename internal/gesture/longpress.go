package gesture

import (
	"sync"
	"time"

	"framecore/internal/clock"
)

const DefaultLongPressDelay = 500 * time.Millisecond

// PressSession is the state of one press from down to release.
type PressSession struct {
	StartedAt *time.Time
	IsActive  bool
}

type LongPressOption func(*LongPress)

func WithDelay(d time.Duration) LongPressOption {
	return func(l *LongPress) {
		if d > 0 {
			l.delay = d
		}
	}
}

// WithOnCancel sets the callback for a press released before the delay,
// i.e. a tap.
func WithOnCancel(fn func()) LongPressOption { return func(l *LongPress) { l.onCancel = fn } }

func WithClock(c clock.Clock) LongPressOption { return func(l *LongPress) { l.clock = c } }

// LongPress arms a timer on press-down and fires onLongPress if the press is
// still held when it expires.
type LongPress struct {
	mu          sync.Mutex
	clock       clock.Clock
	delay       time.Duration
	onLongPress func(PointerEvent)
	onCancel    func()

	timer   clock.Timer
	gen     uint64
	session PressSession
	closed  bool
}

func NewLongPress(onLongPress func(PointerEvent), opts ...LongPressOption) *LongPress {
	l := &LongPress{
		clock:       clock.Real{},
		delay:       DefaultLongPressDelay,
		onLongPress: onLongPress,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LongPress) Delay() time.Duration { return l.delay }

// Down arms the timer. Non-primary mouse buttons are ignored so a right
// click is left to the context-menu handler.
func (l *LongPress) Down(ev PointerEvent) {
	if isSecondaryMouse(ev) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.stopLocked()

	l.gen++
	gen := l.gen
	started := l.clock.Now()
	l.session = PressSession{StartedAt: &started, IsActive: true}
	l.timer = l.clock.AfterFunc(l.delay, func() { l.fire(gen, ev) })
}

func (l *LongPress) Up(ev PointerEvent) {
	if isSecondaryMouse(ev) {
		return
	}
	l.release()
}

func (l *LongPress) Leave(PointerEvent) { l.release() }

// Session returns the current press session.
func (l *LongPress) Session() PressSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// Handlers returns the handler bundle for attaching to an element.
func (l *LongPress) Handlers() Handlers {
	return Handlers{OnDown: l.Down, OnUp: l.Up, OnLeave: l.Leave}
}

// Close cancels any pending timer. No callback fires after Close returns.
func (l *LongPress) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.gen++
	l.stopLocked()
	l.session = PressSession{}
}

func (l *LongPress) fire(gen uint64, ev PointerEvent) {
	l.mu.Lock()
	if l.closed || gen != l.gen || !l.session.IsActive {
		l.mu.Unlock()
		return
	}
	// The press stays down but is resolved; release must not cancel it.
	l.session.IsActive = false
	l.timer = nil
	l.mu.Unlock()

	if l.onLongPress != nil {
		l.onLongPress(ev)
	}
}

func (l *LongPress) release() {
	l.mu.Lock()
	pending := l.session.IsActive
	l.gen++
	l.stopLocked()
	l.session = PressSession{}
	closed := l.closed
	l.mu.Unlock()

	if pending && !closed && l.onCancel != nil {
		l.onCancel()
	}
}

func (l *LongPress) stopLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
