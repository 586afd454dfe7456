package gesture

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultSwipeThreshold   = 50.0
	DefaultSwipeMinVelocity = 0.1 // units per ms
)

type SwipeConfig struct {
	Threshold   float64
	MinVelocity float64
}

func DefaultSwipeConfig() SwipeConfig {
	return SwipeConfig{
		Threshold:   DefaultSwipeThreshold,
		MinVelocity: DefaultSwipeMinVelocity,
	}
}

// SwipeGesture is a touch that has started but not ended.
type SwipeGesture struct {
	StartPoint Point
	StartedAt  time.Time
}

// SwipeDetector classifies a touch start/end pair into a direction.
type SwipeDetector struct {
	mu      sync.Mutex
	cfg     SwipeConfig
	onSwipe func(Direction)
	pending *SwipeGesture
}

func NewSwipeDetector(cfg SwipeConfig, onSwipe func(Direction)) *SwipeDetector {
	return &SwipeDetector{cfg: cfg, onSwipe: onSwipe}
}

// Start records the beginning of a gesture, replacing any pending one.
func (d *SwipeDetector) Start(p Point, at time.Time) {
	d.mu.Lock()
	d.pending = &SwipeGesture{StartPoint: p, StartedAt: at}
	d.mu.Unlock()
}

// End resolves the pending gesture against p. It returns the direction and
// true if the gesture was a swipe. End without a pending Start does nothing.
func (d *SwipeDetector) End(p Point, at time.Time) (Direction, bool) {
	d.mu.Lock()
	g := d.pending
	d.pending = nil
	d.mu.Unlock()

	if g == nil {
		return "", false
	}
	dir, ok := Classify(g.StartPoint, p, at.Sub(g.StartedAt), d.cfg)
	if ok && d.onSwipe != nil {
		d.onSwipe(dir)
	}
	return dir, ok
}

// Cancel drops the pending gesture.
func (d *SwipeDetector) Cancel() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// Pending returns the in-flight gesture, if any.
func (d *SwipeDetector) Pending() (SwipeGesture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return SwipeGesture{}, false
	}
	return *d.pending, true
}

// Down, Up and Leave let the detector sit on an Element; only touch events
// take part in swipes.
func (d *SwipeDetector) Down(ev PointerEvent) {
	if ev.Kind == Touch {
		d.Start(ev.Point, ev.At)
	}
}

func (d *SwipeDetector) Up(ev PointerEvent) {
	if ev.Kind == Touch {
		d.End(ev.Point, ev.At)
	}
}

func (d *SwipeDetector) Leave(PointerEvent) {}

// Classify applies the swipe rules: horizontal wins over vertical, and both
// distance and velocity must strictly exceed their minimums. A gesture that
// ends before it starts is never a swipe.
func Classify(start, end Point, dt time.Duration, cfg SwipeConfig) (Direction, bool) {
	if dt < 0 {
		return "", false
	}
	dx := end.X - start.X
	dy := end.Y - start.Y

	ms := float64(dt) / float64(time.Millisecond)
	vx, vy := math.Inf(1), math.Inf(1)
	if ms > 0 {
		vx = math.Abs(dx) / ms
		vy = math.Abs(dy) / ms
	}

	switch {
	case math.Abs(dx) > cfg.Threshold && vx > cfg.MinVelocity:
		if dx > 0 {
			return Right, true
		}
		return Left, true
	case math.Abs(dy) > cfg.Threshold && vy > cfg.MinVelocity:
		if dy > 0 {
			return Down, true
		}
		return Up, true
	}
	return "", false
}
