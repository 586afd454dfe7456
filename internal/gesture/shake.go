package gesture

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultShakeThreshold = 15.0
	DefaultShakeThrottle  = 100 * time.Millisecond
	DefaultShakeCooldown  = 2 * time.Second
)

// MotionSample is one accelerometer reading, gravity removed.
type MotionSample struct {
	X, Y, Z    float64
	CapturedAt time.Time
}

// MotionSource delivers motion samples until the returned cancel is called.
type MotionSource interface {
	SubscribeMotion(fn func(MotionSample)) (cancel func(), err error)
}

type ShakeConfig struct {
	Threshold float64
	Throttle  time.Duration
	Cooldown  time.Duration
}

func DefaultShakeConfig() ShakeConfig {
	return ShakeConfig{
		Threshold: DefaultShakeThreshold,
		Throttle:  DefaultShakeThrottle,
		Cooldown:  DefaultShakeCooldown,
	}
}

var ErrAlreadyAttached = errors.New("detector already attached")

// ShakeDetector fires onShake when two or more axes jump past the threshold
// between consecutive accepted samples, at most once per cooldown.
type ShakeDetector struct {
	mu          sync.Mutex
	cfg         ShakeConfig
	onShake     func()
	logger      *slog.Logger
	throttle    *rate.Limiter
	last        *MotionSample
	lastFiredAt time.Time
	hasFired    bool
	cancel      func()
	closed      bool
}

func NewShakeDetector(cfg ShakeConfig, onShake func(), logger *slog.Logger) *ShakeDetector {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if cfg.Throttle > 0 {
		limit = rate.Every(cfg.Throttle)
	}
	return &ShakeDetector{
		cfg:      cfg,
		onShake:  onShake,
		logger:   logger,
		throttle: rate.NewLimiter(limit, 1),
	}
}

// Attach subscribes to src. A nil source means the platform has no motion
// sensor; Attach then does nothing.
func (d *ShakeDetector) Attach(src MotionSource) error {
	if src == nil {
		d.logger.Debug("no motion source, shake detection disabled")
		return nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.New("shake detector closed")
	}
	if d.cancel != nil {
		d.mu.Unlock()
		return ErrAlreadyAttached
	}
	d.mu.Unlock()

	cancel, err := src.SubscribeMotion(func(s MotionSample) { d.Handle(s) })
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return fmt.Errorf("subscribe motion: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.cancel != nil {
		if cancel != nil {
			cancel()
		}
		if d.closed {
			return errors.New("shake detector closed")
		}
		return ErrAlreadyAttached
	}
	if cancel == nil {
		cancel = func() {}
	}
	d.cancel = cancel
	return nil
}

// Handle processes one sample. It reports whether the shake callback fired.
func (d *ShakeDetector) Handle(s MotionSample) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	if !d.throttle.AllowN(s.CapturedAt, 1) {
		d.mu.Unlock()
		return false
	}
	if d.last == nil {
		d.last = &s
		d.mu.Unlock()
		return false
	}

	dx := math.Abs(s.X - d.last.X)
	dy := math.Abs(s.Y - d.last.Y)
	dz := math.Abs(s.Z - d.last.Z)
	d.last = &s

	fire := false
	if d.exceeds(dx, dy, dz) {
		if !d.hasFired || s.CapturedAt.Sub(d.lastFiredAt) >= d.cfg.Cooldown {
			d.hasFired = true
			d.lastFiredAt = s.CapturedAt
			fire = true
		}
	}
	d.mu.Unlock()

	if fire {
		d.logger.Debug("shake detected", "dx", dx, "dy", dy, "dz", dz)
		if d.onShake != nil {
			d.onShake()
		}
	}
	return fire
}

// exceeds requires at least two axes over the threshold so tilt or drift on
// a single axis is ignored.
func (d *ShakeDetector) exceeds(dx, dy, dz float64) bool {
	t := d.cfg.Threshold
	return (dx > t && dy > t) || (dx > t && dz > t) || (dy > t && dz > t)
}

// Close unsubscribes from the motion source. Samples handled afterwards are
// dropped. Close is idempotent.
func (d *ShakeDetector) Close() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.closed = true
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
