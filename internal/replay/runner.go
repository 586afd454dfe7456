// Package replay drives the gesture detectors and viewport monitor from a
// recorded event stream and applies their callbacks to the storage engine,
// the way the embedding frame does at runtime.
package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"framecore/internal/clock"
	"framecore/internal/errx"
	"framecore/internal/gesture"
	"framecore/internal/storage"
	"framecore/internal/viewport"
)

type OutcomeKind string

const (
	OutcomeRestore     OutcomeKind = "restore"
	OutcomeShake       OutcomeKind = "shake"
	OutcomeSnapshot    OutcomeKind = "snapshot"
	OutcomeSwipe       OutcomeKind = "swipe"
	OutcomeLongPress   OutcomeKind = "longpress"
	OutcomeTap         OutcomeKind = "tap"
	OutcomeMenu        OutcomeKind = "menu"
	OutcomeCopy        OutcomeKind = "copy"
	OutcomeLink        OutcomeKind = "link"
	OutcomeOrientation OutcomeKind = "orientation"
	OutcomeKeyboard    OutcomeKind = "keyboard"
	OutcomeStorage     OutcomeKind = "storage_error"
	OutcomeTeardown    OutcomeKind = "teardown"
)

type Outcome struct {
	At     int64       `json:"at"`
	Kind   OutcomeKind `json:"kind"`
	Detail string      `json:"detail"`
}

type Result struct {
	Events   int       `json:"events"`
	Skipped  int       `json:"skipped"`
	Outcomes []Outcome `json:"outcomes"`
	Errors   []string  `json:"errors,omitempty"`
}

// Count returns how many outcomes of kind k were recorded.
func (r *Result) Count(k OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == k {
			n++
		}
	}
	return n
}

type Options struct {
	Shake            gesture.ShakeConfig
	Swipe            gesture.SwipeConfig
	LongPressDelay   time.Duration
	KeyboardMinInset float64
	// Copy receives the URL chosen from the long-press context menu.
	Copy   func(string) error
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Shake:            gesture.DefaultShakeConfig(),
		Swipe:            gesture.DefaultSwipeConfig(),
		LongPressDelay:   gesture.DefaultLongPressDelay,
		KeyboardMinInset: viewport.DefaultKeyboardMinInset,
	}
}

type runner struct {
	ctx    context.Context
	engine *storage.Engine
	opts   Options
	logger *slog.Logger
	clk    *clock.Manual
	result *Result

	motion     *feed[gesture.MotionSample]
	sizes      *feed[viewport.Size]
	shake      *gesture.ShakeDetector
	swipe      *gesture.SwipeDetector
	press      *gesture.PressTracker
	monitor    *viewport.Monitor
	root       *gesture.Element
	elements   map[string]*gesture.Element
	longPress  []*gesture.LongPress
	lastInset  float64
	lastOrient viewport.Orientation
}

// RunFile replays the recording at path.
func RunFile(ctx context.Context, engine *storage.Engine, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	return Run(ctx, engine, f, opts)
}

// Run replays a JSON-lines recording. Events are applied in file order and
// the detectors see each event's own timestamp. All detectors are torn down
// before Run returns, so presses still held at the end never fire.
func Run(ctx context.Context, engine *storage.Engine, r io.Reader, opts Options) (*Result, error) {
	events, bad, err := ReadEvents(r)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &Result{Skipped: len(bad)}
	for _, e := range bad {
		result.Errors = append(result.Errors, e.Error())
	}
	if len(events) == 0 {
		return result, nil
	}

	rn := &runner{
		ctx:      ctx,
		engine:   engine,
		opts:     opts,
		logger:   logger,
		clk:      clock.NewManual(clock.FromMillis(events[0].At)),
		result:   result,
		elements: make(map[string]*gesture.Element),
	}
	rn.setup(capabilities(events))
	defer rn.teardown()

	rn.restore()
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rn.apply(ev)
	}
	return result, nil
}

type caps struct {
	motion   bool
	viewport bool
}

// capabilities reads the first capabilities event. Both default to present.
func capabilities(events []Event) caps {
	c := caps{motion: true, viewport: true}
	for _, ev := range events {
		if ev.Type != EventCapabilities {
			continue
		}
		if ev.Motion != nil {
			c.motion = *ev.Motion
		}
		if ev.Viewport != nil {
			c.viewport = *ev.Viewport
		}
		break
	}
	return c
}

func (rn *runner) setup(c caps) {
	rn.shake = gesture.NewShakeDetector(rn.opts.Shake, rn.onShake, rn.logger)
	if c.motion {
		rn.motion = &feed[gesture.MotionSample]{}
		if err := rn.shake.Attach(motionSource{rn.motion}); err != nil {
			rn.result.Errors = append(rn.result.Errors, err.Error())
		}
	}

	rn.swipe = gesture.NewSwipeDetector(rn.opts.Swipe, rn.onSwipe)
	rn.press = gesture.NewPressTracker(nil)
	rn.root = gesture.NewElement(rn.swipe, rn.press.Handlers())

	rn.monitor = viewport.NewMonitor(viewport.WithKeyboardMinInset(rn.opts.KeyboardMinInset))
	rn.lastOrient = rn.monitor.State().Orientation
	rn.monitor.Subscribe(rn.onViewport)
	if c.viewport {
		rn.sizes = &feed[viewport.Size]{}
		if err := rn.monitor.Observe(sizeSource{rn.sizes}); err != nil {
			rn.result.Errors = append(rn.result.Errors, err.Error())
		}
	}
}

func (rn *runner) teardown() {
	pending := 0
	for _, lp := range rn.longPress {
		if lp.Session().IsActive {
			pending++
		}
		lp.Close()
	}
	rn.shake.Close()
	rn.monitor.Close()
	rn.swipe.Cancel()
	rn.record(OutcomeTeardown, fmt.Sprintf("%d pending long-press cancelled", pending))
}

func (rn *runner) restore() {
	n, err := rn.engine.RestoreState(rn.ctx)
	if err != nil {
		rn.storageError(err)
		return
	}
	if n > 0 {
		rn.record(OutcomeRestore, fmt.Sprintf("%d links", n))
	}
}

func (rn *runner) apply(ev Event) {
	rn.clk.Set(clock.FromMillis(ev.At))
	rn.result.Events++
	at := clock.FromMillis(ev.At)
	pt := gesture.Point{X: ev.X, Y: ev.Y}

	switch ev.Type {
	case EventCapabilities:
	case EventMotion:
		rn.motion.emit(gesture.MotionSample{X: ev.X, Y: ev.Y, Z: ev.Z, CapturedAt: at})
	case EventTouchStart:
		rn.pointer(gesture.PointerEvent{Phase: gesture.PhaseDown, Kind: gesture.Touch, Point: pt, At: at, Target: ev.Target})
	case EventTouchEnd:
		rn.pointer(gesture.PointerEvent{Phase: gesture.PhaseUp, Kind: gesture.Touch, Point: pt, At: at, Target: ev.Target})
	case EventTouchCancel:
		rn.pointer(gesture.PointerEvent{Phase: gesture.PhaseLeave, Kind: gesture.Touch, Point: pt, At: at, Target: ev.Target})
	case EventMouseDown:
		rn.pointer(gesture.PointerEvent{Phase: gesture.PhaseDown, Kind: gesture.Mouse, Button: gesture.Button(ev.Button), Point: pt, At: at, Target: ev.Target})
	case EventMouseUp:
		rn.pointer(gesture.PointerEvent{Phase: gesture.PhaseUp, Kind: gesture.Mouse, Button: gesture.Button(ev.Button), Point: pt, At: at, Target: ev.Target})
	case EventMouseLeave:
		rn.pointer(gesture.PointerEvent{Phase: gesture.PhaseLeave, Kind: gesture.Mouse, Point: pt, At: at, Target: ev.Target})
	case EventContextMenu:
		rn.openMenu(ev.Target, pt)
	case EventResize:
		rn.sizes.emit(viewport.Resolve(
			viewport.Size{Width: ev.Width, Height: ev.Height},
			viewport.Size{Width: ev.WindowWidth, Height: ev.WindowHeight},
		))
	case EventLink:
		if err := rn.engine.SaveLinkWithTitle(rn.ctx, ev.URL, ev.Title); err != nil {
			rn.storageError(err)
			return
		}
		rn.record(OutcomeLink, ev.URL)
	default:
		rn.result.Events--
		rn.result.Skipped++
		rn.result.Errors = append(rn.result.Errors, fmt.Sprintf("at %d: unknown event type %q", ev.At, ev.Type))
	}
}

func (rn *runner) pointer(ev gesture.PointerEvent) {
	if ev.Target != "" {
		rn.element(ev.Target).Dispatch(ev)
	}
	rn.root.Dispatch(ev)
}

// element returns the element for a link target, creating its long-press
// handler on first use.
func (rn *runner) element(target string) *gesture.Element {
	if el, ok := rn.elements[target]; ok {
		return el
	}
	lp := gesture.NewLongPress(
		func(ev gesture.PointerEvent) {
			rn.record(OutcomeLongPress, target)
			rn.openMenu(target, ev.Point)
		},
		gesture.WithDelay(rn.opts.LongPressDelay),
		gesture.WithClock(rn.clk),
		gesture.WithOnCancel(func() { rn.onTap(target) }),
	)
	rn.longPress = append(rn.longPress, lp)
	el := gesture.NewElement(lp)
	rn.elements[target] = el
	return el
}

func (rn *runner) onShake() {
	rn.record(OutcomeShake, "")
	var last *storage.Point
	if ps := rn.press.State(); ps.X != 0 || ps.Y != 0 {
		last = &storage.Point{X: ps.X, Y: ps.Y}
	}
	snap := rn.engine.SnapshotNow(rn.ctx, last)
	if err := rn.engine.CompressAndSaveState(rn.ctx, snap); err != nil {
		rn.storageError(err)
		return
	}
	rn.record(OutcomeSnapshot, fmt.Sprintf("%d links", len(snap.RecentLinks)))
}

func (rn *runner) onSwipe(d gesture.Direction) {
	rn.record(OutcomeSwipe, string(d))
}

// onTap treats a short press on a link as opening it.
func (rn *runner) onTap(target string) {
	rn.record(OutcomeTap, target)
	if err := rn.engine.SaveLink(rn.ctx, target); err != nil {
		if errx.KindOf(err) == errx.Invalid {
			return
		}
		rn.storageError(err)
		return
	}
	rn.record(OutcomeLink, target)
}

func (rn *runner) openMenu(target string, at gesture.Point) {
	if target == "" {
		return
	}
	rn.record(OutcomeMenu, fmt.Sprintf("%s @ %.0f,%.0f", target, at.X, at.Y))
	if rn.opts.Copy == nil {
		return
	}
	if err := rn.opts.Copy(target); err != nil {
		rn.logger.Warn("copy to clipboard failed", "url", target, "error", err)
		rn.result.Errors = append(rn.result.Errors, fmt.Sprintf("copy %s: %v", target, err))
		return
	}
	rn.record(OutcomeCopy, target)
}

func (rn *runner) onViewport(s viewport.State) {
	if s.Orientation != rn.lastOrient {
		rn.lastOrient = s.Orientation
		rn.record(OutcomeOrientation, fmt.Sprintf("%s %.0fx%.0f", s.Orientation, s.ViewportSize.Width, s.ViewportSize.Height))
	}
	if inset := rn.monitor.KeyboardInset(); inset != rn.lastInset {
		rn.lastInset = inset
		rn.record(OutcomeKeyboard, fmt.Sprintf("inset %.0f", inset))
	}
}

func (rn *runner) storageError(err error) {
	rn.logger.Error("storage operation failed", "op", errx.OpOf(err), "kind", errx.KindOf(err).String(), "error", err)
	rn.record(OutcomeStorage, errx.UserMessage(err))
}

func (rn *runner) record(kind OutcomeKind, detail string) {
	rn.result.Outcomes = append(rn.result.Outcomes, Outcome{
		At:     clock.Millis(rn.clk.Now()),
		Kind:   kind,
		Detail: detail,
	})
}
