package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/internal/clock"
)

type pressRecorder struct {
	fired     []PointerEvent
	cancelled int
}

func newTestLongPress(opts ...LongPressOption) (*LongPress, *clock.Manual, *pressRecorder) {
	clk := clock.NewManual(t0)
	rec := &pressRecorder{}
	opts = append([]LongPressOption{
		WithClock(clk),
		WithOnCancel(func() { rec.cancelled++ }),
	}, opts...)
	lp := NewLongPress(func(ev PointerEvent) { rec.fired = append(rec.fired, ev) }, opts...)
	return lp, clk, rec
}

func touchDown(target string) PointerEvent {
	return PointerEvent{Phase: PhaseDown, Kind: Touch, Point: Point{X: 10, Y: 20}, Target: target}
}

func TestLongPress_DefaultDelay(t *testing.T) {
	lp := NewLongPress(nil)
	assert.Equal(t, 500*time.Millisecond, lp.Delay())
}

func TestLongPress_ReleaseBeforeDelayCancels(t *testing.T) {
	lp, clk, rec := newTestLongPress()

	lp.Down(touchDown("a"))
	clk.Advance(499 * time.Millisecond)
	lp.Up(PointerEvent{Phase: PhaseUp, Kind: Touch})
	clk.Advance(time.Second)

	assert.Empty(t, rec.fired)
	assert.Equal(t, 1, rec.cancelled)
	assert.Zero(t, clk.Pending())
}

func TestLongPress_HeldPastDelayFiresOnce(t *testing.T) {
	lp, clk, rec := newTestLongPress()

	lp.Down(touchDown("link"))
	assert.True(t, lp.Session().IsActive)
	clk.Advance(500 * time.Millisecond)

	require.Len(t, rec.fired, 1)
	assert.Equal(t, "link", rec.fired[0].Target)
	assert.False(t, lp.Session().IsActive)

	lp.Up(PointerEvent{Phase: PhaseUp, Kind: Touch})
	clk.Advance(time.Second)

	assert.Len(t, rec.fired, 1)
	assert.Zero(t, rec.cancelled, "release after fire is not a tap")
	assert.Nil(t, lp.Session().StartedAt)
}

func TestLongPress_LeaveCancels(t *testing.T) {
	lp, clk, rec := newTestLongPress()

	lp.Down(PointerEvent{Phase: PhaseDown, Kind: Mouse, Button: ButtonPrimary})
	clk.Advance(100 * time.Millisecond)
	lp.Leave(PointerEvent{Phase: PhaseLeave, Kind: Mouse})
	clk.Advance(time.Second)

	assert.Empty(t, rec.fired)
	assert.Equal(t, 1, rec.cancelled)
}

func TestLongPress_ReleaseWithoutPressIsSilent(t *testing.T) {
	lp, _, rec := newTestLongPress()
	lp.Up(PointerEvent{Phase: PhaseUp, Kind: Touch})
	lp.Leave(PointerEvent{Phase: PhaseLeave, Kind: Mouse})
	assert.Zero(t, rec.cancelled)
}

func TestLongPress_IgnoresNonPrimaryMouse(t *testing.T) {
	lp, clk, rec := newTestLongPress()

	lp.Down(PointerEvent{Phase: PhaseDown, Kind: Mouse, Button: ButtonSecondary})
	clk.Advance(time.Second)
	assert.Empty(t, rec.fired)
	assert.Zero(t, clk.Pending())

	// A right-button release does not cancel a primary press in progress.
	lp.Down(PointerEvent{Phase: PhaseDown, Kind: Mouse, Button: ButtonPrimary})
	lp.Up(PointerEvent{Phase: PhaseUp, Kind: Mouse, Button: ButtonSecondary})
	clk.Advance(500 * time.Millisecond)
	assert.Len(t, rec.fired, 1)
	assert.Zero(t, rec.cancelled)
}

func TestLongPress_SecondDownRearms(t *testing.T) {
	lp, clk, rec := newTestLongPress()

	lp.Down(touchDown("first"))
	clk.Advance(300 * time.Millisecond)
	lp.Down(touchDown("second"))
	clk.Advance(300 * time.Millisecond)
	assert.Empty(t, rec.fired)

	clk.Advance(200 * time.Millisecond)
	require.Len(t, rec.fired, 1)
	assert.Equal(t, "second", rec.fired[0].Target)
}

func TestLongPress_CloseBeforeFirePreventsCallback(t *testing.T) {
	lp, clk, rec := newTestLongPress()

	lp.Down(touchDown("a"))
	lp.Close()
	clk.Advance(time.Second)

	assert.Empty(t, rec.fired)
	assert.Zero(t, rec.cancelled)
	assert.Zero(t, clk.Pending())

	lp.Down(touchDown("b"))
	clk.Advance(time.Second)
	assert.Empty(t, rec.fired, "closed tracker ignores new presses")
}

func TestLongPress_StaleTimerDoesNotFire(t *testing.T) {
	clk := clock.NewManual(t0)
	stale := &leakyClock{Manual: clk}
	fired := 0
	lp := NewLongPress(func(PointerEvent) { fired++ }, WithClock(stale))

	lp.Down(touchDown("a"))
	lp.Up(PointerEvent{Phase: PhaseUp, Kind: Touch})
	clk.Advance(time.Second)

	assert.Zero(t, fired)
}

// leakyClock ignores Stop, like a runtime timer whose callback was already
// scheduled when Stop was called.
type leakyClock struct{ *clock.Manual }

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (c *leakyClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.Manual.AfterFunc(d, f)
	return leakyTimer{}
}

func TestLongPress_CustomDelay(t *testing.T) {
	lp, clk, rec := newTestLongPress(WithDelay(300 * time.Millisecond))

	lp.Down(touchDown("a"))
	clk.Advance(300 * time.Millisecond)
	assert.Len(t, rec.fired, 1)
}

func TestLongPress_RealClock(t *testing.T) {
	done := make(chan PointerEvent, 1)
	lp := NewLongPress(func(ev PointerEvent) { done <- ev }, WithDelay(20*time.Millisecond))
	defer lp.Close()

	lp.Down(touchDown("real"))
	select {
	case ev := <-done:
		assert.Equal(t, "real", ev.Target)
	case <-time.After(2 * time.Second):
		t.Fatal("long press did not fire")
	}
}

func TestLongPressAndPressStateShareElement(t *testing.T) {
	lp, clk, rec := newTestLongPress()
	pt := NewPressTracker(nil)
	el := NewElement(lp.Handlers(), pt.Handlers())

	el.Dispatch(PointerEvent{Phase: PhaseDown, Kind: Touch, Point: Point{X: 5, Y: 6}, Target: "a"})
	assert.Equal(t, PressState{IsPressed: true, X: 5, Y: 6}, pt.State())

	clk.Advance(600 * time.Millisecond)
	assert.Len(t, rec.fired, 1)
	assert.True(t, pt.State().IsPressed, "long-press does not clear visual state")

	el.Dispatch(PointerEvent{Phase: PhaseUp, Kind: Touch, Point: Point{X: 7, Y: 8}})
	assert.Equal(t, PressState{IsPressed: false, X: 5, Y: 6}, pt.State())
	assert.Zero(t, rec.cancelled)
}
