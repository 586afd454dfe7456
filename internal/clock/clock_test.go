package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_AdvanceFiresDueTimersInOrder(t *testing.T) {
	start := time.UnixMilli(1_000)
	c := NewManual(start)

	var order []string
	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "b") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(time.Second, func() { order = append(order, "c") })

	c.Advance(500 * time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestManual_SetBackwardsIsIgnored(t *testing.T) {
	start := time.UnixMilli(5_000)
	c := NewManual(start)
	fired := false
	c.AfterFunc(time.Second, func() { fired = true })

	c.Set(time.UnixMilli(1_000))
	assert.Equal(t, start, c.Now())
	assert.False(t, fired)
	assert.Equal(t, 1, c.Pending())
}

func TestManual_StopPreventsFire(t *testing.T) {
	c := NewManual(time.UnixMilli(0))
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(2 * time.Second)

	assert.False(t, fired)
	assert.Zero(t, c.Pending())
}

func TestManual_StopAfterFireReportsFalse(t *testing.T) {
	c := NewManual(time.UnixMilli(0))
	tm := c.AfterFunc(10*time.Millisecond, func() {})
	c.Advance(10 * time.Millisecond)
	assert.False(t, tm.Stop())
}

func TestManual_TimerArmedFromCallback(t *testing.T) {
	c := NewManual(time.UnixMilli(0))
	count := 0
	c.AfterFunc(10*time.Millisecond, func() {
		count++
		c.AfterFunc(10*time.Millisecond, func() { count++ })
	})

	c.Advance(25 * time.Millisecond)
	assert.Equal(t, 2, count)
}

func TestMillisRoundTrip(t *testing.T) {
	ts := time.UnixMilli(1_700_000_000_123)
	assert.Equal(t, int64(1_700_000_000_123), Millis(ts))
	assert.True(t, FromMillis(Millis(ts)).Equal(ts))
}
