package pollkit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/pollkit"
)

func TestTimerWheelFiresInDeadlineOrder(t *testing.T) {
	wheel := pollkit.NewTimerWheel()
	base := time.Unix(1000, 0)

	far, err := wheel.At(base.Add(time.Hour))
	require.NoError(t, err)
	near, err := wheel.At(base.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, near)
	require.NotNil(t, far)
	assert.Equal(t, 2, wheel.Len())

	// Nothing has elapsed yet.
	next, pending := wheel.FireTimers(base)
	assert.True(t, pending)
	assert.Equal(t, time.Minute, next)
	assert.Equal(t, 2, wheel.Len())

	// Past the near deadline only.
	_, pending = wheel.FireTimers(base.Add(2 * time.Minute))
	assert.True(t, pending)
	assert.Equal(t, 1, wheel.Len())

	// Past both.
	_, pending = wheel.FireTimers(base.Add(2 * time.Hour))
	assert.False(t, pending)
	assert.Equal(t, 0, wheel.Len())
}

func TestTimerWheelExactBoundarySurvivesOneCall(t *testing.T) {
	wheel := pollkit.NewTimerWheel()
	deadline := time.Unix(2000, 0)

	_, err := wheel.At(deadline)
	require.NoError(t, err)

	// Firing exactly at the deadline must not remove the entry yet.
	_, pending := wheel.FireTimers(deadline)
	assert.True(t, pending)
	assert.Equal(t, 1, wheel.Len())

	// Only once "now" has strictly advanced past the deadline does the
	// entry fire.
	_, pending = wheel.FireTimers(deadline.Add(time.Nanosecond))
	assert.False(t, pending)
	assert.Equal(t, 0, wheel.Len())
}

func TestTimerIntervalRearmsViaHandleWheel(t *testing.T) {
	p := newMockPoller()
	wheel := pollkit.NewTimerWheel()
	start := time.Unix(3000, 0)

	timer, err := wheel.IntervalAt(start, time.Second)
	require.NoError(t, err)
	require.NoError(t, timer.Register(p, pollkit.Event{Key: 1}, pollkit.Oneshot))

	firstDeadline := *timer.Deadline()
	assert.Equal(t, start.Add(time.Second), firstDeadline)

	// Once its deadline has passed, the wheel fires the entry and removes it.
	_, pending := wheel.FireTimers(firstDeadline.Add(time.Nanosecond))
	assert.False(t, pending)
	assert.Equal(t, 0, wheel.Len())

	require.NoError(t, timer.HandleEvent(p, pollkit.Event{Key: 1}))
	assert.Equal(t, firstDeadline.Add(time.Second), *timer.Deadline())

	timer.HandleWheel(wheel)
	assert.Equal(t, 1, wheel.Len())
}

func TestNeverTimerIsDisarmed(t *testing.T) {
	timer, err := pollkit.NeverTimer()
	require.NoError(t, err)
	assert.Nil(t, timer.Deadline())

	wheel := pollkit.NewTimerWheel()
	timer.HandleWheel(wheel)
	assert.Equal(t, 0, wheel.Len(), "a disarmed timer must never be inserted into a wheel")
}
