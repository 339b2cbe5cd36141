package pollkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/pollkit"
	"github.com/joeycumines/pollkit/internal/poller"
)

func TestPollFutureWakesOnRegister(t *testing.T) {
	p, err := poller.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	ready := false
	future := pollkit.FuncFuture[int](func() (int, bool) {
		if ready {
			return 7, true
		}
		return 0, false
	})

	pf, err := pollkit.NewPollFuture[int](future)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pf.Deregister(p) })

	_, ok := pf.Poll()
	assert.False(t, ok, "no poll has happened yet")

	// Register must wake the future at least once without an external
	// trigger, even though the future is not yet ready.
	require.NoError(t, pf.Register(p, pollkit.Event{Key: 1, Readable: true}, pollkit.Oneshot))
	events := waitForEvents(t, p, 4)
	require.Len(t, events, 1)

	ready = true
	require.NoError(t, pf.HandleEvent(p, events[0]))

	v, ok := pf.Poll()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestPollFutureLatchesReadyValue(t *testing.T) {
	p := newMockPoller()
	calls := 0
	future := pollkit.FuncFuture[int](func() (int, bool) {
		calls++
		return calls, true
	})
	pf, err := pollkit.NewPollFuture[int](future)
	require.NoError(t, err)
	require.NoError(t, pf.Register(p, pollkit.Event{Key: 1}, pollkit.Oneshot))

	require.NoError(t, pf.HandleEvent(p, pollkit.Event{Key: 1}))
	v1, ok := pf.Poll()
	require.True(t, ok)

	// Re-polling without another HandleEvent must not change the latched
	// value.
	v2, ok := pf.Poll()
	require.True(t, ok)
	assert.Equal(t, v1, v2)
}

func TestPollReadDeliversResultOnlyWhenReady(t *testing.T) {
	p := newMockPoller()
	attempt := 0
	pr, err := pollkit.NewPollRead(func(buf []byte) (int, error, bool) {
		attempt++
		if attempt < 2 {
			return 0, nil, false
		}
		copy(buf, "hi")
		return 2, nil, true
	})
	require.NoError(t, err)
	require.NoError(t, pr.Register(p, pollkit.Event{Key: 1}, pollkit.Oneshot))

	buf := make([]byte, 4)
	n, err, ready := pr.Read(buf)
	require.NoError(t, err)
	assert.False(t, ready)
	assert.Equal(t, 0, n)

	n, err, ready = pr.Read(buf)
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, 2, n)
	assert.Equal(t, "hi", string(buf[:n]))
}
