package pollkit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/pollkit"
	"github.com/joeycumines/pollkit/internal/poller"
)

// waitForEvents performs one real Wait against the reference poller,
// failing the test if no event arrives within the timeout.
func waitForEvents(t *testing.T, p pollkit.Poller, n int) []pollkit.Event {
	t.Helper()
	buf := make([]pollkit.Event, n)
	count, err := p.Wait(buf, time.Second)
	require.NoError(t, err)
	require.NotZero(t, count, "expected at least one ready event")
	return buf[:count]
}

func TestPingDeliversAtLeastOnceThroughRealPoller(t *testing.T) {
	p, err := poller.New()
	require.NoError(t, err)
	defer p.Close()

	ping, err := pollkit.NewPing()
	require.NoError(t, err)
	defer ping.Close()

	require.NoError(t, ping.Register(p, pollkit.Event{Key: 99, Readable: true}, pollkit.Oneshot))
	require.NoError(t, ping.Notifier().Notify())

	events := waitForEvents(t, p, 4)
	require.Len(t, events, 1)
	require.Equal(t, uint64(99), events[0].Key)
	require.NoError(t, ping.HandleEvent(p, events[0]))
}

func TestPingOneshotFiresExactlyOnce(t *testing.T) {
	p, err := poller.New()
	require.NoError(t, err)
	defer p.Close()

	ping, err := pollkit.NewPing()
	require.NoError(t, err)
	defer ping.Close()

	require.NoError(t, ping.Register(p, pollkit.Event{Key: 1, Readable: true}, pollkit.Oneshot))
	require.NoError(t, ping.Notifier().Notify())
	require.NoError(t, ping.Notifier().Notify())

	events := waitForEvents(t, p, 4)
	require.Len(t, events, 1)
	require.NoError(t, ping.HandleEvent(p, events[0]))

	// No reregistration: a second notify must not surface through Wait
	// again under Oneshot semantics (the registration itself, not just
	// the OS event, has fired once).
	require.NoError(t, ping.Notifier().Notify())
	buf := make([]pollkit.Event, 4)
	count, err := p.Wait(buf, 50*time.Millisecond)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPingLevelQuietOnceDrained(t *testing.T) {
	p, err := poller.New()
	require.NoError(t, err)
	defer p.Close()

	ping, err := pollkit.NewPing()
	require.NoError(t, err)
	defer ping.Close()

	require.NoError(t, ping.Register(p, pollkit.Event{Key: 5, Readable: true}, pollkit.Level))
	require.NoError(t, ping.Notifier().Notify())

	events := waitForEvents(t, p, 4)
	require.Len(t, events, 1)
	require.NoError(t, ping.HandleEvent(p, events[0]))

	// Drained: no further readiness without another notify.
	buf := make([]pollkit.Event, 4)
	count, err := p.Wait(buf, 50*time.Millisecond)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestDeregisterSilencesFurtherEvents(t *testing.T) {
	p, err := poller.New()
	require.NoError(t, err)
	defer p.Close()

	ping, err := pollkit.NewPing()
	require.NoError(t, err)
	defer ping.Close()

	require.NoError(t, ping.Register(p, pollkit.Event{Key: 2, Readable: true}, pollkit.Level))
	require.NoError(t, ping.Deregister(p))
	// Idempotent per the Source contract.
	require.NoError(t, ping.Deregister(p))

	require.NoError(t, ping.Notifier().Notify())
	buf := make([]pollkit.Event, 4)
	count, err := p.Wait(buf, 50*time.Millisecond)
	require.NoError(t, err)
	require.Zero(t, count)
}
