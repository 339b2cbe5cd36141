package pollkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/pollkit"
)

func TestChannelDeliversValuesInFIFOOrder(t *testing.T) {
	p := newMockPoller()
	sender, receiver, err := pollkit.Unbounded[int]()
	require.NoError(t, err)
	require.NoError(t, receiver.Register(p, pollkit.Event{Key: 1}, pollkit.Level))

	require.NoError(t, sender.TrySend(1))
	require.NoError(t, sender.TrySend(2))
	require.NoError(t, sender.TrySend(3))

	var got []int
	for i := 0; i < 3; i++ {
		require.NoError(t, receiver.HandleEvent(p, pollkit.Event{Key: 1}))
		v, ok := receiver.Recv()
		require.True(t, ok)
		got = append(got, v)

		require.NoError(t, receiver.Reregister(p, pollkit.Event{Key: 1}, pollkit.Level))
	}

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestChannelCloseIsObservedAfterDrain(t *testing.T) {
	p := newMockPoller()
	sender, receiver, err := pollkit.Unbounded[string]()
	require.NoError(t, err)
	require.NoError(t, receiver.Register(p, pollkit.Event{Key: 1}, pollkit.Level))

	require.NoError(t, sender.TrySend("only"))
	sender.Close()

	require.NoError(t, receiver.HandleEvent(p, pollkit.Event{Key: 1}))
	v, ok := receiver.Recv()
	require.True(t, ok)
	assert.Equal(t, "only", v)
	assert.False(t, receiver.Closed())

	require.NoError(t, receiver.Reregister(p, pollkit.Event{Key: 1}, pollkit.Level))
	require.NoError(t, receiver.HandleEvent(p, pollkit.Event{Key: 1}))
	_, ok = receiver.Recv()
	assert.False(t, ok)
	assert.True(t, receiver.Closed())
}

func TestSendAfterCloseFails(t *testing.T) {
	sender, _, err := pollkit.Unbounded[int]()
	require.NoError(t, err)
	sender.Close()
	assert.ErrorIs(t, sender.TrySend(1), pollkit.ErrChannelClosed)
}
