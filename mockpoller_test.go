package pollkit_test

import (
	"sync"
	"time"

	"github.com/joeycumines/pollkit"
)

// mockPoller is a minimal in-memory Poller for tests that exercise Source
// contracts (registration bookkeeping, idempotent deregister) without
// needing a real OS multiplexer. It never reports readiness on its own;
// tests that need an actual wakeup drive HandleEvent directly or use the
// reference poller package instead.
type mockPoller struct {
	mu    sync.Mutex
	adds  int
	mods  int
	dels  int
	known map[pollkit.Handle]bool
}

func newMockPoller() *mockPoller {
	return &mockPoller{known: make(map[pollkit.Handle]bool)}
}

func (m *mockPoller) Add(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adds++
	m.known[h] = true
	return nil
}

func (m *mockPoller) Modify(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mods++
	return nil
}

func (m *mockPoller) Delete(h pollkit.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dels++
	delete(m.known, h)
	return nil
}

func (m *mockPoller) Wait(events []pollkit.Event, timeout time.Duration) (int, error) {
	return 0, nil
}

func (m *mockPoller) SupportsLevel() bool { return true }

func (m *mockPoller) Close() error { return nil }

// Post implements pollkit.Poster, so mockPoller can double as a stand-in
// for tests exercising WeakRef.
func (m *mockPoller) Post(packet pollkit.CompletionPacket) error { return nil }

var (
	_ pollkit.Poller = (*mockPoller)(nil)
	_ pollkit.Poster = (*mockPoller)(nil)
)
