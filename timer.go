package pollkit

import (
	"container/heap"
	"math"
	"time"
)

// neverInterval is the sentinel interval meaning "do not recur": adding it
// to a deadline always saturates to "no next deadline", mirroring the
// ancestor design's Duration::MAX sentinel (see the package design notes
// for why this module keeps that idiom instead of threading an optional
// duration through every call site).
const neverInterval = time.Duration(math.MaxInt64)

// Timer is a single entry in a TimerWheel: a deadline (or none, meaning
// disarmed) paired with a Notifier that fires when the deadline elapses.
type Timer struct {
	id       uint64
	ping     *Ping
	deadline *time.Time
	interval time.Duration
}

// NeverTimer returns a disarmed timer: id 0, no deadline, never inserted
// into a wheel by HandleWheel.
func NeverTimer() (*Timer, error) {
	ping, err := NewPing()
	if err != nil {
		return nil, err
	}
	return &Timer{id: 0, ping: ping}, nil
}

// Notifier returns the Timer's underlying wakeup handle.
func (t *Timer) Notifier() Notifier { return t.ping.Notifier() }

// Deadline returns the current deadline, or nil if disarmed.
func (t *Timer) Deadline() *time.Time { return t.deadline }

func (t *Timer) Register(p Poller, event Event, mode PollMode) error {
	return t.ping.Register(p, event, mode)
}
func (t *Timer) Reregister(p Poller, event Event, mode PollMode) error {
	return t.ping.Reregister(p, event, mode)
}
func (t *Timer) Deregister(p Poller) error { return t.ping.Deregister(p) }

// HandleEvent drains the Ping and, if armed, advances the deadline by the
// configured interval (saturating — neverInterval produces a nil deadline,
// disarming the timer). The caller must separately call HandleWheel to
// reinsert the timer into its wheel.
func (t *Timer) HandleEvent(p Poller, event Event) error {
	if err := t.ping.HandleEvent(p, event); err != nil {
		return err
	}
	if t.deadline != nil {
		next := addSaturating(*t.deadline, t.interval)
		t.deadline = next
	}
	return nil
}

// HandleWheel reinserts the timer into wheel at its current deadline, if
// armed. Call after HandleEvent has advanced the deadline.
func (t *Timer) HandleWheel(wheel *TimerWheel) {
	if t.deadline == nil {
		return
	}
	heap.Push(&wheel.entries, wheelEntry{deadline: *t.deadline, id: t.id, notifier: t.ping.Notifier()})
}

func addSaturating(base time.Time, interval time.Duration) *time.Time {
	if interval == neverInterval || interval < 0 {
		return nil
	}
	// time.Time.Add saturates internally for implausibly large durations;
	// checked_add's only other failure mode (overflowing the monotonic
	// reading) is not reachable through this package's public API.
	next := base.Add(interval)
	return &next
}

type wheelEntry struct {
	deadline time.Time
	id       uint64
	notifier Notifier
}

type wheelEntries []wheelEntry

func (e wheelEntries) Len() int { return len(e) }
func (e wheelEntries) Less(i, j int) bool {
	if e[i].deadline.Equal(e[j].deadline) {
		return e[i].id < e[j].id
	}
	return e[i].deadline.Before(e[j].deadline)
}
func (e wheelEntries) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *wheelEntries) Push(x any)   { *e = append(*e, x.(wheelEntry)) }
func (e *wheelEntries) Pop() any {
	old := *e
	n := len(old)
	item := old[n-1]
	*e = old[:n-1]
	return item
}

// TimerWheel is an ordered min-heap of (deadline, id) -> Notifier entries,
// the Go translation (via container/heap, in the idiom of this codebase's
// own event-loop timer scheduling) of the ancestor design's BTreeMap-keyed
// wheel.
type TimerWheel struct {
	entries wheelEntries
	lastID  uint64
}

// NewTimerWheel returns an empty wheel.
func NewTimerWheel() *TimerWheel {
	return &TimerWheel{lastID: 1}
}

func (w *TimerWheel) nextID() uint64 {
	id := w.lastID
	w.lastID++
	return id
}

// After creates a one-shot timer firing d from now.
func (w *TimerWheel) After(d time.Duration) (*Timer, error) {
	return w.At(time.Now().Add(d))
}

// At creates a one-shot timer firing at the given instant.
func (w *TimerWheel) At(deadline time.Time) (*Timer, error) {
	ping, err := NewPing()
	if err != nil {
		return nil, err
	}
	id := w.nextID()
	t := &Timer{id: id, ping: ping, deadline: &deadline, interval: neverInterval}
	heap.Push(&w.entries, wheelEntry{deadline: deadline, id: id, notifier: ping.Notifier()})
	return t, nil
}

// Interval creates a recurring timer, first firing d from now and every d
// thereafter.
func (w *TimerWheel) Interval(d time.Duration) (*Timer, error) {
	return w.IntervalAt(time.Now(), d)
}

// IntervalAt creates a recurring timer, first firing at start+d and every d
// thereafter.
func (w *TimerWheel) IntervalAt(start time.Time, d time.Duration) (*Timer, error) {
	ping, err := NewPing()
	if err != nil {
		return nil, err
	}
	deadline := start.Add(d)
	id := w.nextID()
	t := &Timer{id: id, ping: ping, deadline: &deadline, interval: d}
	heap.Push(&w.entries, wheelEntry{deadline: deadline, id: id, notifier: ping.Notifier()})
	return t, nil
}

// FireTimers notifies every timer whose deadline has elapsed as of now,
// removing them from the wheel, and returns the duration until the next
// remaining deadline.
//
// An entry whose deadline is exactly now is deliberately NOT fired on this
// call: entries are compared against the key (now, 0), and since real ids
// start at 1, an exact-now entry sorts after (now, 0) and survives to the
// next FireTimers call. This avoids double-firing exactly at a boundary
// that a caller might query from two adjacent loop iterations.
func (w *TimerWheel) FireTimers(now time.Time) (time.Duration, bool) {
	var expired []wheelEntry
	for len(w.entries) > 0 {
		top := w.entries[0]
		if top.deadline.After(now) || (top.deadline.Equal(now) && top.id >= 1) {
			break
		}
		expired = append(expired, heap.Pop(&w.entries).(wheelEntry))
	}

	for _, e := range expired {
		_ = e.notifier.Notify()
	}

	if len(w.entries) == 0 {
		return 0, false
	}
	return w.entries[0].deadline.Sub(now), true
}

// Len reports the number of armed entries currently in the wheel.
func (w *TimerWheel) Len() int { return len(w.entries) }

var _ Source = (*Timer)(nil)
