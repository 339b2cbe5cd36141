package pollkit

// Future is anything with a non-blocking poll: Poll reports the ready value
// and whether the computation has finished. Once ready, further Poll calls
// may keep returning the same terminal value — callers are expected to
// stop polling after a ready result, mirroring this codebase's own
// Promise.State()/Result() pairing generalized with generics in place of
// any.
type Future[T any] interface {
	Poll() (T, bool)
}

// FuncFuture adapts a plain poll function to Future.
type FuncFuture[T any] func() (T, bool)

func (f FuncFuture[T]) Poll() (T, bool) { return f() }

// Waker is bound to a Notifier at construction and invoked by a Future's
// driver to request another poll. A failed Notify indicates a broken
// invariant (the Ping must always be able to notify itself while a poll is
// outstanding) and is therefore a programmer error: it is logged and then
// panics, rather than silently dropping the wakeup.
type Waker struct {
	notifier Notifier
}

func newWaker(n Notifier) *Waker {
	return &Waker{notifier: n}
}

// Wake requests another poll of whatever this Waker is bound to.
func (w *Waker) Wake() {
	if err := w.notifier.Notify(); err != nil {
		CurrentLogger().Error("waker notify failed", err)
		panic(WrapError("pollkit: waker notify failed", err))
	}
}

// PollFuture drives a Future[T], using a Ping as its wake channel and the
// Poller loop as its executor. Register arms the Ping and immediately
// invokes the Waker once, guaranteeing the wrapped Future is polled at
// least once without requiring an external trigger — most futures only
// make progress once polled, so without this they would never start.
type PollFuture[T any] struct {
	ping   *Ping
	waker  *Waker
	future Future[T]
	last   T
	ready  bool
}

// NewPollFuture constructs a PollFuture around future.
func NewPollFuture[T any](future Future[T]) (*PollFuture[T], error) {
	ping, err := NewPing()
	if err != nil {
		return nil, err
	}
	pf := &PollFuture[T]{ping: ping, future: future}
	pf.waker = newWaker(ping.Notifier())
	return pf, nil
}

// Future returns the wrapped Future.
func (f *PollFuture[T]) Future() Future[T] { return f.future }

// SetFuture replaces the wrapped Future and clears any latched ready
// value. Used by adaptors (the channel Receiver) that must rebuild their
// future on Reregister.
func (f *PollFuture[T]) SetFuture(future Future[T]) {
	f.future = future
	var zero T
	f.last = zero
	f.ready = false
}

// Waker exposes the bound Waker, for adaptors that need to wake the future
// themselves outside of a poller event (e.g. immediately after enqueuing
// work).
func (f *PollFuture[T]) Waker() *Waker { return f.waker }

func (f *PollFuture[T]) Register(p Poller, event Event, mode PollMode) error {
	if err := f.ping.Register(p, event, mode); err != nil {
		return err
	}
	f.waker.Wake()
	return nil
}

func (f *PollFuture[T]) Reregister(p Poller, event Event, mode PollMode) error {
	return f.ping.Reregister(p, event, mode)
}

func (f *PollFuture[T]) Deregister(p Poller) error {
	return f.ping.Deregister(p)
}

// HandleEvent drains the Ping and then polls the wrapped Future once. The
// result is not returned here — it stays value-agnostic, per Source — use
// Poll to retrieve it.
func (f *PollFuture[T]) HandleEvent(p Poller, event Event) error {
	if err := f.ping.HandleEvent(p, event); err != nil {
		return err
	}
	if v, ready := f.future.Poll(); ready {
		f.last = v
		f.ready = true
	}
	return nil
}

// Poll returns the most recent ready value observed by HandleEvent, if any.
func (f *PollFuture[T]) Poll() (T, bool) {
	return f.last, f.ready
}

var _ Source = (*PollFuture[struct{}])(nil)
