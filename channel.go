package pollkit

import "github.com/joeycumines/pollkit/internal/queue"

// item is the internal result shape for a completed receive: a value plus
// whether the channel yielded one. ok is false only when the channel is
// closed and drained; an empty, open channel produces no ready item at all.
type item[T any] struct {
	value T
	ok    bool
}

// Sender is the writable half of an Unbounded channel.
type Sender[T any] struct {
	q *queue.Queue[T]
	w *Waker
}

// TrySend enqueues v without blocking. Returns ErrChannelClosed if the
// channel has been closed with Close.
func (s *Sender[T]) TrySend(v T) error {
	if !s.q.TrySend(v) {
		return ErrChannelClosed
	}
	if s.w != nil {
		s.w.Wake()
	}
	return nil
}

// Close marks the channel closed: further TrySend calls fail, but values
// already queued remain available to the Receiver.
func (s *Sender[T]) Close() {
	s.q.Close()
	if s.w != nil {
		s.w.Wake()
	}
}

// Receiver is the readable, pollable half of an Unbounded channel. It wraps
// a PollFuture whose future resolves once per available value; Reregister
// rebuilds that future so subsequent values are not lost — see the package
// design notes for why this rebuild is required.
type Receiver[T any] struct {
	q    *queue.Queue[T]
	poll *PollFuture[item[T]]
}

func recvFuture[T any](q *queue.Queue[T]) Future[item[T]] {
	return FuncFuture[item[T]](func() (item[T], bool) {
		v, ok, closed := q.TryRecv()
		if ok {
			return item[T]{value: v, ok: true}, true
		}
		if closed {
			return item[T]{}, true
		}
		return item[T]{}, false
	})
}

// Unbounded creates a fresh channel backed by an unbounded, chunked queue.
func Unbounded[T any]() (*Sender[T], *Receiver[T], error) {
	q := queue.New[T]()
	pf, err := NewPollFuture[item[T]](recvFuture(q))
	if err != nil {
		return nil, nil, err
	}
	sender := &Sender[T]{q: q, w: pf.Waker()}
	receiver := &Receiver[T]{q: q, poll: pf}
	return sender, receiver, nil
}

// Recv returns the most recently observed value, if HandleEvent has seen
// one ready. ok is false both when no value is ready yet and when the
// channel has been closed and drained — Closed distinguishes the two.
func (r *Receiver[T]) Recv() (value T, ok bool) {
	v, ready := r.poll.Poll()
	if !ready {
		return value, false
	}
	return v.value, v.ok
}

// Closed reports whether the channel is closed and fully drained (the
// matching result of the last HandleEvent-driven poll had ok==false with a
// ready result).
func (r *Receiver[T]) Closed() bool {
	v, ready := r.poll.Poll()
	return ready && !v.ok
}

func (r *Receiver[T]) Register(p Poller, event Event, mode PollMode) error {
	return r.poll.Register(p, event, mode)
}

func (r *Receiver[T]) Reregister(p Poller, event Event, mode PollMode) error {
	if err := r.poll.Reregister(p, event, mode); err != nil {
		return err
	}
	r.poll.SetFuture(recvFuture(r.q))
	return nil
}

func (r *Receiver[T]) Deregister(p Poller) error {
	return r.poll.Deregister(p)
}

func (r *Receiver[T]) HandleEvent(p Poller, event Event) error {
	return r.poll.HandleEvent(p, event)
}

var _ Source = (*Receiver[struct{}])(nil)
