package pollkit

import (
	"io"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// UnblockFn runs fn once on a goroutine-pool worker (bounding concurrent
// blocking work, the same role this codebase's taskpool plays elsewhere)
// and exposes the result as a pollable Source.
type UnblockFn[T any] struct {
	poll *PollFuture[T]
}

// Unblock submits fn to pool and returns a Source that becomes ready once
// fn has returned.
func Unblock[T any](pool *ants.Pool, fn func() T) (*UnblockFn[T], error) {
	result := make(chan T, 1)
	var zero T
	future := FuncFuture[T](func() (T, bool) {
		select {
		case v := <-result:
			return v, true
		default:
			return zero, false
		}
	})
	pf, err := NewPollFuture[T](future)
	if err != nil {
		return nil, err
	}
	u := &UnblockFn[T]{poll: pf}
	if err := pool.Submit(func() {
		v := fn()
		result <- v
		pf.Waker().Wake()
	}); err != nil {
		return nil, WrapError("pollkit: submit unblock task", err)
	}
	return u, nil
}

// Result returns the value fn produced, once ready.
func (u *UnblockFn[T]) Result() (T, bool) { return u.poll.Poll() }

func (u *UnblockFn[T]) Register(p Poller, event Event, mode PollMode) error {
	return u.poll.Register(p, event, mode)
}
func (u *UnblockFn[T]) Reregister(p Poller, event Event, mode PollMode) error {
	return u.poll.Reregister(p, event, mode)
}
func (u *UnblockFn[T]) Deregister(p Poller) error { return u.poll.Deregister(p) }
func (u *UnblockFn[T]) HandleEvent(p Poller, event Event) error {
	return u.poll.HandleEvent(p, event)
}

// unblockCapacity is the default transfer-buffer depth for UnblockReader
// and UnblockWriter: how many in-flight read/write results may be queued
// before a caller drains them.
const unblockCapacity = 1

// UnblockReaderOption configures UnblockReader/UnblockWriter construction.
type UnblockReaderOption func(*unblockConfig)

type unblockConfig struct {
	capacity int
}

// WithCapacity overrides the default transfer-buffer depth.
func WithCapacity(n int) UnblockReaderOption {
	return func(c *unblockConfig) { c.capacity = n }
}

// UnblockReader turns a synchronous io.Reader into an async one, driven by
// a goroutine-pool worker per outstanding Read.
type UnblockReader struct {
	pr      *PollRead
	pool    *ants.Pool
	r       io.Reader
	mu      sync.Mutex
	pending chan ioResult
}

// NewUnblockReader wraps r using pool for its blocking reads.
func NewUnblockReader(pool *ants.Pool, r io.Reader, options ...UnblockReaderOption) (*UnblockReader, error) {
	cfg := unblockConfig{capacity: unblockCapacity}
	for _, o := range options {
		o(&cfg)
	}
	ur := &UnblockReader{pool: pool, r: r}
	pr, err := NewPollRead(func(buf []byte) (int, error, bool) {
		ur.mu.Lock()
		defer ur.mu.Unlock()
		if ur.pending == nil {
			ur.pending = make(chan ioResult, cfg.capacity)
			pf := ur.pr
			if err := ur.pool.Submit(func() {
				n, err := ur.r.Read(buf)
				ur.pending <- ioResult{n: n, err: err}
				pf.wake()
			}); err != nil {
				ur.pending = nil
				return 0, WrapError("pollkit: submit read task", err), true
			}
			return 0, nil, false
		}
		select {
		case res := <-ur.pending:
			ur.pending = nil
			return res.n, res.err, true
		default:
			return 0, nil, false
		}
	})
	if err != nil {
		return nil, err
	}
	ur.pr = pr
	return ur, nil
}

// Read attempts to read into buf; see PollRead.Read for the result shape.
func (u *UnblockReader) Read(buf []byte) (int, error, bool) { return u.pr.Read(buf) }

func (u *UnblockReader) Register(p Poller, event Event, mode PollMode) error {
	return u.pr.Register(p, event, mode)
}
func (u *UnblockReader) Reregister(p Poller, event Event, mode PollMode) error {
	return u.pr.Reregister(p, event, mode)
}
func (u *UnblockReader) Deregister(p Poller) error { return u.pr.Deregister(p) }
func (u *UnblockReader) HandleEvent(p Poller, event Event) error {
	return u.pr.HandleEvent(p, event)
}

// UnblockWriter turns a synchronous io.Writer into an async one, driven by
// a goroutine-pool worker per outstanding Write.
type UnblockWriter struct {
	pw      *PollWrite
	pool    *ants.Pool
	w       io.Writer
	mu      sync.Mutex
	pending chan ioResult
}

// NewUnblockWriter wraps w using pool for its blocking writes.
func NewUnblockWriter(pool *ants.Pool, w io.Writer, options ...UnblockReaderOption) (*UnblockWriter, error) {
	cfg := unblockConfig{capacity: unblockCapacity}
	for _, o := range options {
		o(&cfg)
	}
	uw := &UnblockWriter{pool: pool, w: w}
	pw, err := NewPollWrite(func(buf []byte) (int, error, bool) {
		uw.mu.Lock()
		defer uw.mu.Unlock()
		if uw.pending == nil {
			uw.pending = make(chan ioResult, cfg.capacity)
			pf := uw.pw
			if err := uw.pool.Submit(func() {
				n, err := uw.w.Write(buf)
				uw.pending <- ioResult{n: n, err: err}
				pf.wake()
			}); err != nil {
				uw.pending = nil
				return 0, WrapError("pollkit: submit write task", err), true
			}
			return 0, nil, false
		}
		select {
		case res := <-uw.pending:
			uw.pending = nil
			return res.n, res.err, true
		default:
			return 0, nil, false
		}
	})
	if err != nil {
		return nil, err
	}
	uw.pw = pw
	return uw, nil
}

// Write attempts to write buf; see PollWrite.Write for the result shape.
func (u *UnblockWriter) Write(buf []byte) (int, error, bool) { return u.pw.Write(buf) }

func (u *UnblockWriter) Register(p Poller, event Event, mode PollMode) error {
	return u.pw.Register(p, event, mode)
}
func (u *UnblockWriter) Reregister(p Poller, event Event, mode PollMode) error {
	return u.pw.Reregister(p, event, mode)
}
func (u *UnblockWriter) Deregister(p Poller) error { return u.pw.Deregister(p) }
func (u *UnblockWriter) HandleEvent(p Poller, event Event) error {
	return u.pw.HandleEvent(p, event)
}

var (
	_ Source = (*UnblockFn[struct{}])(nil)
	_ Source = (*UnblockReader)(nil)
	_ Source = (*UnblockWriter)(nil)
)
