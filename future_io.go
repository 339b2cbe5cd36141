package pollkit

// FutureWithArg generalizes Future to computations whose poll step needs an
// argument each call — a buffer for reads/writes, a seek request. Unlike
// Future, the result is retrieved through the same Poll call that supplies
// the argument, so there is no latched "last value": the caller drives it
// directly (see PollRead.Read / PollWrite.Write / PollSeek.Seek below).
type FutureWithArg[Arg, T any] interface {
	Poll(arg Arg) (T, bool)
}

// FuncFutureWithArg adapts a plain function to FutureWithArg.
type FuncFutureWithArg[Arg, T any] func(Arg) (T, bool)

func (f FuncFutureWithArg[Arg, T]) Poll(arg Arg) (T, bool) { return f(arg) }

// PollWithArg is the argument-carrying counterpart to PollFuture: its
// HandleEvent only drains the Ping (the wrapped computation is polled
// on-demand, with the caller-supplied argument, not from HandleEvent).
type PollWithArg[Arg, T any] struct {
	ping   *Ping
	waker  *Waker
	future FutureWithArg[Arg, T]
}

// NewPollWithArg constructs a PollWithArg around future.
func NewPollWithArg[Arg, T any](future FutureWithArg[Arg, T]) (*PollWithArg[Arg, T], error) {
	ping, err := NewPing()
	if err != nil {
		return nil, err
	}
	p := &PollWithArg[Arg, T]{ping: ping, future: future}
	p.waker = newWaker(ping.Notifier())
	return p, nil
}

func (p *PollWithArg[Arg, T]) Register(poller Poller, event Event, mode PollMode) error {
	if err := p.ping.Register(poller, event, mode); err != nil {
		return err
	}
	p.waker.Wake()
	return nil
}

func (p *PollWithArg[Arg, T]) Reregister(poller Poller, event Event, mode PollMode) error {
	return p.ping.Reregister(poller, event, mode)
}

func (p *PollWithArg[Arg, T]) Deregister(poller Poller) error {
	return p.ping.Deregister(poller)
}

// HandleEvent drains the Ping; the underlying computation is polled
// separately via Poll, with the argument the caller has ready at hand.
func (p *PollWithArg[Arg, T]) HandleEvent(poller Poller, event Event) error {
	return p.ping.HandleEvent(poller, event)
}

// Poll drives the wrapped computation with arg.
func (p *PollWithArg[Arg, T]) Poll(arg Arg) (T, bool) {
	return p.future.Poll(arg)
}

// wake fires the bound Waker directly, for callers (UnblockReader,
// UnblockWriter) that complete work on a separate goroutine and need to
// signal completion outside of a poll call.
func (p *PollWithArg[Arg, T]) wake() {
	p.waker.Wake()
}

var _ Source = (*PollWithArg[struct{}, struct{}])(nil)

// SeekWhence mirrors io.Seek* without importing io into the public surface
// of the seek argument type.
type SeekWhence int

const (
	SeekStart   SeekWhence = 0
	SeekCurrent SeekWhence = 1
	SeekEnd     SeekWhence = 2
)

// SeekRequest is the argument type for PollSeek.
type SeekRequest struct {
	Offset int64
	Whence SeekWhence
}

// PollRead adapts an async reader (Arg = []byte, result = bytes read) as a
// Source.
type PollRead struct {
	inner *PollWithArg[[]byte, ioResult]
}

// PollWrite adapts an async writer (Arg = []byte, result = bytes written)
// as a Source.
type PollWrite struct {
	inner *PollWithArg[[]byte, ioResult]
}

// PollSeek adapts an async seeker (Arg = SeekRequest, result = new offset)
// as a Source.
type PollSeek struct {
	inner *PollWithArg[SeekRequest, ioSeekResult]
}

type ioResult struct {
	n   int
	err error
}

type ioSeekResult struct {
	pos int64
	err error
}

// NewPollRead wraps an async read step.
func NewPollRead(step func(buf []byte) (n int, err error, ready bool)) (*PollRead, error) {
	inner, err := NewPollWithArg[[]byte, ioResult](FuncFutureWithArg[[]byte, ioResult](func(buf []byte) (ioResult, bool) {
		n, err, ready := step(buf)
		return ioResult{n: n, err: err}, ready
	}))
	if err != nil {
		return nil, err
	}
	return &PollRead{inner: inner}, nil
}

func (r *PollRead) wake() { r.inner.wake() }

func (r *PollRead) Register(p Poller, event Event, mode PollMode) error { return r.inner.Register(p, event, mode) }
func (r *PollRead) Reregister(p Poller, event Event, mode PollMode) error {
	return r.inner.Reregister(p, event, mode)
}
func (r *PollRead) Deregister(p Poller) error                  { return r.inner.Deregister(p) }
func (r *PollRead) HandleEvent(p Poller, event Event) error    { return r.inner.HandleEvent(p, event) }

// Read attempts to read into buf, returning bytes read, the error (if any)
// and whether the operation completed.
func (r *PollRead) Read(buf []byte) (int, error, bool) {
	res, ready := r.inner.Poll(buf)
	return res.n, res.err, ready
}

// NewPollWrite wraps an async write step.
func NewPollWrite(step func(buf []byte) (n int, err error, ready bool)) (*PollWrite, error) {
	inner, err := NewPollWithArg[[]byte, ioResult](FuncFutureWithArg[[]byte, ioResult](func(buf []byte) (ioResult, bool) {
		n, err, ready := step(buf)
		return ioResult{n: n, err: err}, ready
	}))
	if err != nil {
		return nil, err
	}
	return &PollWrite{inner: inner}, nil
}

func (w *PollWrite) wake() { w.inner.wake() }

func (w *PollWrite) Register(p Poller, event Event, mode PollMode) error { return w.inner.Register(p, event, mode) }
func (w *PollWrite) Reregister(p Poller, event Event, mode PollMode) error {
	return w.inner.Reregister(p, event, mode)
}
func (w *PollWrite) Deregister(p Poller) error               { return w.inner.Deregister(p) }
func (w *PollWrite) HandleEvent(p Poller, event Event) error { return w.inner.HandleEvent(p, event) }

// Write attempts to write buf, returning bytes written, the error (if any)
// and whether the operation completed.
func (w *PollWrite) Write(buf []byte) (int, error, bool) {
	res, ready := w.inner.Poll(buf)
	return res.n, res.err, ready
}

// NewPollSeek wraps an async seek step.
func NewPollSeek(step func(req SeekRequest) (pos int64, err error, ready bool)) (*PollSeek, error) {
	inner, err := NewPollWithArg[SeekRequest, ioSeekResult](FuncFutureWithArg[SeekRequest, ioSeekResult](func(req SeekRequest) (ioSeekResult, bool) {
		pos, err, ready := step(req)
		return ioSeekResult{pos: pos, err: err}, ready
	}))
	if err != nil {
		return nil, err
	}
	return &PollSeek{inner: inner}, nil
}

func (s *PollSeek) Register(p Poller, event Event, mode PollMode) error { return s.inner.Register(p, event, mode) }
func (s *PollSeek) Reregister(p Poller, event Event, mode PollMode) error {
	return s.inner.Reregister(p, event, mode)
}
func (s *PollSeek) Deregister(p Poller) error               { return s.inner.Deregister(p) }
func (s *PollSeek) HandleEvent(p Poller, event Event) error { return s.inner.HandleEvent(p, event) }

// Seek attempts the seek, returning the new offset, the error (if any) and
// whether the operation completed.
func (s *PollSeek) Seek(req SeekRequest) (int64, error, bool) {
	res, ready := s.inner.Poll(req)
	return res.pos, res.err, ready
}

var (
	_ Source = (*PollRead)(nil)
	_ Source = (*PollWrite)(nil)
	_ Source = (*PollSeek)(nil)
)
