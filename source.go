package pollkit

import (
	"sync"
	"time"
)

// Handle is a raw OS resource identifier: a file descriptor on Unix, or a
// HANDLE/SOCKET value on Windows. It is always representable as a uintptr.
type Handle uintptr

// Fder is implemented by anything with a pollable OS handle.
type Fder interface {
	Fd() Handle
}

// CompletionPacket is the unit of work posted to a completion-queue-based
// Poller (Windows IOCP). On readiness-based pollers (epoll, kqueue) it goes
// unused.
type CompletionPacket struct {
	Event Event
}

// NewCompletionPacket builds a CompletionPacket carrying event.
func NewCompletionPacket(event Event) CompletionPacket {
	return CompletionPacket{Event: event}
}

// Clone returns an independent copy; CompletionPacket holds no pointers so
// this is just a value copy, provided for parity with the OS APIs that
// model posting as producing an owned copy of the packet.
func (c CompletionPacket) Clone() CompletionPacket {
	return c
}

// Poller is the external readiness multiplexer every Source in this package
// registers against. A reference implementation (epoll/kqueue/IOCP) lives in
// the poller subpackage; any conforming implementation may be substituted.
type Poller interface {
	// Add begins monitoring h for event under mode.
	Add(h Handle, event Event, mode PollMode) error
	// Modify changes the interest previously registered for h.
	Modify(h Handle, event Event, mode PollMode) error
	// Delete stops monitoring h. Whether deleting an unknown handle is an
	// error depends on the implementation (the epoll reference Poller
	// reports one; the kqueue and IOCP ones return nil); Source
	// implementations are responsible for the best-effort contract
	// described on Source.Deregister.
	Delete(h Handle) error
	// Wait blocks until at least one event is ready, the timeout elapses,
	// or the Poller is closed, filling events and returning the count
	// written.
	Wait(events []Event, timeout time.Duration) (int, error)
	// SupportsLevel reports whether Level mode is honoured natively. All
	// reference implementations in this module return true.
	SupportsLevel() bool
	// Close releases the underlying OS resource. Subsequent calls return
	// an error.
	Close() error
}

// Poster is implemented by Pollers backed by a completion queue (Windows
// IOCP), letting a caller — notably the Windows Ping backend — post a
// synthetic completion directly, bypassing readiness registration entirely.
type Poster interface {
	Post(packet CompletionPacket) error
}

// WeakRef is a mutex-guarded, invalidatable reference to a Poster. It exists
// so that OS backends with no readiness concept of their own (Windows IOCP)
// can hold a non-owning reference to the Poller that outlives neither
// accidentally keeps it alive nor panics once the Poller is gone.
type WeakRef struct {
	mu sync.Mutex
	p  Poster
}

// NewWeakRef wraps p in a WeakRef.
func NewWeakRef(p Poster) *WeakRef {
	return &WeakRef{p: p}
}

// Upgrade returns the referenced Poster and true, or nil and false once
// Invalidate has been called.
func (w *WeakRef) Upgrade() (Poster, bool) {
	if w == nil {
		return nil, false
	}
	w.mu.Lock()
	p := w.p
	w.mu.Unlock()
	return p, p != nil
}

// Invalidate clears the reference; subsequent Upgrade calls fail. Called by
// a Poller's Close.
func (w *WeakRef) Invalidate() {
	if w != nil {
		w.mu.Lock()
		w.p = nil
		w.mu.Unlock()
	}
}

// WeakPoller is implemented by Poller backends that expose a WeakRef to
// themselves, a requirement of the Windows Ping backend (see ping_windows.go).
type WeakPoller interface {
	Poller
	Weak() *WeakRef
}

// Source is implemented by everything that can be driven by a Poller:
// raw sockets, Pings, futures, channel receivers, unblock adaptors and
// timers all implement this quartet.
//
// Register must be called before HandleEvent. Deregister is idempotent and
// best-effort: calling it on a Source that was never registered, or calling
// it twice, must succeed. After Deregister, an event that was already
// in-flight may still be delivered once; HandleEvent must absorb it as a
// no-op.
type Source interface {
	Register(p Poller, event Event, mode PollMode) error
	Reregister(p Poller, event Event, mode PollMode) error
	Deregister(p Poller) error
	HandleEvent(p Poller, event Event) error
}

// Interest records the event/mode a Socket last registered.
type Interest struct {
	Event Event
	Mode  PollMode
}

// Socket wraps a raw OS handle of type T as a Source. Socket does not read
// or write the handle itself — HandleEvent is a pure no-op, since the
// caller is expected to perform the actual I/O once notified.
type Socket[T Fder] struct {
	handle   T
	interest *Interest
}

// NewSocket wraps handle, unregistered.
func NewSocket[T Fder](handle T) *Socket[T] {
	return &Socket[T]{handle: handle}
}

// Handle returns the wrapped OS handle.
func (s *Socket[T]) Handle() T {
	return s.handle
}

// HandlePtr returns a pointer to the wrapped handle, for in-place mutation.
func (s *Socket[T]) HandlePtr() *T {
	return &s.handle
}

// Into consumes the Socket, returning the wrapped handle. Callers must
// Deregister first if the Socket was registered.
func (s *Socket[T]) Into() T {
	return s.handle
}

// Interest returns the last-registered interest, or nil if unregistered.
func (s *Socket[T]) Interest() *Interest {
	return s.interest
}

func (s *Socket[T]) Register(p Poller, event Event, mode PollMode) error {
	if err := p.Add(s.handle.Fd(), event, mode); err != nil {
		return err
	}
	s.interest = &Interest{Event: event, Mode: mode}
	return nil
}

func (s *Socket[T]) Reregister(p Poller, event Event, mode PollMode) error {
	if err := p.Modify(s.handle.Fd(), event, mode); err != nil {
		return err
	}
	s.interest = &Interest{Event: event, Mode: mode}
	return nil
}

func (s *Socket[T]) Deregister(p Poller) error {
	if s.interest == nil {
		return nil
	}
	s.interest = nil
	return p.Delete(s.handle.Fd())
}

// HandleEvent is a no-op: Socket carries no internal state to drain.
func (s *Socket[T]) HandleEvent(Poller, Event) error {
	return nil
}

// fdHandle adapts a raw OS handle value to Fder, for the internal Sockets
// this package builds (Ping's eventfd/pipe backends).
type fdHandle Handle

func (f fdHandle) Fd() Handle { return Handle(f) }
