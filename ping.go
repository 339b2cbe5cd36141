package pollkit

// Notifier is a goroutine-safe handle that fires its Ping's event. It is
// cheap to copy and share: every backend stores its shared state behind a
// pointer or file descriptor, never by value.
type Notifier struct {
	notify func() error
}

// Notify requests that the next Poller.Wait observe the paired Ping's
// event, provided the Ping is currently registered. See the package-level
// backend docs on Ping for the at-least-once / best-effort distinctions
// between platforms.
func (n Notifier) Notify() error {
	return n.notify()
}

// Ping is a single-shot, OS-backed wakeup object: the bridge from an
// arbitrary in-process signal (another goroutine, a completed task, an
// expired timer) into a Poller event. Ping implements Source, so it
// registers, rearms and deregisters exactly like any other pollable thing.
//
// Three backends exist, selected by build tag: eventfd on Linux, a pipe on
// other Unix targets, and a mutex-guarded synthetic state on Windows (IOCP
// has no kernel object suitable for this role). See ping_linux.go,
// ping_unix.go and ping_windows.go.
type Ping struct {
	sys *sysPing
}

// NewPing constructs a fresh, unregistered Ping using the platform backend.
func NewPing() (*Ping, error) {
	sys, err := newSysPing()
	if err != nil {
		return nil, WrapError("pollkit: create ping", err)
	}
	return &Ping{sys: sys}, nil
}

// Notifier returns a copyable handle whose Notify fires this Ping.
func (p *Ping) Notifier() Notifier {
	return Notifier{notify: p.sys.notify}
}

// Close releases the Ping's OS resources. Not part of Source: callers that
// no longer need a Ping (e.g. a PollFuture whose future completed) should
// Deregister then Close.
func (p *Ping) Close() error {
	return p.sys.close()
}

func (p *Ping) Register(poller Poller, event Event, mode PollMode) error {
	return p.sys.register(poller, event, mode)
}

func (p *Ping) Reregister(poller Poller, event Event, mode PollMode) error {
	return p.sys.reregister(poller, event, mode)
}

func (p *Ping) Deregister(poller Poller) error {
	return p.sys.deregister(poller)
}

func (p *Ping) HandleEvent(poller Poller, event Event) error {
	return p.sys.handleEvent(poller, event)
}

var _ Source = (*Ping)(nil)
