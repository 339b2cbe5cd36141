//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package poller

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/joeycumines/pollkit"
)

type regInfo struct {
	event pollkit.Event
	mode  pollkit.PollMode
}

type kqueuePoller struct {
	kq   int
	mu   sync.RWMutex
	regs map[pollkit.Handle]regInfo
}

// New creates a kqueue-backed Poller, the BSD-family counterpart of the
// Linux epoll Poller.
func New() (pollkit.Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &kqueuePoller{kq: kq, regs: make(map[pollkit.Handle]regInfo)}, nil
}

func kevents(h pollkit.Handle, event pollkit.Event, flags uint16) []unix.Kevent_t {
	var out []unix.Kevent_t
	if event.Readable {
		out = append(out, unix.Kevent_t{Ident: uint64(h), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if event.Writable {
		out = append(out, unix.Kevent_t{Ident: uint64(h), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	return out
}

func addFlags(mode pollkit.PollMode) uint16 {
	flags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	switch mode {
	case pollkit.Oneshot, pollkit.EdgeOneshot:
		flags |= unix.EV_ONESHOT
	case pollkit.Edge:
		flags |= unix.EV_CLEAR
	case pollkit.Level:
		// kqueue is level-triggered by default
	}
	return flags
}

func (p *kqueuePoller) Add(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	changes := kevents(h, event, addFlags(mode))
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.regs[h] = regInfo{event: event, mode: mode}
	p.mu.Unlock()
	return nil
}

func (p *kqueuePoller) Modify(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	p.mu.Lock()
	old, ok := p.regs[h]
	p.mu.Unlock()
	if ok {
		if del := kevents(h, old.event, unix.EV_DELETE); len(del) > 0 {
			_, _ = unix.Kevent(p.kq, del, nil, nil)
		}
	}
	return p.Add(h, event, mode)
}

func (p *kqueuePoller) Delete(h pollkit.Handle) error {
	p.mu.Lock()
	old, ok := p.regs[h]
	delete(p.regs, h)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	changes := kevents(h, old.event, unix.EV_DELETE)
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *kqueuePoller) Wait(events []pollkit.Event, timeout time.Duration) (int, error) {
	buf := make([]unix.Kevent_t, len(events))
	var ts *unix.Timespec
	if timeout >= 0 {
		sec := int64(timeout / time.Second)
		nsec := int64(timeout % time.Second)
		ts = &unix.Timespec{Sec: sec, Nsec: nsec}
	}
	n, err := unix.Kevent(p.kq, nil, buf, ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	count := 0
	for i := 0; i < n; i++ {
		reg, ok := p.regs[pollkit.Handle(buf[i].Ident)]
		if !ok {
			continue
		}
		events[count] = reg.event
		count++
	}
	return count, nil
}

func (p *kqueuePoller) SupportsLevel() bool { return true }

func (p *kqueuePoller) Close() error {
	return unix.Close(p.kq)
}

var _ pollkit.Poller = (*kqueuePoller)(nil)
