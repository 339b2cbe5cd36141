//go:build linux

// Package poller provides a reference Poller implementation (epoll on
// Linux, kqueue on Darwin/BSD, IOCP on Windows) for tests and examples,
// adapted from this codebase's own FastPoller backends: the same epoll_ctl
// /epoll_wait sequencing, generalized from a fixed-size callback-dispatch
// array to a map keyed by pollkit.Handle that returns ready pollkit.Events
// directly, matching the Poller interface the rest of this module consumes.
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

type epollPoller struct {
	epfd int
	mu   sync.RWMutex
	regs map[pollkit.Handle]regInfo
}

// New creates an epoll-backed Poller.
func New() (pollkit.Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd, regs: make(map[pollkit.Handle]regInfo)}, nil
}

func eventFlags(event pollkit.Event, mode pollkit.PollMode) uint32 {
	var flags uint32
	if event.Readable {
		flags |= unix.EPOLLIN
	}
	if event.Writable {
		flags |= unix.EPOLLOUT
	}
	switch mode {
	case pollkit.Oneshot:
		flags |= unix.EPOLLONESHOT
	case pollkit.Edge:
		flags |= unix.EPOLLET
	case pollkit.EdgeOneshot:
		flags |= unix.EPOLLET | unix.EPOLLONESHOT
	case pollkit.Level:
		// no extra flags: epoll is level-triggered by default
	}
	return flags
}

func (p *epollPoller) Add(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	ev := &unix.EpollEvent{Events: eventFlags(event, mode), Fd: int32(h)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, int(h), ev); err != nil {
		return err
	}
	p.mu.Lock()
	p.regs[h] = regInfo{event: event, mode: mode}
	p.mu.Unlock()
	return nil
}

func (p *epollPoller) Modify(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	ev := &unix.EpollEvent{Events: eventFlags(event, mode), Fd: int32(h)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, int(h), ev); err != nil {
		return err
	}
	p.mu.Lock()
	p.regs[h] = regInfo{event: event, mode: mode}
	p.mu.Unlock()
	return nil
}

func (p *epollPoller) Delete(h pollkit.Handle) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, int(h), nil)
	p.mu.Lock()
	delete(p.regs, h)
	p.mu.Unlock()
	return err
}

func (p *epollPoller) Wait(events []pollkit.Event, timeout time.Duration) (int, error) {
	buf := make([]unix.EpollEvent, len(events))
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, buf, ms)
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
		reg, ok := p.regs[pollkit.Handle(buf[i].Fd)]
		if !ok {
			continue
		}
		events[count] = reg.event
		count++
	}
	return count, nil
}

func (p *epollPoller) SupportsLevel() bool { return true }

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}

var _ pollkit.Poller = (*epollPoller)(nil)
