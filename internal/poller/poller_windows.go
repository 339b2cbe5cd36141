//go:build windows

package poller

import (
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/windows"

	"github.com/joeycumines/pollkit"
)

type regInfo struct {
	event pollkit.Event
	mode  pollkit.PollMode
}

// iocpPoller is a simplified IOCP-backed Poller: it associates each handle
// with the completion port using the handle's Event.Key as the completion
// key, then reports whichever key GetQueuedCompletionStatus returns. This
// mirrors the ancestor implementation's own acknowledged simplification
// (it does not attempt to track per-handle overlapped I/O state), extended
// just enough to let completion keys round-trip back to pollkit.Event.
type iocpPoller struct {
	iocp windows.Handle
	mu   sync.RWMutex
	regs map[pollkit.Handle]regInfo
	weak *pollkit.WeakRef
}

// New creates an IOCP-backed Poller.
func New() (pollkit.WeakPoller, error) {
	iocp, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	p := &iocpPoller{iocp: iocp, regs: make(map[pollkit.Handle]regInfo)}
	p.weak = pollkit.NewWeakRef(p)
	return p, nil
}

func (p *iocpPoller) Add(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	key := uintptr(event.Key)
	if _, err := windows.CreateIoCompletionPort(windows.Handle(h), p.iocp, key, 0); err != nil {
		return err
	}
	p.mu.Lock()
	p.regs[h] = regInfo{event: event, mode: mode}
	p.mu.Unlock()
	return nil
}

// Modify only updates local bookkeeping: IOCP associates a handle with a
// completion key once, at Add time, and offers no native "change the key"
// operation.
func (p *iocpPoller) Modify(h pollkit.Handle, event pollkit.Event, mode pollkit.PollMode) error {
	p.mu.Lock()
	p.regs[h] = regInfo{event: event, mode: mode}
	p.mu.Unlock()
	return nil
}

func (p *iocpPoller) Delete(h pollkit.Handle) error {
	p.mu.Lock()
	delete(p.regs, h)
	p.mu.Unlock()
	return nil
}

func (p *iocpPoller) Wait(events []pollkit.Event, timeout time.Duration) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeout / time.Millisecond)
	}
	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped
	err := windows.GetQueuedCompletionStatus(p.iocp, &bytes, &key, &overlapped, ms)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == windows.WAIT_TIMEOUT {
			return 0, nil
		}
		return 0, err
	}
	events[0] = pollkit.Event{Key: uint64(key)}
	return 1, nil
}

func (p *iocpPoller) SupportsLevel() bool { return true }

func (p *iocpPoller) Close() error {
	p.weak.Invalidate()
	return windows.CloseHandle(p.iocp)
}

// Post implements pollkit.Poster, used by the Windows Ping backend to
// synthesize a readiness event with no underlying kernel object of its own.
func (p *iocpPoller) Post(packet pollkit.CompletionPacket) error {
	return windows.PostQueuedCompletionStatus(p.iocp, 0, uintptr(packet.Event.Key), nil)
}

// Weak exposes a non-owning reference to this Poller, consumed by Pings
// that must not keep a closed Poller alive.
func (p *iocpPoller) Weak() *pollkit.WeakRef {
	return p.weak
}

var _ pollkit.WeakPoller = (*iocpPoller)(nil)
