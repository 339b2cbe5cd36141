//go:build unix && !linux

package pollkit

import (
	"golang.org/x/sys/unix"
)

// sysPing is the non-Linux Unix backend (darwin and the BSDs): a pipe with
// CLOEXEC and non-blocking set on both ends. golang.org/x/sys/unix.Pipe2's
// atomic CLOEXEC creation is not uniformly available across these targets,
// so this backend always takes the fallback path: create the pipe, then
// fcntl each end to set FD_CLOEXEC — matching the documented "atomic, or
// fall back" policy from the common Notify contract. Both ends are also
// put in non-blocking mode, required for notify's write to return EAGAIN
// under a full pipe buffer instead of blocking the calling goroutine.
type sysPing struct {
	readFD, writeFD int
	socket          *Socket[fdHandle]
}

func newSysPing() (*sysPing, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	for _, fd := range fds {
		if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, err
		}
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, err
		}
	}
	return &sysPing{
		readFD:  fds[0],
		writeFD: fds[1],
		socket:  NewSocket[fdHandle](fdHandle(fds[0])),
	}, nil
}

func (s *sysPing) register(p Poller, event Event, mode PollMode) error {
	return s.socket.Register(p, event, mode)
}

func (s *sysPing) reregister(p Poller, event Event, mode PollMode) error {
	return s.socket.Reregister(p, event, mode)
}

func (s *sysPing) deregister(p Poller) error {
	return s.socket.Deregister(p)
}

func (s *sysPing) handleEvent(p Poller, event Event) error {
	var buf [1]byte
	if _, err := unix.Read(s.readFD, buf[:]); err != nil && err != unix.EAGAIN {
		return err
	}
	return s.socket.HandleEvent(p, event)
}

// notify writes a single byte. Per the documented best-effort policy, a
// burst of notifications while unregistered that fills the pipe buffer
// surfaces the resulting OS error (typically EAGAIN) rather than retrying
// or buffering it internally.
func (s *sysPing) notify() error {
	_, err := unix.Write(s.writeFD, []byte{0})
	return err
}

func (s *sysPing) close() error {
	err1 := unix.Close(s.readFD)
	err2 := unix.Close(s.writeFD)
	if err1 != nil {
		return err1
	}
	return err2
}
