//go:build linux

package pollkit

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// sysPing is the Linux backend: an eventfd created with
// EFD_CLOEXEC|EFD_NONBLOCK|EFD_SEMAPHORE. The semaphore flag makes each
// Notify produce exactly one readable unit, which matches the at-least-once
// contract without a burst of notifications collapsing into a single event.
type sysPing struct {
	fd     int
	socket *Socket[fdHandle]
}

func newSysPing() (*sysPing, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK|unix.EFD_SEMAPHORE)
	if err != nil {
		return nil, err
	}
	return &sysPing{
		fd:     fd,
		socket: NewSocket[fdHandle](fdHandle(fd)),
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

// handleEvent reads 8 bytes from the eventfd, taking one semaphore unit off
// its counter, before delegating to the socket, which is a no-op.
func (s *sysPing) handleEvent(p Poller, event Event) error {
	var buf [8]byte
	if _, err := unix.Read(s.fd, buf[:]); err != nil && err != unix.EAGAIN {
		return err
	}
	return s.socket.HandleEvent(p, event)
}

// notify writes the eventfd counter value 1 in native-endian order, the
// value a semaphore-mode eventfd expects for a single wakeup unit.
func (s *sysPing) notify() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(s.fd, buf[:])
	return err
}

func (s *sysPing) close() error {
	return unix.Close(s.fd)
}
