//go:build windows

package pollkit

import "sync"

// sysPing is the Windows backend. IOCP has no kernel object suitable for a
// bare wakeup, so this backend owns no handle at all: Notify posts a
// CompletionPacket directly to the Poller via its Poster interface,
// reached through a WeakRef so the Ping never keeps a closed Poller alive
// or panics after it is gone.
//
// This is the later, simpler variant of the design (see the package design
// notes): only PollMode Oneshot and Level are supported. Edge and
// EdgeOneshot have no natural meaning against a completion queue and are
// rejected with ErrUnsupportedIOCPMode.
type sysPing struct {
	mu       sync.Mutex
	interest *pingInterest
	notified uint64
}

type pingInterest struct {
	poller *WeakRef
	packet CompletionPacket
	mode   PollMode
}

func newSysPing() (*sysPing, error) {
	return &sysPing{}, nil
}

func (s *sysPing) register(p Poller, event Event, mode PollMode) error {
	return s.reregister(p, event, mode)
}

func (s *sysPing) reregister(p Poller, event Event, mode PollMode) error {
	if mode != Oneshot && mode != Level {
		return ErrUnsupportedIOCPMode
	}
	wp, ok := p.(WeakPoller)
	if !ok {
		return WrapError("pollkit: windows ping requires a WeakPoller", ErrSourceNotRegistered)
	}
	s.mu.Lock()
	s.interest = &pingInterest{
		poller: wp.Weak(),
		packet: NewCompletionPacket(event),
		mode:   mode,
	}
	s.mu.Unlock()
	return nil
}

func (s *sysPing) deregister(Poller) error {
	s.mu.Lock()
	s.interest = nil
	s.mu.Unlock()
	return nil
}

// handleEvent decrements the notified counter (saturating at zero) and, for
// Oneshot mode, clears Interest so further Notify calls post nothing until
// the next Reregister. Level mode leaves Interest armed.
func (s *sysPing) handleEvent(Poller, Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notified > 0 {
		s.notified--
	}
	if s.interest != nil && s.interest.mode == Oneshot {
		s.interest = nil
	}
	return nil
}

// notify posts a completion packet if Interest is armed and the Poller is
// still alive. A Poller that has since closed silently drops the
// notification: this is the documented "expected race", not an error.
func (s *sysPing) notify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified++
	if s.interest == nil {
		return nil
	}
	poster, ok := s.interest.poller.Upgrade()
	if !ok {
		return nil
	}
	return poster.Post(s.interest.packet.Clone())
}

func (s *sysPing) close() error {
	return s.deregister(nil)
}
