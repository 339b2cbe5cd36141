package pollkit

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package's Source implementations.
var (
	// ErrUnsupportedIOCPMode is returned when a Ping backed by the Windows
	// IOCP backend is registered or reregistered with a PollMode other than
	// Oneshot or Level. IOCP has no native edge-trigger concept, so Edge
	// and EdgeOneshot cannot be honoured.
	ErrUnsupportedIOCPMode = errors.New("pollkit: unsupported polling mode for IOCP")

	// ErrChannelClosed is returned by Sender.TrySend once the channel has
	// been closed with Sender.Close.
	ErrChannelClosed = errors.New("pollkit: send on closed channel")

	// ErrSourceNotRegistered is wrapped into the error the Windows Ping
	// backend returns when registered with a Poller that is not a
	// WeakPoller. HandleEvent does not check for a prior Register, so
	// handling an event on a never-registered Source does not return this
	// error. Deregister never returns it.
	ErrSourceNotRegistered = errors.New("pollkit: source not registered")
)

// WrapError wraps cause with a message, preserving it for errors.Is/errors.As.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
