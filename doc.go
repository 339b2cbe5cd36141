// Package pollkit bridges OS readiness pollers (epoll/kqueue/IOCP) with
// value-producing abstractions that have no OS handle of their own: futures,
// channels, goroutine-pool tasks and timers.
//
// # Architecture
//
// Everything pollable implements [Source]: Register, Reregister, Deregister,
// HandleEvent. The one primitive every adaptor in this package is built on
// top of is [Ping] — a single-shot, OS-backed wakeup object whose [Notifier]
// can be fired from any goroutine and turns into a readiness event the next
// time the external [Poller] waits.
//
// [PollFuture] drives any suspendable computation (a [Future], in the same
// poll-don't-block idiom as this codebase's own Promise type) by using a
// Ping as its wake channel. Three adaptors build on that directly:
//
//   - [Sender]/[Receiver]: a ping-wakeable unbounded channel.
//   - [UnblockFn], [UnblockReader], [UnblockWriter]: goroutine-pool work
//     (via an ants pool) exposed as a Source.
//   - [TimerWheel]/[Timer]: an ordered heap of deadlines, each one a Ping.
//
// # Platform Support
//
// Ping has three backends:
//   - Linux: eventfd (EFD_CLOEXEC|EFD_NONBLOCK|EFD_SEMAPHORE)
//   - Other Unix (darwin, bsd): a CLOEXEC pipe pair
//   - Windows: no kernel object; a mutex-guarded state struct that posts a
//     completion packet directly to the IOCP handle
//
// A reference [Poller] (the external readiness multiplexer this package's
// Sources register against) ships in the poller subpackage, implemented
// with epoll on Linux, kqueue on Darwin/BSD, and IOCP on Windows.
//
// # Thread Safety
//
// A Source's mutating methods (Register/Reregister/Deregister/HandleEvent)
// are meant to be called from a single goroutine — typically whichever one
// runs the poller's wait loop. [Notifier.Notify] is the one operation safe
// to call concurrently from any goroutine; that asymmetry is the whole
// point of this package.
//
// # Usage
//
//	p, err := poller.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Close()
//
//	ping, err := pollkit.NewPing()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := ping.Register(p, pollkit.Event{Key: 1}, pollkit.Level); err != nil {
//		log.Fatal(err)
//	}
//	go ping.Notifier().Notify()
//
//	events := make([]pollkit.Event, 8)
//	n, err := p.Wait(events, time.Second)
package pollkit
