package window

import "time"

// CancelFunc cancels a scheduled callback. Calling it after the callback has
// fired is a no-op.
type CancelFunc func()

// Scheduler defers a callback to the host's next frame-equivalent slot.
// Implementations must deliver the callback on the goroutine that owns the
// reactive runtime; the runtime is single-threaded and the callback writes
// to a cell.
type Scheduler interface {
	Schedule(fn func()) CancelFunc
}

// TickScheduler delivers callbacks after a fixed interval using the process
// timer. The interval defaults to 16ms, the animation-frame equivalent.
//
// Timer callbacks fire on a timer goroutine, so hosts using TickScheduler
// must pump them back onto the runtime's goroutine themselves (for example
// through the host event loop's channel). Tests use ManualScheduler instead.
type TickScheduler struct {
	// Interval between a Schedule call and its callback. Zero means 16ms.
	Interval time.Duration
}

// Schedule implements Scheduler.
func (s TickScheduler) Schedule(fn func()) CancelFunc {
	interval := s.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	t := time.AfterFunc(interval, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues callbacks until Flush is called. It gives tests
// full control over the throttle boundary.
type ManualScheduler struct {
	pending []*manualEntry
}

type manualEntry struct {
	fn       func()
	canceled bool
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func()) CancelFunc {
	e := &manualEntry{fn: fn}
	s.pending = append(s.pending, e)
	return func() { e.canceled = true }
}

// Flush runs every pending non-canceled callback in order.
func (s *ManualScheduler) Flush() {
	pending := s.pending
	s.pending = nil
	for _, e := range pending {
		if !e.canceled {
			e.fn()
		}
	}
}

// Pending returns the number of queued callbacks, canceled ones included.
func (s *ManualScheduler) Pending() int {
	return len(s.pending)
}
