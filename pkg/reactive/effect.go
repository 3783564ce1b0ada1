package reactive

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Cleanup is an optional function returned by an effect body. It runs before
// the effect re-runs and when the effect is disposed.
type Cleanup func()

// Effect is a callback that re-runs whenever any cell it read during its
// most recent execution changes. Dependency discovery is automatic: the
// effect is pushed onto the runtime's execution stack while its body runs,
// and every Cell.Get during that window records a dependency edge.
type Effect struct {
	id uint64
	rt *Runtime

	fn      func() Cleanup
	cleanup Cleanup

	// sources is the dependency record: a back-reference to every cell
	// subscriber list this effect is currently registered in. It mirrors
	// exactly the set of cells read during the most recent execution.
	sources []*cellCore

	// running guards against direct self re-entrance while the body
	// executes.
	running bool

	disposed bool
}

// NewEffect creates an effect and runs it immediately. The returned handle's
// Dispose must be called when the effect is no longer needed; dropping the
// handle without disposing leaks the subscriptions it holds.
func NewEffect(rt *Runtime, fn func() Cleanup) *Effect {
	rt.stats.effectsCreated.Add(1)
	e := &Effect{
		id: rt.nextID(),
		rt: rt,
		fn: fn,
	}
	e.run()
	return e
}

// ID returns the unique identifier of this effect within its runtime.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// run executes the effect body. The dependency record is cleared before the
// body runs; reads during the run rebuild it. Clearing first is what lets
// dependencies shrink when a conditional branch stops reading a cell.
//
// Stack bookkeeping is released on all exit paths, including a panicking
// body; otherwise subsequent unrelated reads would be attributed to a
// finished execution. A body that panics leaves the dependency record
// holding only whatever was read before the panic.
func (e *Effect) run() {
	if e.disposed {
		return
	}

	e.rt.stats.effectRuns.Add(1)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.clearSources()

	var span trace.Span
	if e.rt.tracer != nil {
		_, span = e.rt.tracer.Start(context.Background(), "effect.run",
			trace.WithAttributes(attribute.Int64("effect.id", int64(e.id))))
	}

	e.running = true
	e.rt.push(e)
	defer func() {
		e.rt.pop()
		e.running = false
		if span != nil {
			span.End()
		}
	}()

	e.cleanup = e.fn()
}

// addSource records a cell in the dependency record. Called by cells when
// they are read during this effect's execution.
func (e *Effect) addSource(c *cellCore) {
	for _, s := range e.sources {
		if s == c {
			return
		}
	}
	e.sources = append(e.sources, c)
}

// clearSources unsubscribes the effect from every cell it previously read
// and empties the dependency record.
func (e *Effect) clearSources() {
	for _, s := range e.sources {
		s.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

// Dispose runs any pending cleanup, removes the effect from every subscriber
// list it is registered in, and marks it inert. Idempotent.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.clearSources()
	e.sources = nil
}
