package reactive

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// cellCore provides type-erased subscriber management. It is embedded in
// Cell[T] and referenced from effect dependency records.
type cellCore struct {
	id uint64
	rt *Runtime

	// subs holds non-owning references to the effects currently subscribed
	// to this cell, in registration order. An effect appears here if and
	// only if its most recent execution read this cell.
	subs []*Effect
}

// track registers the innermost currently running effect as a subscriber
// and records this cell in that effect's dependency record.
func (c *cellCore) track() {
	e := c.rt.current()
	if e == nil {
		return
	}
	c.subscribe(e)
	e.addSource(c)
}

// subscribe adds an effect to the subscriber list, preserving registration
// order and deduplicating by identity.
func (c *cellCore) subscribe(e *Effect) {
	for _, existing := range c.subs {
		if existing == e {
			return
		}
	}
	c.subs = append(c.subs, e)
}

// unsubscribe removes an effect from the subscriber list. Removal preserves
// the order of the remaining subscribers; notification order is a documented
// part of the write contract.
func (c *cellCore) unsubscribe(e *Effect) {
	for i, existing := range c.subs {
		if existing == e {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// notify synchronously runs every current subscriber in registration order.
// Subscribers that are themselves mid-execution are skipped with a
// diagnostic; this is the re-entrancy guard that stops an effect writing to
// a cell it reads from recursing into itself. It does not detect indirect
// cycles between two or more effects.
func (c *cellCore) notify() {
	// Copy before notifying: running an effect rewrites its dependency
	// record, which mutates this subscriber list.
	subs := make([]*Effect, len(c.subs))
	copy(subs, c.subs)

	for _, e := range subs {
		if e.disposed {
			continue
		}
		if e.running {
			c.rt.stats.skipped.Add(1)
			c.rt.logger.Warn("reactive: skipping re-entrant notification",
				"cell", c.id, "effect", e.id)
			continue
		}
		e.run()
	}
}

// Cell is a reactive value container. Reading a Cell during an effect's
// execution automatically subscribes that effect to the cell's changes.
type Cell[T any] struct {
	core  cellCore
	value T

	// equal overrides the default identity comparison.
	equal func(T, T) bool
}

// NewCell creates a cell holding the given initial value.
func NewCell[T any](rt *Runtime, initial T) *Cell[T] {
	rt.stats.cellsCreated.Add(1)
	return &Cell[T]{
		core:  cellCore{id: rt.nextID(), rt: rt},
		value: initial,
	}
}

// Get returns the current value. If called while an effect is executing,
// the effect is registered as a subscriber and will re-run when this cell
// changes.
func (c *Cell[T]) Get() T {
	c.core.track()
	return c.value
}

// Peek returns the current value without creating a dependency.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Set stores a new value. When the value differs from the current one by
// identity, every subscriber is invoked synchronously, in registration
// order, before Set returns. Mutating a referenced structure in place
// without replacing the reference does not notify.
func (c *Cell[T]) Set(value T) {
	if c.equals(c.value, value) {
		return
	}
	c.value = value
	c.write()
}

// Update resolves an updater function against the current value and stores
// the result, with the same change detection and notification as Set.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// WithEquals overrides the change-detection comparison. The default compares
// by identity, never by deep equality.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// ID returns the unique identifier of this cell within its runtime.
func (c *Cell[T]) ID() uint64 {
	return c.core.id
}

func (c *Cell[T]) write() {
	rt := c.core.rt
	rt.stats.writes.Add(1)

	if rt.tracer != nil {
		_, span := rt.tracer.Start(context.Background(), "cell.write",
			trace.WithAttributes(
				attribute.Int64("cell.id", int64(c.core.id)),
				attribute.Int("cell.subscribers", len(c.core.subs)),
			))
		defer span.End()
	}

	c.core.notify()
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return identical(a, b)
}

// identical compares two values by identity. Comparable values (numbers,
// strings, pointers, interfaces of comparable dynamic type) compare with ==;
// pointers therefore compare by address. Non-comparable values such as
// slices and maps always count as changed, which is the closest rendering of
// reference identity Go allows: a freshly built slice is a new reference.
func identical[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if !reflect.TypeOf(av).Comparable() {
		return false
	}
	return av == bv
}
