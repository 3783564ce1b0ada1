package reactive

// Computed is a derived cell whose value is produced by a computation and
// kept current eagerly: an internal effect re-invokes the computation and
// writes the result into an internal cell whenever any cell the computation
// reads changes.
//
// Reading a Computed inside an effect delegates to the internal cell, so
// the correct transitive dependency edge forms without the caller knowing
// about the internal effect. Chains of computed-on-computed propagate in a
// single synchronous cascade.
//
// Two computed values that read each other form a true cycle. The per-handle
// re-entrancy guard only stops a handle re-entering itself, not a ring of
// two or more handles; such a cycle recurses without bound.
type Computed[T any] struct {
	cell   *Cell[T]
	effect *Effect
}

// NewComputed creates a computed value and computes it immediately.
func NewComputed[T any](rt *Runtime, fn func() T) *Computed[T] {
	var zero T
	c := &Computed[T]{cell: NewCell(rt, zero)}
	c.effect = NewEffect(rt, func() Cleanup {
		c.cell.Set(fn())
		return nil
	})
	return c
}

// Get returns the current derived value, subscribing the running effect.
func (c *Computed[T]) Get() T {
	return c.cell.Get()
}

// Peek returns the current derived value without creating a dependency.
func (c *Computed[T]) Peek() T {
	return c.cell.Peek()
}

// ID returns the unique identifier of the underlying cell.
func (c *Computed[T]) ID() uint64 {
	return c.cell.ID()
}

// Dispose disposes the internal effect; the value stops updating. Idempotent.
func (c *Computed[T]) Dispose() {
	c.effect.Dispose()
}
