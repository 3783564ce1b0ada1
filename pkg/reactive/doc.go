// Package reactive provides the fine-grained reactive core for dot.
//
// Dependencies are discovered automatically at runtime: reading a cell while
// an effect is executing subscribes that effect to the cell, with no explicit
// subscribe calls. Every primitive is created against a Runtime, which owns
// the execution stack, so multiple independent reactive runtimes can coexist
// in one process and tests run in isolation.
//
// # Core Types
//
// Cell[T] is a reactive value container:
//
//	count := NewCell(rt, 0)
//	value := count.Get()  // Read (subscribes the running effect, if any)
//	count.Set(5)          // Write (notifies subscribers synchronously)
//	count.Update(func(n int) int { return n + 1 })
//
// Effect runs a callback and re-runs it whenever any cell it read during its
// most recent execution changes:
//
//	eff := NewEffect(rt, func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//	defer eff.Dispose()
//
// Computed[T] is a derived cell kept current by an internal effect:
//
//	doubled := NewComputed(rt, func() int { return count.Get() * 2 })
//	value := doubled.Get()
//
// # Propagation Model
//
// The runtime is single-threaded, cooperative and synchronous. A Set call
// does not return until every transitively notified effect has finished
// running, depth-first, on the calling goroutine. There is no batching: each
// write that changes a value triggers its full notification cascade
// immediately. Values are compared by identity, not deep equality, so
// mutating a referenced structure in place without replacing the reference
// does not notify.
//
// A per-handle re-entrancy guard skips notifications to an effect that is
// itself mid-execution, preventing unbounded direct self-recursion. It does
// not detect rings of two or more handles; a genuine dependency cycle among
// computed cells recurses without bound.
package reactive
