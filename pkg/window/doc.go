// Package window renders a bounded slice of a very long sequence.
//
// A VirtualWindow keeps at most visible-count plus two buffers of rendered
// nodes alive regardless of the total item count. It is layered on the same
// node-cache-and-reconcile pattern as package reconcile, but keyed by
// absolute index and driven by a scroll-offset cell. Each rendered node is
// absolutely positioned inside a spacer sized to the full logical extent, so
// the host's native scroll proportions reflect the whole sequence.
//
// Scroll offsets are coalesced through a Scheduler to at most one
// recomputation per frame-equivalent interval; this throttle is the single
// asynchronous boundary in the core.
package window
