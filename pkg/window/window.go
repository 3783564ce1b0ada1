package window

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/Pilves/dot/pkg/dom"
	"github.com/Pilves/dot/pkg/reactive"
	"github.com/Pilves/dot/pkg/reconcile"
)

// Configuration errors returned by New.
var (
	ErrItemSize     = errors.New("window: item size must be positive")
	ErrViewportSize = errors.New("window: viewport size must be positive")
	ErrRenderItem   = errors.New("window: render function is required")
)

// Options configures a VirtualWindow.
type Options[T any] struct {
	// Items supplies the full logical sequence. A reactive source re-renders
	// the window when its dependencies change.
	Items reconcile.Source[T]

	// ItemSize is the fixed extent of one item, in host units. Must be
	// positive.
	ItemSize int

	// ViewportSize is the extent of the visible area, in host units. Must be
	// positive.
	ViewportSize int

	// Buffer is the number of extra items rendered on each side of the
	// visible slice.
	Buffer int

	// RenderItem renders one item at its absolute index.
	RenderItem reconcile.RenderFunc[T]

	// Scheduler coalesces scroll offsets. Defaults to TickScheduler.
	Scheduler Scheduler
}

// Range is a half-open interval of absolute item indices.
type Range struct {
	Lo int
	Hi int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.Hi - r.Lo
}

// VisibleRange computes the rendered slice for a scroll offset. It is a pure
// function of its inputs: the first fully-or-partially visible index minus
// the buffer on the low side, the visible count plus the buffer on the high
// side, clamped to [0, count] and never negative-length.
func VisibleRange(offset, itemSize, viewportSize, buffer, count int) Range {
	first := offset / itemSize
	if offset < 0 {
		first = 0
	}
	visible := (viewportSize + itemSize - 1) / itemSize

	lo := first - buffer
	if lo < 0 {
		lo = 0
	}
	hi := first + visible + buffer
	if hi > count {
		hi = count
	}
	if lo > hi {
		lo = hi
	}
	return Range{Lo: lo, Hi: hi}
}

// VirtualWindow renders only the visible slice of a long sequence, plus a
// buffer margin, inside a spacer sized to the full extent. The rendered node
// count is bounded by ceil(viewport/item)+2*buffer regardless of the total
// item count.
type VirtualWindow[T any] struct {
	rt     *reactive.Runtime
	parent *dom.Node

	src        reconcile.Source[T]
	itemSize   int
	viewport   int
	buffer     int
	renderItem reconcile.RenderFunc[T]
	sched      Scheduler

	// spacer carries the full logical extent; rendered nodes live between
	// the two markers inside it, absolutely positioned.
	spacer *dom.Node
	start  *dom.Node
	end    *dom.Node

	// offset is the scroll-offset cell; the window effect reads it.
	offset *reactive.Cell[int]

	// version forces recomputation without an offset change (Refresh).
	version *reactive.Cell[int]

	// nodes caches rendered nodes keyed by absolute index.
	nodes *reconcile.OrderedMap[int, *dom.Node]

	effect *reactive.Effect

	// Throttle state: latest holds the most recent host offset, cancel the
	// pending frame callback.
	latest int
	cancel CancelFunc

	visible   Range
	count     int
	creates   atomic.Uint64
	removes   atomic.Uint64
	moves     atomic.Uint64
	destroyed bool
}

// New mounts a virtual window at the end of parent and renders the initial
// slice. Non-positive ItemSize or ViewportSize is a hard configuration
// error.
func New[T any](rt *reactive.Runtime, parent *dom.Node, opts Options[T]) (*VirtualWindow[T], error) {
	if opts.ItemSize <= 0 {
		return nil, ErrItemSize
	}
	if opts.ViewportSize <= 0 {
		return nil, ErrViewportSize
	}
	if opts.RenderItem == nil {
		return nil, ErrRenderItem
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = TickScheduler{}
	}

	w := &VirtualWindow[T]{
		rt:         rt,
		parent:     parent,
		src:        opts.Items,
		itemSize:   opts.ItemSize,
		viewport:   opts.ViewportSize,
		buffer:     opts.Buffer,
		renderItem: opts.RenderItem,
		sched:      sched,
		spacer:     dom.NewElement("spacer"),
		start:      dom.NewMarker("window-start"),
		end:        dom.NewMarker("window-end"),
		offset:     reactive.NewCell(rt, 0),
		version:    reactive.NewCell(rt, 0),
		nodes:      reconcile.NewOrderedMap[int, *dom.Node](),
	}
	w.spacer.AppendChild(w.start)
	w.spacer.AppendChild(w.end)
	parent.AppendChild(w.spacer)

	w.effect = reactive.NewEffect(rt, func() reactive.Cleanup {
		_ = w.version.Get()
		items := w.src.Resolve()
		offset := w.offset.Get()
		w.render(items, offset)
		return nil
	})
	return w, nil
}

// render reconciles the cached index window against the current offset and
// item count, in the same remove / create-or-reuse / reposition shape as
// the keyed reconciler.
func (w *VirtualWindow[T]) render(items []T, offset int) {
	if w.destroyed {
		return
	}

	w.count = len(items)
	r := VisibleRange(offset, w.itemSize, w.viewport, w.buffer, w.count)
	w.visible = r

	w.spacer.SetAttr("height", strconv.Itoa(w.count*w.itemSize))

	stale := append([]int(nil), w.nodes.Keys()...)
	for _, idx := range stale {
		if idx >= r.Lo && idx < r.Hi {
			continue
		}
		node, _ := w.nodes.Get(idx)
		w.spacer.RemoveChild(node)
		w.nodes.Delete(idx)
		w.removes.Add(1)
	}

	for i := r.Lo; i < r.Hi; i++ {
		if w.nodes.Has(i) {
			continue
		}
		node := w.renderItem(items[i], i)
		node.SetAttr("top", strconv.Itoa(i*w.itemSize))
		w.nodes.Set(i, node)
		w.creates.Add(1)
	}

	cursor := w.start.NextSibling()
	for i := r.Lo; i < r.Hi; i++ {
		node, _ := w.nodes.Get(i)
		if cursor == node {
			cursor = cursor.NextSibling()
			continue
		}
		if node.Parent() != nil {
			w.moves.Add(1)
		}
		w.spacer.InsertBefore(node, cursor)
	}
}

// SetScrollOffset feeds the host scroll position into the window. Offsets
// are coalesced: however many times this is called between frames, the
// scroll cell is written at most once per scheduled callback, with the
// latest value.
func (w *VirtualWindow[T]) SetScrollOffset(offset int) {
	if w.destroyed {
		return
	}
	w.latest = offset
	if w.cancel != nil {
		return
	}
	w.cancel = w.sched.Schedule(func() {
		w.cancel = nil
		w.offset.Set(w.latest)
	})
}

// ScrollToIndex jumps the window so the item at index is at the top of the
// viewport. The write is immediate, bypassing the throttle; any pending
// throttled offset is discarded.
func (w *VirtualWindow[T]) ScrollToIndex(index int) {
	if w.destroyed {
		return
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.latest = index * w.itemSize
	w.offset.Set(w.latest)
}

// GetVisibleRange returns the currently rendered index range.
func (w *VirtualWindow[T]) GetVisibleRange() Range {
	return w.visible
}

// ScrollOffset returns the current value of the scroll-offset cell.
func (w *VirtualWindow[T]) ScrollOffset() int {
	return w.offset.Peek()
}

// RenderedCount returns the number of currently rendered nodes.
func (w *VirtualWindow[T]) RenderedCount() int {
	return w.nodes.Len()
}

// Stats returns a snapshot of the cumulative churn counters for this window.
// Safe to call from any goroutine.
func (w *VirtualWindow[T]) Stats() reconcile.ListStats {
	return reconcile.ListStats{
		Creates: w.creates.Load(),
		Removes: w.removes.Load(),
		Moves:   w.moves.Load(),
	}
}

// Refresh forces a recompute without an offset change, for out-of-band
// mutations of a static source that the reactive graph cannot see.
func (w *VirtualWindow[T]) Refresh() {
	if w.destroyed {
		return
	}
	w.version.Update(func(v int) int { return v + 1 })
}

// Destroy cancels any pending throttled callback, disposes the window
// effect, and detaches the spacer with every rendered node. Idempotent.
func (w *VirtualWindow[T]) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.effect.Dispose()
	w.parent.RemoveChild(w.spacer)
	w.nodes = reconcile.NewOrderedMap[int, *dom.Node]()
}
