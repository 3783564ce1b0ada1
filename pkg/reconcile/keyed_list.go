package reconcile

import (
	"sync/atomic"

	"github.com/Pilves/dot/pkg/dom"
	"github.com/Pilves/dot/pkg/reactive"
)

// KeyFunc extracts the reconciliation key for an item. Keys must be unique
// within one sequence; when two items share a key, the later one wins in the
// mapping and which node stays visible is unspecified.
type KeyFunc[T any] func(item T) string

// RenderFunc renders an item at its position into a fresh display node. It
// is called once per key; a reused node is never re-rendered.
type RenderFunc[T any] func(item T, index int) *dom.Node

// ListStats is a snapshot of node churn across the life of a reconciled
// region.
type ListStats struct {
	Creates uint64 // nodes rendered for new keys
	Removes uint64 // nodes detached for vanished keys
	Moves   uint64 // relocations of already-attached nodes
}

// listCounters is the live backing for ListStats. Atomic so a metrics scrape
// on another goroutine can read mid-update.
type listCounters struct {
	creates atomic.Uint64
	removes atomic.Uint64
	moves   atomic.Uint64
}

func (c *listCounters) snapshot() ListStats {
	return ListStats{
		Creates: c.creates.Load(),
		Removes: c.removes.Load(),
		Moves:   c.moves.Load(),
	}
}

type entry[T any] struct {
	node *dom.Node
	item T // last-seen item for this key
}

// KeyedList keeps a region of a parent node in sync with an ordered
// sequence. The region is delimited by two boundary markers; everything
// between them is owned by the list and must not be mutated by anyone else.
type KeyedList[T any] struct {
	rt     *reactive.Runtime
	parent *dom.Node

	keyFn    KeyFunc[T]
	renderFn RenderFunc[T]

	start *dom.Node
	end   *dom.Node

	nodes *OrderedMap[string, entry[T]]

	// effect drives re-renders for reactive sources; nil for static ones.
	effect *reactive.Effect

	stats     listCounters
	destroyed bool
}

// New mounts a reconciled region at the end of parent and renders the
// source's current sequence. A reactive source re-renders the region
// whenever its dependencies change, until Destroy is called.
func New[T any](rt *reactive.Runtime, parent *dom.Node, src Source[T], keyFn KeyFunc[T], renderFn RenderFunc[T]) *KeyedList[T] {
	l := &KeyedList[T]{
		rt:       rt,
		parent:   parent,
		keyFn:    keyFn,
		renderFn: renderFn,
		start:    dom.NewMarker("list-start"),
		end:      dom.NewMarker("list-end"),
		nodes:    NewOrderedMap[string, entry[T]](),
	}
	parent.AppendChild(l.start)
	parent.AppendChild(l.end)

	if src.Reactive() {
		l.effect = reactive.NewEffect(rt, func() reactive.Cleanup {
			l.apply(src.Resolve())
			return nil
		})
	} else {
		l.apply(src.Resolve())
	}
	return l
}

// apply reconciles the managed region against a new sequence.
func (l *KeyedList[T]) apply(items []T) {
	if l.destroyed {
		return
	}

	keys := make([]string, len(items))
	inNext := make(map[string]struct{}, len(items))
	for i, item := range items {
		k := l.keyFn(item)
		keys[i] = k
		inNext[k] = struct{}{}
	}

	// Remove: keys absent from the new sequence lose their nodes.
	stale := append([]string(nil), l.nodes.Keys()...)
	for _, k := range stale {
		if _, ok := inNext[k]; ok {
			continue
		}
		e, _ := l.nodes.Get(k)
		l.parent.RemoveChild(e.node)
		l.nodes.Delete(k)
		l.stats.removes.Add(1)
	}

	// Create-or-reuse: existing keys keep their node untouched (only the
	// last-seen item updates, last-wins under duplicate keys); new keys
	// render a fresh node.
	for i, item := range items {
		k := keys[i]
		if e, ok := l.nodes.Get(k); ok {
			e.item = item
			l.nodes.Set(k, e)
			continue
		}
		l.nodes.Set(k, entry[T]{node: l.renderFn(item, i), item: item})
		l.stats.creates.Add(1)
	}

	// Reposition: one linear pass over the region. When the node under the
	// cursor is not the one expected at this position, a single
	// insert-before puts the expected node there; otherwise advance.
	cursor := l.start.NextSibling()
	for _, k := range keys {
		e, _ := l.nodes.Get(k)
		if cursor == e.node {
			cursor = cursor.NextSibling()
			continue
		}
		if e.node.Parent() != nil {
			l.stats.moves.Add(1)
		}
		l.parent.InsertBefore(e.node, cursor)
	}
}

// Node returns the rendered node for key, if the key is currently mapped.
func (l *KeyedList[T]) Node(key string) (*dom.Node, bool) {
	e, ok := l.nodes.Get(key)
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Item returns the last-seen item for key.
func (l *KeyedList[T]) Item(key string) (T, bool) {
	e, ok := l.nodes.Get(key)
	return e.item, ok
}

// Len returns the number of mapped keys.
func (l *KeyedList[T]) Len() int {
	return l.nodes.Len()
}

// Keys returns the mapped keys in first-insertion order.
func (l *KeyedList[T]) Keys() []string {
	return l.nodes.Keys()
}

// Stats returns a snapshot of the cumulative churn counters for this region.
// Safe to call from any goroutine.
func (l *KeyedList[T]) Stats() ListStats {
	return l.stats.snapshot()
}

// Destroy detaches every cached node and the boundary markers, and disposes
// the internal effect. Idempotent; the list is unusable afterwards.
func (l *KeyedList[T]) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true

	if l.effect != nil {
		l.effect.Dispose()
	}
	l.nodes.Range(func(_ string, e entry[T]) bool {
		l.parent.RemoveChild(e.node)
		return true
	})
	l.nodes = NewOrderedMap[string, entry[T]]()
	l.parent.RemoveChild(l.start)
	l.parent.RemoveChild(l.end)
}
