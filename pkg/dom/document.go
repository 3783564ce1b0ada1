package dom

import "sync"

// Document owns a display tree and observes its mutations.
//
// Mutations must all happen on one goroutine; the lock below does not make
// concurrent mutation safe. It exists so Snapshot can be called from other
// goroutines (HTTP handlers, scrapes) without observing a half-applied
// mutation.
type Document struct {
	mu       sync.RWMutex
	root     *Node
	observer func(Patch)
}

// NewDocument creates a document with an empty root element.
func NewDocument() *Document {
	d := &Document{root: NewElement("#root")}
	d.root.doc = d
	return d
}

// Root returns the document's root node.
func (d *Document) Root() *Node {
	return d.root
}

// Observe installs the mutation observer. Every structural or content
// mutation anywhere under the root is reported as a Patch, in the order it
// happened. Passing nil detaches the observer.
//
// The observer runs synchronously on the mutating goroutine; it must not
// mutate the tree itself or call Snapshot.
func (d *Document) Observe(fn func(Patch)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = fn
}

// Snapshot returns a serializable copy of the tree rooted at the document
// root, for clients that join after mutations have already streamed. Safe to
// call from any goroutine.
func (d *Document) Snapshot() *NodeSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshot(d.root)
}

// NodeSnapshot is a plain serializable view of a node and its descendants.
type NodeSnapshot struct {
	ID       uint64            `json:"id"`
	Kind     string            `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*NodeSnapshot   `json:"children,omitempty"`
}

func snapshot(n *Node) *NodeSnapshot {
	s := &NodeSnapshot{
		ID:   n.id,
		Kind: n.kind.String(),
		Tag:  n.tag,
		Text: n.text,
	}
	if len(n.attrs) > 0 {
		s.Attrs = make(map[string]string, len(n.attrs))
		for k, v := range n.attrs {
			s.Attrs[k] = v
		}
	}
	for c := n.firstChild; c != nil; c = c.next {
		s.Children = append(s.Children, snapshot(c))
	}
	return s
}
