package dom

import "sync/atomic"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // Named container node
	KindText                // Leaf text node
	KindMarker              // Boundary sentinel, invisible to hosts
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindMarker:
		return "Marker"
	default:
		return "Unknown"
	}
}

// nodeIDCounter is the source of unique node IDs, shared across documents so
// patches from different trees never collide.
var nodeIDCounter uint64

func nextNodeID() uint64 {
	return atomic.AddUint64(&nodeIDCounter, 1)
}

// Node is a node of the display tree. Nodes are created detached and become
// part of a document when inserted under its root.
type Node struct {
	id   uint64
	kind Kind
	tag  string // element tag or marker label
	text string // KindText content

	attrs map[string]string

	parent     *Node
	firstChild *Node
	lastChild  *Node
	prev       *Node
	next       *Node

	// doc is set on the document root only; ownership of descendants is
	// resolved by walking up to the root.
	doc *Document
}

// NewElement creates a detached element node.
func NewElement(tag string) *Node {
	return &Node{id: nextNodeID(), kind: KindElement, tag: tag}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{id: nextNodeID(), kind: KindText, text: text}
}

// NewMarker creates a boundary marker. Markers participate in sibling order
// like any node but carry no content; reconcilers use a pair of them to
// delimit the region of a parent they manage.
func NewMarker(label string) *Node {
	return &Node{id: nextNodeID(), kind: KindMarker, tag: label}
}

// ID returns the node's unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Kind returns the node type.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag or marker label.
func (n *Node) Tag() string { return n.tag }

// Text returns the text content of a KindText node.
func (n *Node) Text() string { return n.text }

// Parent returns the parent node, or nil for detached nodes and roots.
func (n *Node) Parent() *Node { return n.parent }

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node { return n.next }

// PrevSibling returns the previous sibling, or nil.
func (n *Node) PrevSibling() *Node { return n.prev }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.lastChild }

// Attr returns the value of an attribute and whether it is set.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.firstChild; c != nil; c = c.next {
		count++
	}
	return count
}

// Children returns a snapshot of the direct children in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// SetText replaces the content of a text node.
func (n *Node) SetText(text string) {
	if n.text == text {
		return
	}
	n.withLock(func() {
		n.text = text
	})
	n.record(Patch{Op: PatchSetText, NodeID: n.id, Text: text})
}

// SetAttr sets an attribute on an element node.
func (n *Node) SetAttr(key, value string) {
	if old, ok := n.attrs[key]; ok && old == value {
		return
	}
	n.withLock(func() {
		if n.attrs == nil {
			n.attrs = make(map[string]string)
		}
		n.attrs[key] = value
	})
	n.record(Patch{Op: PatchSetAttr, NodeID: n.id, Key: key, Value: value})
}

// RemoveAttr removes an attribute from an element node.
func (n *Node) RemoveAttr(key string) {
	if _, ok := n.attrs[key]; !ok {
		return
	}
	n.withLock(func() {
		delete(n.attrs, key)
	})
	n.record(Patch{Op: PatchRemoveAttr, NodeID: n.id, Key: key})
}

// InsertBefore inserts child before ref among n's children. A nil ref
// appends. A child already in a tree is detached first, so a single
// insert-before relocates a node. Ref must be a child of n.
func (n *Node) InsertBefore(child, ref *Node) {
	if child == nil || child == ref {
		return
	}
	n.withLock(func() {
		if child.parent != nil {
			child.parent.detach(child)
		}

		child.parent = n
		if ref == nil {
			child.prev = n.lastChild
			child.next = nil
			if n.lastChild != nil {
				n.lastChild.next = child
			} else {
				n.firstChild = child
			}
			n.lastChild = child
		} else {
			child.prev = ref.prev
			child.next = ref
			if ref.prev != nil {
				ref.prev.next = child
			} else {
				n.firstChild = child
			}
			ref.prev = child
		}
	})

	p := Patch{Op: PatchInsertNode, NodeID: child.id, ParentID: n.id}
	if ref != nil {
		p.RefID = ref.id
	}
	if child.kind == KindText {
		p.Text = child.text
	} else {
		p.Tag = child.tag
	}
	n.record(p)
}

// AppendChild appends child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// RemoveChild detaches child from n. Child must be a child of n.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	n.withLock(func() {
		n.detach(child)
	})
	n.record(Patch{Op: PatchRemoveNode, NodeID: child.id, ParentID: n.id})
}

// detach unlinks child from n without recording a patch.
func (n *Node) detach(child *Node) {
	if child.prev != nil {
		child.prev.next = child.next
	} else {
		n.firstChild = child.next
	}
	if child.next != nil {
		child.next.prev = child.prev
	} else {
		n.lastChild = child.prev
	}
	child.parent = nil
	child.prev = nil
	child.next = nil
}

// document resolves the owning document by walking to the root. The walk
// reads parent links without the document lock; links are only written by
// the mutating goroutine, so this is safe there and nowhere else.
func (n *Node) document() *Document {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root.doc
}

// withLock runs the mutation under the owning document's write lock, so a
// concurrent Snapshot never observes half-applied link or attribute surgery.
// Detached subtrees have no document and mutate lock-free. A node moving
// between parents must stay within one document.
func (n *Node) withLock(fn func()) {
	if d := n.document(); d != nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		fn()
		return
	}
	fn()
}

// record forwards a mutation to the owning document's observer, if any.
func (n *Node) record(p Patch) {
	d := n.document()
	if d == nil {
		return
	}
	d.mu.RLock()
	fn := d.observer
	d.mu.RUnlock()
	if fn != nil {
		fn(p)
	}
}
