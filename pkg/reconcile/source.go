package reconcile

// sourceKind discriminates the two ways a sequence can be supplied.
type sourceKind uint8

const (
	sourceStatic sourceKind = iota
	sourceGetter
)

// Source is a tagged supplier of an ordered sequence: either a fixed slice
// or a reactive getter. The variant is resolved once at the construction
// boundary, never re-checked per update.
type Source[T any] struct {
	kind   sourceKind
	items  []T
	getter func() []T
}

// Static supplies a fixed sequence, rendered once.
func Static[T any](items []T) Source[T] {
	return Source[T]{kind: sourceStatic, items: items}
}

// Func supplies a reactive getter. The region re-renders whenever a cell the
// getter reads changes.
func Func[T any](fn func() []T) Source[T] {
	return Source[T]{kind: sourceGetter, getter: fn}
}

// Reactive reports whether the source is a reactive getter.
func (s Source[T]) Reactive() bool {
	return s.kind == sourceGetter
}

// Resolve returns the current sequence.
func (s Source[T]) Resolve() []T {
	if s.kind == sourceGetter {
		return s.getter()
	}
	return s.items
}
