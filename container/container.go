// Package container implements the per-bucket ID storage used by a banded
// LSH index's band tables. The index is parameterized over one container
// implementation at construction — the choice is a whole-index policy, not
// a per-bucket one.
package container

// Container is the capability set a bucket storage implementation must
// provide: add-if-absent, remove, iterate, and size. Implementations need
// not be safe for concurrent use; an index does not lock its buckets, and
// writes to an index are serialized by its caller.
type Container[T comparable] interface {
	// AddIfAbsent inserts item if not already present and reports whether
	// an insertion happened.
	AddIfAbsent(item T) bool

	// Remove deletes item if present and reports whether a deletion
	// happened.
	Remove(item T) bool

	// Each calls fn for every stored item, in arbitrary order. Each stops
	// early if fn returns false.
	Each(fn func(T) bool)

	// Len reports the number of stored items.
	Len() int
}

// Factory constructs an empty Container; callers hold the factory rather
// than a container.Kind enum so that the index package stays decoupled
// from every container type it could be parameterized with. See
// NewHashSet, NewDense, and NewSmallVec.
type Factory[T comparable] func() Container[T]
