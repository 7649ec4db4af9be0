package container

// smallVecInline is the number of ids SmallVec keeps in its own struct
// before spilling to a heap-allocated slice. Chosen to match the common
// LSH regime where a band's bucket holds a handful of ids.
const smallVecInline = 4

// SmallVec stores up to smallVecInline ids inline with no heap allocation,
// spilling the rest to an overflow slice once the inline array fills.
// Covers the common case where LSH parameters are tuned so each bucket
// holds few items.
type SmallVec[T comparable] struct {
	inline   [smallVecInline]T
	inlineN  int
	overflow []T
}

// NewSmallVec returns a Factory producing empty SmallVec containers.
func NewSmallVec[T comparable]() Factory[T] {
	return func() Container[T] {
		return &SmallVec[T]{}
	}
}

func (s *SmallVec[T]) contains(item T) bool {
	for i := 0; i < s.inlineN; i++ {
		if s.inline[i] == item {
			return true
		}
	}
	for _, v := range s.overflow {
		if v == item {
			return true
		}
	}
	return false
}

func (s *SmallVec[T]) AddIfAbsent(item T) bool {
	if s.contains(item) {
		return false
	}
	if s.inlineN < smallVecInline {
		s.inline[s.inlineN] = item
		s.inlineN++
		return true
	}
	s.overflow = append(s.overflow, item)
	return true
}

func (s *SmallVec[T]) Remove(item T) bool {
	for i := 0; i < s.inlineN; i++ {
		if s.inline[i] != item {
			continue
		}
		// Refill the hole from the overflow tail if there is one, else
		// from the inline tail, to keep the inline region dense.
		if len(s.overflow) > 0 {
			s.inline[i] = s.overflow[len(s.overflow)-1]
			s.overflow = s.overflow[:len(s.overflow)-1]
		} else {
			s.inlineN--
			s.inline[i] = s.inline[s.inlineN]
		}
		return true
	}
	for i, v := range s.overflow {
		if v == item {
			last := len(s.overflow) - 1
			s.overflow[i] = s.overflow[last]
			s.overflow = s.overflow[:last]
			return true
		}
	}
	return false
}

func (s *SmallVec[T]) Each(fn func(T) bool) {
	for i := 0; i < s.inlineN; i++ {
		if !fn(s.inline[i]) {
			return
		}
	}
	for _, v := range s.overflow {
		if !fn(v) {
			return
		}
	}
}

func (s *SmallVec[T]) Len() int { return s.inlineN + len(s.overflow) }
