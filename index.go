package gaoya

import (
	"github.com/serega/gaoya/container"
	"github.com/serega/gaoya/internal/bandkey"
)

// Index is a banded MinHash index: B band tables, each keyed by an
// R-lane slice of the signature, mapping to an ID container, plus a
// primary id -> signature map. A single instance permits any number of
// concurrent readers only while no writer is active; concurrent
// insert/remove from multiple goroutines on a shared instance is not
// supported — writes must be serialized by the caller or routed through a
// single builder task.
type Index[T Lane, ID comparable] struct {
	params  Params
	factory container.Factory[ID]
	bands   []map[uint64]container.Container[ID]
	primary map[ID]Signature[T]
}

// NewIndex constructs an empty Index. factory chooses the per-bucket
// container implementation (container.NewHashSet, container.NewDense, or
// container.NewSmallVec); the choice applies to every bucket in the index,
// not per-bucket.
func NewIndex[T Lane, ID comparable](p Params, factory container.Factory[ID]) (*Index[T, ID], error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bands := make([]map[uint64]container.Container[ID], p.Bands)
	for i := range bands {
		bands[i] = make(map[uint64]container.Container[ID])
	}
	return &Index[T, ID]{
		params:  p,
		factory: factory,
		bands:   bands,
		primary: make(map[ID]Signature[T]),
	}, nil
}

// Size returns the number of indexed ids.
func (idx *Index[T, ID]) Size() int { return len(idx.primary) }

// Each calls fn once per indexed (id, signature) pair in unspecified
// order, stopping early if fn returns false.
func (idx *Index[T, ID]) Each(fn func(ID, Signature[T]) bool) {
	for id, sig := range idx.primary {
		if !fn(id, sig) {
			return
		}
	}
}

// Params returns the index's construction parameters.
func (idx *Index[T, ID]) Params() Params { return idx.params }

func (idx *Index[T, ID]) bandKeys(sig Signature[T]) []uint64 {
	keys := make([]uint64, idx.params.Bands)
	for b := 0; b < idx.params.Bands; b++ {
		start := b * idx.params.Rows
		end := start + idx.params.Rows
		keys[b] = bandkey.Fold(sig[start:end])
	}
	return keys
}

func (idx *Index[T, ID]) checkSignature(sig Signature[T]) error {
	if len(sig) != idx.params.K() {
		return ErrSignatureMismatch
	}
	if idx.params.RejectEmptySignatures && sig.IsEmpty() {
		return ErrEmptySignature
	}
	return nil
}

// Insert adds id with signature sig. It fails with ErrDuplicateID if id is
// already present, or ErrSignatureMismatch if len(sig) != K. Insertion is
// atomic: either all B band buckets and the primary map are updated, or
// none are.
func (idx *Index[T, ID]) Insert(id ID, sig Signature[T]) error {
	if err := idx.checkSignature(sig); err != nil {
		return err
	}
	if _, exists := idx.primary[id]; exists {
		return ErrDuplicateID
	}

	keys := idx.bandKeys(sig)
	inserted := make([]int, 0, idx.params.Bands)
	for b, key := range keys {
		bucket, ok := idx.bands[b][key]
		if !ok {
			bucket = idx.factory()
			idx.bands[b][key] = bucket
		}
		if !bucket.AddIfAbsent(id) {
			// Invariant violation: id was absent from the primary map but
			// present in a band bucket. Roll back everything inserted so
			// far and surface nothing worse than a no-op to the caller.
			idx.rollbackInsert(id, keys, inserted)
			return ErrDuplicateID
		}
		inserted = append(inserted, b)
	}

	idx.primary[id] = sig
	return nil
}

func (idx *Index[T, ID]) rollbackInsert(id ID, keys []uint64, done []int) {
	for _, b := range done {
		key := keys[b]
		bucket := idx.bands[b][key]
		bucket.Remove(id)
		if bucket.Len() == 0 {
			delete(idx.bands[b], key)
		}
	}
}

// Remove deletes id and returns its stored signature and true, or a nil
// signature and false if id was not present.
func (idx *Index[T, ID]) Remove(id ID) (Signature[T], bool) {
	sig, exists := idx.primary[id]
	if !exists {
		return nil, false
	}

	keys := idx.bandKeys(sig)
	for b, key := range keys {
		bucket, ok := idx.bands[b][key]
		if !ok {
			continue
		}
		bucket.Remove(id)
		if bucket.Len() == 0 {
			delete(idx.bands[b], key)
		}
	}
	delete(idx.primary, id)
	return sig, true
}

// candidates unions the ids found in every band bucket matching sig's
// slices, without yet refining by exact similarity.
func (idx *Index[T, ID]) candidates(sig Signature[T]) map[ID]struct{} {
	out := make(map[ID]struct{})
	for b, key := range idx.bandKeys(sig) {
		bucket, ok := idx.bands[b][key]
		if !ok {
			continue
		}
		bucket.Each(func(id ID) bool {
			out[id] = struct{}{}
			return true
		})
	}
	return out
}

// Query returns every indexed id whose stored signature has estimated
// Jaccard similarity to sig at least the index's threshold.
func (idx *Index[T, ID]) Query(sig Signature[T]) (map[ID]struct{}, error) {
	if err := idx.checkSignature(sig); err != nil {
		return nil, err
	}
	result := make(map[ID]struct{})
	for id := range idx.candidates(sig) {
		if Similarity(sig, idx.primary[id]) >= idx.params.Threshold {
			result[id] = struct{}{}
		}
	}
	return result, nil
}

// ScoredID pairs an indexed id with its estimated similarity to a query
// signature.
type ScoredID[ID any] struct {
	ID         ID
	Similarity float64
}

// QueryReturnSimilarity is Query, additionally returning each result's
// estimated similarity score.
func (idx *Index[T, ID]) QueryReturnSimilarity(sig Signature[T]) ([]ScoredID[ID], error) {
	if err := idx.checkSignature(sig); err != nil {
		return nil, err
	}
	var out []ScoredID[ID]
	for id := range idx.candidates(sig) {
		sim := Similarity(sig, idx.primary[id])
		if sim >= idx.params.Threshold {
			out = append(out, ScoredID[ID]{ID: id, Similarity: sim})
		}
	}
	return out, nil
}

// BandCentroid returns a signature whose lane i is the lane value that
// occurs most often among ids at lane i (majority vote per lane),
// grounded on gaoya's minhash_band_centroid_from_refs. Used to pick a
// single representative signature for a cluster of near-duplicate ids
// without re-signing their original documents.
func (idx *Index[T, ID]) BandCentroid(ids []ID) (Signature[T], error) {
	if len(ids) == 0 {
		return nil, ErrUnknownID
	}
	k := idx.params.K()
	counts := make([]map[T]int, k)
	for i := range counts {
		counts[i] = make(map[T]int)
	}
	for _, id := range ids {
		sig, ok := idx.primary[id]
		if !ok {
			return nil, ErrUnknownID
		}
		for i, lane := range sig {
			counts[i][lane]++
		}
	}

	centroid := make(Signature[T], k)
	for i, byLane := range counts {
		best, bestCount := Saturation[T](), -1
		for lane, count := range byLane {
			if count > bestCount {
				best, bestCount = lane, count
			}
		}
		centroid[i] = best
	}
	return centroid, nil
}
