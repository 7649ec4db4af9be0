package gaoya

import (
	"github.com/serega/gaoya/container"
	"github.com/serega/gaoya/internal/bandkey"
)

// SimIndex is a banded SimHash index: an M-bit signature is split into B
// equal-width bands, each band a key into its own bucket table, plus a
// primary id -> signature map for refinement. Adapted from go-simstore's
// Store, which hardcoded four fixed 16-bit-rotation band layouts for
// hamming distance 3 or 6 on a 64-bit signature; SimIndex generalizes that
// to any (width, bands, threshold) permitted by SimParams instead of two
// hand-picked configurations.
type SimIndex[ID comparable] struct {
	params  SimParams
	factory container.Factory[ID]
	bands   []map[uint64]container.Container[ID]
	primary map[ID]SimSignature
}

// NewSimIndex constructs an empty SimIndex.
func NewSimIndex[ID comparable](p SimParams, factory container.Factory[ID]) (*SimIndex[ID], error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bands := make([]map[uint64]container.Container[ID], p.Bands)
	for i := range bands {
		bands[i] = make(map[uint64]container.Container[ID])
	}
	return &SimIndex[ID]{
		params:  p,
		factory: factory,
		bands:   bands,
		primary: make(map[ID]SimSignature),
	}, nil
}

// Size returns the number of indexed ids.
func (idx *SimIndex[ID]) Size() int { return len(idx.primary) }

// Each calls fn once per indexed (id, signature) pair in unspecified
// order, stopping early if fn returns false.
func (idx *SimIndex[ID]) Each(fn func(ID, SimSignature) bool) {
	for id, sig := range idx.primary {
		if !fn(id, sig) {
			return
		}
	}
}

// Params returns the index's construction parameters.
func (idx *SimIndex[ID]) Params() SimParams { return idx.params }

func (idx *SimIndex[ID]) bandKeys(sig SimSignature) []uint64 {
	bw := idx.params.bandWidth()
	keys := make([]uint64, idx.params.Bands)
	for b := 0; b < idx.params.Bands; b++ {
		keys[b] = bandkey.FoldBits(sig, b*bw, bw)
	}
	return keys
}

func (idx *SimIndex[ID]) checkSignature(sig SimSignature) error {
	if len(sig) != (idx.params.Width+63)/64 {
		return ErrSignatureMismatch
	}
	if idx.params.RejectEmptySignatures && isZero(sig) {
		return ErrEmptySignature
	}
	return nil
}

func isZero(sig SimSignature) bool {
	for _, w := range sig {
		if w != 0 {
			return false
		}
	}
	return true
}

// Insert adds id with signature sig, atomically updating every band bucket
// and the primary map, or none of them on error.
func (idx *SimIndex[ID]) Insert(id ID, sig SimSignature) error {
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
			idx.rollbackInsert(id, keys, inserted)
			return ErrDuplicateID
		}
		inserted = append(inserted, b)
	}

	idx.primary[id] = sig
	return nil
}

func (idx *SimIndex[ID]) rollbackInsert(id ID, keys []uint64, done []int) {
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
func (idx *SimIndex[ID]) Remove(id ID) (SimSignature, bool) {
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

func (idx *SimIndex[ID]) candidates(sig SimSignature) map[ID]struct{} {
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

// Query returns every indexed id whose stored signature has Hamming-derived
// similarity to sig at least the index's threshold.
func (idx *SimIndex[ID]) Query(sig SimSignature) (map[ID]struct{}, error) {
	if err := idx.checkSignature(sig); err != nil {
		return nil, err
	}
	result := make(map[ID]struct{})
	for id := range idx.candidates(sig) {
		if SimSimilarity(sig, idx.primary[id], idx.params.Width) >= idx.params.Threshold {
			result[id] = struct{}{}
		}
	}
	return result, nil
}

// QueryOne is Query restricted to a single best match: the indexed id
// closest to sig by Hamming distance among candidates meeting the
// threshold, or false if none qualify.
func (idx *SimIndex[ID]) QueryOne(sig SimSignature) (id ID, similarity float64, found bool) {
	if err := idx.checkSignature(sig); err != nil {
		return id, 0, false
	}
	bestSim := -1.0
	for cand := range idx.candidates(sig) {
		sim := SimSimilarity(sig, idx.primary[cand], idx.params.Width)
		if sim >= idx.params.Threshold && sim > bestSim {
			bestSim = sim
			id = cand
			found = true
		}
	}
	return id, bestSim, found
}

// QueryReturnSimilarity is Query, additionally returning each result's
// estimated similarity score.
func (idx *SimIndex[ID]) QueryReturnSimilarity(sig SimSignature) ([]ScoredID[ID], error) {
	if err := idx.checkSignature(sig); err != nil {
		return nil, err
	}
	var out []ScoredID[ID]
	for id := range idx.candidates(sig) {
		sim := SimSimilarity(sig, idx.primary[id], idx.params.Width)
		if sim >= idx.params.Threshold {
			out = append(out, ScoredID[ID]{ID: id, Similarity: sim})
		}
	}
	return out, nil
}
