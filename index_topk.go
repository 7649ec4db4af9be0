package gaoya

import (
	"cmp"
	"container/heap"
)

// scoredHeap is a bounded min-heap over ScoredID, ordered by ascending
// similarity so the weakest of the retained top-k sits at the root and is
// the one evicted when a better candidate arrives. Adapted from
// go-simstore/vptree's priorityQueue, which runs the same bounded-heap
// search in reverse (smallest distances instead of largest similarities).
type scoredHeap[ID cmp.Ordered] []ScoredID[ID]

func (h scoredHeap[ID]) Len() int { return len(h) }
func (h scoredHeap[ID]) Less(i, j int) bool {
	if h[i].Similarity != h[j].Similarity {
		return h[i].Similarity < h[j].Similarity
	}
	// Ties break by larger id sitting at the root, so it is evicted first
	// and the final result favors the smaller id as the spec requires.
	return h[i].ID > h[j].ID
}
func (h scoredHeap[ID]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredHeap[ID]) Push(x any) { *h = append(*h, x.(ScoredID[ID])) }

func (h *scoredHeap[ID]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// QueryTopK returns at most k of idx's indexed ids with the highest
// estimated similarity to sig, sorted by descending similarity and, among
// ties, ascending id. ID must be ordered so that ties have a well-defined
// resolution; use Index.QueryReturnSimilarity directly if ID is not
// ordered.
func QueryTopK[T Lane, ID cmp.Ordered](idx *Index[T, ID], sig Signature[T], k int) ([]ScoredID[ID], error) {
	if k <= 0 {
		return nil, nil
	}
	if err := idx.checkSignature(sig); err != nil {
		return nil, err
	}

	h := make(scoredHeap[ID], 0, k)
	for id := range idx.candidates(sig) {
		sim := Similarity(sig, idx.primary[id])
		if sim < idx.params.Threshold {
			continue
		}
		scored := ScoredID[ID]{ID: id, Similarity: sim}
		if h.Len() < k {
			heap.Push(&h, scored)
			continue
		}
		if scored.Similarity > h[0].Similarity || (scored.Similarity == h[0].Similarity && scored.ID < h[0].ID) {
			heap.Pop(&h)
			heap.Push(&h, scored)
		}
	}

	out := make([]ScoredID[ID], h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(ScoredID[ID])
	}
	return out, nil
}
