package gaoya_test

import (
	"fmt"
	"sort"

	"github.com/serega/gaoya"
	"github.com/serega/gaoya/container"
	"github.com/serega/gaoya/minhash"
)

// ExampleIndex walks the same load-sign-insert-query flow go-simstore's simd
// command ran over HTTP, minus the serving loop: tokenize documents, sign
// them, build an index, and query it for near-duplicates.
func ExampleIndex() {
	corpus := []string{
		"This is the first document.",
		"This document is the second document.",
		"And this is the third document.",
		"Is this the first document?",
		"This not the first nor the second nor the third, but the fourth document",
	}

	const bands, rows = 42, 3
	signer := minhash.New[uint32](bands*rows, 1)

	idx, err := gaoya.NewIndex[uint32, int](gaoya.Params{
		Bands:     bands,
		Rows:      rows,
		Threshold: 0.5,
	}, container.NewHashSet[int]())
	if err != nil {
		panic(err)
	}

	sigs := make([]gaoya.Signature[uint32], len(corpus))
	for i, doc := range corpus {
		sigs[i] = signer.Sign(minhash.Strings(tokenizeWords(doc)))
		if err := idx.Insert(i, sigs[i]); err != nil {
			panic(err)
		}
	}

	results, err := idx.Query(sigs[0])
	if err != nil {
		panic(err)
	}
	fmt.Println("query doc 0:", sortedIDs(results))

	results, err = idx.Query(sigs[4])
	if err != nil {
		panic(err)
	}
	fmt.Println("query doc 4:", sortedIDs(results))
}

func sortedIDs(ids map[int]struct{}) []int {
	out := make([]int, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
