// Package gaoya implements a banded locality-sensitive-hashing index for
// near-duplicate detection and clustering over large text corpora.
//
// Two signature families are supported: MinHash (package minhash), which
// estimates Jaccard similarity of shingle sets, and SimHash (package
// simhash), which estimates cosine similarity of weighted feature bags.
// Both signature types are turned into candidate-retrieval buckets by the
// banded index types in this package, Index for MinHash and SimIndex for
// SimHash.
//
// Tokenization, shingling, and the choice of base hash function are
// external collaborators; this package consumes already-produced
// signatures and token/feature streams.
//
// There is no dedicated string-keyed index type. Go's generics make one
// unnecessary: callers indexing documents by string id just instantiate
// NewIndex[uint32, string](params, factory) directly.
package gaoya
