// Package minhash constructs MinHash signatures from token streams: one
// signature lane per permutation in a fixed family, each lane holding the
// minimum permuted hash seen over the input multiset.
package minhash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hasher turns an arbitrary token into a uniform 64-bit value. It must be
// stable across process runs: the same token always hashes to the same
// value within one process invocation family.
type Hasher interface {
	Hash(token uint64) uint64
}

// XXHash64 hashes the little-endian byte encoding of the token with
// xxhash, the corpus's default choice for a fast non-cryptographic hash
// (also used for band-key folding in internal/bandkey).
type XXHash64 struct{}

func (XXHash64) Hash(token uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], token)
	return xxhash.Sum64(buf[:])
}

// Murmur3Hash64 is an alternate Hasher for callers who want a 32-bit-
// friendly hash family instead of xxhash; grounded on the murmur3 usage in
// TillK17-lshensemble's MinHash implementation.
type Murmur3Hash64 struct{}

func (Murmur3Hash64) Hash(token uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], token)
	return murmur3.Sum64(buf[:])
}
