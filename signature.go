package gaoya

import (
	gobits "github.com/dgryski/go-bits"
)

// Lane is the set of integer widths a MinHash signature lane may use. The
// width constrains collision probability between distinct min-preimages:
// W=8 trades accuracy for an 8x smaller signature.
type Lane interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Saturation returns the maximum value representable by T, the initial
// value every MinHash lane starts from before any token narrows it down.
func Saturation[T Lane]() T {
	return ^T(0)
}

// Signature is a length-K MinHash signature, K = B*R lanes of width T.
// Signatures are produced by minhash.Signer, owned by an Index entry once
// inserted, and never mutated after construction.
type Signature[T Lane] []T

// IsEmpty reports whether every lane is still at the saturation value,
// i.e. the signature was built from an empty token stream.
func (s Signature[T]) IsEmpty() bool {
	sat := Saturation[T]()
	for _, lane := range s {
		if lane != sat {
			return false
		}
	}
	return true
}

// Similarity returns the estimated Jaccard similarity between two
// equal-length signatures: the fraction of lanes on which they agree.
func Similarity[T Lane](a, b Signature[T]) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	agree := 0
	for i := range a {
		if a[i] == b[i] {
			agree++
		}
	}
	return float64(agree) / float64(len(a))
}

// SimSignature is a fixed-width SimHash bit vector, M in {64,128} bits,
// packed into 64-bit words (word i/64 holds bit i%64). Like Signature, it
// is produced by simhash.Signer, owned by a SimIndex entry, and never
// mutated once stored.
type SimSignature []uint64

// NewSimSignature allocates a zeroed signature for an M-bit width.
func NewSimSignature(width int) SimSignature {
	return make(SimSignature, (width+63)/64)
}

// Bit reports bit i of the signature.
func (s SimSignature) Bit(i int) bool {
	return (s[i/64]>>(i%64))&1 != 0
}

// SetBit sets bit i of the signature to 1.
func (s SimSignature) SetBit(i int) {
	s[i/64] |= 1 << uint(i%64)
}

// HammingDistance returns the number of differing bits between two
// equal-length signatures.
func HammingDistance(a, b SimSignature) int {
	dist := 0
	for i := range a {
		dist += int(gobits.Popcnt(a[i] ^ b[i]))
	}
	return dist
}

// SimSimilarity returns the estimated cosine similarity 1 - HammingDistance/M.
func SimSimilarity(a, b SimSignature, width int) float64 {
	if len(a) != len(b) || width == 0 {
		return 0
	}
	return 1 - float64(HammingDistance(a, b))/float64(width)
}
