/*
Package simhash constructs SimHash signatures: fixed-width bit vectors
whose Hamming distance approximates the angular distance between two
weighted feature bags.

Adapted from dgryski/go-simstore's simhash package: that package hardcoded
an unweighted 64-bit Hash(FeatureScanner) uint64. This one generalizes to
weighted features and a {64,128}-bit gaoya.SimSignature, the width the
banded SimIndex requires.

http://www.cs.princeton.edu/courses/archive/spr04/cos598B/bib/CharikarEstim.pdf
http://infolab.stanford.edu/~manku/papers/07www-duplicates.pdf
http://irl.cse.tamu.edu/people/sadhan/papers/cikm2011.pdf
*/
package simhash

import (
	"encoding/binary"

	"github.com/dchest/siphash"
	"github.com/serega/gaoya"
)

// Signer builds fixed-width SimHash signatures. Immutable once
// constructed; freely shareable across goroutines.
type Signer struct {
	width int
	k0    uint64
	k1    uint64
}

// New builds a Signer producing width-bit signatures (width must be 64 or
// 128), seeding the underlying siphash keys from seed.
func New(width int, seed uint64) *Signer {
	if width != 64 && width != 128 {
		panic("simhash: width must be 64 or 128")
	}
	return &Signer{width: width, k0: seed, k1: ^seed}
}

// Width returns the signer's bit width.
func (s *Signer) Width() int { return s.width }

// FeatureStream yields a finite sequence of (token, weight) pairs. Order is
// irrelevant; multiplicity affects the accumulator sign and therefore the
// result, since repeated features accumulate additional weight.
type FeatureStream interface {
	// Next returns the next token, its weight, and true, or zero values
	// and false once exhausted.
	Next() (token uint64, weight float64, ok bool)
}

// Sign computes the Signer's signature over features. Bit j is 1 iff the
// signed sum over all features of weight*sign(bit j of hash(token)) is
// strictly positive; ties (including the empty stream) resolve to 0.
func (s *Signer) Sign(features FeatureStream) gaoya.SimSignature {
	acc := make([]float64, s.width)

	for tok, weight, ok := features.Next(); ok; tok, weight, ok = features.Next() {
		h := s.hash(tok)
		for j := 0; j < s.width; j++ {
			if s.bitAt(h, j) {
				acc[j] += weight
			} else {
				acc[j] -= weight
			}
		}
	}

	sig := gaoya.NewSimSignature(s.width)
	for j := 0; j < s.width; j++ {
		if acc[j] > 0 {
			sig.SetBit(j)
		}
	}
	return sig
}

// hash returns a width-bit wide hash of token as one word (width 64) or
// two words (width 128: an independent second siphash output keyed by the
// swapped key pair supplies the high bits).
func (s *Signer) hash(token uint64) []uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], token)

	lo := siphash.Hash(s.k0, s.k1, buf[:])
	if s.width == 64 {
		return []uint64{lo}
	}
	hi := siphash.Hash(s.k1, s.k0, buf[:])
	return []uint64{lo, hi}
}

func (s *Signer) bitAt(words []uint64, j int) bool {
	return (words[j/64]>>(j%64))&1 != 0
}

// UnitWeight adapts a []uint64 token slice into a FeatureStream with every
// feature at weight 1, the default SimHash uses when the caller doesn't
// supply explicit weights.
func UnitWeight(tokens []uint64) FeatureStream {
	return &unitStream{toks: tokens}
}

type unitStream struct {
	toks []uint64
	pos  int
}

func (u *unitStream) Next() (uint64, float64, bool) {
	if u.pos >= len(u.toks) {
		return 0, 0, false
	}
	v := u.toks[u.pos]
	u.pos++
	return v, 1, true
}

// Weighted adapts parallel token/weight slices into a FeatureStream.
func Weighted(tokens []uint64, weights []float64) FeatureStream {
	if len(tokens) != len(weights) {
		panic("simhash: tokens and weights must be the same length")
	}
	return &weightedStream{toks: tokens, weights: weights}
}

type weightedStream struct {
	toks    []uint64
	weights []float64
	pos     int
}

func (w *weightedStream) Next() (uint64, float64, bool) {
	if w.pos >= len(w.toks) {
		return 0, 0, false
	}
	tok, weight := w.toks[w.pos], w.weights[w.pos]
	w.pos++
	return tok, weight, true
}

// Distance returns the Hamming distance between two equal-width
// signatures, kept as a thin wrapper over gaoya.HammingDistance for
// callers migrating from dgryski/go-simstore's Distance(uint64,uint64) int.
func Distance(a, b gaoya.SimSignature) int {
	return gaoya.HammingDistance(a, b)
}
