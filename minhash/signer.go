package minhash

import (
	"math/rand"

	"github.com/serega/gaoya"
)

// mersennePrime61 is 2^61 - 1, the modulus used for the permutation family,
// grounded on gaoya's MinHasher64V1 (original_source/gaoya/src/minhash/min_hasher64.rs).
const mersennePrime61 = (1 << 61) - 1

// Signer constructs length-K MinHash signatures from a token stream using
// K independent linear-permutation hash functions. A Signer is an
// immutable value object once built: two Signers built from the same seed
// produce comparable signatures, different seeds do not (signatures from
// different seeds must never be compared).
type Signer[T gaoya.Lane] struct {
	a, b   []uint64
	k      int
	hasher Hasher
}

// New builds a Signer producing length-k signatures, with coefficients
// drawn deterministically from seed using the default XXHash64 base hash.
func New[T gaoya.Lane](k int, seed uint64) *Signer[T] {
	return NewWithHasher[T](k, seed, XXHash64{})
}

// NewWithHasher is New with an explicit base Hasher, e.g. Murmur3Hash64.
func NewWithHasher[T gaoya.Lane](k int, seed uint64, hasher Hasher) *Signer[T] {
	r := rand.New(rand.NewSource(int64(seed)))
	a := make([]uint64, k)
	b := make([]uint64, k)
	for i := 0; i < k; i++ {
		// a must be non-zero, else that lane's permutation degenerates to
		// a constant function of b alone.
		a[i] = uint64(r.Int63n(mersennePrime61-1)) + 1
		b[i] = uint64(r.Int63n(mersennePrime61))
	}
	return &Signer[T]{a: a, b: b, k: k, hasher: hasher}
}

// K returns the signer's signature length.
func (s *Signer[T]) K() int { return s.k }

// TokenStream yields a finite sequence of tokens, each hashable to a
// 64-bit integer. Order is irrelevant to Sign; multiplicity is absorbed by
// the per-lane minimum.
type TokenStream interface {
	// Next returns the next token and true, or a zero value and false once
	// exhausted.
	Next() (uint64, bool)
}

// Sign computes the Signer's signature over tokens. An empty stream
// produces a signature with every lane at the saturation value; two such
// signatures compare as similarity 1.0 (see gaoya.Signature.IsEmpty).
func (s *Signer[T]) Sign(tokens TokenStream) gaoya.Signature[T] {
	sat := gaoya.Saturation[T]()
	widthMask := uint64(sat)

	sig := make(gaoya.Signature[T], s.k)
	for i := range sig {
		sig[i] = sat
	}

	for tok, ok := tokens.Next(); ok; tok, ok = tokens.Next() {
		h := s.hasher.Hash(tok)
		for i := 0; i < s.k; i++ {
			permuted := (h*s.a[i] + s.b[i]) % mersennePrime61
			lane := T(permuted & widthMask)
			if lane < sig[i] {
				sig[i] = lane
			}
		}
	}

	return sig
}
