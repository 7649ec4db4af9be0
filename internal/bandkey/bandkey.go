// Package bandkey folds a signature's band slice into a single comparable
// key. Identical slices must fold to identical keys across insertions and
// queries; that determinism is the one load-bearing requirement of the
// whole index. The package does not aim for cryptographic resistance —
// inputs are not adversarial in this library's threat model — only for
// speed and uniformity, hence xxhash.
package bandkey

import (
	"github.com/cespare/xxhash/v2"
)

// lane mirrors gaoya.Lane locally to avoid an import cycle with the root
// package, which imports this package.
type lane interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Fold canonicalizes a MinHash band (R consecutive lanes) into a little-
// endian byte sequence and hashes it with xxhash. Equal bands always fold
// to equal keys; distinct bands share a key only on a 64-bit xxhash
// collision.
func Fold[T lane](band []T) uint64 {
	if len(band) == 0 {
		return 0
	}
	width := laneWidth(band[0])
	buf := make([]byte, len(band)*width)
	for i, v := range band {
		packLittleEndian(buf[i*width:(i+1)*width], uint64(v), width)
	}
	return xxhash.Sum64(buf)
}

func laneWidth[T lane](v T) int {
	var probe uint64 = 1
	switch any(v).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	case uint64:
		return 8
	default:
		// Named types based on the above: size the type by its maximum value.
		_ = probe
		return sizeofUnsigned(uint64(^T(0)))
	}
}

// sizeofUnsigned is a defensive fallback for named lane types the type
// switch in laneWidth doesn't match directly (e.g. a user-defined
// `type W16 uint16`); it is never exercised by this module's own lane
// instantiations (uint8/16/32/64) but keeps Fold correct for such types.
func sizeofUnsigned(v uint64) int {
	switch {
	case v <= 0xff:
		return 1
	case v <= 0xffff:
		return 2
	case v <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

func packLittleEndian(dst []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// FoldBits canonicalizes a SimHash band: `width` consecutive bits of a
// packed-uint64-word bit vector, starting at bit offset `start` (bit j
// lives in word j/64, bit j%64), packed little-endian into whole 64-bit
// words (8 bytes for width <= 64, 16 for width up to 128), and hashes the
// resulting bytes with xxhash.
func FoldBits(words []uint64, start, width int) uint64 {
	buf := make([]byte, 8*((width+63)/64))
	for i := 0; i < width; i++ {
		bit := start + i
		word := words[bit/64]
		if (word>>(bit%64))&1 != 0 {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	return xxhash.Sum64(buf)
}
