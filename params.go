package gaoya

import "math"

// Params configures a banded MinHash Index: K = B*R lanes split into B
// bands of R lanes each, with an estimated-Jaccard acceptance threshold.
type Params struct {
	Bands     int     // B
	Rows      int     // R
	Threshold float64 // τ, in [0,1]

	// RejectEmptySignatures makes Insert/Query return ErrEmptySignature for
	// an all-saturated signature instead of indexing/querying it. Default
	// (zero value) is false: the original source treats this as caller
	// policy, and the spec leaves the default unspecified (see DESIGN.md).
	RejectEmptySignatures bool
}

// K is the required total signature length, B*R.
func (p Params) K() int { return p.Bands * p.Rows }

func (p Params) validate() error {
	if p.Bands <= 0 || p.Rows <= 0 {
		return ErrInvalidParams
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		return ErrInvalidParams
	}
	return nil
}

// SimParams configures a banded SimHash SimIndex: an M-bit signature split
// into B equal-width bands, with a Hamming-derived similarity threshold.
type SimParams struct {
	Width     int     // M, bits, one of {64, 128}
	Bands     int     // B
	Threshold float64 // τ, in [0,1]

	RejectEmptySignatures bool
}

func (p SimParams) validate() error {
	if p.Width != 64 && p.Width != 128 {
		return ErrInvalidParams
	}
	if p.Bands <= 0 || p.Width%p.Bands != 0 {
		return ErrInvalidParams
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		return ErrInvalidParams
	}
	return nil
}

// bandWidth returns M/B, the number of bits per band.
func (p SimParams) bandWidth() int { return p.Width / p.Bands }

// EstimateRecall returns the S-curve probability that two items with true
// similarity s become LSH candidates under banding parameters (b, r):
//
//	P(candidate | similarity=s) = 1 - (1 - s^r)^b
func EstimateRecall(b, r int, s float64) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
}

// ChooseBandsAndRows picks (B, R) with B*R == k that makes the S-curve
// transition as sharply as possible around threshold, by minimizing the
// squared deviation of EstimateRecall from a step function at threshold
// over a small probe set of similarities. Grounded on the parameter search
// in gaoya's minhash_index.rs (calculate_b_and_r), re-expressed as a plain
// divisor scan instead of the original's closure-driven minimization.
func ChooseBandsAndRows(k int, threshold float64) (bands, rows int) {
	bestB, bestR := 1, k
	bestScore := math.Inf(1)

	probes := []float64{threshold - 0.2, threshold - 0.1, threshold, threshold + 0.1, threshold + 0.2}

	for r := 1; r <= k; r++ {
		if k%r != 0 {
			continue
		}
		b := k / r
		score := 0.0
		for _, s := range probes {
			if s < 0 || s > 1 {
				continue
			}
			want := 0.0
			if s >= threshold {
				want = 1.0
			}
			got := EstimateRecall(b, r, s)
			d := got - want
			score += d * d
		}
		if score < bestScore {
			bestScore = score
			bestB, bestR = b, r
		}
	}

	return bestB, bestR
}
