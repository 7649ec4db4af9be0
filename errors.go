package gaoya

import "errors"

// Sentinel errors returned by Index and SimIndex operations. Callers
// compare against these with errors.Is; the index never retries, and a
// mutating operation that returns one of them leaves the index unchanged.
var (
	// ErrDuplicateID is returned by Insert when the id is already present.
	ErrDuplicateID = errors.New("gaoya: id already present in index")

	// ErrUnknownID is returned by operations that require an id already be
	// indexed when it is not.
	ErrUnknownID = errors.New("gaoya: id not present in index")

	// ErrSignatureMismatch is returned when a signature's length disagrees
	// with the index's configured K (MinHash) or M (SimHash).
	ErrSignatureMismatch = errors.New("gaoya: signature length does not match index parameters")

	// ErrEmptySignature is returned by operations on an all-saturated (MinHash)
	// or unset (SimHash zero) signature when the index was constructed with
	// RejectEmptySignatures set.
	ErrEmptySignature = errors.New("gaoya: signature is empty")

	// ErrInvalidParams is returned by NewIndex/NewSimIndex when the supplied
	// parameters are structurally invalid (B or R non-positive, a SimHash
	// width other than 64 or 128 or not divisible by B, threshold out of
	// [0,1]).
	ErrInvalidParams = errors.New("gaoya: invalid index parameters")
)
