package gaoya_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serega/gaoya"
	"github.com/serega/gaoya/container"
	"github.com/serega/gaoya/simhash"
)

func newTestSimIndex(t *testing.T) *gaoya.SimIndex[int] {
	idx, err := gaoya.NewSimIndex[int](gaoya.SimParams{
		Width:     64,
		Bands:     8,
		Threshold: 0.9,
	}, container.NewHashSet[int]())
	require.NoError(t, err)
	return idx
}

func simSigOf(t *testing.T, words ...string) gaoya.SimSignature {
	t.Helper()
	signer := simhash.New(64, 1)
	toks := make([]uint64, len(words))
	for i, w := range words {
		toks[i] = fnvHash(w)
	}
	return signer.Sign(simhash.UnitWeight(toks))
}

func fnvHash(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

func TestSimIndexIdenticalDocumentsMatchAtHighThreshold(t *testing.T) {
	idx := newTestSimIndex(t)
	doc := []string{"now", "is", "the", "winter", "of", "our", "discontent"}
	require.NoError(t, idx.Insert(1, simSigOf(t, doc...)))

	result, err := idx.Query(simSigOf(t, doc...))
	require.NoError(t, err)
	require.Contains(t, result, 1)
}

func TestSimIndexRejectsDuplicateID(t *testing.T) {
	idx := newTestSimIndex(t)
	sig := simSigOf(t, "a", "b", "c")
	require.NoError(t, idx.Insert(1, sig))
	require.ErrorIs(t, idx.Insert(1, sig), gaoya.ErrDuplicateID)
}

func TestSimIndexInsertThenRemoveRestoresPriorState(t *testing.T) {
	idx := newTestSimIndex(t)
	require.NoError(t, idx.Insert(1, simSigOf(t, "apple", "banana")))

	before := snapshotSimIndex(idx)

	require.NoError(t, idx.Insert(2, simSigOf(t, "cherry", "date")))
	_, ok := idx.Remove(2)
	require.True(t, ok)

	require.Equal(t, before, snapshotSimIndex(idx))
}

func TestSimIndexRejectsWrongWidth(t *testing.T) {
	idx := newTestSimIndex(t)
	err := idx.Insert(1, gaoya.NewSimSignature(128))
	require.ErrorIs(t, err, gaoya.ErrSignatureMismatch)
}

func TestSimIndexQueryOnePicksClosestMatch(t *testing.T) {
	idx, err := gaoya.NewSimIndex[int](gaoya.SimParams{
		Width:     64,
		Bands:     8,
		Threshold: 0.5,
	}, container.NewHashSet[int]())
	require.NoError(t, err)

	query := simSigOf(t, "the", "quick", "brown", "fox")
	require.NoError(t, idx.Insert(1, simSigOf(t, "the", "quick", "brown", "fox")))
	require.NoError(t, idx.Insert(2, simSigOf(t, "completely", "different", "words", "entirely")))

	id, sim, found := idx.QueryOne(query)
	require.True(t, found)
	require.Equal(t, 1, id)
	require.GreaterOrEqual(t, sim, 0.5)
}

func snapshotSimIndex(idx *gaoya.SimIndex[int]) map[int]gaoya.SimSignature {
	snap := make(map[int]gaoya.SimSignature, idx.Size())
	idx.Each(func(id int, sig gaoya.SimSignature) bool {
		snap[id] = sig
		return true
	})
	return snap
}
