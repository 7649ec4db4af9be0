package gaoya_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serega/gaoya"
	"github.com/serega/gaoya/container"
)

func bulkItems(t *testing.T, n int) []gaoya.BulkItem[uint32, int] {
	t.Helper()
	items := make([]gaoya.BulkItem[uint32, int], n)
	for i := 0; i < n; i++ {
		items[i] = gaoya.BulkItem[uint32, int]{ID: i, Signature: sigOf(t, "word", string(rune('a'+i%26)), string(rune('A'+i%13)))}
	}
	return items
}

func TestBulkInsertEquivalentToSequentialInserts(t *testing.T) {
	items := bulkItems(t, 20)

	sequential := newTestIndex(t)
	for _, it := range items {
		require.NoError(t, sequential.Insert(it.ID, it.Signature))
	}

	bulk := newTestIndex(t)
	require.NoError(t, bulk.BulkInsert(items))

	require.Equal(t, snapshotIndex(sequential), snapshotIndex(bulk))
}

func TestParBulkInsertEquivalentToSequentialInserts(t *testing.T) {
	items := bulkItems(t, 40)

	sequential := newTestIndex(t)
	for _, it := range items {
		require.NoError(t, sequential.Insert(it.ID, it.Signature))
	}

	par := newTestIndex(t)
	require.NoError(t, par.ParBulkInsert(items))

	require.Equal(t, snapshotIndex(sequential), snapshotIndex(par))
}

func TestParBulkInsertRejectsDuplicateWithinBatch(t *testing.T) {
	idx := newTestIndex(t)
	sig := sigOf(t, "x", "y", "z")
	items := []gaoya.BulkItem[uint32, int]{
		{ID: 1, Signature: sig},
		{ID: 1, Signature: sig},
	}
	err := idx.ParBulkInsert(items)
	require.Error(t, err)
	require.Equal(t, 0, idx.Size())
}

func TestParBulkQueryMatchesSequentialQuery(t *testing.T) {
	idx := newTestIndex(t)
	items := bulkItems(t, 15)
	require.NoError(t, idx.BulkInsert(items))

	queries := make([]gaoya.Signature[uint32], len(items))
	for i, it := range items {
		queries[i] = it.Signature
	}

	results, err := idx.ParBulkQuery(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, results, len(queries))

	for i, q := range queries {
		want, err := idx.Query(q)
		require.NoError(t, err)
		require.Equal(t, want, results[i])
	}
}

func TestParBulkFilterDuplicatesKeepsOnlyFirstOfEachCluster(t *testing.T) {
	idx, err := gaoya.NewIndex[uint32, int](gaoya.Params{
		Bands:     42,
		Rows:      3,
		Threshold: 0.5,
	}, container.NewHashSet[int]())
	require.NoError(t, err)

	docs := map[int][]string{
		1: {"the", "quick", "brown", "fox", "jumps"},
		2: {"the", "quick", "brown", "fox", "jumps"}, // duplicate of 1
		3: {"completely", "unrelated", "content", "here"},
	}
	ids := []int{1, 2, 3}
	sign := func(id int) gaoya.Signature[uint32] { return sigOf(t, docs[id]...) }

	kept, err := idx.ParBulkFilterDuplicates(ids, sign)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, kept)
	require.Equal(t, 2, idx.Size())
}

func TestSimIndexParBulkFilterDuplicatesKeepsOnlyFirstOfEachCluster(t *testing.T) {
	idx := newTestSimIndex(t)

	docs := map[int][]string{
		1: {"now", "is", "the", "winter", "of", "our", "discontent"},
		2: {"now", "is", "the", "winter", "of", "our", "discontent"}, // duplicate of 1
		3: {"completely", "unrelated", "content", "here"},
	}
	ids := []int{1, 2, 3}
	sign := func(id int) gaoya.SimSignature { return simSigOf(t, docs[id]...) }

	kept, err := idx.ParBulkFilterDuplicates(ids, sign)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, kept)
	require.Equal(t, 2, idx.Size())
}
