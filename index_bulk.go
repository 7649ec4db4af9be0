package gaoya

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BulkItem pairs an id with the signature to insert for it.
type BulkItem[T Lane, ID comparable] struct {
	ID        ID
	Signature Signature[T]
}

// BulkInsert inserts every item sequentially, in order, stopping at and
// returning the first error (wrapped with the offending item's position).
// On error, items already inserted by this call are removed again, so the
// index is left as it was before the call.
func (idx *Index[T, ID]) BulkInsert(items []BulkItem[T, ID]) error {
	for i, it := range items {
		if err := idx.Insert(it.ID, it.Signature); err != nil {
			for _, done := range items[:i] {
				idx.Remove(done.ID)
			}
			return errors.Wrapf(err, "bulk insert item %d", i)
		}
	}
	return nil
}

// ParBulkInsert validates every item's signature concurrently, then
// mutates the index sequentially once every item has been checked. This
// mirrors go-simstore's Store.Finish worker pool (a channel-bounded limiter
// plus a WaitGroup) but applies it to per-item validation work instead of
// per-table sorting, and buffers all results before touching shared state
// so a panic or error partway through validation never leaves the index
// partially mutated. Any validation failure (a bad signature, an id
// repeated within items, or an id already indexed) aborts the whole call
// with nothing inserted; the error names the first failing item in input
// order, not necessarily the first goroutine to detect it.
func (idx *Index[T, ID]) ParBulkInsert(items []BulkItem[T, ID]) error {
	type outcome struct {
		err error
	}
	outcomes := make([]outcome, len(items))

	limiter := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	var panicked any

	for i, it := range items {
		limiter <- struct{}{}
		wg.Add(1)
		go func(i int, it BulkItem[T, ID]) {
			defer wg.Done()
			defer func() { <-limiter }()
			defer func() {
				if r := recover(); r != nil {
					panicked = r
				}
			}()
			outcomes[i] = outcome{err: idx.checkSignature(it.Signature)}
		}(i, it)
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}

	seen := make(map[ID]int, len(items))
	for i, it := range items {
		if outcomes[i].err != nil {
			return errors.Wrapf(outcomes[i].err, "par bulk insert item %d", i)
		}
		if _, exists := idx.primary[it.ID]; exists {
			return errors.Wrapf(ErrDuplicateID, "par bulk insert item %d", i)
		}
		if first, dup := seen[it.ID]; dup {
			return errors.Wrapf(ErrDuplicateID, "par bulk insert item %d duplicates item %d", i, first)
		}
		seen[it.ID] = i
	}

	for i, it := range items {
		if err := idx.Insert(it.ID, it.Signature); err != nil {
			return errors.Wrapf(err, "par bulk insert item %d", i)
		}
	}
	return nil
}

// ParBulkQuery runs Query for every signature in queries concurrently and
// returns results in the same order, using errgroup since these are
// read-only lookups with no shared-state ordering constraint.
func (idx *Index[T, ID]) ParBulkQuery(ctx context.Context, queries []Signature[T]) ([]map[ID]struct{}, error) {
	results := make([]map[ID]struct{}, len(queries))
	g, ctx := errgroup.WithContext(ctx)

	for i, sig := range queries {
		i, sig := i, sig
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := idx.Query(sig)
			if err != nil {
				return errors.Wrapf(err, "par bulk query %d", i)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParBulkFilterDuplicates signs every document in parallel (via sign,
// typically a Signer.Sign call) and then, strictly sequentially in input
// order, inserts each signature's document only if it is not a near
// duplicate of one already accepted. It returns the ids that were kept.
// The signing fan-out is embarrassingly parallel; the accept/reject
// decision is not, since later documents must be compared against the
// index state left by earlier accepted ones. On error, the ids this call
// had already inserted are removed again.
func (idx *Index[T, ID]) ParBulkFilterDuplicates(ids []ID, sign func(ID) Signature[T]) ([]ID, error) {
	sigs := make([]Signature[T], len(ids))
	limiter := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	var panicked any

	for i, id := range ids {
		limiter <- struct{}{}
		wg.Add(1)
		go func(i int, id ID) {
			defer wg.Done()
			defer func() { <-limiter }()
			defer func() {
				if r := recover(); r != nil {
					panicked = r
				}
			}()
			sigs[i] = sign(id)
		}(i, id)
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}

	var kept []ID
	for i, id := range ids {
		res, err := idx.Query(sigs[i])
		if err != nil {
			for _, k := range kept {
				idx.Remove(k)
			}
			return nil, errors.Wrapf(err, "filter duplicates item %d", i)
		}
		if len(res) > 0 {
			continue
		}
		if err := idx.Insert(id, sigs[i]); err != nil {
			for _, k := range kept {
				idx.Remove(k)
			}
			return nil, errors.Wrapf(err, "filter duplicates insert item %d", i)
		}
		kept = append(kept, id)
	}
	return kept, nil
}
