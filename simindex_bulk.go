package gaoya

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SimBulkItem pairs an id with the signature to insert for it.
type SimBulkItem[ID comparable] struct {
	ID        ID
	Signature SimSignature
}

// BulkInsert inserts every item sequentially, stopping at the first error.
// On error, items already inserted by this call are removed again.
func (idx *SimIndex[ID]) BulkInsert(items []SimBulkItem[ID]) error {
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
// mutates the index sequentially, identically in spirit to
// Index.ParBulkInsert (see that method's doc for the worker-pool and
// duplicate-detection contract it shares).
func (idx *SimIndex[ID]) ParBulkInsert(items []SimBulkItem[ID]) error {
	errs := make([]error, len(items))
	limiter := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	var panicked any

	for i, it := range items {
		limiter <- struct{}{}
		wg.Add(1)
		go func(i int, it SimBulkItem[ID]) {
			defer wg.Done()
			defer func() { <-limiter }()
			defer func() {
				if r := recover(); r != nil {
					panicked = r
				}
			}()
			errs[i] = idx.checkSignature(it.Signature)
		}(i, it)
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}

	seen := make(map[ID]int, len(items))
	for i, it := range items {
		if errs[i] != nil {
			return errors.Wrapf(errs[i], "par bulk insert item %d", i)
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

// ParBulkQuery runs Query for every signature in queries concurrently.
func (idx *SimIndex[ID]) ParBulkQuery(ctx context.Context, queries []SimSignature) ([]map[ID]struct{}, error) {
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

// ParBulkFilterDuplicates signs every document in parallel and then,
// strictly sequentially in input order, inserts each signature's document
// only if it is not a near duplicate (by Hamming-derived similarity) of
// one already accepted. It returns the ids that were kept. The signing
// fan-out is embarrassingly parallel; the accept/reject decision is not,
// since later documents must be compared against the index state left by
// earlier accepted ones. On error, the ids this call had already inserted
// are removed again. Mirrors Index.ParBulkFilterDuplicates.
func (idx *SimIndex[ID]) ParBulkFilterDuplicates(ids []ID, sign func(ID) SimSignature) ([]ID, error) {
	sigs := make([]SimSignature, len(ids))
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
