package conflate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelDispatcher fans matching work for a slice of primary
// features across a worker pool, reading the (shared, read-only)
// secondary slice from every worker. Partitioning is by contiguous
// index range rather than a work-stealing queue, and results are
// written into a preallocated slice at the primary feature's own
// index, so the final output preserves input order regardless of how
// many workers ran or in what order they finished: running with
// Workers==1 produces byte-identical output to any larger worker
// count, which is what makes the dispatcher's output deterministic and
// safe to diff in tests.
type ParallelDispatcher struct {
	Matcher   FeatureMatcher
	Assembler ResultAssembler
	Workers   int
}

// Run partitions primaries into ceil(len(primaries)/workers)-sized
// contiguous chunks, matches the primaries of each chunk against
// secondaries in one goroutine per chunk, and returns the per-primary
// results in input order.
// ctx is checked between primary features (not between candidate
// secondaries within one primary's search), so cancellation is prompt
// without adding overhead to the inner search loop.
func (pd ParallelDispatcher) Run(ctx context.Context, primaries, secondaries []Feature) ([]Assembled, error) {
	results := make([]Assembled, len(primaries))
	if len(primaries) == 0 {
		return results, nil
	}

	workers := pd.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(primaries) {
		workers = len(primaries)
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (len(primaries) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(primaries); start += chunkSize {
		start := start
		end := start + chunkSize
		if end > len(primaries) {
			end = len(primaries)
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				candidates := pd.Matcher.FindCandidates(primaries[i], secondaries)
				results[i] = pd.Assembler.Assemble(primaries[i], candidates)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
