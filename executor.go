package narrow

import (
	"runtime"
	"sync"
)

// pairResults is the local result buffer one pair-pass worker fills.
// Workers never touch shared state; the merge step is the single writer.
type pairResults struct {
	contacts    []Contacts
	constraints []ContactConstraint
	wake        []Entity
}

func (r *pairResults) reset() {
	r.contacts = r.contacts[:0]
	r.constraints = r.constraints[:0]
	r.wake = r.wake[:0]
}

// Executor runs the pair-processing pass. The pass itself is one algorithm;
// the executor only decides whether chunks run in place or fan out to
// workers. In both cases the net effect on the Collisions store and the
// constraint list is identical up to ordering.
type Executor interface {
	run(pairs []Pair, process func(chunk []Pair, out *pairResults), merge func(*pairResults))
}

// Sequential processes the whole pair list on the calling goroutine.
// Constraint order is stable across runs; use it when exact reproducibility
// is required.
type Sequential struct{}

func (Sequential) run(pairs []Pair, process func(chunk []Pair, out *pairResults), merge func(*pairResults)) {
	out := &pairResults{}
	process(pairs, out)
	merge(out)
}

// Parallel partitions the pair list into chunks and processes them on worker
// goroutines. Workers compute purely local results; only after all workers
// finish are results merged by the calling goroutine, so the expensive
// per-pair geometry runs without any locking. Constraint order across runs is
// not guaranteed.
type Parallel struct {
	// Workers is the number of worker goroutines. Zero means GOMAXPROCS.
	Workers int

	pool sync.Pool
}

func (p *Parallel) run(pairs []Pair, process func(chunk []Pair, out *pairResults), merge func(*pairResults)) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers <= 1 {
		Sequential{}.run(pairs, process, merge)
		return
	}

	chunkSize := (len(pairs) + workers - 1) / workers
	results := make([]*pairResults, 0, workers)

	var wg sync.WaitGroup
	for start := 0; start < len(pairs); start += chunkSize {
		end := min(start+chunkSize, len(pairs))
		out := p.getResults()
		results = append(results, out)

		wg.Add(1)
		go func(chunk []Pair, out *pairResults) {
			defer wg.Done()
			process(chunk, out)
		}(pairs[start:end], out)
	}
	wg.Wait()

	for _, out := range results {
		merge(out)
		p.pool.Put(out)
	}
}

func (p *Parallel) getResults() *pairResults {
	if out, ok := p.pool.Get().(*pairResults); ok {
		out.reset()
		return out
	}
	return &pairResults{}
}
