package parallel

import (
	"context"
	"sync"
)

// ForEach runs fn for every index in [0, n) on the pool and waits for all of
// them. The first error encountered is returned; later items still run, but
// their errors are dropped. A canceled context stops items that have not yet
// started.
func (p *WorkerPool) ForEach(ctx context.Context, n int, fn func(i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	var (
		mu    sync.Mutex
		first error
	)
	record := func(err error) {
		mu.Lock()
		if first == nil {
			first = err
		}
		mu.Unlock()
	}

	work := make([]func(), n)
	for i := range work {
		work[i] = func() {
			if err := ctx.Err(); err != nil {
				record(err)
				return
			}
			if err := fn(i); err != nil {
				record(err)
			}
		}
	}
	p.ExecuteAll(work)

	mu.Lock()
	defer mu.Unlock()
	if first != nil {
		return first
	}
	return ctx.Err()
}
