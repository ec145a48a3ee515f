package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/poiesic/graphload/config"
	"golang.org/x/sync/errgroup"
)

// runPhase runs tasks under the admission policy and returns their results
// in task order. The returned error joins the errors of every failed task.
// Once a task fails no further tasks are started, but tasks already running
// are waited for.
func (l *Loader) runPhase(ctx context.Context, name string, tasks []task) ([]TaskResult, error) {
	logger := l.logger.With("phase", name)
	logger.Info("phase started", taskLogAttrs(tasks)...)

	var results []TaskResult
	switch l.admission {
	case config.AdmissionStream:
		results = l.stream(ctx, tasks)
	default:
		results = l.batches(ctx, tasks)
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if len(errs) > 0 {
		return results, fmt.Errorf("%s phase failed: %w", name, errors.Join(errs...))
	}

	logger.Info("phase complete", "tasks", len(results))
	return results, nil
}

// batches admits up to concurrency tasks at a time and waits for the whole
// batch to finish before admitting the next one.
func (l *Loader) batches(ctx context.Context, tasks []task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))

	for start := 0; start < len(tasks); start += l.concurrency {
		end := min(start+l.concurrency, len(tasks))
		batch := tasks[start:end]
		batchResults := make([]TaskResult, len(batch))

		var wg sync.WaitGroup
		for i, t := range batch {
			wg.Add(1)
			err := l.pool.Submit(func() {
				defer wg.Done()
				batchResults[i] = l.run(ctx, t)
			})
			if err != nil {
				wg.Done()
				batchResults[i] = TaskResult{
					Entity: t.entity.Name,
					Kind:   t.kind,
					Err:    &TaskError{Entity: t.entity.Name, Kind: t.kind, Err: fmt.Errorf("%w: %v", ErrTaskNotStarted, err)},
				}
			}
		}
		wg.Wait()

		results = append(results, batchResults...)
		if failed(batchResults) {
			l.logger.Warn("stopping after failed batch", "started", len(results), "remaining", len(tasks)-len(results))
			break
		}
	}
	return results
}

// stream keeps up to concurrency tasks running, starting the next task as
// soon as a slot frees up.
func (l *Loader) stream(ctx context.Context, tasks []task) []TaskResult {
	results := make([]TaskResult, len(tasks))
	started := make([]bool, len(tasks))

	var mu sync.Mutex
	stop := false

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, t := range tasks {
		mu.Lock()
		halted := stop
		mu.Unlock()
		if halted {
			break
		}

		started[i] = true
		g.Go(func() error {
			res := l.run(ctx, t)
			results[i] = res
			if res.Err != nil {
				mu.Lock()
				stop = true
				mu.Unlock()
			}
			return res.Err
		})
	}
	_ = g.Wait()

	out := results[:0]
	for i, res := range results {
		if started[i] {
			out = append(out, res)
		}
	}
	return out
}

func failed(results []TaskResult) bool {
	for _, res := range results {
		if res.Err != nil {
			return true
		}
	}
	return false
}
