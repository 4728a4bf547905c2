package scraper

import (
	"context"
	"sync"
	"time"
)

type Task[T any] func(ctx context.Context) (T, error)

// Result carries the submission index so callers can restore input order.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

type indexedTask[T any] struct {
	index int
	run   Task[T]
}

type WorkerPool[T any] struct {
	workers int
	tasks   chan indexedTask[T]
	wg      sync.WaitGroup
	mu      sync.RWMutex
	rate    <-chan time.Time
	ticker  *time.Ticker
	next    int
}

func NewWorkerPool[T any](workers, buffer int) *WorkerPool[T] {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool[T]{
		workers: workers,
		tasks:   make(chan indexedTask[T], buffer),
	}
}

func (p *WorkerPool[T]) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	if rps <= 0 {
		return
	}
	p.ticker = time.NewTicker(time.Second / time.Duration(rps))
	p.rate = p.ticker.C
}

// Submit queues t. It blocks when the buffer is full and no worker is running.
func (p *WorkerPool[T]) Submit(t Task[T]) {
	if p == nil || t == nil {
		return
	}
	p.mu.Lock()
	idx := p.next
	p.next++
	p.mu.Unlock()
	p.tasks <- indexedTask[T]{index: idx, run: t}
}

func (p *WorkerPool[T]) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	p.mu.Unlock()
	close(p.tasks)
}

func (p *WorkerPool[T]) Run(ctx context.Context) <-chan Result[T] {
	if p == nil {
		out := make(chan Result[T])
		close(out)
		return out
	}
	out := make(chan Result[T], p.workers*64)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					p.mu.RLock()
					rate := p.rate
					p.mu.RUnlock()
					if rate != nil {
						select {
						case <-ctx.Done():
							return
						case <-rate:
						}
					}
					v, err := t.run(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- Result[T]{Index: t.index, Value: v, Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}

// RunAll executes tasks with the given concurrency and returns results in
// input order. Tasks that never ran because ctx ended report ctx.Err().
func RunAll[T any](ctx context.Context, workers int, tasks []Task[T]) []Result[T] {
	pool := NewWorkerPool[T](workers, len(tasks))
	for _, t := range tasks {
		pool.Submit(t)
	}
	pool.Close()

	results := make([]Result[T], len(tasks))
	done := make([]bool, len(tasks))
	for r := range pool.Run(ctx) {
		results[r.Index] = r
		done[r.Index] = true
	}
	for i := range results {
		if !done[i] {
			results[i] = Result[T]{Index: i, Err: context.Cause(ctx)}
			if results[i].Err == nil {
				results[i].Err = context.Canceled
			}
		}
	}
	return results
}
