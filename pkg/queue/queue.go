package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is a unit of work processed by the pool. Jobs are independent:
// each owns its own state and may run concurrently with any other.
type Job struct {
	ID        string
	Run       func(ctx context.Context) error
	Submitted time.Time
}

// Config tunes the worker pool.
type Config struct {
	Workers int // number of concurrent workers
	Size    int // pending job buffer
}

// Pool runs submitted jobs on a fixed set of workers.
type Pool struct {
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
	onError func(id string, err error)
}

// NewPool creates a worker pool; zero config falls back to sane defaults.
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Size <= 0 {
		cfg.Size = 64
	}
	return &Pool{
		jobs:    make(chan Job, cfg.Size),
		workers: cfg.Workers,
	}
}

// OnError installs a callback invoked when a job returns an error.
func (p *Pool) OnError(fn func(id string, err error)) { p.onError = fn }

// Start launches the workers. Safe to call once.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := job.Run(ctx); err != nil && p.onError != nil {
						p.onError(job.ID, err)
					}
				}
			}
		}()
	}
}

// Submit enqueues a job; it fails fast when the buffer is full rather
// than blocking the caller.
func (p *Pool) Submit(job Job) error {
	if job.Submitted.IsZero() {
		job.Submitted = time.Now()
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue full (%d pending)", cap(p.jobs))
	}
}

// Stop closes intake and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
