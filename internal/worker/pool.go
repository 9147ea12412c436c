// Package worker runs planner maintenance off the request path: load
// balancing a deck after its settings change, and the nightly pass that
// smooths every deck's due dates.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prepdeck/prepdeck/internal/logger"
)

// Job is a unit of background planner work.
type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool is a bounded queue with a fixed set of workers. Balancing a deck is
// quick, so the queue only needs to absorb bursts (a nightly BalanceAllJob
// fanning out, or several API-triggered rebalances landing together).
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger
}

// NewPool sizes the pool; non-positive arguments fall back to defaults.
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("planner-pool")
	log.Debug("creating planner pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     log,
	}
}

// Start launches the workers. They run until the context is cancelled or
// Stop closes the queue.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting planner pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, i+1)
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.WithField("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker shutting down (context cancelled)")
			return
		case job := <-p.jobs:
			if job == nil {
				log.Debug("worker shutting down (queue closed)")
				return
			}
			jobLog := log.WithField("job", job.Name())
			jobLog.Debug("starting job")
			start := time.Now()

			// Jobs log through the context so entries carry the job name.
			if err := job.Run(logger.NewContext(ctx, jobLog)); err != nil {
				jobLog.Error("job failed after %v: %v", time.Since(start), err)
			} else {
				jobLog.Info("job completed in %v", time.Since(start))
			}
		}
	}
}

// Stop cancels in-flight jobs and waits for the workers to drain.
func (p *Pool) Stop() {
	p.log.Info("stopping planner pool")
	if p.cancel != nil {
		p.cancel()
	}
	close(p.jobs)
	p.wg.Wait()
	p.log.Info("planner pool stopped")
}

// Submit enqueues a job, blocking when the queue is full.
func (p *Pool) Submit(job Job) {
	p.log.Debug("submitting job: %s", job.Name())
	p.jobs <- job
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
