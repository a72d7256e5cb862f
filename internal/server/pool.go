// pool.go - Fixed-size worker pool over an unbounded FIFO job queue.
package server

import (
	"fmt"
	"sync"
)

// Job is one deferred unit of work: a single connection's full
// request/response cycle. Each job is enqueued exactly once and executed
// exactly once.
type Job func() error

// WorkerPool runs a fixed set of long-lived workers draining a shared queue.
// Submit never blocks the caller: when every worker is busy, jobs queue
// without bound. Completion order between concurrently submitted jobs is
// scheduler-dependent; the queue itself is FIFO.
type WorkerPool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerPool starts size workers. Size must be at least 1.
func NewWorkerPool(size int) (*WorkerPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("worker pool size must be at least 1, got %d", size)
	}

	p := &WorkerPool{}
	p.cond = sync.NewCond(&p.mu)

	for id := 0; id < size; id++ {
		p.wg.Add(1)
		go p.worker(id)
	}
	return p, nil
}

// worker loops forever: wait for a job, take it, run it. A failing job is
// logged and the worker moves on.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		if err := runJob(job); err != nil {
			Warn("job failed", map[string]any{"worker": id, "error": err.Error()})
		}
	}
}

// runJob executes a job, converting a panic into an error so one bad
// connection cannot take a worker down.
func runJob(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job()
}

// Submit enqueues a job. It never blocks; jobs submitted after Stop are
// dropped with a warning.
func (p *WorkerPool) Submit(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		Warn("job submitted to stopped pool, dropping", nil)
		return
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()
}

// Stop lets the workers drain the remaining queue and waits for them to
// exit.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// QueueLen reports the number of jobs waiting for a worker.
func (p *WorkerPool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
