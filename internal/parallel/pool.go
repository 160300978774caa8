// Package parallel provides the worker pool the software pipeline engine
// uses to shard per-pixel work across image rows.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minBandRows is the smallest row band worth dispatching to a worker.
// Images shorter than this run inline on the caller.
const minBandRows = 32

// WorkerPool runs independent work items on a fixed set of goroutines.
//
// Each worker owns a queue and steals from its siblings when idle, which
// keeps the pool balanced when some image bands are more expensive than
// others (masked regions, rotation edges).
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers. Zero or
// negative means GOMAXPROCS. Workers start immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return
		case work := <-myQueue:
			if work != nil {
				work()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work round-robin across the workers and blocks
// until every item has run. After Close it runs the work inline so callers
// never lose results.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var completion sync.WaitGroup
	completion.Add(len(work))
	for i, fn := range work {
		workFn := fn
		wrapped := func() {
			defer completion.Done()
			workFn()
		}
		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			// Pool is closing; run on the caller instead.
			workFn()
			completion.Done()
		}
	}
	completion.Wait()
}

// Rows splits height rows into contiguous bands and calls fn(y0, y1) for
// each band in parallel, blocking until all bands finish. fn must not
// touch rows outside its band. Short images run inline.
func (p *WorkerPool) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}

	// Twice as many bands as workers gives stealing room to balance
	// uneven bands, bounded so tiny bands don't drown in scheduling.
	bands := p.workers * 2
	if maxBands := (height + minBandRows - 1) / minBandRows; bands > maxBands {
		bands = maxBands
	}
	if bands <= 1 || !p.running.Load() {
		fn(0, height)
		return
	}

	step := (height + bands - 1) / bands
	work := make([]func(), 0, bands)
	for y := 0; y < height; y += step {
		y0, y1 := y, y+step
		if y1 > height {
			y1 = height
		}
		work = append(work, func() { fn(y0, y1) })
	}
	p.ExecuteAll(work)
}

// Close stops the pool after running any queued work. It is safe to call
// multiple times; ExecuteAll and Rows degrade to inline execution after.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool is accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
