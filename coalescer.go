package literoom

import (
	"context"
	"sync"
)

// Ticket tracks one submitted frame. It settles exactly once: with a
// result, with a processing error, or with ErrSuperseded when a newer
// submission replaced it before it ran.
type Ticket struct {
	done chan struct{}
	res  *Result
	err  error
}

// Done returns a channel closed when the ticket settles.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the ticket settles or ctx is done. A context error
// only abandons the wait; the frame itself still runs to completion.
func (t *Ticket) Result(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.res, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Ticket) complete(res *Result, err error) {
	t.res = res
	t.err = err
	close(t.done)
}

type pendingJob struct {
	ctx    context.Context
	input  *PixelBuffer
	params *AdjustmentParameters
	ticket *Ticket
}

// Coalescer funnels a burst of submissions into sequential Process calls,
// keeping only the latest. Interactive editors submit on every slider
// tick; while one frame renders, newer ticks overwrite each other and only
// the freshest state runs next. Superseded tickets settle immediately with
// ErrSuperseded.
//
// The coalescer borrows the pipeline; closing the coalescer does not close
// the pipeline.
type Coalescer struct {
	p *Pipeline

	mu      sync.Mutex
	pending *pendingJob
	closed  bool

	notify chan struct{}
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewCoalescer starts a worker that drains submissions against p.
func NewCoalescer(p *Pipeline) *Coalescer {
	c := &Coalescer{
		p:      p,
		notify: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Submit queues a frame and returns its ticket without blocking. Any
// not-yet-started submission settles with ErrSuperseded. After Close,
// tickets settle immediately with ErrClosed.
func (c *Coalescer) Submit(ctx context.Context, input *PixelBuffer, params *AdjustmentParameters) *Ticket {
	t := &Ticket{done: make(chan struct{})}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		t.complete(nil, ErrClosed)
		return t
	}
	if c.pending != nil {
		c.pending.ticket.complete(nil, ErrSuperseded)
	}
	c.pending = &pendingJob{ctx: ctx, input: input, params: params, ticket: t}
	select {
	case c.notify <- struct{}{}:
	default:
	}
	c.mu.Unlock()
	return t
}

// Close fails the pending submission with ErrClosed, waits for any
// in-flight frame to finish, and stops the worker. Close is idempotent.
func (c *Coalescer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.pending != nil {
		c.pending.ticket.complete(nil, ErrClosed)
		c.pending = nil
	}
	c.mu.Unlock()
	close(c.quit)
	c.wg.Wait()
}

func (c *Coalescer) take() *pendingJob {
	c.mu.Lock()
	j := c.pending
	c.pending = nil
	c.mu.Unlock()
	return j
}

func (c *Coalescer) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.quit:
			return
		case <-c.notify:
		}
		// Drain until no newer submission arrived while the last one ran.
		for {
			job := c.take()
			if job == nil {
				break
			}
			res, err := c.p.Process(job.ctx, job.input, job.params)
			job.ticket.complete(res, err)
		}
	}
}
