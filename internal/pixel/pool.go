package pixel

import "sync"

// Pool is a thread-safe pool for reusing pixel frame allocations.
//
// Pool groups frames by dimensions and bytes-per-pixel, allowing efficient
// reuse of identically-sized buffers. This reduces GC pressure for callers
// that repeatedly process frames of the same size (live preview rendering).
//
// Thread safety: all methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][][]uint8
	maxSize int // max frames per bucket
}

// poolKey identifies a bucket of identically shaped frames.
type poolKey struct {
	width  int
	height int
	bpp    int
}

// NewPool creates a frame pool retaining at most maxPerBucket frames of
// each size. A maxPerBucket of 0 means unlimited (use with caution).
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][][]uint8),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a frame from the pool or allocates a new one. The returned
// slice has length width*height*bpp. Reused frames are zeroed first.
func (p *Pool) Get(width, height, bpp int) []uint8 {
	key := poolKey{width: width, height: height, bpp: bpp}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		frame := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		clear(frame)
		return frame
	}
	p.mu.Unlock()

	return make([]uint8, width*height*bpp)
}

// Put returns a frame to the pool for reuse. Frames whose length does not
// match width*height*bpp are discarded, as are frames arriving at a full
// bucket.
func (p *Pool) Put(frame []uint8, width, height, bpp int) {
	if frame == nil || len(frame) != width*height*bpp {
		return
	}

	key := poolKey{width: width, height: height, bpp: bpp}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, frame)
}

// Len reports the number of pooled frames for the given shape.
func (p *Pool) Len(width, height, bpp int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height, bpp: bpp}])
}
