package literoom

import "time"

// Option configures a Pipeline during creation.
// Use functional options to customize Pipeline behavior.
//
// Example:
//
//	// Default GPU pipeline
//	p := literoom.New(literoom.Default())
//
//	// Software pipeline pinned to four workers
//	p := literoom.NewSoftware(literoom.WithWorkers(4))
type Option func(*pipelineOptions)

// pipelineOptions holds optional configuration for Pipeline creation.
type pipelineOptions struct {
	workers         int
	readbackTimeout time.Duration
	curveCacheLimit int
}

// defaultPipelineOptions returns the default pipeline options.
func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{
		workers:         0, // soft engine resolves 0 to GOMAXPROCS
		readbackTimeout: 0, // engine default
		curveCacheLimit: 16,
	}
}

// WithWorkers sets the worker count for the software engine. Zero or
// negative uses one worker per logical CPU. GPU pipelines ignore this.
//
// Example:
//
//	p := literoom.NewSoftware(literoom.WithWorkers(2))
func WithWorkers(n int) Option {
	return func(o *pipelineOptions) {
		o.workers = n
	}
}

// WithReadbackTimeout bounds how long a Process call waits for the device
// to finish submitted GPU work before treating the device as lost.
// Zero keeps the engine default of five seconds.
//
// Example:
//
//	p := literoom.New(literoom.Default(),
//		literoom.WithReadbackTimeout(2*time.Second))
func WithReadbackTimeout(d time.Duration) Option {
	return func(o *pipelineOptions) {
		o.readbackTimeout = d
	}
}

// WithCurveCacheLimit caps how many lowered tone curve tables the pipeline
// keeps across Process calls. Interactive editors resend an unchanged curve
// on every slider tick, so a small cache takes the lowering cost off the
// hot path. Zero disables the cache.
func WithCurveCacheLimit(n int) Option {
	return func(o *pipelineOptions) {
		o.curveCacheLimit = n
	}
}
