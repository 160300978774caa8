package bench

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultWarmup = 3
	defaultRuns   = 20
)

// Runner executes a measured function repeatedly. Warmup runs are
// discarded so shader compilation, buffer growth, and cache fills do not
// skew the samples. Zero Warmup is honored; a negative Warmup and a
// non-positive Runs fall back to the defaults.
type Runner struct {
	Warmup int
	Runs   int
}

func (r Runner) normalized() Runner {
	if r.Warmup < 0 {
		r.Warmup = defaultWarmup
	}
	if r.Runs <= 0 {
		r.Runs = defaultRuns
	}
	return r
}

// Measurement is the outcome of one measured function.
type Measurement struct {
	Name    string
	Samples []float64 // per-run wall clock, milliseconds
	Summary Summary
}

// Measure times fn over Warmup+Runs invocations and summarizes the
// measured ones. It stops early when ctx is done or fn fails.
func (r Runner) Measure(ctx context.Context, name string, fn func(context.Context) error) (*Measurement, error) {
	r = r.normalized()

	for i := 0; i < r.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := fn(ctx); err != nil {
			return nil, fmt.Errorf("warmup run %d: %w", i+1, err)
		}
	}

	samples := make([]float64, 0, r.Runs)
	for i := 0; i < r.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := fn(ctx); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		samples = append(samples, float64(time.Since(start).Nanoseconds())/1e6)
	}

	return &Measurement{
		Name:    name,
		Samples: samples,
		Summary: Summarize(samples),
	}, nil
}

// Compare describes next relative to base by mean, e.g. "1.85x faster
// (-45.9%)". A zero base yields "n/a".
func Compare(base, next Summary) string {
	if base.Mean <= 0 || next.Mean <= 0 {
		return "n/a"
	}
	change := (next.Mean - base.Mean) / base.Mean * 100
	if next.Mean < base.Mean {
		return fmt.Sprintf("%.2fx faster (%+.1f%%)", base.Mean/next.Mean, change)
	}
	return fmt.Sprintf("%.2fx slower (%+.1f%%)", next.Mean/base.Mean, change)
}
