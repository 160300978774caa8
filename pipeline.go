package literoom

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tesla3327/literoom-sub019/internal/gpu"
	"github.com/tesla3327/literoom-sub019/internal/pixel"
	"github.com/tesla3327/literoom-sub019/internal/soft"
	"github.com/tesla3327/literoom-sub019/internal/stage"
)

// Result is the output of one Process call: the delivered frame and the
// wall-clock cost of producing it.
type Result struct {
	Pixels *PixelBuffer
	Timing TimingBreakdown
}

// engineSession is the stage surface shared by the GPU and software
// engines. The orchestrator drives whichever one backs the pipeline.
type engineSession interface {
	Begin(plan *stage.Plan) error
	Upload(rgba []uint8) error
	Rotate() error
	Adjust() error
	ToneCurve() error
	Uber() error
	ApplyMasks() error
	Downsample() error
	Readback(dst []uint8) error
	Close() error
}

// Pipeline runs the edit stage sequence over pixel buffers. Process calls
// on one Pipeline serialize; concurrent callers queue on an internal
// mutex. Independent Pipelines may share one Capability and run in
// parallel, each with its own device session.
//
// After a device loss the pipeline latches broken and refuses further
// work until Reset.
type Pipeline struct {
	mu sync.Mutex

	cap  *Capability
	soft *soft.Engine
	sess engineSession

	curves          *stage.CurveCache
	readbackTimeout time.Duration
	workers         int

	broken bool
	closed bool
}

// New creates a pipeline backed by the given capability's GPU device. The
// device is acquired lazily on the first Process call, so constructing a
// pipeline before Initialize has run is fine — processing just fails with
// ErrNotInitialized until it has. A nil capability yields a software
// pipeline.
func New(capability *Capability, opts ...Option) *Pipeline {
	o := defaultPipelineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pipeline{
		cap:             capability,
		readbackTimeout: o.readbackTimeout,
		workers:         o.workers,
	}
	if o.curveCacheLimit > 0 {
		p.curves = stage.NewCurveCache(o.curveCacheLimit)
	}
	return p
}

// NewSoftware creates a pipeline backed by the CPU engine. It needs no
// capability and works on any machine; stage math matches the GPU engine.
func NewSoftware(opts ...Option) *Pipeline {
	return New(nil, opts...)
}

// Accelerated reports whether this pipeline is backed by a ready GPU
// device.
func (p *Pipeline) Accelerated() bool {
	return p.cap != nil && p.cap.Ready()
}

// Process applies params to input and returns the delivered frame with a
// per-stage timing breakdown. The input buffer is never mutated and the
// result is always freshly allocated.
//
// Cancellation is honored up to the point work is handed to the engine;
// once a frame is in flight it runs to completion.
func (p *Pipeline) Process(ctx context.Context, input *PixelBuffer, params *AdjustmentParameters) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.broken {
		return nil, ErrPipelineBroken
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	outFormat, err := resolveOutputFormat(input, params)
	if err != nil {
		return nil, err
	}

	plan, err := stage.BuildPlan(params.request(input.Width, input.Height), p.curves)
	if err != nil {
		if errors.Is(err, stage.ErrUpscale) {
			return nil, fmt.Errorf("%w: %v", ErrUpscale, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	// A passthrough on the GPU needs no compute session; it round-trips
	// the frame through a texture instead.
	var (
		sess engineSession
		dev  *gpu.Device
	)
	if plan.Passthrough() && p.cap != nil {
		dev, err = p.cap.acquire()
	} else {
		sess, err = p.session()
	}
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var timing TimingBreakdown

	rgba := input.Data
	if input.Format == FormatRGB8 {
		timed(&timing.RGBToRGBA, func() error {
			rgba = pixel.RGBToRGBA(input.Data, input.Width*input.Height)
			return nil
		})
	}

	var out []uint8
	if dev != nil {
		out, err = textureRoundTrip(dev, rgba, plan, &timing)
	} else {
		out, err = p.run(sess, rgba, plan, &timing)
	}
	if err != nil {
		return nil, p.engineFailure(err)
	}

	data := out
	if outFormat == FormatRGB8 {
		timed(&timing.RGBAToRGB, func() error {
			data = pixel.RGBAToRGB(out, plan.OutW*plan.OutH)
			return nil
		})
	}
	timing.Total = ms(time.Since(start))

	return &Result{
		Pixels: &PixelBuffer{
			Data:   data,
			Width:  plan.OutW,
			Height: plan.OutH,
			Format: outFormat,
		},
		Timing: timing,
	}, nil
}

// run drives the engine through the stage sequence the plan calls for.
// Stages the plan skips are never invoked, so their timing fields stay
// zero.
func (p *Pipeline) run(sess engineSession, rgba []uint8, plan *stage.Plan, t *TimingBreakdown) ([]uint8, error) {
	if err := sess.Begin(plan); err != nil {
		return nil, err
	}
	if err := timed(&t.Upload, func() error { return sess.Upload(rgba) }); err != nil {
		return nil, err
	}
	if plan.Rotation.Kind != stage.RotationNone {
		if err := timed(&t.Rotation, sess.Rotate); err != nil {
			return nil, err
		}
	}
	if plan.Fused {
		if plan.HasTonal {
			if err := timed(&t.UberPipeline, sess.Uber); err != nil {
				return nil, err
			}
		}
	} else {
		if !plan.Factors.IsNeutral() {
			if err := timed(&t.Adjustments, sess.Adjust); err != nil {
				return nil, err
			}
		}
		if plan.Curve != nil {
			if err := timed(&t.ToneCurve, sess.ToneCurve); err != nil {
				return nil, err
			}
		}
		if err := timed(&t.Masks, sess.ApplyMasks); err != nil {
			return nil, err
		}
	}
	if plan.Downsample {
		if err := timed(&t.Downsample, sess.Downsample); err != nil {
			return nil, err
		}
	}
	out := make([]uint8, plan.OutW*plan.OutH*4)
	if err := timed(&t.Readback, func() error { return sess.Readback(out) }); err != nil {
		return nil, err
	}
	return out, nil
}

// textureRoundTrip moves an untouched frame through device memory and
// back. It exercises the same upload and readback paths a full run uses,
// so passthrough timings stay comparable.
func textureRoundTrip(dev *gpu.Device, rgba []uint8, plan *stage.Plan, t *TimingBreakdown) ([]uint8, error) {
	var tex *gpu.Texture
	err := timed(&t.Upload, func() error {
		var err error
		tex, err = dev.CreateTextureFromPixels(rgba, plan.SrcW, plan.SrcH)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer dev.DestroyTexture(tex)

	out := make([]uint8, plan.OutW*plan.OutH*4)
	if err := timed(&t.Readback, func() error { return dev.ReadTexturePixels(tex, out) }); err != nil {
		return nil, err
	}
	return out, nil
}

// session returns the engine session, creating it on first use. Software
// pipelines own their engine; GPU pipelines borrow the capability's
// device.
func (p *Pipeline) session() (engineSession, error) {
	if p.sess != nil {
		return p.sess, nil
	}
	if p.cap == nil {
		if p.soft == nil {
			p.soft = soft.NewEngine(p.workers)
		}
		p.sess = p.soft.NewSession()
		return p.sess, nil
	}
	dev, err := p.cap.acquire()
	if err != nil {
		return nil, err
	}
	s := dev.NewSession()
	if p.readbackTimeout > 0 {
		s.SetWaitTimeout(p.readbackTimeout)
	}
	p.sess = s
	return s, nil
}

// engineFailure translates engine errors into the public taxonomy. Device
// loss and a device closed underneath us both latch the pipeline broken.
func (p *Pipeline) engineFailure(err error) error {
	switch {
	case errors.Is(err, gpu.ErrDeviceLost):
		p.breakSession()
		Logger().Error("device lost, pipeline requires reset", "error", err)
		return fmt.Errorf("%w: %v", ErrDeviceLost, err)
	case errors.Is(err, gpu.ErrClosed):
		p.breakSession()
		return fmt.Errorf("%w: device closed", ErrPipelineBroken)
	case errors.Is(err, gpu.ErrAllocation):
		return fmt.Errorf("%w: %v", ErrAllocation, err)
	default:
		return err
	}
}

func (p *Pipeline) breakSession() {
	p.broken = true
	if p.sess != nil {
		p.sess.Close()
		p.sess = nil
	}
}

// Reset clears a broken pipeline so it can process again. The stale
// session is dropped; the next Process call builds a fresh one from the
// capability's current device. Call Capability.Reset and Initialize first
// when the device itself was lost.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess != nil {
		p.sess.Close()
		p.sess = nil
	}
	p.broken = false
}

// Close releases the pipeline's session and, for software pipelines, its
// engine. Close is idempotent; the shared Capability is left untouched.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.sess != nil {
		p.sess.Close()
		p.sess = nil
	}
	if p.soft != nil {
		p.soft.Close()
		p.soft = nil
	}
	return nil
}

func resolveOutputFormat(input *PixelBuffer, params *AdjustmentParameters) (PixelFormat, error) {
	want := FormatAuto
	if params != nil {
		want = params.Output.Format
	}
	switch want {
	case FormatAuto:
		return input.Format, nil
	case FormatRGB8, FormatRGBA8:
		return want, nil
	default:
		return 0, fmt.Errorf("%w: output format %d", ErrInvalidParams, want)
	}
}

// timed runs fn and accumulates its wall-clock cost into dst.
func timed(dst *float64, fn func() error) error {
	start := time.Now()
	err := fn()
	*dst += ms(time.Since(start))
	return err
}
