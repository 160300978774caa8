// Package soft is the software pipeline engine: a CPU implementation of
// every processing stage, used when no GPU device is available and as the
// reference the GPU kernels are checked against.
//
// Stages operate on interleaved 8-bit RGBA frames and quantize between
// stages, matching the packed-texel storage the GPU engine uses, so the
// two engines agree to within rounding.
package soft

import (
	"errors"
	"fmt"

	"github.com/tesla3327/literoom-sub019/internal/parallel"
	"github.com/tesla3327/literoom-sub019/internal/pixel"
	"github.com/tesla3327/literoom-sub019/internal/stage"
)

var (
	// ErrNoPlan reports a stage call before Begin.
	ErrNoPlan = errors.New("soft: session has no active plan")

	// ErrFrameSize reports an upload or readback buffer whose length does
	// not match the plan dimensions.
	ErrFrameSize = errors.New("soft: frame length does not match plan dimensions")
)

// Engine owns the worker pool and frame pool shared by its sessions.
type Engine struct {
	pool   *parallel.WorkerPool
	frames *pixel.Pool
}

// NewEngine creates a software engine. workers <= 0 means GOMAXPROCS.
func NewEngine(workers int) *Engine {
	return &Engine{
		pool:   parallel.NewWorkerPool(workers),
		frames: pixel.NewPool(4),
	}
}

// Close stops the engine's workers. Sessions must be closed first.
func (e *Engine) Close() {
	e.pool.Close()
}

// NewSession creates a processing session. Sessions are not safe for
// concurrent use; the orchestrator serializes runs.
func (e *Engine) NewSession() *Session {
	return &Session{eng: e}
}

// Session holds the working frame for one run at a time. A session is
// reusable: Begin resets it for the next run.
type Session struct {
	eng  *Engine
	plan *stage.Plan

	// front is the current working frame, curW x curH interleaved RGBA.
	front      []uint8
	curW, curH int
}

// Begin prepares the session for a run of the given plan.
func (s *Session) Begin(plan *stage.Plan) error {
	s.release()
	s.plan = plan
	s.curW, s.curH = plan.SrcW, plan.SrcH
	s.front = s.eng.frames.Get(s.curW, s.curH, 4)
	return nil
}

// Upload copies source RGBA pixels into the working frame.
func (s *Session) Upload(rgba []uint8) error {
	if s.plan == nil {
		return ErrNoPlan
	}
	if len(rgba) != s.curW*s.curH*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(rgba), s.curW*s.curH*4)
	}
	copy(s.front, rgba)
	return nil
}

// Readback copies the working frame into dst, which must be sized for the
// plan's output dimensions.
func (s *Session) Readback(dst []uint8) error {
	if s.plan == nil {
		return ErrNoPlan
	}
	if len(dst) != s.curW*s.curH*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(dst), s.curW*s.curH*4)
	}
	copy(dst, s.front)
	return nil
}

// Close releases the session's frames back to the engine.
func (s *Session) Close() error {
	s.release()
	s.plan = nil
	return nil
}

func (s *Session) release() {
	if s.front != nil {
		s.eng.frames.Put(s.front, s.curW, s.curH, 4)
		s.front = nil
	}
}

// swap replaces the working frame with next at the new dimensions,
// returning the old frame to the pool.
func (s *Session) swap(next []uint8, w, h int) {
	s.eng.frames.Put(s.front, s.curW, s.curH, 4)
	s.front = next
	s.curW, s.curH = w, h
}

// Adjust applies the plan's global adjustment factors in place.
func (s *Session) Adjust() error {
	if s.plan == nil {
		return ErrNoPlan
	}
	s.applyFactors(s.plan.Factors)
	return nil
}

// ToneCurve applies the plan's tone curve LUT in place.
func (s *Session) ToneCurve() error {
	if s.plan == nil {
		return ErrNoPlan
	}
	if s.plan.Curve == nil {
		return nil
	}
	s.applyCurve(s.plan.Curve)
	return nil
}

// Uber applies adjustments and the tone curve in one fused pass.
func (s *Session) Uber() error {
	if s.plan == nil {
		return ErrNoPlan
	}
	s.applyUber(s.plan.Factors, s.plan.Curve)
	return nil
}

// ApplyMasks blends each mask's adjustments over the working frame.
func (s *Session) ApplyMasks() error {
	if s.plan == nil {
		return ErrNoPlan
	}
	for i := range s.plan.Masks {
		s.applyMask(&s.plan.Masks[i])
	}
	return nil
}
