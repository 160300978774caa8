package gpu

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/tesla3327/literoom-sub019/internal/stage"
)

var (
	// ErrNoPlan reports a stage call before Begin.
	ErrNoPlan = errors.New("gpu: session has no active plan")

	// ErrFrameSize reports a pixel buffer that does not match the plan's
	// dimensions.
	ErrFrameSize = errors.New("gpu: pixel buffer size mismatch")
)

const lutBufSize = stage.CurveLUTSize * 4

// Session runs one frame at a time through the stage kernels. The frame
// lives in two storage buffers of packed RGBA texels: tonal and mask
// stages run in place on the front buffer, geometric stages gather from
// front into back and swap. Each stage submits its own command buffer and
// waits on a fence, so callers can clock stages individually.
//
// A Session is not safe for concurrent use, and the Device must outlive
// every session it spawned.
type Session struct {
	dev  *Device
	plan *stage.Plan

	front  hal.Buffer
	back   hal.Buffer
	bufCap uint64
	lutBuf hal.Buffer

	curW, curH int

	// waitTimeout overrides deviceWaitTimeout when positive.
	waitTimeout time.Duration

	// lost latches on submit or fence failure; every later call fails
	// with ErrDeviceLost until the device is reopened.
	lost bool
}

// SetWaitTimeout overrides the per-stage fence timeout. Zero or negative
// restores the default.
func (s *Session) SetWaitTimeout(d time.Duration) {
	s.waitTimeout = d
}

// NewSession creates an idle session on the device.
func (d *Device) NewSession() *Session {
	return &Session{dev: d}
}

// Begin readies the session for one frame: grows the working buffers to
// the plan's source size and uploads the tone curve LUT when the plan
// carries one. Working buffers are grow-only across frames.
func (s *Session) Begin(plan *stage.Plan) error {
	if s.lost {
		return ErrDeviceLost
	}
	if plan == nil {
		return ErrNoPlan
	}
	device := s.dev.device
	if device == nil {
		return ErrClosed
	}

	need := uint64(plan.SrcW) * uint64(plan.SrcH) * 4
	if need > s.bufCap {
		if s.front != nil {
			device.DestroyBuffer(s.front)
			s.front = nil
		}
		if s.back != nil {
			device.DestroyBuffer(s.back)
			s.back = nil
		}
		front, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "frame_front", Size: need,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: front buffer (%d bytes): %v", ErrAllocation, need, err)
		}
		back, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "frame_back", Size: need,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			device.DestroyBuffer(front)
			return fmt.Errorf("%w: back buffer (%d bytes): %v", ErrAllocation, need, err)
		}
		s.front, s.back, s.bufCap = front, back, need
	}

	if s.lutBuf == nil {
		lut, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "tone_curve_lut", Size: lutBufSize,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: curve LUT buffer: %v", ErrAllocation, err)
		}
		s.lutBuf = lut
	}
	// The tonal kernel only reads the LUT when the plan has a curve, so a
	// curveless frame can leave stale LUT contents in place.
	if plan.Curve != nil {
		table := plan.Curve.Table
		s.dev.queue.WriteBuffer(s.lutBuf, 0, structToBytes(unsafe.Pointer(&table[0]), unsafe.Sizeof(table)))
	}

	s.plan = plan
	s.curW, s.curH = plan.SrcW, plan.SrcH
	return nil
}

// Upload copies tightly packed RGBA pixels into the front buffer. The
// byte layout of RGBA8 rows is exactly the packed little-endian texel
// format the kernels index, so no host-side swizzle is needed.
func (s *Session) Upload(rgba []uint8) error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	if len(rgba) != s.curW*s.curH*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(rgba), s.curW*s.curH*4)
	}
	s.dev.queue.WriteBuffer(s.front, 0, rgba)
	return nil
}

// Rotate runs the plan's geometric transform: an exact quarter-turn
// permutation, a fine-angle resample, or both.
func (s *Session) Rotate() error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	rot := s.plan.Rotation
	switch rot.Kind {
	case stage.RotationNone:
		return nil
	case stage.RotationQuarter:
		return s.rotateQuarter(rot.Turns)
	case stage.RotationArbitrary:
		if rot.Turns != 0 {
			if err := s.rotateQuarter(rot.Turns); err != nil {
				return err
			}
		}
		p := newFineParams(s.curW, s.curH, rot.Sin, rot.Cos)
		return s.dispatchGather(s.dev.pipes.fine, "rotate_fine",
			structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)), s.curW, s.curH)
	}
	return nil
}

func (s *Session) rotateQuarter(turns int) error {
	if turns == 0 {
		return nil
	}
	dstW, dstH := stage.RotatedDims(turns, s.curW, s.curH)
	p := newQuarterParams(s.curW, s.curH, dstW, dstH, turns)
	return s.dispatchGather(s.dev.pipes.quarter, "rotate_quarter",
		structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)), dstW, dstH)
}

// Adjust runs the global adjustments without the tone curve, for the
// split pipeline used when masks are present.
func (s *Session) Adjust() error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	if s.plan.Factors.IsNeutral() {
		return nil
	}
	p := newTonalParams(s.curW, s.curH, s.plan.Factors, false)
	return s.dispatchInPlace(s.dev.pipes.tonal, "adjust",
		structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)))
}

// ToneCurve maps channels through the plan's curve LUT, if any.
func (s *Session) ToneCurve() error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	if s.plan.Curve == nil {
		return nil
	}
	p := newTonalParams(s.curW, s.curH, stage.NeutralFactors(), true)
	return s.dispatchInPlace(s.dev.pipes.tonal, "tone_curve",
		structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)))
}

// Uber fuses adjustments and the tone curve into a single pass, so pixels
// quantize once instead of twice.
func (s *Session) Uber() error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	if !s.plan.HasTonal {
		return nil
	}
	p := newTonalParams(s.curW, s.curH, s.plan.Factors, s.plan.Curve != nil)
	return s.dispatchInPlace(s.dev.pipes.tonal, "uber",
		structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)))
}

// ApplyMasks runs one compute pass per mask inside a single command
// buffer. Passes over the same storage buffer are ordered, so each mask
// sees the previous one's output.
func (s *Session) ApplyMasks() error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	masks := s.plan.Masks
	if len(masks) == 0 {
		return nil
	}
	device := s.dev.device
	frameSize := uint64(s.curW) * uint64(s.curH) * 4

	paramSize := uint64(unsafe.Sizeof(maskParams{}))
	uniformBufs := make([]hal.Buffer, 0, len(masks))
	bindGroups := make([]hal.BindGroup, 0, len(masks))
	defer func() {
		for _, bg := range bindGroups {
			device.DestroyBindGroup(bg)
		}
		for _, ub := range uniformBufs {
			device.DestroyBuffer(ub)
		}
	}()

	for i := range masks {
		p := newMaskParams(s.curW, s.curH, &masks[i])
		ub, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "mask_params", Size: paramSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: mask uniform %d: %v", ErrAllocation, i, err)
		}
		uniformBufs = append(uniformBufs, ub)
		s.dev.queue.WriteBuffer(ub, 0, structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)))

		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label: "mask_bind", Layout: s.dev.pipes.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: paramSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: s.lutBuf.NativeHandle(), Offset: 0, Size: lutBufSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: s.front.NativeHandle(), Offset: 0, Size: frameSize}},
			},
		})
		if err != nil {
			return fmt.Errorf("%w: mask bind group %d: %v", ErrAllocation, i, err)
		}
		bindGroups = append(bindGroups, bg)
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mask_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("masks"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	for _, bg := range bindGroups {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mask_pass"})
		pass.SetPipeline(s.dev.pipes.mask)
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch((uint32(s.curW)+7)/8, (uint32(s.curH)+7)/8, 1)
		pass.End()
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	return s.submitAndWait(cmdBuf, "masks")
}

// Downsample resamples the frame to the plan's output dimensions.
func (s *Session) Downsample() error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	p := s.plan
	if !p.Downsample || (p.OutW == s.curW && p.OutH == s.curH) {
		return nil
	}
	sp := newScaleParams(s.curW, s.curH, p.OutW, p.OutH)
	return s.dispatchGather(s.dev.pipes.scale, "downsample",
		structToBytes(unsafe.Pointer(&sp), unsafe.Sizeof(sp)), p.OutW, p.OutH)
}

// Readback copies the front buffer through a map-read staging buffer into
// dst. Buffer-to-buffer copies need no row alignment, so the staging
// buffer is tight.
func (s *Session) Readback(dst []uint8) error {
	if s.lost {
		return ErrDeviceLost
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	n := uint64(s.curW) * uint64(s.curH) * 4
	if uint64(len(dst)) != n {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(dst), n)
	}
	device := s.dev.device

	stagingBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frame_staging", Size: n,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: staging buffer: %v", ErrAllocation, err)
	}
	defer device.DestroyBuffer(stagingBuf)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(s.front, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: n},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := s.submitAndWait(cmdBuf, "readback"); err != nil {
		return err
	}
	if err := s.dev.queue.ReadBuffer(stagingBuf, 0, dst); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

// Close releases the session's buffers. The device stays open.
func (s *Session) Close() error {
	device := s.dev.device
	if device != nil {
		if s.front != nil {
			device.DestroyBuffer(s.front)
		}
		if s.back != nil {
			device.DestroyBuffer(s.back)
		}
		if s.lutBuf != nil {
			device.DestroyBuffer(s.lutBuf)
		}
	}
	s.front, s.back, s.lutBuf = nil, nil, nil
	s.bufCap = 0
	s.plan = nil
	return nil
}

// dispatchInPlace runs one compute pass that reads and writes the front
// buffer, with the curve LUT on the auxiliary binding.
func (s *Session) dispatchInPlace(pipeline hal.ComputePipeline, label string, paramsBytes []byte) error {
	frameSize := uint64(s.curW) * uint64(s.curH) * 4
	return s.dispatch(pipeline, label, paramsBytes,
		s.lutBuf, lutBufSize, s.front, frameSize, s.curW, s.curH)
}

// dispatchGather runs one compute pass that reads the front buffer and
// writes the back buffer over a dstW x dstH grid, then swaps front and
// back and adopts the new dimensions.
func (s *Session) dispatchGather(pipeline hal.ComputePipeline, label string, paramsBytes []byte, dstW, dstH int) error {
	srcSize := uint64(s.curW) * uint64(s.curH) * 4
	dstSize := uint64(dstW) * uint64(dstH) * 4
	if err := s.dispatch(pipeline, label, paramsBytes,
		s.front, srcSize, s.back, dstSize, dstW, dstH); err != nil {
		return err
	}
	s.front, s.back = s.back, s.front
	s.curW, s.curH = dstW, dstH
	return nil
}

// dispatch encodes a single compute pass with a fresh uniform buffer and
// bind group, submits it, and waits on a fence.
func (s *Session) dispatch(
	pipeline hal.ComputePipeline, label string, paramsBytes []byte,
	auxBuf hal.Buffer, auxSize uint64,
	mainBuf hal.Buffer, mainSize uint64,
	gridW, gridH int,
) error {
	device := s.dev.device

	ub, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_params", Size: uint64(len(paramsBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: %s uniform: %v", ErrAllocation, label, err)
	}
	defer device.DestroyBuffer(ub)
	s.dev.queue.WriteBuffer(ub, 0, paramsBytes)

	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: label + "_bind", Layout: s.dev.pipes.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uint64(len(paramsBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: auxBuf.NativeHandle(), Offset: 0, Size: auxSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: mainBuf.NativeHandle(), Offset: 0, Size: mainSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %s bind group: %v", ErrAllocation, label, err)
	}
	defer device.DestroyBindGroup(bg)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label + "_pass"})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((uint32(gridW)+7)/8, (uint32(gridH)+7)/8, 1)
	pass.End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	return s.submitAndWait(cmdBuf, label)
}

// submitAndWait submits one command buffer and blocks on its fence. A
// submit error or fence timeout latches the session as lost.
func (s *Session) submitAndWait(cmdBuf hal.CommandBuffer, label string) error {
	device := s.dev.device

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := s.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		s.lost = true
		return fmt.Errorf("%w: %s submit: %v", ErrDeviceLost, label, err)
	}
	timeout := s.waitTimeout
	if timeout <= 0 {
		timeout = deviceWaitTimeout
	}
	fenceOK, err := device.Wait(fence, 1, timeout)
	if err != nil || !fenceOK {
		s.lost = true
		return fmt.Errorf("%w: %s fence wait ok=%v err=%v", ErrDeviceLost, label, fenceOK, err)
	}
	return nil
}
