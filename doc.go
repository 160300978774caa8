// Package literoom is a GPU-accelerated photo edit pipeline for Go.
//
// # Overview
//
// literoom renders non-destructive photo edits — rotation, tonal
// adjustments, tone curves, local masks, and downsampling — over RGB/RGBA
// pixel buffers. Stages run as WGSL compute kernels on a Vulkan device via
// gogpu/wgpu, with a CPU engine carrying identical stage math for machines
// without a usable GPU.
//
// # Quick Start
//
//	import "github.com/tesla3327/literoom-sub019"
//
//	// Probe the GPU once at startup.
//	c := literoom.Default()
//	c.Initialize(ctx)
//
//	p := literoom.New(c)
//	defer p.Close()
//
//	res, err := p.Process(ctx, input, &literoom.AdjustmentParameters{
//	    AdjustmentSliders: literoom.AdjustmentSliders{Exposure: 0.5, Contrast: 20},
//	})
//
// When the capability probe fails, construct the CPU engine instead:
//
//	p := literoom.NewSoftware()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Capability, Pipeline, Coalescer, parameter and timing types
//   - internal/stage: parameter validation and lowering shared by both engines
//   - internal/gpu: HAL device, compute pipelines, WGSL kernels
//   - internal/soft: CPU engine with row-sharded kernels
//   - bench: measurement harness used by cmd/literoom-bench
//
// # Processing model
//
// Process runs a fixed stage sequence over a ping-pong buffer pair and
// reports a per-stage TimingBreakdown. Calls serialize per Pipeline; use a
// Coalescer to collapse bursts of slider changes into the latest state.
package literoom

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
