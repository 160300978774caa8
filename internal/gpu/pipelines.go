package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// pipelineSet holds the five stage pipelines. All of them share one bind
// group layout — binding 0 uniform params, binding 1 read-only storage,
// binding 2 read-write storage — so sessions can reuse a single pipeline
// layout and bind whatever pair of buffers a stage needs.
//
// The in-place kernels (tonal, mask) read and write binding 2 and use
// binding 1 for auxiliary data such as the tone curve LUT. The gather
// kernels (rotations, downsample) read binding 1 and write binding 2.
type pipelineSet struct {
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	modules    []hal.ShaderModule

	tonal   hal.ComputePipeline
	quarter hal.ComputePipeline
	fine    hal.ComputePipeline
	mask    hal.ComputePipeline
	scale   hal.ComputePipeline
}

func newPipelineSet(device hal.Device) (*pipelineSet, error) {
	ps := &pipelineSet{}

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "stage_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: stage bind group layout: %v", ErrAllocation, err)
	}
	ps.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "stage_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{ps.bindLayout},
	})
	if err != nil {
		ps.destroy(device)
		return nil, fmt.Errorf("%w: stage pipeline layout: %v", ErrAllocation, err)
	}
	ps.pipeLayout = pipeLayout

	kernels := []struct {
		name   string
		source string
		target *hal.ComputePipeline
	}{
		{"tonal", tonalShaderSource, &ps.tonal},
		{"rotate_quarter", rotateQuarterShaderSource, &ps.quarter},
		{"rotate_fine", rotateFineShaderSource, &ps.fine},
		{"mask", maskShaderSource, &ps.mask},
		{"downsample", downsampleShaderSource, &ps.scale},
	}
	for _, k := range kernels {
		module, err := createShaderModule(device, k.name, k.source)
		if err != nil {
			ps.destroy(device)
			return nil, err
		}
		ps.modules = append(ps.modules, module)

		pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label: k.name + "_pipeline", Layout: ps.pipeLayout,
			Compute: hal.ComputeState{Module: module, EntryPoint: "main"},
		})
		if err != nil {
			ps.destroy(device)
			return nil, fmt.Errorf("%w: %s pipeline: %v", ErrAllocation, k.name, err)
		}
		*k.target = pipeline
	}

	return ps, nil
}

// destroy releases everything in reverse dependency order: pipelines,
// then the pipeline layout, then the bind layout, then shader modules.
func (ps *pipelineSet) destroy(device hal.Device) {
	if device == nil {
		return
	}
	for _, p := range []hal.ComputePipeline{ps.tonal, ps.quarter, ps.fine, ps.mask, ps.scale} {
		if p != nil {
			device.DestroyComputePipeline(p)
		}
	}
	ps.tonal, ps.quarter, ps.fine, ps.mask, ps.scale = nil, nil, nil, nil, nil

	if ps.pipeLayout != nil {
		device.DestroyPipelineLayout(ps.pipeLayout)
		ps.pipeLayout = nil
	}
	if ps.bindLayout != nil {
		device.DestroyBindGroupLayout(ps.bindLayout)
		ps.bindLayout = nil
	}
	for _, m := range ps.modules {
		if m != nil {
			device.DestroyShaderModule(m)
		}
	}
	ps.modules = nil
}
