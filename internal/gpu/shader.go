package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// createShaderModule compiles WGSL to SPIR-V through naga and hands the
// words to the device. The Vulkan backend wants SPIR-V, so compiling here
// keeps shader errors at pipeline-build time instead of first dispatch.
func createShaderModule(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile %s: SPIR-V length %d not word aligned", label, len(spirvBytes))
	}

	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: shader module %s: %v", ErrAllocation, label, err)
	}
	return module, nil
}
