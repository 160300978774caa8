package gpu

import (
	_ "embed"
)

// Embedded WGSL kernel sources, compiled to SPIR-V at device open.

//go:embed shaders/tonal.wgsl
var tonalShaderSource string

//go:embed shaders/rotate_quarter.wgsl
var rotateQuarterShaderSource string

//go:embed shaders/rotate_fine.wgsl
var rotateFineShaderSource string

//go:embed shaders/mask.wgsl
var maskShaderSource string

//go:embed shaders/downsample.wgsl
var downsampleShaderSource string
