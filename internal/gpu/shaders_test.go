package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

// ============================================================================
// Shader compilation
// ============================================================================

func stageShaders() map[string]string {
	return map[string]string{
		"tonal":          tonalShaderSource,
		"rotate_quarter": rotateQuarterShaderSource,
		"rotate_fine":    rotateFineShaderSource,
		"mask":           maskShaderSource,
		"downsample":     downsampleShaderSource,
	}
}

func TestShaderSourcesEmbedded(t *testing.T) {
	for name, src := range stageShaders() {
		if src == "" {
			t.Errorf("%s shader source is empty", name)
			continue
		}
		if !strings.Contains(src, "fn main") {
			t.Errorf("%s shader has no main entry point", name)
		}
		if !strings.Contains(src, "@workgroup_size(8, 8)") {
			t.Errorf("%s shader does not use the 8x8 workgroup", name)
		}
		// Kernels must stay loop-free: naga's SPIR-V backend has
		// miscompiled loops before, so iteration happens by dispatching
		// extra passes instead.
		if strings.Contains(src, "for (") || strings.Contains(src, "loop {") ||
			strings.Contains(src, "while (") {
			t.Errorf("%s shader contains a loop", name)
		}
	}
}

// TestShaderCompilation compiles every kernel to SPIR-V through naga, the
// same path the device takes at open.
func TestShaderCompilation(t *testing.T) {
	for name, src := range stageShaders() {
		spirvBytes, err := naga.Compile(src)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		if len(spirvBytes) == 0 {
			t.Fatalf("%s: SPIR-V output is empty", name)
		}
		if len(spirvBytes)%4 != 0 {
			t.Fatalf("%s: SPIR-V length %d not word aligned", name, len(spirvBytes))
		}

		// SPIR-V magic number, little-endian.
		magic := uint32(spirvBytes[0]) |
			uint32(spirvBytes[1])<<8 |
			uint32(spirvBytes[2])<<16 |
			uint32(spirvBytes[3])<<24
		if magic != 0x07230203 {
			t.Errorf("%s: bad SPIR-V magic 0x%08x", name, magic)
		}
	}
}

// The tonal and mask kernels must agree on the adjustment math; both carry
// their own copy because each WGSL file compiles standalone.
func TestTonalAndMaskShadersShareAdjustMath(t *testing.T) {
	for _, snippet := range []string{
		"c_in * params.gain",
		"params.temp_shift",
		"params.tint_shift",
		"* params.contrast",
		"smoothstep(0.5, 1.0, l) * params.highlights",
		"smoothstep(0.0, 0.5, l)) * params.shadows",
		"params.white_point - params.black_point",
		"vec3<f32>(0.2126, 0.7152, 0.0722)",
	} {
		if !strings.Contains(tonalShaderSource, snippet) {
			t.Errorf("tonal shader missing %q", snippet)
		}
		if !strings.Contains(maskShaderSource, snippet) {
			t.Errorf("mask shader missing %q", snippet)
		}
	}
}
