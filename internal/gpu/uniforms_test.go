package gpu

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/tesla3327/literoom-sub019/internal/stage"
)

// ============================================================================
// Uniform layout
// ============================================================================

// The WGSL kernels index these structs by byte offset, so size drift is a
// silent corruption: every struct must stay all-4-byte fields with total
// size a multiple of 16.
func TestUniformSizes(t *testing.T) {
	cases := []struct {
		name string
		size uintptr
		want uintptr
	}{
		{"tonalParams", unsafe.Sizeof(tonalParams{}), 64},
		{"maskParams", unsafe.Sizeof(maskParams{}), 112},
		{"quarterParams", unsafe.Sizeof(quarterParams{}), 32},
		{"fineParams", unsafe.Sizeof(fineParams{}), 16},
		{"scaleParams", unsafe.Sizeof(scaleParams{}), 32},
	}
	for _, c := range cases {
		if c.size != c.want {
			t.Errorf("%s is %d bytes, want %d", c.name, c.size, c.want)
		}
		if c.size%16 != 0 {
			t.Errorf("%s size %d is not a multiple of 16", c.name, c.size)
		}
	}
}

func TestStructToBytesLayout(t *testing.T) {
	p := newQuarterParams(100, 50, 50, 100, 3)
	b := structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p))
	if len(b) != 32 {
		t.Fatalf("serialized to %d bytes, want 32", len(b))
	}

	words := []uint32{100, 50, 50, 100, 3, 0, 0, 0}
	for i, want := range words {
		got := binary.LittleEndian.Uint32(b[i*4:])
		if got != want {
			t.Errorf("word %d = %d, want %d", i, got, want)
		}
	}
}

func TestTonalParamsFields(t *testing.T) {
	f := stage.ResolveFactors(stage.Sliders{Exposure: 1, Contrast: 50})
	p := newTonalParams(640, 480, f, true)

	if p.width != 640 || p.height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", p.width, p.height)
	}
	if p.hasCurve != 1 {
		t.Errorf("hasCurve = %d, want 1", p.hasCurve)
	}
	if p.gain != 2 {
		t.Errorf("gain = %g, want 2", p.gain)
	}
	if p.contrast != 1.5 {
		t.Errorf("contrast = %g, want 1.5", p.contrast)
	}

	neutral := newTonalParams(1, 1, stage.NeutralFactors(), false)
	if neutral.hasCurve != 0 {
		t.Errorf("hasCurve = %d, want 0", neutral.hasCurve)
	}
	if neutral.gain != 1 || neutral.saturation != 1 || neutral.whitePoint != 1 {
		t.Errorf("neutral factors not identity: gain=%g saturation=%g whitePoint=%g",
			neutral.gain, neutral.saturation, neutral.whitePoint)
	}

	// The float fields start right after the four u32 header words.
	b := structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p))
	gain := math.Float32frombits(binary.LittleEndian.Uint32(b[16:]))
	if gain != 2 {
		t.Errorf("serialized gain = %g, want 2", gain)
	}
}

func TestMaskParamsFields(t *testing.T) {
	spec := stage.MaskSpec{
		Kind:    stage.MaskRadial,
		CenterX: 0.5, CenterY: 0.25,
		RadiusX: 0.4, RadiusY: 0.2,
		Feather: 0.3,
		Invert:  true,
		Sliders: stage.Sliders{Exposure: -1},
	}
	plan, err := stage.ResolveMask(spec)
	if err != nil {
		t.Fatalf("ResolveMask: %v", err)
	}
	p := newMaskParams(320, 240, &plan)

	if p.kind != uint32(stage.MaskRadial) {
		t.Errorf("kind = %d, want %d", p.kind, stage.MaskRadial)
	}
	if p.invert != 1 {
		t.Errorf("invert = %d, want 1", p.invert)
	}
	if p.centerX != 0.5 || p.centerY != 0.25 {
		t.Errorf("center = (%g, %g), want (0.5, 0.25)", p.centerX, p.centerY)
	}
	if p.radiusX != 0.4 || p.radiusY != 0.2 {
		t.Errorf("radii = (%g, %g), want (0.4, 0.2)", p.radiusX, p.radiusY)
	}
	if p.gain != 0.5 {
		t.Errorf("gain = %g, want 0.5", p.gain)
	}
}

func TestScaleParamsMode(t *testing.T) {
	// Mild reduction: single-tap mode.
	if p := newScaleParams(2560, 1707, 1280, 854); p.mode != 0 {
		t.Errorf("2x reduction picked mode %d, want 0", p.mode)
	}
	// Heavy reduction on either axis switches to spread taps.
	if p := newScaleParams(2560, 1707, 640, 427); p.mode != 1 {
		t.Errorf("4x reduction picked mode %d, want 1", p.mode)
	}
	if p := newScaleParams(1000, 1000, 1000, 400); p.mode != 1 {
		t.Errorf("tall reduction picked mode %d, want 1", p.mode)
	}
}

func TestCopyPitchAlignment(t *testing.T) {
	cases := []struct {
		width uint32
		want  uint32
	}{
		{64, 256},    // 256 bytes per row, already aligned
		{100, 512},   // 400 -> 512
		{1280, 5120}, // 5120 is a multiple of 256 already
	}
	for _, c := range cases {
		bytesPerRow := c.width * 4
		aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		if aligned != c.want {
			t.Errorf("width %d: aligned pitch = %d, want %d", c.width, aligned, c.want)
		}
	}
}
