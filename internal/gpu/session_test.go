package gpu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tesla3327/literoom-sub019/internal/stage"
)

// openTestDevice opens a real device or skips; these tests run only where
// a Vulkan adapter exists.
func openTestDevice(t *testing.T) *Device {
	t.Helper()
	dev, err := Open()
	if err != nil {
		t.Skipf("GPU not available: %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

// runPlan drives a session through the standard stage sequence for plan,
// the same order the orchestrator uses.
func runPlan(t *testing.T, dev *Device, plan *stage.Plan, src []uint8) []uint8 {
	t.Helper()
	sess := dev.NewSession()
	defer sess.Close()

	if err := sess.Begin(plan); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := sess.Upload(src); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := sess.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if plan.Fused {
		if err := sess.Uber(); err != nil {
			t.Fatalf("Uber: %v", err)
		}
	} else {
		if err := sess.Adjust(); err != nil {
			t.Fatalf("Adjust: %v", err)
		}
		if err := sess.ToneCurve(); err != nil {
			t.Fatalf("ToneCurve: %v", err)
		}
		if err := sess.ApplyMasks(); err != nil {
			t.Fatalf("ApplyMasks: %v", err)
		}
	}
	if err := sess.Downsample(); err != nil {
		t.Fatalf("Downsample: %v", err)
	}

	out := make([]uint8, plan.OutW*plan.OutH*4)
	if err := sess.Readback(out); err != nil {
		t.Fatalf("Readback: %v", err)
	}
	return out
}

func mustPlan(t *testing.T, req stage.Request) *stage.Plan {
	t.Helper()
	plan, err := stage.BuildPlan(req, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func solidRGBA(w, h int, r, g, b uint8) []uint8 {
	buf := make([]uint8, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i] = r
		buf[i+1] = g
		buf[i+2] = b
		buf[i+3] = 255
	}
	return buf
}

func TestDeviceProbe(t *testing.T) {
	dev := openTestDevice(t)
	if dev.Name() == "" {
		t.Error("adapter name is empty")
	}
	if err := dev.Probe(); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}

// Texture readback must survive row pitch padding, so the width here is
// chosen to make bytesPerRow misaligned with the 256-byte copy pitch.
func TestTextureRoundTripPaddedRows(t *testing.T) {
	dev := openTestDevice(t)

	const w, h = 33, 7
	src := make([]uint8, w*h*4)
	for i := range src {
		src[i] = uint8(i * 31)
	}
	tex, err := dev.CreateTextureFromPixels(src, w, h)
	if err != nil {
		t.Fatalf("CreateTextureFromPixels: %v", err)
	}
	defer dev.DestroyTexture(tex)

	got := make([]uint8, len(src))
	if err := dev.ReadTexturePixels(tex, got); err != nil {
		t.Fatalf("ReadTexturePixels: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Error("padded-row texture round trip corrupted pixels")
	}
}

func TestSessionPassthrough(t *testing.T) {
	dev := openTestDevice(t)

	const w, h = 40, 25
	src := make([]uint8, w*h*4)
	for i := range src {
		src[i] = uint8((i*7 + 13) % 256)
	}
	plan := mustPlan(t, stage.Request{Width: w, Height: h})

	out := runPlan(t, dev, plan, src)
	if !bytes.Equal(out, src) {
		t.Error("passthrough altered pixels")
	}
}

// The GPU tonal kernel must agree with the reference math in the stage
// package to within one quantization step per channel.
func TestSessionExposureMatchesReference(t *testing.T) {
	dev := openTestDevice(t)

	const w, h = 16, 16
	src := solidRGBA(w, h, 100, 128, 160)
	sliders := stage.Sliders{Exposure: 0.5, Contrast: 20, Saturation: 10}
	plan := mustPlan(t, stage.Request{Width: w, Height: h, Sliders: sliders})

	out := runPlan(t, dev, plan, src)

	f := stage.ResolveFactors(sliders)
	er, eg, eb := f.Apply(100.0/255, 128.0/255, 160.0/255)
	want := [3]uint8{
		uint8(er*255 + 0.5),
		uint8(eg*255 + 0.5),
		uint8(eb*255 + 0.5),
	}
	for c := 0; c < 3; c++ {
		diff := int(out[c]) - int(want[c])
		if diff < -1 || diff > 1 {
			t.Errorf("channel %d = %d, want %d +-1", c, out[c], want[c])
		}
	}
	if out[3] != 255 {
		t.Errorf("alpha = %d, want 255", out[3])
	}
}

// Quarter turns are pure permutations, so the GPU result must be exact.
func TestSessionQuarterRotation(t *testing.T) {
	dev := openTestDevice(t)

	src := []uint8{
		10, 0, 0, 255, 20, 0, 0, 255,
		30, 0, 0, 255, 40, 0, 0, 255,
		50, 0, 0, 255, 60, 0, 0, 255,
	}
	plan := mustPlan(t, stage.Request{Width: 2, Height: 3, Turns: 1})

	out := runPlan(t, dev, plan, src)
	want := []uint8{
		50, 0, 0, 255, 30, 0, 0, 255, 10, 0, 0, 255,
		60, 0, 0, 255, 40, 0, 0, 255, 20, 0, 0, 255,
	}
	if !bytes.Equal(out, want) {
		t.Errorf("rotated frame = %v, want %v", out, want)
	}
}

func TestSessionLinearMask(t *testing.T) {
	dev := openTestDevice(t)

	const w, h = 16, 32
	src := solidRGBA(w, h, 128, 128, 128)
	plan := mustPlan(t, stage.Request{
		Width: w, Height: h,
		Masks: []stage.MaskSpec{{
			Kind:   stage.MaskLinear,
			StartX: 0.5, StartY: 0,
			EndX: 0.5, EndY: 1,
			Sliders: stage.Sliders{Exposure: -2},
		}},
	})

	out := runPlan(t, dev, plan, src)

	top := out[(1*w+8)*4]
	bottom := out[((h-2)*w+8)*4]
	if top >= 100 {
		t.Errorf("masked top row = %d, want well below 128", top)
	}
	if bottom != 128 {
		t.Errorf("unmasked bottom row = %d, want exactly 128", bottom)
	}
}

func TestSessionDownsample(t *testing.T) {
	dev := openTestDevice(t)

	// Four solid quadrants; a 2x reduction should hit each center.
	const w, h = 4, 4
	src := make([]uint8, w*h*4)
	fill := func(x, y int, v uint8) {
		i := (y*w + x) * 4
		src[i], src[i+1], src[i+2], src[i+3] = v, v, v, 255
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			fill(x, y, 10)
			fill(x+2, y, 90)
			fill(x, y+2, 170)
			fill(x+2, y+2, 250)
		}
	}

	plan := mustPlan(t, stage.Request{Width: w, Height: h, OutWidth: 2, OutHeight: 2})
	out := runPlan(t, dev, plan, src)

	want := []uint8{10, 90, 170, 250}
	for i, v := range want {
		diff := int(out[i*4]) - int(v)
		if diff < -2 || diff > 2 {
			t.Errorf("output pixel %d = %d, want %d +-2", i, out[i*4], v)
		}
	}
}

func TestSessionDeterminism(t *testing.T) {
	dev := openTestDevice(t)

	const w, h = 64, 40
	src := make([]uint8, w*h*4)
	for i := range src {
		src[i] = uint8((i * 13) % 256)
	}
	req := stage.Request{
		Width: w, Height: h,
		Sliders:     stage.Sliders{Exposure: 0.3, Vibrance: 25},
		CurvePoints: []stage.CurvePoint{{X: 0, Y: 0}, {X: 0.4, Y: 0.55}, {X: 1, Y: 1}},
		Angle:       3,
		OutWidth:    32, OutHeight: 20,
	}

	first := runPlan(t, dev, mustPlan(t, req), append([]uint8(nil), src...))
	second := runPlan(t, dev, mustPlan(t, req), append([]uint8(nil), src...))
	if !bytes.Equal(first, second) {
		t.Error("same input and plan produced different pixels")
	}
}

// Validation failures must surface before any device work.
func TestSessionValidation(t *testing.T) {
	sess := (&Device{}).NewSession()

	if err := sess.Begin(nil); !errors.Is(err, ErrNoPlan) {
		t.Errorf("Begin(nil) = %v, want ErrNoPlan", err)
	}
	if err := sess.Upload(make([]uint8, 16)); !errors.Is(err, ErrNoPlan) {
		t.Errorf("Upload before Begin = %v, want ErrNoPlan", err)
	}
	if err := sess.Rotate(); !errors.Is(err, ErrNoPlan) {
		t.Errorf("Rotate before Begin = %v, want ErrNoPlan", err)
	}
	if err := sess.Readback(make([]uint8, 16)); !errors.Is(err, ErrNoPlan) {
		t.Errorf("Readback before Begin = %v, want ErrNoPlan", err)
	}

	plan, err := stage.BuildPlan(stage.Request{Width: 2, Height: 2}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if err := sess.Begin(plan); !errors.Is(err, ErrClosed) {
		t.Errorf("Begin on closed device = %v, want ErrClosed", err)
	}
}

func TestAdoptRejectsBadProviders(t *testing.T) {
	if _, err := Adopt(struct{}{}); err == nil {
		t.Error("Adopt accepted a provider without HAL accessors")
	}
	if _, err := Adopt(badProvider{}); err == nil {
		t.Error("Adopt accepted a provider returning non-HAL types")
	}
}

type badProvider struct{}

func (badProvider) HalDevice() any { return "not a device" }
func (badProvider) HalQueue() any  { return 42 }
