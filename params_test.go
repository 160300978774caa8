package literoom

import (
	"strings"
	"testing"

	"github.com/tesla3327/literoom-sub019/internal/stage"
)

func TestPixelFormatProperties(t *testing.T) {
	cases := []struct {
		format PixelFormat
		bpp    int
		name   string
	}{
		{FormatAuto, 0, "auto"},
		{FormatRGB8, 3, "rgb8"},
		{FormatRGBA8, 4, "rgba8"},
		{PixelFormat(9), 0, "unknown"},
	}
	for _, tc := range cases {
		if got := tc.format.BytesPerPixel(); got != tc.bpp {
			t.Errorf("%s BytesPerPixel = %d, want %d", tc.name, got, tc.bpp)
		}
		if got := tc.format.String(); got != tc.name {
			t.Errorf("String = %q, want %q", got, tc.name)
		}
	}
}

func TestNewPixelBuffer(t *testing.T) {
	data := make([]uint8, 4*3*3)
	b, err := NewPixelBuffer(data, 4, 3, FormatRGB8)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}
	if b.Width != 4 || b.Height != 3 || b.Format != FormatRGB8 {
		t.Errorf("buffer = %dx%d %s", b.Width, b.Height, b.Format)
	}

	if _, err := NewPixelBuffer(data, 4, 3, FormatRGBA8); err == nil {
		t.Error("length mismatch must fail")
	}
	if _, err := NewPixelBuffer(data, 0, 3, FormatRGB8); err == nil {
		t.Error("zero width must fail")
	}
	if _, err := NewPixelBuffer(data, 4, 3, FormatAuto); err == nil {
		t.Error("auto format must fail for input buffers")
	}
}

func TestParamsLowering(t *testing.T) {
	p := &AdjustmentParameters{
		AdjustmentSliders: AdjustmentSliders{
			Temperature: 10,
			Tint:        -5,
			Exposure:    1.5,
			Contrast:    20,
			Highlights:  -30,
			Shadows:     40,
			Whites:      15,
			Blacks:      -15,
			Vibrance:    25,
			Saturation:  -10,
		},
		ToneCurve: []ToneCurvePoint{{X: 0, Y: 0.1}, {X: 1, Y: 0.9}},
		Masks: []Mask{{
			Type:    MaskRadial,
			CenterX: 0.3,
			CenterY: 0.6,
			RadiusX: 0.2,
			RadiusY: 0.25,
			Feather: 0.4,
			Invert:  true,
			Adjust:  AdjustmentSliders{Exposure: -2},
		}},
		Rotation: Rotation{Turns: 2, Angle: -12},
		Output:   OutputOptions{Width: 100, Height: 80},
	}

	req := p.request(640, 480)
	if req.Width != 640 || req.Height != 480 {
		t.Errorf("dims = %dx%d", req.Width, req.Height)
	}
	if req.Sliders.Exposure != 1.5 || req.Sliders.Saturation != -10 {
		t.Errorf("sliders = %+v", req.Sliders)
	}
	if len(req.CurvePoints) != 2 || req.CurvePoints[1].Y != 0.9 {
		t.Errorf("curve = %+v", req.CurvePoints)
	}
	if len(req.Masks) != 1 {
		t.Fatalf("masks = %d, want 1", len(req.Masks))
	}
	m := req.Masks[0]
	if m.Kind != stage.MaskRadial || !m.Invert || m.CenterX != 0.3 || m.Sliders.Exposure != -2 {
		t.Errorf("mask = %+v", m)
	}
	if req.Turns != 2 || req.Angle != -12 {
		t.Errorf("rotation = %d turns %.1f deg", req.Turns, req.Angle)
	}
	if req.OutWidth != 100 || req.OutHeight != 80 {
		t.Errorf("out = %dx%d", req.OutWidth, req.OutHeight)
	}
}

func TestNilParamsLowering(t *testing.T) {
	var p *AdjustmentParameters
	req := p.request(320, 200)
	if req.Width != 320 || req.Height != 200 {
		t.Errorf("dims = %dx%d", req.Width, req.Height)
	}
	if !req.Sliders.IsNeutral() || req.CurvePoints != nil || req.Masks != nil {
		t.Error("nil params must lower to an identity request")
	}
	if req.Turns != 0 || req.Angle != 0 || req.OutWidth != 0 || req.OutHeight != 0 {
		t.Error("nil params must request no geometry work")
	}
}

func TestLinearMaskLowering(t *testing.T) {
	p := &AdjustmentParameters{
		Masks: []Mask{{
			Type:   MaskLinear,
			StartX: 0.1,
			StartY: 0.2,
			EndX:   0.9,
			EndY:   0.8,
			Adjust: AdjustmentSliders{Contrast: 50},
		}},
	}
	req := p.request(64, 64)
	if len(req.Masks) != 1 {
		t.Fatalf("masks = %d", len(req.Masks))
	}
	m := req.Masks[0]
	if m.Kind != stage.MaskLinear {
		t.Errorf("kind = %v, want linear", m.Kind)
	}
	if m.StartX != 0.1 || m.EndY != 0.8 || m.Sliders.Contrast != 50 {
		t.Errorf("mask = %+v", m)
	}
}

func TestTimingString(t *testing.T) {
	tm := TimingBreakdown{Upload: 0.5, Readback: 1.25, Total: 2.5}
	s := tm.String()
	for _, want := range []string{"total=2.50ms", "upload=0.50ms", "readback=1.25ms"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
	if strings.Contains(s, "masks") || strings.Contains(s, "rotation") {
		t.Errorf("String() = %q, must omit zero stages", s)
	}
}
