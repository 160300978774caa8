package stage

import (
	"errors"
	"testing"
)

// TestBuildPlanPassthrough verifies a neutral request is recognized as
// pure upload/readback work.
func TestBuildPlanPassthrough(t *testing.T) {
	plan, err := BuildPlan(Request{Width: 1280, Height: 853}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if !plan.Passthrough() {
		t.Error("neutral request should be a passthrough plan")
	}
	if plan.HasTonal {
		t.Error("neutral request should have no tonal work")
	}
	if plan.OutW != 1280 || plan.OutH != 853 {
		t.Errorf("out = %dx%d, want 1280x853", plan.OutW, plan.OutH)
	}
}

// TestBuildPlanTonal verifies a slider change produces a fused tonal plan.
func TestBuildPlanTonal(t *testing.T) {
	plan, err := BuildPlan(Request{
		Width: 100, Height: 100,
		Sliders: Sliders{Exposure: 0.5, Contrast: 20, Saturation: 10},
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Passthrough() {
		t.Error("tonal request should not be passthrough")
	}
	if !plan.HasTonal {
		t.Error("HasTonal should be set")
	}
	if !plan.Fused {
		t.Error("tonal work without masks should fuse")
	}
}

// TestBuildPlanMasksUnfuse verifies masks force the split kernel path.
func TestBuildPlanMasksUnfuse(t *testing.T) {
	plan, err := BuildPlan(Request{
		Width: 100, Height: 100,
		Sliders: Sliders{Exposure: 1},
		Masks: []MaskSpec{{
			Kind: MaskLinear, EndY: 1,
			Sliders: Sliders{Exposure: -1},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Fused {
		t.Error("plans with masks must not fuse")
	}
	if len(plan.Masks) != 1 {
		t.Fatalf("len(Masks) = %d, want 1", len(plan.Masks))
	}
	if plan.Passthrough() {
		t.Error("masked plan is not passthrough")
	}
}

// TestBuildPlanIdentityCurveDropped verifies a straight-line tone curve is
// elided.
func TestBuildPlanIdentityCurveDropped(t *testing.T) {
	plan, err := BuildPlan(Request{
		Width: 64, Height: 64,
		CurvePoints: []CurvePoint{{0, 0}, {1, 1}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Curve != nil {
		t.Error("identity curve should be dropped from the plan")
	}
	if plan.HasTonal {
		t.Error("identity curve alone should leave the plan passthrough")
	}
}

// TestBuildPlanCurve verifies a real curve is lowered and marks tonal work.
func TestBuildPlanCurve(t *testing.T) {
	plan, err := BuildPlan(Request{
		Width: 64, Height: 64,
		CurvePoints: []CurvePoint{{0, 0}, {0.5, 0.6}, {1, 1}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Curve == nil {
		t.Fatal("curve should be present in the plan")
	}
	if !plan.HasTonal {
		t.Error("curve should mark tonal work")
	}
}

// TestBuildPlanCurveCache verifies LUT construction is memoized across
// plans when a cache is supplied.
func TestBuildPlanCurveCache(t *testing.T) {
	cache := NewCurveCache(8)
	req := Request{
		Width: 64, Height: 64,
		CurvePoints: []CurvePoint{{0, 0}, {0.3, 0.4}, {1, 1}},
	}
	first, err := BuildPlan(req, cache)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	second, err := BuildPlan(req, cache)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if first.Curve != second.Curve {
		t.Error("cached plans should share the LUT")
	}
	if cache.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", cache.Len())
	}
}

// TestBuildPlanRotation verifies rotation geometry flows into the working
// dimensions.
func TestBuildPlanRotation(t *testing.T) {
	plan, err := BuildPlan(Request{Width: 1280, Height: 853, Turns: 1}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.WorkW != 853 || plan.WorkH != 1280 {
		t.Errorf("work = %dx%d, want 853x1280", plan.WorkW, plan.WorkH)
	}
	if plan.Passthrough() {
		t.Error("rotated plan is not passthrough")
	}
	if plan.OutW != 853 || plan.OutH != 1280 {
		t.Errorf("out = %dx%d, want 853x1280", plan.OutW, plan.OutH)
	}
}

// TestBuildPlanDownsample verifies output sizing against the working
// dimensions.
func TestBuildPlanDownsample(t *testing.T) {
	plan, err := BuildPlan(Request{
		Width: 2560, Height: 1707,
		OutWidth: 1280, OutHeight: 853,
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if !plan.Downsample {
		t.Error("smaller output should set Downsample")
	}
	if plan.OutW != 1280 || plan.OutH != 853 {
		t.Errorf("out = %dx%d, want 1280x853", plan.OutW, plan.OutH)
	}

	// Same-size output is a no-op, not a resample.
	plan, err = BuildPlan(Request{
		Width: 640, Height: 480,
		OutWidth: 640, OutHeight: 480,
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Downsample {
		t.Error("same-size output should not set Downsample")
	}
	if !plan.Passthrough() {
		t.Error("same-size output with no edits should stay passthrough")
	}
}

// TestBuildPlanDownsampleAfterRotation verifies the output bound applies to
// post-rotation dimensions.
func TestBuildPlanDownsampleAfterRotation(t *testing.T) {
	// 1280x853 rotated a quarter turn works at 853x1280, so 900 wide is
	// an upscale even though it fits the source width.
	_, err := BuildPlan(Request{
		Width: 1280, Height: 853,
		Turns:    1,
		OutWidth: 900, OutHeight: 600,
	}, nil)
	if !errors.Is(err, ErrUpscale) {
		t.Errorf("BuildPlan = %v, want %v", err, ErrUpscale)
	}

	plan, err := BuildPlan(Request{
		Width: 1280, Height: 853,
		Turns:    1,
		OutWidth: 800, OutHeight: 1200,
	}, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if !plan.Downsample || plan.OutW != 800 || plan.OutH != 1200 {
		t.Errorf("out = %dx%d downsample=%v, want 800x1200 true",
			plan.OutW, plan.OutH, plan.Downsample)
	}
}

// TestBuildPlanErrors covers the validation surface.
func TestBuildPlanErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"zero width", Request{Width: 0, Height: 100}, ErrDimensions},
		{"negative height", Request{Width: 100, Height: -1}, ErrDimensions},
		{"bad slider", Request{Width: 100, Height: 100, Sliders: Sliders{Contrast: 101}}, ErrSliderRange},
		{"bad turns", Request{Width: 100, Height: 100, Turns: 5}, ErrQuarterRange},
		{"bad angle", Request{Width: 100, Height: 100, Angle: 46}, ErrAngleRange},
		{"bad curve", Request{Width: 100, Height: 100, CurvePoints: []CurvePoint{{0, 0}}}, ErrCurveTooFew},
		{"bad mask", Request{Width: 100, Height: 100, Masks: []MaskSpec{{Kind: MaskKind(9)}}}, ErrMaskKind},
		{"upscale", Request{Width: 100, Height: 100, OutWidth: 200, OutHeight: 100}, ErrUpscale},
		{"partial output dims", Request{Width: 100, Height: 100, OutWidth: 50}, ErrDimensions},
		{"negative output dims", Request{Width: 100, Height: 100, OutWidth: -1, OutHeight: 50}, ErrDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPlan(tt.req, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BuildPlan() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
