package literoom

import (
	"fmt"
	"time"
)

// TimingBreakdown reports wall-clock milliseconds per pipeline stage for
// one Process call. Stages that did not run for the given parameters stay
// at zero. Total covers the whole call and is always at least the sum of
// the measured stages.
type TimingBreakdown struct {
	Upload       float64
	Rotation     float64
	Adjustments  float64
	ToneCurve    float64
	UberPipeline float64
	Masks        float64
	Downsample   float64
	Readback     float64
	RGBToRGBA    float64
	RGBAToRGB    float64
	Total        float64
}

// String formats the breakdown on one line, listing only non-zero stages.
func (t TimingBreakdown) String() string {
	s := fmt.Sprintf("total=%.2fms", t.Total)
	stages := []struct {
		name string
		ms   float64
	}{
		{"upload", t.Upload},
		{"rotation", t.Rotation},
		{"adjustments", t.Adjustments},
		{"toneCurve", t.ToneCurve},
		{"uber", t.UberPipeline},
		{"masks", t.Masks},
		{"downsample", t.Downsample},
		{"readback", t.Readback},
		{"rgbToRgba", t.RGBToRGBA},
		{"rgbaToRgb", t.RGBAToRGB},
	}
	for _, st := range stages {
		if st.ms > 0 {
			s += fmt.Sprintf(" %s=%.2fms", st.name, st.ms)
		}
	}
	return s
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
