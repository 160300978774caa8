// Package stage lowers user-facing edit parameters into the resolved form
// the pipeline engines execute: per-pixel adjustment factors, tone-curve
// lookup tables, mask weights, and rotation geometry.
//
// All validation happens here, before any device work is issued, so a
// malformed request never costs a GPU round trip. Both the GPU kernels and
// the software engine consume the same lowered values, keeping the two
// implementations numerically aligned.
package stage

import (
	"errors"
	"fmt"
)

// Slider bounds. Exposure is in EV stops; every other slider is a
// symmetric percentage control.
const (
	ExposureMin = -5.0
	ExposureMax = 5.0
	SliderMin   = -100.0
	SliderMax   = 100.0

	// AngleMax bounds the arbitrary rotation angle in degrees. Larger
	// corrections are expressed as quarter turns plus a fine angle.
	AngleMax = 45.0
)

var (
	// ErrSliderRange reports an adjustment slider outside its bounds.
	ErrSliderRange = errors.New("stage: slider value out of range")

	// ErrAngleRange reports a fine rotation angle outside [-AngleMax, AngleMax].
	ErrAngleRange = errors.New("stage: rotation angle out of range")

	// ErrQuarterRange reports a quarter-turn count outside 0..3.
	ErrQuarterRange = errors.New("stage: quarter turns must be 0..3")

	// ErrDimensions reports non-positive image dimensions.
	ErrDimensions = errors.New("stage: image dimensions must be positive")

	// ErrUpscale reports a requested output larger than the working image.
	ErrUpscale = errors.New("stage: output dimensions exceed working dimensions")
)

// Sliders holds the flat tonal adjustment controls. The zero value is the
// identity adjustment.
type Sliders struct {
	Temperature float64
	Tint        float64
	Exposure    float64
	Contrast    float64
	Highlights  float64
	Shadows     float64
	Whites      float64
	Blacks      float64
	Vibrance    float64
	Saturation  float64
}

// IsNeutral reports whether every slider sits at its identity position.
func (s Sliders) IsNeutral() bool {
	return s == Sliders{}
}

// Validate checks every slider against its documented bounds. The
// negated comparisons also reject NaN.
func (s Sliders) Validate() error {
	if !(s.Exposure >= ExposureMin && s.Exposure <= ExposureMax) {
		return fmt.Errorf("%w: exposure %.2f not in [%.0f, %.0f]",
			ErrSliderRange, s.Exposure, ExposureMin, ExposureMax)
	}
	checks := []struct {
		name  string
		value float64
	}{
		{"temperature", s.Temperature},
		{"tint", s.Tint},
		{"contrast", s.Contrast},
		{"highlights", s.Highlights},
		{"shadows", s.Shadows},
		{"whites", s.Whites},
		{"blacks", s.Blacks},
		{"vibrance", s.Vibrance},
		{"saturation", s.Saturation},
	}
	for _, c := range checks {
		if !(c.value >= SliderMin && c.value <= SliderMax) {
			return fmt.Errorf("%w: %s %.2f not in [%.0f, %.0f]",
				ErrSliderRange, c.name, c.value, SliderMin, SliderMax)
		}
	}
	return nil
}
