package bench

import (
	"fmt"

	literoom "github.com/tesla3327/literoom-sub019"
	"github.com/tesla3327/literoom-sub019/internal/pixel"
)

// GradientImage builds the deterministic benchmark frame: red rising left
// to right, green top to bottom, constant blue. Identical runs over it
// compare byte for byte.
func GradientImage(width, height int, format literoom.PixelFormat) (*literoom.PixelBuffer, error) {
	switch format {
	case literoom.FormatRGB8:
		return literoom.NewPixelBuffer(pixel.GradientRGB(width, height), width, height, format)
	case literoom.FormatRGBA8:
		return literoom.NewPixelBuffer(pixel.GradientRGBA(width, height), width, height, format)
	default:
		return nil, fmt.Errorf("unsupported fixture format %s", format)
	}
}

// Scenario names a parameter set to measure.
type Scenario struct {
	Name   string
	Params *literoom.AdjustmentParameters
}

// DefaultScenarios covers the pipeline's main execution paths over a
// width×height frame: the passthrough floor, the fused tonal kernel, the
// split path with masks, and a half-size preview render.
func DefaultScenarios(width, height int) []Scenario {
	tonal := literoom.AdjustmentSliders{Exposure: 0.5, Contrast: 20, Saturation: 10}
	curve := []literoom.ToneCurvePoint{
		{X: 0, Y: 0.05}, {X: 0.5, Y: 0.55}, {X: 1, Y: 0.95},
	}
	mask := literoom.Mask{
		Type:    literoom.MaskRadial,
		CenterX: 0.5,
		CenterY: 0.5,
		RadiusX: 0.4,
		RadiusY: 0.4,
		Feather: 0.5,
		Adjust:  literoom.AdjustmentSliders{Exposure: -1},
	}

	return []Scenario{
		{Name: "passthrough", Params: nil},
		{
			Name: "tonal",
			Params: &literoom.AdjustmentParameters{
				AdjustmentSliders: tonal,
			},
		},
		{
			Name: "tonal+curve",
			Params: &literoom.AdjustmentParameters{
				AdjustmentSliders: tonal,
				ToneCurve:         curve,
			},
		},
		{
			Name: "masked",
			Params: &literoom.AdjustmentParameters{
				AdjustmentSliders: tonal,
				ToneCurve:         curve,
				Masks:             []literoom.Mask{mask},
			},
		},
		{
			Name: "preview",
			Params: &literoom.AdjustmentParameters{
				AdjustmentSliders: tonal,
				Output: literoom.OutputOptions{
					Width:  width / 2,
					Height: height / 2,
				},
			},
		},
		{
			Name: "full edit",
			Params: &literoom.AdjustmentParameters{
				AdjustmentSliders: tonal,
				ToneCurve:         curve,
				Masks:             []literoom.Mask{mask},
				Rotation:          literoom.Rotation{Angle: 3},
				Output: literoom.OutputOptions{
					Width:  width / 2,
					Height: height / 2,
				},
			},
		},
	}
}
