package literoom

import (
	"github.com/tesla3327/literoom-sub019/internal/stage"
)

// AdjustmentSliders holds the per-pixel tonal controls. Zero values are
// identity for every slider.
//
// Ranges: Exposure is in EV stops within [-5, 5]; every other slider is a
// percentage-style value within [-100, 100].
type AdjustmentSliders struct {
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

// ToneCurvePoint is a control point of the global tone curve. Both
// coordinates live in [0, 1] and points must have strictly increasing X.
type ToneCurvePoint struct {
	X float64
	Y float64
}

// MaskType selects the geometry of a local adjustment mask.
type MaskType uint8

const (
	// MaskLinear is a gradient band between a start and end point.
	MaskLinear MaskType = iota
	// MaskRadial is an axis-aligned ellipse around a center point.
	MaskRadial
)

// Mask is a local adjustment: a spatial weight in [0, 1] blending a second
// set of sliders over the region it covers. All geometry is normalized to
// the working image, so (0.5, 0.5) is the center regardless of pixel size.
type Mask struct {
	Type MaskType

	// Linear geometry: the gradient runs from start (weight 1) to end
	// (weight 0).
	StartX, StartY float64
	EndX, EndY     float64

	// Radial geometry: weight 1 at the center falling to 0 at the
	// ellipse edge.
	CenterX, CenterY float64
	RadiusX, RadiusY float64

	// Feather widens the falloff band; 0 is a hard edge.
	Feather float64

	// Invert applies the adjustment outside the region instead.
	Invert bool

	// Adjust holds the sliders blended in where the mask has weight.
	Adjust AdjustmentSliders
}

// Rotation describes the geometric transform applied before any tonal
// work. Turns counts clockwise quarter turns; Angle adds a fine rotation
// in degrees within [-45, 45] on top.
type Rotation struct {
	Turns int
	Angle float64
}

// OutputOptions controls the delivered frame. Zero Width/Height keep the
// working size; otherwise both must be set and no larger than the working
// dimensions. FormatAuto matches the input buffer's format.
type OutputOptions struct {
	Width  int
	Height int
	Format PixelFormat
}

// AdjustmentParameters is the full edit recipe for one Process call. The
// zero value (and a nil pointer) is a passthrough: no rotation, neutral
// sliders, no curve, no masks, full-size output in the input format.
type AdjustmentParameters struct {
	AdjustmentSliders

	ToneCurve []ToneCurvePoint
	Masks     []Mask
	Rotation  Rotation
	Output    OutputOptions
}

func (s AdjustmentSliders) sliders() stage.Sliders {
	return stage.Sliders{
		Temperature: s.Temperature,
		Tint:        s.Tint,
		Exposure:    s.Exposure,
		Contrast:    s.Contrast,
		Highlights:  s.Highlights,
		Shadows:     s.Shadows,
		Whites:      s.Whites,
		Blacks:      s.Blacks,
		Vibrance:    s.Vibrance,
		Saturation:  s.Saturation,
	}
}

// request lowers the public parameters to a stage request for the given
// input dimensions. A nil receiver produces an identity request.
func (p *AdjustmentParameters) request(width, height int) stage.Request {
	req := stage.Request{Width: width, Height: height}
	if p == nil {
		return req
	}
	req.Sliders = p.AdjustmentSliders.sliders()
	req.Turns = p.Rotation.Turns
	req.Angle = p.Rotation.Angle
	req.OutWidth = p.Output.Width
	req.OutHeight = p.Output.Height
	if len(p.ToneCurve) > 0 {
		req.CurvePoints = make([]stage.CurvePoint, len(p.ToneCurve))
		for i, pt := range p.ToneCurve {
			req.CurvePoints[i] = stage.CurvePoint{X: pt.X, Y: pt.Y}
		}
	}
	if len(p.Masks) > 0 {
		req.Masks = make([]stage.MaskSpec, len(p.Masks))
		for i, m := range p.Masks {
			kind := stage.MaskLinear
			if m.Type == MaskRadial {
				kind = stage.MaskRadial
			}
			req.Masks[i] = stage.MaskSpec{
				Kind:    kind,
				StartX:  m.StartX,
				StartY:  m.StartY,
				EndX:    m.EndX,
				EndY:    m.EndY,
				CenterX: m.CenterX,
				CenterY: m.CenterY,
				RadiusX: m.RadiusX,
				RadiusY: m.RadiusY,
				Feather: m.Feather,
				Invert:  m.Invert,
				Sliders: m.Adjust.sliders(),
			}
		}
	}
	return req
}
