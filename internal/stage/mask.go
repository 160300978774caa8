package stage

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMaskGeometry reports mask coordinates outside the unit square.
	ErrMaskGeometry = errors.New("stage: mask geometry out of [0,1]")

	// ErrMaskFeather reports a feather value outside [0,1].
	ErrMaskFeather = errors.New("stage: mask feather out of [0,1]")

	// ErrMaskKind reports an unrecognized mask kind.
	ErrMaskKind = errors.New("stage: unknown mask kind")
)

// MaskKind selects the mask weight function.
type MaskKind uint8

const (
	// MaskLinear fades along the line from start to end, like a graduated
	// filter: weight 1 at start, 0 at end.
	MaskLinear MaskKind = iota

	// MaskRadial is 1 inside an ellipse and falls off toward its edge.
	MaskRadial
)

// String returns a string representation of the mask kind.
func (k MaskKind) String() string {
	switch k {
	case MaskLinear:
		return "Linear"
	case MaskRadial:
		return "Radial"
	default:
		return "Unknown"
	}
}

// MaskSpec describes one mask in normalized image coordinates, where
// (0,0) is the top-left corner and (1,1) the bottom-right.
type MaskSpec struct {
	Kind MaskKind

	// Linear geometry.
	StartX, StartY float64
	EndX, EndY     float64

	// Radial geometry.
	CenterX, CenterY float64
	RadiusX, RadiusY float64

	// Feather softens the transition band: 0 is a hard edge, 1 the
	// widest falloff.
	Feather float64

	// Invert flips the weight so the adjustment applies outside the
	// masked region.
	Invert bool

	// Sliders are the adjustments applied inside the mask region.
	Sliders Sliders
}

// Validate checks geometry, feather, and the mask's own sliders.
func (m MaskSpec) Validate() error {
	switch m.Kind {
	case MaskLinear:
		for _, v := range []float64{m.StartX, m.StartY, m.EndX, m.EndY} {
			if v < 0 || v > 1 {
				return fmt.Errorf("%w: linear point %.3f", ErrMaskGeometry, v)
			}
		}
	case MaskRadial:
		if m.CenterX < 0 || m.CenterX > 1 || m.CenterY < 0 || m.CenterY > 1 {
			return fmt.Errorf("%w: center (%.3f, %.3f)", ErrMaskGeometry, m.CenterX, m.CenterY)
		}
		if m.RadiusX <= 0 || m.RadiusX > 1 || m.RadiusY <= 0 || m.RadiusY > 1 {
			return fmt.Errorf("%w: radius (%.3f, %.3f)", ErrMaskGeometry, m.RadiusX, m.RadiusY)
		}
	default:
		return fmt.Errorf("%w: %d", ErrMaskKind, m.Kind)
	}
	if m.Feather < 0 || m.Feather > 1 {
		return fmt.Errorf("%w: %.3f", ErrMaskFeather, m.Feather)
	}
	return m.Sliders.Validate()
}

// MaskPlan is the lowered form of a MaskSpec: precomputed geometry plus the
// resolved adjustment factors, ready for either engine.
type MaskPlan struct {
	Kind    MaskKind
	Invert  bool
	Feather float32

	// Linear: start point and direction scaled so that the projection
	// dot(p-start, dir) is already normalized to [0,1] along the span.
	StartX, StartY float32
	DirX, DirY     float32

	// Radial ellipse.
	CenterX, CenterY float32
	RadiusX, RadiusY float32

	Factors Factors
}

// ResolveMask validates and lowers one mask.
func ResolveMask(m MaskSpec) (MaskPlan, error) {
	if err := m.Validate(); err != nil {
		return MaskPlan{}, err
	}

	plan := MaskPlan{
		Kind:    m.Kind,
		Invert:  m.Invert,
		Feather: float32(m.Feather),
		Factors: ResolveFactors(m.Sliders),
	}

	switch m.Kind {
	case MaskLinear:
		dx := m.EndX - m.StartX
		dy := m.EndY - m.StartY
		lengthSq := dx*dx + dy*dy
		plan.StartX = float32(m.StartX)
		plan.StartY = float32(m.StartY)
		if lengthSq > 0 {
			// Pre-divide so the weight function is a plain projection:
			// t = dot(p - start, dir).
			plan.DirX = float32(dx / lengthSq)
			plan.DirY = float32(dy / lengthSq)
		}
	case MaskRadial:
		plan.CenterX = float32(m.CenterX)
		plan.CenterY = float32(m.CenterY)
		plan.RadiusX = float32(m.RadiusX)
		plan.RadiusY = float32(m.RadiusY)
	}
	return plan, nil
}

// WeightAt evaluates the mask weight at a normalized coordinate. The WGSL
// mask kernel mirrors this function.
func (p *MaskPlan) WeightAt(u, v float32) float32 {
	var w float32
	switch p.Kind {
	case MaskLinear:
		// Projection onto the gradient line; start side is fully masked.
		t := (u-p.StartX)*p.DirX + (v-p.StartY)*p.DirY
		fall := p.Feather*0.5 + 0.001
		w = 1 - Smoothstep(0.5-fall, 0.5+fall, t)
	case MaskRadial:
		// Normalized elliptical distance: 0 at center, 1 on the rim.
		dx := (u - p.CenterX) / p.RadiusX
		dy := (v - p.CenterY) / p.RadiusY
		d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		fall := p.Feather + 0.001
		w = 1 - Smoothstep(1-fall, 1, d)
	}
	if p.Invert {
		w = 1 - w
	}
	return w
}
