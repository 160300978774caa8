package stage

import "fmt"

// Request is everything the orchestrator needs lowered for one run.
type Request struct {
	Width  int
	Height int

	Sliders     Sliders
	CurvePoints []CurvePoint // nil means no tone curve
	Masks       []MaskSpec

	Turns int     // clockwise quarter turns
	Angle float64 // fine rotation in degrees

	// OutWidth/OutHeight request a downsampled output; zero means "working
	// size". Only reductions are allowed.
	OutWidth  int
	OutHeight int
}

// Plan is a validated, lowered run: which stages execute, in what geometry,
// with what constants. Engines execute plans without further validation.
type Plan struct {
	SrcW, SrcH   int
	WorkW, WorkH int // after rotation
	OutW, OutH   int // after downsample

	Rotation Rotation
	Factors  Factors
	Curve    *CurveLUT // nil when no tone curve requested
	Masks    []MaskPlan

	// HasTonal is set when the adjustment/curve work is non-identity.
	// Fused selects the uber kernel (no masks present).
	HasTonal bool
	Fused    bool

	Downsample bool
}

// Passthrough reports whether the run has no device work beyond moving
// pixels in and out.
func (p *Plan) Passthrough() bool {
	return p.Rotation.Kind == RotationNone &&
		!p.HasTonal &&
		len(p.Masks) == 0 &&
		!p.Downsample
}

// BuildPlan validates a request and lowers it. curves may be nil; when
// provided it memoizes tone-curve LUT construction across runs.
func BuildPlan(req Request, curves *CurveCache) (*Plan, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, req.Width, req.Height)
	}
	if err := req.Sliders.Validate(); err != nil {
		return nil, err
	}

	rot, err := ResolveRotation(req.Turns, req.Angle, req.Width, req.Height)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		SrcW:     req.Width,
		SrcH:     req.Height,
		WorkW:    rot.DstW,
		WorkH:    rot.DstH,
		Rotation: rot,
		Factors:  ResolveFactors(req.Sliders),
	}

	if len(req.CurvePoints) > 0 {
		var lut *CurveLUT
		if curves != nil {
			lut, err = curves.Get(req.CurvePoints)
		} else {
			lut, err = BuildCurveLUT(req.CurvePoints)
		}
		if err != nil {
			return nil, err
		}
		if !lut.IsIdentity() {
			plan.Curve = lut
		}
	}

	for i, m := range req.Masks {
		mp, err := ResolveMask(m)
		if err != nil {
			return nil, fmt.Errorf("mask %d: %w", i, err)
		}
		plan.Masks = append(plan.Masks, mp)
	}

	plan.HasTonal = !plan.Factors.IsNeutral() || plan.Curve != nil
	plan.Fused = len(plan.Masks) == 0

	plan.OutW, plan.OutH = plan.WorkW, plan.WorkH
	if req.OutWidth != 0 || req.OutHeight != 0 {
		if req.OutWidth <= 0 || req.OutHeight <= 0 {
			return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, req.OutWidth, req.OutHeight)
		}
		if req.OutWidth > plan.WorkW || req.OutHeight > plan.WorkH {
			return nil, fmt.Errorf("%w: %dx%d > %dx%d", ErrUpscale,
				req.OutWidth, req.OutHeight, plan.WorkW, plan.WorkH)
		}
		if req.OutWidth != plan.WorkW || req.OutHeight != plan.WorkH {
			plan.OutW, plan.OutH = req.OutWidth, req.OutHeight
			plan.Downsample = true
		}
	}

	return plan, nil
}
