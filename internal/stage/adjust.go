package stage

import "math"

// Rec. 709 luminance weights, shared by every stage that needs a luma term.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Factors is the lowered, engine-ready form of Sliders. Values are float32
// because the GPU kernels operate on f32; the software engine uses the same
// width so the two paths round alike.
//
// The fused application order is fixed: exposure gain, temperature/tint
// shifts, contrast pivot, highlight/shadow lifts, white/black endpoint
// remap, vibrance, saturation, clamp to [0, 1].
type Factors struct {
	Gain       float32 // linear gain, 2^exposure
	TempShift  float32 // added to R, subtracted from B
	TintShift  float32 // subtracted from G
	Contrast   float32 // pivot factor k in (c-0.5)*k+0.5
	Highlights float32 // additive lift weighted by the highlight shoulder
	Shadows    float32 // additive lift weighted by the shadow shoulder
	WhitePoint float32 // upper endpoint of the remap
	BlackPoint float32 // lower endpoint of the remap
	Vibrance   float32 // saturation-weighted chroma factor delta
	Saturation float32 // chroma factor, 1 neutral
}

// ResolveFactors lowers sliders into kernel constants. Sliders must already
// be validated.
func ResolveFactors(s Sliders) Factors {
	return Factors{
		Gain:       float32(math.Exp2(s.Exposure)),
		TempShift:  float32(0.1 * s.Temperature / 100),
		TintShift:  float32(0.1 * s.Tint / 100),
		Contrast:   float32(1 + s.Contrast/100),
		Highlights: float32(0.5 * s.Highlights / 100),
		Shadows:    float32(0.5 * s.Shadows / 100),
		WhitePoint: float32(1 - 0.25*s.Whites/100),
		BlackPoint: float32(-0.25 * s.Blacks / 100),
		Vibrance:   float32(s.Vibrance / 100),
		Saturation: float32(1 + s.Saturation/100),
	}
}

// NeutralFactors returns the identity lowering.
func NeutralFactors() Factors {
	return ResolveFactors(Sliders{})
}

// IsNeutral reports whether applying f leaves every pixel unchanged.
func (f Factors) IsNeutral() bool {
	return f == NeutralFactors()
}

// Luma returns the Rec. 709 luminance of an RGB triple.
func Luma(r, g, b float32) float32 {
	return LumaR*r + LumaG*g + LumaB*b
}

// Smoothstep is the Hermite smoothstep used for the highlight and shadow
// shoulders, matching the WGSL built-in.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// Clamp01 clamps v to the displayable [0, 1] range.
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Apply runs the fused adjustment math on one normalized RGB pixel.
// This is the reference implementation: the WGSL uber kernel mirrors it
// operation for operation.
func (f Factors) Apply(r, g, b float32) (float32, float32, float32) {
	// Exposure.
	r *= f.Gain
	g *= f.Gain
	b *= f.Gain

	// White balance.
	r += f.TempShift
	b -= f.TempShift
	g -= f.TintShift

	// Contrast about the mid gray pivot.
	r = (r-0.5)*f.Contrast + 0.5
	g = (g-0.5)*f.Contrast + 0.5
	b = (b-0.5)*f.Contrast + 0.5

	// Highlight and shadow lifts weighted by luminance shoulders.
	luma := Luma(r, g, b)
	hw := Smoothstep(0.5, 1.0, luma) * f.Highlights
	sw := (1 - Smoothstep(0.0, 0.5, luma)) * f.Shadows
	r += hw + sw
	g += hw + sw
	b += hw + sw

	// White/black endpoint remap.
	span := f.WhitePoint - f.BlackPoint
	r = (r - f.BlackPoint) / span
	g = (g - f.BlackPoint) / span
	b = (b - f.BlackPoint) / span

	// Vibrance boosts muted colors harder than saturated ones.
	if f.Vibrance != 0 {
		sat := max32(r, g, b) - min32(r, g, b)
		vf := 1 + f.Vibrance*(1-sat)
		gray := Luma(r, g, b)
		r = gray + (r-gray)*vf
		g = gray + (g-gray)*vf
		b = gray + (b-gray)*vf
	}

	// Saturation.
	if f.Saturation != 1 {
		gray := Luma(r, g, b)
		r = gray + (r-gray)*f.Saturation
		g = gray + (g-gray)*f.Saturation
		b = gray + (b-gray)*f.Saturation
	}

	return Clamp01(r), Clamp01(g), Clamp01(b)
}

func max32(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min32(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
