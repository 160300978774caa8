package gpu

import (
	"unsafe"

	"github.com/tesla3327/literoom-sub019/internal/stage"
)

// Uniform blocks mirror the WGSL structs field for field. Every field is
// 4 bytes and every struct size is a multiple of 16, so the Go layout and
// the WGSL uniform layout agree with no host-side repacking.

// tonalParams drives the tonal kernel: per-pixel adjustments plus an
// optional tone curve LUT. 64 bytes.
type tonalParams struct {
	width    uint32
	height   uint32
	hasCurve uint32
	_pad0    uint32

	gain       float32
	tempShift  float32
	tintShift  float32
	contrast   float32
	highlights float32
	shadows    float32
	whitePoint float32
	blackPoint float32
	vibrance   float32
	saturation float32
	_pad1      float32
	_pad2      float32
}

// maskParams drives one mask pass: the mask geometry and the full factor
// set to blend in under the mask weight. 112 bytes.
type maskParams struct {
	width  uint32
	height uint32
	kind   uint32
	invert uint32

	startX float32
	startY float32
	dirX   float32
	dirY   float32

	centerX float32
	centerY float32
	radiusX float32
	radiusY float32

	feather float32
	_pad0   float32
	_pad1   float32
	_pad2   float32

	gain       float32
	tempShift  float32
	tintShift  float32
	contrast   float32
	highlights float32
	shadows    float32
	whitePoint float32
	blackPoint float32
	vibrance   float32
	saturation float32
	_pad3      float32
	_pad4      float32
}

// quarterParams drives the quarter-turn kernel. 32 bytes.
type quarterParams struct {
	srcW  uint32
	srcH  uint32
	dstW  uint32
	dstH  uint32
	turns uint32
	_pad0 uint32
	_pad1 uint32
	_pad2 uint32
}

// fineParams drives the arbitrary-angle kernel. The sin/cos pair is the
// inverse mapping already resolved by the planner. 16 bytes.
type fineParams struct {
	width  uint32
	height uint32
	sin    float32
	cos    float32
}

// scaleParams drives the downsample kernel. Mode 0 is a single bilinear
// tap, mode 1 spreads four taps for heavier reductions. 32 bytes.
type scaleParams struct {
	srcW  uint32
	srcH  uint32
	dstW  uint32
	dstH  uint32
	mode  uint32
	_pad0 uint32
	_pad1 uint32
	_pad2 uint32
}

// structToBytes views a uniform struct as its raw bytes for WriteBuffer.
// Valid only while the struct stays alive.
func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size)
}

func setTonalFactors(p *tonalParams, f stage.Factors) {
	p.gain = f.Gain
	p.tempShift = f.TempShift
	p.tintShift = f.TintShift
	p.contrast = f.Contrast
	p.highlights = f.Highlights
	p.shadows = f.Shadows
	p.whitePoint = f.WhitePoint
	p.blackPoint = f.BlackPoint
	p.vibrance = f.Vibrance
	p.saturation = f.Saturation
}

func newTonalParams(w, h int, f stage.Factors, hasCurve bool) tonalParams {
	p := tonalParams{
		width:  uint32(w),
		height: uint32(h),
	}
	if hasCurve {
		p.hasCurve = 1
	}
	setTonalFactors(&p, f)
	return p
}

func newMaskParams(w, h int, m *stage.MaskPlan) maskParams {
	p := maskParams{
		width:   uint32(w),
		height:  uint32(h),
		kind:    uint32(m.Kind),
		startX:  m.StartX,
		startY:  m.StartY,
		dirX:    m.DirX,
		dirY:    m.DirY,
		centerX: m.CenterX,
		centerY: m.CenterY,
		radiusX: m.RadiusX,
		radiusY: m.RadiusY,
		feather: m.Feather,
	}
	if m.Invert {
		p.invert = 1
	}
	p.gain = m.Factors.Gain
	p.tempShift = m.Factors.TempShift
	p.tintShift = m.Factors.TintShift
	p.contrast = m.Factors.Contrast
	p.highlights = m.Factors.Highlights
	p.shadows = m.Factors.Shadows
	p.whitePoint = m.Factors.WhitePoint
	p.blackPoint = m.Factors.BlackPoint
	p.vibrance = m.Factors.Vibrance
	p.saturation = m.Factors.Saturation
	return p
}

func newQuarterParams(srcW, srcH, dstW, dstH, turns int) quarterParams {
	return quarterParams{
		srcW:  uint32(srcW),
		srcH:  uint32(srcH),
		dstW:  uint32(dstW),
		dstH:  uint32(dstH),
		turns: uint32(turns),
	}
}

func newFineParams(w, h int, sin, cos float32) fineParams {
	return fineParams{
		width:  uint32(w),
		height: uint32(h),
		sin:    sin,
		cos:    cos,
	}
}

func newScaleParams(srcW, srcH, dstW, dstH int) scaleParams {
	p := scaleParams{
		srcW: uint32(srcW),
		srcH: uint32(srcH),
		dstW: uint32(dstW),
		dstH: uint32(dstH),
	}
	// Past 2x reduction a single bilinear tap starts skipping texels, so
	// the kernel switches to four spread taps.
	if srcW > dstW*2 || srcH > dstH*2 {
		p.mode = 1
	}
	return p
}
