package soft

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample resamples the working frame to the plan's output dimensions.
// Mild reductions use a plain bilinear sample like the GPU engine; past 2x
// it switches to a proper kernel scale so rows and columns are averaged
// rather than skipped.
func (s *Session) Downsample() error {
	if s.plan == nil {
		return ErrNoPlan
	}
	p := s.plan
	if !p.Downsample || (p.OutW == s.curW && p.OutH == s.curH) {
		return nil
	}

	out := s.eng.frames.Get(p.OutW, p.OutH, 4)
	src := &image.RGBA{
		Pix:    s.front,
		Stride: s.curW * 4,
		Rect:   image.Rect(0, 0, s.curW, s.curH),
	}
	dst := &image.RGBA{
		Pix:    out,
		Stride: p.OutW * 4,
		Rect:   image.Rect(0, 0, p.OutW, p.OutH),
	}

	scaler := draw.Scaler(draw.ApproxBiLinear)
	if p.OutW*2 < s.curW || p.OutH*2 < s.curH {
		scaler = draw.BiLinear
	}
	scaler.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)

	s.swap(out, p.OutW, p.OutH)
	return nil
}
