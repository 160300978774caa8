package soft

import (
	"math"

	"github.com/tesla3327/literoom-sub019/internal/stage"
)

// Rotate runs the plan's geometric transform: an exact quarter-turn
// permutation, a fine-angle resample, or both.
func (s *Session) Rotate() error {
	if s.plan == nil {
		return ErrNoPlan
	}
	rot := s.plan.Rotation
	switch rot.Kind {
	case stage.RotationNone:
	case stage.RotationQuarter:
		s.rotateQuarter(rot.Turns)
	case stage.RotationArbitrary:
		if rot.Turns != 0 {
			s.rotateQuarter(rot.Turns)
		}
		s.rotateFine(rot.Sin, rot.Cos)
	}
	return nil
}

// rotateQuarter permutes pixels by the given clockwise quarter turns.
func (s *Session) rotateQuarter(turns int) {
	if turns == 0 {
		return
	}
	srcW, srcH := s.curW, s.curH
	dstW, dstH := stage.RotatedDims(turns, srcW, srcH)
	src := s.front
	dst := s.eng.frames.Get(dstW, dstH, 4)

	s.eng.pool.Rows(dstH, func(y0, y1 int) {
		for dy := y0; dy < y1; dy++ {
			row := dy * dstW * 4
			for dx := 0; dx < dstW; dx++ {
				var sx, sy int
				switch turns {
				case 1:
					sx, sy = dy, srcH-1-dx
				case 2:
					sx, sy = srcW-1-dx, srcH-1-dy
				case 3:
					sx, sy = srcW-1-dy, dx
				}
				di := row + dx*4
				si := (sy*srcW + sx) * 4
				copy(dst[di:di+4], src[si:si+4])
			}
		}
	})
	s.swap(dst, dstW, dstH)
}

// rotateFine resamples the frame rotated about its center onto the same
// canvas. sin/cos describe the inverse mapping from destination to source
// pixels; areas the source does not cover come out opaque black.
func (s *Session) rotateFine(sin, cos float32) {
	w, h := s.curW, s.curH
	src := s.front
	dst := s.eng.frames.Get(w, h, 4)
	halfW := float32(w) / 2
	halfH := float32(h) / 2

	s.eng.pool.Rows(h, func(y0, y1 int) {
		for dy := y0; dy < y1; dy++ {
			cy := float32(dy) + 0.5 - halfH
			row := dy * w * 4
			for dx := 0; dx < w; dx++ {
				cx := float32(dx) + 0.5 - halfW
				sx := cx*cos - cy*sin + halfW - 0.5
				sy := cx*sin + cy*cos + halfH - 0.5
				r, g, b := bilinearRGB(src, w, h, sx, sy)
				i := row + dx*4
				dst[i] = toByte(r)
				dst[i+1] = toByte(g)
				dst[i+2] = toByte(b)
				dst[i+3] = 255
			}
		}
	})
	s.swap(dst, w, h)
}

// bilinearRGB samples src at a fractional position with a 2x2 tap. Taps
// outside the frame contribute black, fading edge pixels out instead of
// smearing them.
func bilinearRGB(src []uint8, w, h int, x, y float32) (float32, float32, float32) {
	x0 := int(floor32(x))
	y0 := int(floor32(y))
	fx := x - float32(x0)
	fy := y - float32(y0)

	var r, g, b float32
	taps := [4]struct {
		px, py int
		wt     float32
	}{
		{x0, y0, (1 - fx) * (1 - fy)},
		{x0 + 1, y0, fx * (1 - fy)},
		{x0, y0 + 1, (1 - fx) * fy},
		{x0 + 1, y0 + 1, fx * fy},
	}
	for _, t := range taps {
		if t.px < 0 || t.px >= w || t.py < 0 || t.py >= h || t.wt == 0 {
			continue
		}
		i := (t.py*w + t.px) * 4
		r += fromByte(src[i]) * t.wt
		g += fromByte(src[i+1]) * t.wt
		b += fromByte(src[i+2]) * t.wt
	}
	return r, g, b
}

func floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}
