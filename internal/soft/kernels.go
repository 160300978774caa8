package soft

import "github.com/tesla3327/literoom-sub019/internal/stage"

// fromByte converts an 8-bit channel to normalized float.
func fromByte(v uint8) float32 {
	return float32(v) / 255
}

// toByte quantizes a normalized channel back to 8 bits, rounding to
// nearest.
func toByte(v float32) uint8 {
	return uint8(stage.Clamp01(v)*255 + 0.5)
}

// applyFactors runs the global adjustment math over every pixel in place.
// Alpha is untouched.
func (s *Session) applyFactors(f stage.Factors) {
	if f.IsNeutral() {
		return
	}
	w := s.curW
	buf := s.front
	s.eng.pool.Rows(s.curH, func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r, g, b := f.Apply(fromByte(buf[i]), fromByte(buf[i+1]), fromByte(buf[i+2]))
			buf[i] = toByte(r)
			buf[i+1] = toByte(g)
			buf[i+2] = toByte(b)
		}
	})
}

// applyCurve maps every color channel through the tone curve LUT in place.
func (s *Session) applyCurve(lut *stage.CurveLUT) {
	w := s.curW
	buf := s.front
	s.eng.pool.Rows(s.curH, func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			buf[i] = toByte(lut.Lookup(fromByte(buf[i])))
			buf[i+1] = toByte(lut.Lookup(fromByte(buf[i+1])))
			buf[i+2] = toByte(lut.Lookup(fromByte(buf[i+2])))
		}
	})
}

// applyUber fuses adjustments and the tone curve into one pass, so pixels
// quantize once instead of twice. lut may be nil.
func (s *Session) applyUber(f stage.Factors, lut *stage.CurveLUT) {
	neutral := f.IsNeutral()
	if neutral && lut == nil {
		return
	}
	w := s.curW
	buf := s.front
	s.eng.pool.Rows(s.curH, func(y0, y1 int) {
		for i := y0 * w * 4; i < y1*w*4; i += 4 {
			r := fromByte(buf[i])
			g := fromByte(buf[i+1])
			b := fromByte(buf[i+2])
			if !neutral {
				r, g, b = f.Apply(r, g, b)
			}
			if lut != nil {
				r = lut.Lookup(r)
				g = lut.Lookup(g)
				b = lut.Lookup(b)
			}
			buf[i] = toByte(r)
			buf[i+1] = toByte(g)
			buf[i+2] = toByte(b)
		}
	})
}

// applyMask blends the mask's adjusted pixels over the frame, weighted by
// the mask's field.
func (s *Session) applyMask(m *stage.MaskPlan) {
	w, h := s.curW, s.curH
	buf := s.front
	invW := 1 / float32(w)
	invH := 1 / float32(h)
	s.eng.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) * invH
			row := y * w * 4
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) * invW
				weight := m.WeightAt(u, v)
				if weight <= 0 {
					continue
				}
				i := row + x*4
				r := fromByte(buf[i])
				g := fromByte(buf[i+1])
				b := fromByte(buf[i+2])
				ar, ag, ab := m.Factors.Apply(r, g, b)
				buf[i] = toByte(r + (ar-r)*weight)
				buf[i+1] = toByte(g + (ag-g)*weight)
				buf[i+2] = toByte(b + (ab-b)*weight)
			}
		}
	})
}
