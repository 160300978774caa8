package stage

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// CurveLUTSize is the resolution of the lowered tone curve. 256 entries map
// 8-bit channel values exactly.
const CurveLUTSize = 256

var (
	// ErrCurveTooFew reports a tone curve with fewer than two points.
	ErrCurveTooFew = errors.New("stage: tone curve needs at least 2 points")

	// ErrCurveRange reports a control point outside the unit square.
	ErrCurveRange = errors.New("stage: tone curve point out of [0,1]")

	// ErrCurveOrder reports control points not strictly increasing in x.
	ErrCurveOrder = errors.New("stage: tone curve points must be strictly increasing in x")
)

// CurvePoint is one tone-curve control point in normalized coordinates.
type CurvePoint struct {
	X float64
	Y float64
}

// CurveLUT is a tone curve lowered to a dense lookup table. Values are
// clamped to [0, 1]. Inputs below the first control point map to its y;
// inputs above the last map to its y.
type CurveLUT struct {
	Table [CurveLUTSize]float32
}

// ValidateCurve checks control points for range and strict x ordering.
func ValidateCurve(points []CurvePoint) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: got %d", ErrCurveTooFew, len(points))
	}
	for i, p := range points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return fmt.Errorf("%w: point %d = (%.3f, %.3f)", ErrCurveRange, i, p.X, p.Y)
		}
		if i > 0 && p.X <= points[i-1].X {
			return fmt.Errorf("%w: point %d x=%.3f follows x=%.3f",
				ErrCurveOrder, i, p.X, points[i-1].X)
		}
	}
	return nil
}

// BuildCurveLUT validates points and lowers them to a LUT using monotone
// cubic (Fritsch-Carlson) interpolation, so a monotone set of control
// points always yields a monotone curve with no overshoot.
func BuildCurveLUT(points []CurvePoint) (*CurveLUT, error) {
	if err := ValidateCurve(points); err != nil {
		return nil, err
	}

	n := len(points)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	// Secant slopes between neighbors.
	delta := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		delta[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	// Tangents: average of adjacent secants, flattened at local extrema.
	m := make([]float64, n)
	m[0] = delta[0]
	m[n-1] = delta[n-2]
	for i := 1; i < n-1; i++ {
		if delta[i-1]*delta[i] <= 0 {
			m[i] = 0
		} else {
			m[i] = (delta[i-1] + delta[i]) / 2
		}
	}

	// Fritsch-Carlson limiter keeps the interpolant monotone.
	for i := 0; i < n-1; i++ {
		if delta[i] == 0 {
			m[i] = 0
			m[i+1] = 0
			continue
		}
		alpha := m[i] / delta[i]
		beta := m[i+1] / delta[i]
		if s := alpha*alpha + beta*beta; s > 9 {
			tau := 3 / math.Sqrt(s)
			m[i] = tau * alpha * delta[i]
			m[i+1] = tau * beta * delta[i]
		}
	}

	var lut CurveLUT
	seg := 0
	for i := 0; i < CurveLUTSize; i++ {
		x := float64(i) / (CurveLUTSize - 1)

		switch {
		case x <= xs[0]:
			lut.Table[i] = float32(ys[0])
			continue
		case x >= xs[n-1]:
			lut.Table[i] = float32(ys[n-1])
			continue
		}

		for seg < n-2 && x > xs[seg+1] {
			seg++
		}

		h := xs[seg+1] - xs[seg]
		t := (x - xs[seg]) / h
		t2 := t * t
		t3 := t2 * t
		h00 := 2*t3 - 3*t2 + 1
		h10 := t3 - 2*t2 + t
		h01 := -2*t3 + 3*t2
		h11 := t3 - t2
		y := h00*ys[seg] + h10*h*m[seg] + h01*ys[seg+1] + h11*h*m[seg+1]

		lut.Table[i] = Clamp01(float32(y))
	}
	return &lut, nil
}

// Lookup evaluates the LUT at a normalized input with linear interpolation
// between entries, matching the WGSL kernel's indexing.
func (l *CurveLUT) Lookup(v float32) float32 {
	v = Clamp01(v)
	pos := v * (CurveLUTSize - 1)
	idx := int(pos)
	if idx >= CurveLUTSize-1 {
		return l.Table[CurveLUTSize-1]
	}
	frac := pos - float32(idx)
	return l.Table[idx]*(1-frac) + l.Table[idx+1]*frac
}

// IsIdentity reports whether the LUT is a no-op mapping, within float
// rounding of the straight line through (0,0) and (1,1).
func (l *CurveLUT) IsIdentity() bool {
	for i, v := range l.Table {
		if d := v - float32(i)/(CurveLUTSize-1); d > 1e-6 || d < -1e-6 {
			return false
		}
	}
	return true
}

// CurveCache memoizes lowered LUTs keyed by their control points, so slider
// drags that leave the curve untouched do not rebuild it every frame.
type CurveCache struct {
	mu      sync.Mutex
	entries map[uint64]*CurveLUT
	max     int
}

// NewCurveCache creates a cache bounded to maxEntries LUTs. When the bound
// is reached the cache is dropped wholesale; tone curves are tiny and the
// rebuild is cheap relative to tracking recency.
func NewCurveCache(maxEntries int) *CurveCache {
	return &CurveCache{
		entries: make(map[uint64]*CurveLUT),
		max:     maxEntries,
	}
}

// Get returns the LUT for points, building and caching it on first use.
func (c *CurveCache) Get(points []CurvePoint) (*CurveLUT, error) {
	key := hashCurvePoints(points)

	c.mu.Lock()
	if lut, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return lut, nil
	}
	c.mu.Unlock()

	lut, err := BuildCurveLUT(points)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.max > 0 && len(c.entries) >= c.max {
		c.entries = make(map[uint64]*CurveLUT)
	}
	c.entries[key] = lut
	c.mu.Unlock()
	return lut, nil
}

// Len reports the number of cached LUTs.
func (c *CurveCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func hashCurvePoints(points []CurvePoint) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for _, p := range points {
		putFloat64(buf[0:8], p.X)
		putFloat64(buf[8:16], p.Y)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func putFloat64(b []byte, f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}
