package stage

import (
	"fmt"
	"math"
)

// RotationKind classifies the geometric stage.
type RotationKind uint8

const (
	// RotationNone skips the geometric stage entirely.
	RotationNone RotationKind = iota

	// RotationQuarter is an exact 90/180/270-degree turn via index
	// permutation; 90 and 270 swap the output dimensions.
	RotationQuarter

	// RotationArbitrary is a fine-angle rotation about the image center
	// with bilinear resampling onto the same canvas; uncovered corners
	// come out opaque black.
	RotationArbitrary
)

// Rotation is the lowered geometric transform.
type Rotation struct {
	Kind   RotationKind
	Turns  int     // clockwise quarter turns, 0..3
	Sin    float32 // sin/cos of the inverse fine angle
	Cos    float32
	SrcW   int
	SrcH   int
	DstW   int
	DstH   int
}

// RotatedDims returns the output dimensions after the given quarter turns.
func RotatedDims(turns, w, h int) (int, int) {
	if turns%2 == 1 {
		return h, w
	}
	return w, h
}

// ResolveRotation validates and lowers the geometric parameters. A fine
// angle combined with quarter turns applies the quarter turn first.
func ResolveRotation(turns int, angleDeg float64, w, h int) (Rotation, error) {
	if turns < 0 || turns > 3 {
		return Rotation{}, fmt.Errorf("%w: got %d", ErrQuarterRange, turns)
	}
	if !(angleDeg >= -AngleMax && angleDeg <= AngleMax) {
		return Rotation{}, fmt.Errorf("%w: %.2f not in [%.0f, %.0f]",
			ErrAngleRange, angleDeg, -AngleMax, AngleMax)
	}

	rot := Rotation{SrcW: w, SrcH: h, DstW: w, DstH: h}
	switch {
	case turns == 0 && angleDeg == 0:
		rot.Kind = RotationNone
	case angleDeg == 0:
		rot.Kind = RotationQuarter
		rot.Turns = turns
		rot.DstW, rot.DstH = RotatedDims(turns, w, h)
	default:
		// Destination pixels are inverse-mapped into the source, so the
		// kernel rotates by -angle.
		rot.Kind = RotationArbitrary
		rot.Turns = turns
		rad := -angleDeg * math.Pi / 180
		rot.Sin = float32(math.Sin(rad))
		rot.Cos = float32(math.Cos(rad))
		rot.DstW, rot.DstH = RotatedDims(turns, w, h)
	}
	return rot, nil
}
