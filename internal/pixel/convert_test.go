package pixel

import (
	"bytes"
	"testing"
)

// TestRGBToRGBA verifies channel order and opaque alpha insertion.
func TestRGBToRGBA(t *testing.T) {
	rgb := []uint8{10, 20, 30, 40, 50, 60}
	got := RGBToRGBA(rgb, 2)
	want := []uint8{10, 20, 30, 255, 40, 50, 60, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("RGBToRGBA = %v, want %v", got, want)
	}
}

// TestRGBAToRGB verifies alpha stripping preserves color channels.
func TestRGBAToRGB(t *testing.T) {
	rgba := []uint8{10, 20, 30, 255, 40, 50, 60, 128}
	got := RGBAToRGB(rgba, 2)
	want := []uint8{10, 20, 30, 40, 50, 60}
	if !bytes.Equal(got, want) {
		t.Errorf("RGBAToRGB = %v, want %v", got, want)
	}
}

// TestConvertRoundTrip verifies RGB -> RGBA -> RGB is lossless.
func TestConvertRoundTrip(t *testing.T) {
	rgb := GradientRGB(16, 9)
	back := RGBAToRGB(RGBToRGBA(rgb, 16*9), 16*9)
	if !bytes.Equal(rgb, back) {
		t.Error("RGB -> RGBA -> RGB round trip altered pixel data")
	}
}

// TestGradientDeterminism verifies the fixture generator is reproducible.
func TestGradientDeterminism(t *testing.T) {
	a := GradientRGBA(64, 48)
	b := GradientRGBA(64, 48)
	if !bytes.Equal(a, b) {
		t.Error("GradientRGBA is not deterministic")
	}
	if len(a) != 64*48*4 {
		t.Errorf("GradientRGBA length = %d, want %d", len(a), 64*48*4)
	}
}

// TestGradientValues spot-checks the gradient formula.
func TestGradientValues(t *testing.T) {
	w, h := 256, 256
	data := GradientRGB(w, h)
	// Pixel (128, 64): R = 128*255/256, G = 64*255/256, B = 128.
	off := (64*w + 128) * 3
	if data[off] != uint8(128*255/256) {
		t.Errorf("red at (128,64) = %d, want %d", data[off], uint8(128*255/256))
	}
	if data[off+1] != uint8(64*255/256) {
		t.Errorf("green at (128,64) = %d, want %d", data[off+1], uint8(64*255/256))
	}
	if data[off+2] != 128 {
		t.Errorf("blue at (128,64) = %d, want 128", data[off+2])
	}
}
