// Package pixel provides host-side pixel buffer utilities for literoom:
// RGB/RGBA layout conversion, reusable frame allocation, and synthetic
// test images.
package pixel

// RGBToRGBA converts tightly packed RGB data (3 bytes/pixel) to RGBA
// (4 bytes/pixel) with opaque alpha. The returned slice is freshly
// allocated and holds pixelCount*4 bytes.
func RGBToRGBA(rgb []uint8, pixelCount int) []uint8 {
	rgba := make([]uint8, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		srcOff := i * 3
		dstOff := i * 4
		rgba[dstOff+0] = rgb[srcOff+0]
		rgba[dstOff+1] = rgb[srcOff+1]
		rgba[dstOff+2] = rgb[srcOff+2]
		rgba[dstOff+3] = 255
	}
	return rgba
}

// RGBAToRGB strips the alpha channel from tightly packed RGBA data,
// returning a fresh pixelCount*3 byte slice.
func RGBAToRGB(rgba []uint8, pixelCount int) []uint8 {
	rgb := make([]uint8, pixelCount*3)
	for i := 0; i < pixelCount; i++ {
		srcOff := i * 4
		dstOff := i * 3
		rgb[dstOff+0] = rgba[srcOff+0]
		rgb[dstOff+1] = rgba[srcOff+1]
		rgb[dstOff+2] = rgba[srcOff+2]
	}
	return rgb
}
