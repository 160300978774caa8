package pixel

// GradientRGB fills a width×height RGB8 image with a two-axis gradient:
// red rises left to right, green rises top to bottom, blue is constant 128.
// Deterministic, so repeated pipeline runs over it can be compared
// byte-for-byte.
func GradientRGB(width, height int) []uint8 {
	data := make([]uint8, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 3
			data[off+0] = uint8(x * 255 / width)
			data[off+1] = uint8(y * 255 / height)
			data[off+2] = 128
		}
	}
	return data
}

// GradientRGBA is GradientRGB with an opaque alpha channel.
func GradientRGBA(width, height int) []uint8 {
	data := make([]uint8, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			data[off+0] = uint8(x * 255 / width)
			data[off+1] = uint8(y * 255 / height)
			data[off+2] = 128
			data[off+3] = 255
		}
	}
	return data
}
