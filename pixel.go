package literoom

import "fmt"

// PixelFormat identifies the channel layout of a PixelBuffer.
type PixelFormat uint8

const (
	// FormatAuto is valid only in OutputOptions, where it means "match
	// the input format". It is not a valid buffer format.
	FormatAuto PixelFormat = iota

	// FormatRGB8 is interleaved 8-bit RGB, 3 bytes per pixel.
	FormatRGB8

	// FormatRGBA8 is interleaved 8-bit RGBA, 4 bytes per pixel.
	FormatRGBA8
)

// BytesPerPixel returns the pixel stride for the format, or 0 for
// FormatAuto.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	default:
		return 0
	}
}

// String returns a string representation of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatRGB8:
		return "rgb8"
	case FormatRGBA8:
		return "rgba8"
	default:
		return "unknown"
	}
}

// PixelBuffer is a caller-owned interleaved pixel frame, laid out row by
// row with no padding. The pipeline never mutates input buffers and always
// returns freshly allocated output.
type PixelBuffer struct {
	Data   []uint8
	Width  int
	Height int
	Format PixelFormat
}

// NewPixelBuffer validates and wraps a pixel frame. The data length must
// be exactly Width*Height*BytesPerPixel.
func NewPixelBuffer(data []uint8, width, height int, format PixelFormat) (*PixelBuffer, error) {
	b := &PixelBuffer{Data: data, Width: width, Height: height, Format: format}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *PixelBuffer) validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidInput, b.Width, b.Height)
	}
	bpp := b.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: format %s", ErrInvalidInput, b.Format)
	}
	if want := b.Width * b.Height * bpp; len(b.Data) != want {
		return fmt.Errorf("%w: data is %d bytes, want %d for %dx%d %s",
			ErrInvalidInput, len(b.Data), want, b.Width, b.Height, b.Format)
	}
	return nil
}
