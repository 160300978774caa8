package main

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	literoom "github.com/tesla3327/literoom-sub019"
)

// loadInputImage decodes a photo from disk into a tightly packed RGBA
// frame. JPEG, PNG, BMP, TIFF, and WebP are recognized.
func loadInputImage(path string) (*literoom.PixelBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	return literoom.NewPixelBuffer(rgba.Pix, bounds.Dx(), bounds.Dy(), literoom.FormatRGBA8)
}
