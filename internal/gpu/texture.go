package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// WebGPU (and DX12) require BytesPerRow aligned to 256 bytes for
// texture-buffer copies.
const copyPitchAlignment = 256

// Texture is a GPU-resident RGBA8 image.
type Texture struct {
	tex    hal.Texture
	width  int
	height int
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// CreateTextureFromPixels uploads tightly packed RGBA pixels into a new
// 2D texture. len(pixels) must be width*height*4.
func (d *Device) CreateTextureFromPixels(pixels []uint8, width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid texture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("gpu: pixel data is %d bytes, want %d for %dx%d RGBA",
			len(pixels), width*height*4, width, height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return nil, ErrClosed
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "pixel_texture",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: texture %dx%d: %v", ErrAllocation, width, height, err)
	}

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width) * 4,
			RowsPerImage: uint32(height),
		},
		&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	)

	return &Texture{tex: tex, width: width, height: height}, nil
}

// ReadTexturePixels copies the texture through a staging buffer into dst.
// len(dst) must be width*height*4. A fence timeout is reported as
// ErrDeviceLost.
func (d *Device) ReadTexturePixels(t *Texture, dst []uint8) error {
	if len(dst) != t.width*t.height*4 {
		return fmt.Errorf("gpu: destination is %d bytes, want %d for %dx%d RGBA",
			len(dst), t.width*t.height*4, t.width, t.height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return ErrClosed
	}

	w := uint32(t.width)
	h := uint32(t.height)
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "texture_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: staging buffer: %v", ErrAllocation, err)
	}
	defer d.device.DestroyBuffer(stagingBuf)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "texture_readback_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("texture_readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// The upload leaves the texture in TRANSFER_DST layout;
	// CopyTextureToBuffer needs TRANSFER_SRC. Transition there and back so
	// the texture stays reusable for further writes.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(t.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrDeviceLost, err)
	}
	fenceOK, err := d.device.Wait(fence, 1, deviceWaitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("%w: fence wait ok=%v err=%v", ErrDeviceLost, fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	// Strip row padding, if any.
	if alignedBytesPerRow == bytesPerRow {
		copy(dst, readback[:uint64(bytesPerRow)*uint64(h)])
	} else {
		for row := uint32(0); row < h; row++ {
			srcOff := int(row) * int(alignedBytesPerRow)
			dstOff := int(row) * int(bytesPerRow)
			copy(dst[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
		}
	}
	return nil
}

// DestroyTexture releases the texture. Safe on nil.
func (d *Device) DestroyTexture(t *Texture) {
	if t == nil || t.tex == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device != nil {
		d.device.DestroyTexture(t.tex)
	}
	t.tex = nil
}
