// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"fmt"

	"github.com/gogpu/upscale/gpu"
)

// PixelFormat is the memory layout of a frame.
type PixelFormat int

const (
	// FormatRGBA8 is 8-bit RGBA, 4 bytes per pixel.
	FormatRGBA8 PixelFormat = iota
	// FormatBGRA8 is 8-bit BGRA, 4 bytes per pixel. Typical for desktop capture.
	FormatBGRA8
	// FormatRGB8 is 8-bit RGB, 3 bytes per pixel. Expanded to RGBA on upload.
	FormatRGB8
)

// BytesPerPixel returns the pixel size.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatRGB8 {
		return 3
	}
	return 4
}

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatRGB8:
		return "RGB8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// textureFormat returns the GPU format frames of f are processed in.
func (f PixelFormat) textureFormat() gpu.Format {
	if f == FormatBGRA8 {
		return gpu.FormatBGRA8
	}
	return gpu.FormatRGBA8
}

// Frame is a tightly packed image buffer.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	Format PixelFormat
}

// Validate checks len(Data) == Width*Height*BytesPerPixel.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidDimensions, f.Width, f.Height)
	}
	if f.Format < FormatRGBA8 || f.Format > FormatRGB8 {
		return fmt.Errorf("upscale: unknown pixel format %s", f.Format)
	}
	want := f.Width * f.Height * f.Format.BytesPerPixel()
	if len(f.Data) != want {
		return fmt.Errorf("%w: frame %dx%d %s has %d bytes, want %d",
			ErrDimensionMismatch, f.Width, f.Height, f.Format, len(f.Data), want)
	}
	return nil
}

// expandRGB converts tightly packed RGB8 to RGBA8 with opaque alpha.
func expandRGB(src []byte) []byte {
	n := len(src) / 3
	dst := make([]byte, n*4)
	for i := range n {
		dst[i*4+0] = src[i*3+0]
		dst[i*4+1] = src[i*3+1]
		dst[i*4+2] = src[i*3+2]
		dst[i*4+3] = 0xFF
	}
	return dst
}

// packRGB drops the alpha channel of tightly packed RGBA8.
func packRGB(src []byte) []byte {
	n := len(src) / 4
	dst := make([]byte, n*3)
	for i := range n {
		dst[i*3+0] = src[i*4+0]
		dst[i*3+1] = src[i*4+1]
		dst[i*3+2] = src[i*4+2]
	}
	return dst
}
