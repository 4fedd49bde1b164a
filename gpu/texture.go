// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// NativeHandle is a raw graphics-API object handle passed opaquely across
// the FFI boundary. Only nullness is interpreted.
type NativeHandle uintptr

// Format is the pixel format of a texture.
type Format int

const (
	// FormatRGBA8 is 8-bit unsigned normalized RGBA.
	FormatRGBA8 Format = iota
	// FormatBGRA8 is 8-bit unsigned normalized BGRA.
	FormatBGRA8
)

// BytesPerPixel returns the texel size in bytes.
func (f Format) BytesPerPixel() int { return 4 }

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) halFormat() gputypes.TextureFormat {
	if f == FormatBGRA8 {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureUsage is a set of usage flags declared at creation.
type TextureUsage uint32

const (
	// UsageSampled allows the texture to be read by shaders.
	UsageSampled TextureUsage = 1 << iota
	// UsageStorage allows shader writes.
	UsageStorage
	// UsageCopySrc allows the texture to be a copy source (readback).
	UsageCopySrc
	// UsageCopyDst allows uploads into the texture.
	UsageCopyDst
)

// Contains reports whether all flags in other are set.
func (u TextureUsage) Contains(other TextureUsage) bool { return u&other == other }

func (u TextureUsage) halUsage() gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u.Contains(UsageSampled) {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u.Contains(UsageStorage) {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u.Contains(UsageCopySrc) {
		out |= gputypes.TextureUsageCopySrc
	}
	if u.Contains(UsageCopyDst) {
		out |= gputypes.TextureUsageCopyDst
	}
	return out
}

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Format Format
	Usage  TextureUsage
}

// Texture is a 2-D texture owned by a Context. Its dimensions and usage
// never change after creation.
type Texture struct {
	desc   TextureDesc
	stride int
	owner  Context

	// impl is the backend resource (hal.Texture or *hostTexture).
	impl any

	destroyed atomic.Bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.desc.Height }

// Format returns the pixel format.
func (t *Texture) Format() Format { return t.desc.Format }

// Usage returns the usage flags declared at creation.
func (t *Texture) Usage() TextureUsage { return t.desc.Usage }

// Label returns the debug label.
func (t *Texture) Label() string { return t.desc.Label }

// Stride returns the aligned row pitch used for copies.
func (t *Texture) Stride() int { return t.stride }

// TightSize returns the size in bytes of the tightly packed contents.
func (t *Texture) TightSize() int {
	return TightStride(t.desc.Width, t.desc.Format.BytesPerPixel()) * t.desc.Height
}

// IsDestroyed reports whether DestroyTexture has been called.
func (t *Texture) IsDestroyed() bool { return t.destroyed.Load() }

func validateDesc(desc TextureDesc) error {
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, desc.Width, desc.Height)
	}
	return nil
}

// checkOwned verifies that t belongs to ctx and is still alive.
func checkOwned(ctx Context, t *Texture) error {
	if t == nil {
		return fmt.Errorf("%w: nil", ErrInvalidTexture)
	}
	if t.owner != ctx {
		return fmt.Errorf("%w: %q belongs to another context", ErrInvalidTexture, t.desc.Label)
	}
	if t.destroyed.Load() {
		return fmt.Errorf("%w: %q destroyed", ErrInvalidTexture, t.desc.Label)
	}
	return nil
}
