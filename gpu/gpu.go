// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu owns the GPU device, queue and texture lifetimes used by the
// upscaling engine, and implements the upload/readback transfer protocol.
//
// Two Context implementations exist:
//
//   - HALContext drives a real adapter through gogpu/wgpu/hal (Vulkan).
//   - SoftwareContext keeps textures in host memory with the same row
//     alignment rules as hardware. It is used when no adapter is present
//     and by tests.
//
// Open tries the hardware path first and falls back to software.
//
// Usage:
//
//	ctx := gpu.Open(gpu.OpenOptions{})
//	defer ctx.Close()
//	tex, err := ctx.CreateTexture(gpu.TextureDesc{Width: 64, Height: 64, Format: gpu.FormatRGBA8,
//	    Usage: gpu.UsageSampled | gpu.UsageCopyDst})
package gpu

import "time"

// DefaultWaitTimeout is the ceiling for a single fence or map wait.
const DefaultWaitTimeout = 5 * time.Second

// OpenOptions configures Open.
type OpenOptions struct {
	// ForceSoftware skips adapter enumeration.
	ForceSoftware bool

	// WaitTimeout bounds device waits. Zero means DefaultWaitTimeout.
	WaitTimeout time.Duration

	// Strategy selects the staging pool policy. Zero value picks one
	// from the adapter type.
	Strategy AllocationStrategy
}

// Open returns a hardware context when an adapter is available and a
// software context otherwise. It never fails.
func Open(opts OpenOptions) Context {
	if !opts.ForceSoftware {
		hc, err := NewHALContext(opts)
		if err == nil {
			return hc
		}
		slogger().Warn("gpu: hardware adapter unavailable, using software device", "err", err)
	}
	return NewSoftwareContext(SoftwareOptions{
		WaitTimeout: opts.WaitTimeout,
		Strategy:    opts.Strategy,
	})
}
