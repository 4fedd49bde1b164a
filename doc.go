// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package upscale is a real-time frame upscaling engine.
//
// # Overview
//
// A Pipeline takes captured frames at render resolution and returns frames
// at presentation resolution. The work is done by one of three backends:
//
//   - KindComputeShader: portable bicubic (Catmull-Rom) resampling in a
//     WGSL compute shader, with an identical CPU kernel when no hardware
//     device is available (package backend/compute).
//   - KindVendorA: a DLSS-class vendor SDK reached through FFI
//     (packages backend/ffi and sdk/ngx).
//   - KindVendorB: an FSR-class vendor SDK reached through FFI
//     (packages backend/ffi and sdk/ffx).
//
// Backends register themselves in init, so import the ones you need:
//
//	import (
//	    "github.com/gogpu/upscale"
//	    _ "github.com/gogpu/upscale/backend/compute"
//	    _ "github.com/gogpu/upscale/backend/ffi"
//	)
//
// # Quick Start
//
//	p, err := upscale.New(upscale.Config{
//	    Quality:      upscale.QualityQuality,
//	    Backend:      upscale.KindComputeShader,
//	    OutputWidth:  1920,
//	    OutputHeight: 1080,
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	rw, rh, _ := p.RenderSize() // 1280x720 at Quality
//	out, err := p.Process(upscale.Frame{Data: captured, Width: rw, Height: rh, Format: upscale.FormatBGRA8})
//
// # Quality
//
// Each Quality tier maps to a render-resolution ratio (see
// DefaultMultipliers) and to a backend-specific mode code (see NativeMode).
//
// # Errors
//
// Precondition failures (ErrInvalidDimensions, ErrDimensionMismatch,
// ErrNotInitialized) are reported before any GPU work. IsPermanent
// separates errors that will recur on every frame from transient ones such
// as ErrEvaluationFailed. After ErrDeviceLost a pipeline refuses further
// frames.
package upscale

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
