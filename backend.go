// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"fmt"
	"strings"

	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

// Kind identifies an upscaling backend.
type Kind string

const (
	// KindComputeShader is the portable bicubic compute-shader backend.
	KindComputeShader Kind = "compute"
	// KindVendorA is the DLSS-class vendor SDK.
	KindVendorA Kind = "ngx"
	// KindVendorB is the FSR-class vendor SDK.
	KindVendorB Kind = "ffx"
)

// Kinds lists every backend kind.
var Kinds = []Kind{KindComputeShader, KindVendorA, KindVendorB}

var kindAliases = map[string]Kind{
	"compute":  KindComputeShader,
	"shader":   KindComputeShader,
	"bicubic":  KindComputeShader,
	"wgpu":     KindComputeShader,
	"ngx":      KindVendorA,
	"dlss":     KindVendorA,
	"vendor-a": KindVendorA,
	"ffx":      KindVendorB,
	"fsr":      KindVendorB,
	"vendor-b": KindVendorB,
}

// ParseKind parses a backend name or one of its aliases.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// String returns the backend name.
func (k Kind) String() string { return string(k) }

// Backend upscales frames of one fixed geometry.
//
// A Backend is one session: Initialize binds it to (render, output)
// dimensions and Upscale processes frames of exactly the render size.
// Calls must be serialized by the caller. Distinct backends may run
// concurrently on the same gpu.Context.
type Backend interface {
	// Initialize prepares the backend. Calling it again with identical
	// parameters does nothing; different parameters release the previous
	// resources first.
	Initialize(renderW, renderH, outputW, outputH int) error

	// Upscale processes one tightly packed 4-byte-per-pixel frame of the
	// render size and returns a frame of the output size.
	Upscale(input []byte) ([]byte, error)

	// SetQuality changes the tier. An initialized backend applies it on
	// the next Upscale.
	SetQuality(q Quality) error

	Name() string
	Quality() Quality
	Kind() Kind

	// Close releases every resource. It never fails and is idempotent.
	Close()
}

// BackendOptions configure a backend at construction.
type BackendOptions struct {
	Quality Quality

	// Format is the texture format frames are processed in.
	Format gpu.Format

	// ApplicationID is passed to vendor SDKs.
	ApplicationID uint64

	// SDKOptions are applied to vendor features after creation.
	SDKOptions sdk.Options

	// Library overrides the vendor library. Nil loads the default one.
	Library sdk.Library

	// LibraryPath overrides the vendor library search path.
	LibraryPath string

	// Workers bounds CPU parallelism. Zero means GOMAXPROCS.
	Workers int
}

// Geometry is the frame geometry of one backend session.
type Geometry struct {
	RenderW, RenderH int
	OutputW, OutputH int
}

// Validate rejects zero or negative sizes.
func (g Geometry) Validate() error {
	if g.RenderW <= 0 || g.RenderH <= 0 || g.OutputW <= 0 || g.OutputH <= 0 {
		return fmt.Errorf("%w: render %dx%d, output %dx%d",
			ErrInvalidDimensions, g.RenderW, g.RenderH, g.OutputW, g.OutputH)
	}
	return nil
}

// InputSize returns the expected input length for bytesPerPixel.
func (g Geometry) InputSize(bytesPerPixel int) int {
	return g.RenderW * g.RenderH * bytesPerPixel
}

// CheckInput returns ErrDimensionMismatch when len(input) does not match
// the render size.
func (g Geometry) CheckInput(input []byte, bytesPerPixel int) error {
	if want := g.InputSize(bytesPerPixel); len(input) != want {
		return fmt.Errorf("%w: input has %d bytes, want %d for %dx%d",
			ErrDimensionMismatch, len(input), want, g.RenderW, g.RenderH)
	}
	return nil
}

// String formats the geometry for logs.
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d->%dx%d", g.RenderW, g.RenderH, g.OutputW, g.OutputH)
}
