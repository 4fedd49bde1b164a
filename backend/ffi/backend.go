// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ffi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

// state is the feature lifecycle.
type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateDestroyed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitialized:
		return "initialized"
	case stateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FrameInputs are the optional per-frame inputs of temporal upscalers.
// Zero handles are passed as absent.
type FrameInputs struct {
	MotionVectors gpu.NativeHandle
	Depth         gpu.NativeHandle

	// Sub-pixel camera jitter in render pixels.
	JitterX float32
	JitterY float32
}

// Backend is a vendor SDK upscaling session.
type Backend struct {
	mu sync.Mutex

	kind    upscale.Kind
	ctx     gpu.Context
	release func()
	lib     sdk.Library
	opts    upscale.BackendOptions
	quality upscale.Quality

	state  state
	handle sdk.FeatureHandle
	geom   upscale.Geometry
	dirty  bool
	inputs FrameInputs

	// acquired is set while the session holds a runtime reference on lib.
	acquired bool
}

var _ upscale.Backend = (*Backend)(nil)

// New creates an uninitialized session of kind on ctx using lib.
func New(kind upscale.Kind, ctx gpu.Context, lib sdk.Library, opts upscale.BackendOptions) *Backend {
	return &Backend{
		kind:    kind,
		ctx:     ctx,
		release: gpu.Borrow(ctx),
		lib:     lib,
		opts:    opts,
		quality: opts.Quality,
	}
}

// Name implements upscale.Backend.
func (b *Backend) Name() string { return "vendor super resolution (" + b.lib.Name() + ")" }

// Kind implements upscale.Backend.
func (b *Backend) Kind() upscale.Kind { return b.kind }

// Quality implements upscale.Backend.
func (b *Backend) Quality() upscale.Quality {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quality
}

// Handle returns the live feature handle, or zero.
func (b *Backend) Handle() sdk.FeatureHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// SetQuality implements upscale.Backend. The feature is recreated with the
// new mode on the next Upscale.
func (b *Backend) SetQuality(q upscale.Quality) error {
	if _, err := upscale.NativeMode(q, b.kind); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateDestroyed {
		return upscale.ErrClosed
	}
	if q != b.quality && b.state == stateInitialized {
		b.dirty = true
	}
	b.quality = q
	return nil
}

// SetFrameInputs supplies motion vectors, depth and jitter for the next
// Upscale. They are cleared after that frame.
func (b *Backend) SetFrameInputs(in FrameInputs) {
	b.mu.Lock()
	b.inputs = in
	b.mu.Unlock()
}

// Initialize implements upscale.Backend.
func (b *Backend) Initialize(renderW, renderH, outputW, outputH int) error {
	g := upscale.Geometry{RenderW: renderW, RenderH: renderH, OutputW: outputW, OutputH: outputH}
	if err := g.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateDestroyed {
		return upscale.ErrClosed
	}
	if b.state == stateInitialized && !b.dirty && g == b.geom {
		return nil
	}
	return b.initialize(g)
}

// initialize creates the feature for g, destroying a previous one first.
// Called with b.mu held.
func (b *Backend) initialize(g upscale.Geometry) error {
	if b.ctx.Lost() {
		return upscale.ErrDeviceLost
	}
	mode, err := upscale.NativeMode(b.quality, b.kind)
	if err != nil {
		return err
	}

	b.destroyFeature()
	b.state = stateUninitialized

	device, err := b.ctx.NativeDeviceHandle()
	if err != nil {
		return fmt.Errorf("%s: %w", b.kind, err)
	}

	if !b.acquired {
		status, err := sdk.Acquire(b.lib, b.opts.ApplicationID, uintptr(device))
		if err != nil {
			return fmt.Errorf("%w: %w", upscale.ErrBackendUnavailable, err)
		}
		if !status.OK() {
			return &upscale.EvaluationError{Backend: b.lib.Name(), Op: upscale.OpInit, Status: status}
		}
		b.acquired = true
	}

	handle, status, err := b.lib.CreateFeature(b.opts.ApplicationID, mode, g.OutputW, g.OutputH, uintptr(device))
	if err != nil {
		return fmt.Errorf("%w: %w", upscale.ErrBackendUnavailable, err)
	}
	if !status.OK() {
		return &upscale.EvaluationError{Backend: b.lib.Name(), Op: upscale.OpCreateFeature, Status: status}
	}
	if handle == 0 {
		upscale.Logger().Error("ffi: create feature succeeded with a null handle", "library", b.lib.Name())
		return fmt.Errorf("%w: %s returned a null feature handle", upscale.ErrInvariantViolation, b.lib.Name())
	}
	upscale.Logger().Debug("ffi: feature created",
		"library", b.lib.Name(), "handle", uintptr(handle), "mode", mode, "geometry", g.String())

	if status, err := b.lib.SetOptions(handle, b.opts.SDKOptions); err != nil || !status.OK() {
		upscale.Logger().Warn("ffi: set options failed", "library", b.lib.Name(), "status", status.String(), "err", err)
	}

	b.handle = handle
	b.geom = g
	b.state = stateInitialized
	b.dirty = false
	upscale.Logger().Info("ffi: initialized", "library", b.lib.Name(), "quality", b.quality, "geometry", g.String())
	return nil
}

// destroyFeature releases the live handle. Failures are logged only.
func (b *Backend) destroyFeature() {
	if b.handle == 0 {
		return
	}
	h := b.handle
	b.handle = 0
	status, err := b.lib.DestroyFeature(h)
	switch {
	case err != nil:
		upscale.Logger().Warn("ffi: destroy feature unavailable, handle leaked",
			"library", b.lib.Name(), "handle", uintptr(h), "err", err)
	case !status.OK():
		upscale.Logger().Warn("ffi: destroy feature failed",
			"library", b.lib.Name(), "handle", uintptr(h), "status", status.String())
	}
}

// Upscale implements upscale.Backend.
func (b *Backend) Upscale(input []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateDestroyed:
		return nil, upscale.ErrClosed
	case stateUninitialized:
		return nil, upscale.ErrNotInitialized
	}
	if err := b.geom.CheckInput(input, b.opts.Format.BytesPerPixel()); err != nil {
		return nil, err
	}
	if b.dirty {
		if err := b.initialize(b.geom); err != nil {
			return nil, err
		}
	}
	if b.ctx.Lost() {
		return nil, upscale.ErrDeviceLost
	}

	inputs := b.inputs
	b.inputs = FrameInputs{}
	return b.evaluate(input, inputs)
}

// evaluate runs one frame through the feature. Both textures live for this
// frame only.
func (b *Backend) evaluate(input []byte, inputs FrameInputs) ([]byte, error) {
	g := b.geom
	in, err := b.ctx.CreateTexture(gpu.TextureDesc{
		Label:  "ffi_input",
		Width:  g.RenderW,
		Height: g.RenderH,
		Format: b.opts.Format,
		Usage:  gpu.UsageSampled | gpu.UsageCopyDst | gpu.UsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: input texture: %w", b.kind, err)
	}
	defer b.ctx.DestroyTexture(in)

	out, err := b.ctx.CreateTexture(gpu.TextureDesc{
		Label:  "ffi_output",
		Width:  g.OutputW,
		Height: g.OutputH,
		Format: b.opts.Format,
		Usage:  gpu.UsageStorage | gpu.UsageCopySrc | gpu.UsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: output texture: %w", b.kind, err)
	}
	defer b.ctx.DestroyTexture(out)

	if err := b.ctx.WriteTexture(in, input); err != nil {
		return nil, fmt.Errorf("%s: upload: %w", b.kind, err)
	}
	inHandle, err := b.ctx.NativeTextureHandle(in)
	if err != nil {
		return nil, err
	}
	outHandle, err := b.ctx.NativeTextureHandle(out)
	if err != nil {
		return nil, err
	}

	status, err := b.lib.Evaluate(b.handle, sdk.EvalParams{
		Input:         uintptr(inHandle),
		Output:        uintptr(outHandle),
		MotionVectors: uintptr(inputs.MotionVectors),
		Depth:         uintptr(inputs.Depth),
		JitterX:       inputs.JitterX,
		JitterY:       inputs.JitterY,
		RenderWidth:   g.RenderW,
		RenderHeight:  g.RenderH,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", upscale.ErrBackendUnavailable, err)
	}
	if !status.OK() {
		return nil, &upscale.EvaluationError{Backend: b.lib.Name(), Op: upscale.OpEvaluate, Status: status}
	}

	data, err := b.ctx.ReadTexture(out)
	if err != nil {
		if errors.Is(err, gpu.ErrDeviceTimeout) {
			upscale.Logger().Warn("ffi: readback timed out", "library", b.lib.Name(), "geometry", g.String())
		}
		return nil, fmt.Errorf("%s: readback: %w", b.kind, err)
	}
	return data, nil
}

// Close implements upscale.Backend.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateDestroyed {
		return
	}
	b.destroyFeature()
	if b.acquired {
		sdk.Release(b.lib)
		b.acquired = false
	}
	b.state = stateDestroyed
	b.release()
}
