// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compute implements the portable upscaling backend: bicubic
// (Catmull-Rom) resampling in a WGSL compute shader.
//
// On a hardware context the shader runs through gogpu/wgpu/hal. Without
// one (software context, or a device that rejects the pipeline) the same
// kernel runs on the CPU in 16x16 tiles. Both paths produce the same image
// up to float rounding.
//
// Importing the package registers it as upscale.KindComputeShader.
package compute

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/internal/parallel"
)

func init() {
	upscale.Register(upscale.KindComputeShader, func(ctx gpu.Context, opts upscale.BackendOptions) (upscale.Backend, error) {
		return New(ctx, opts), nil
	})
}

// Backend is the compute-shader upscaler.
type Backend struct {
	mu sync.Mutex

	ctx     gpu.Context
	release func()
	opts    upscale.BackendOptions
	quality upscale.Quality

	geom        upscale.Geometry
	initialized bool
	dirty       bool
	closed      bool

	// hal is nil when the kernel runs on the CPU.
	hal        *halPipeline
	halFailed  bool
	dispatcher *parallel.TileDispatcher
}

var _ upscale.Backend = (*Backend)(nil)

// New creates an uninitialized backend on ctx.
func New(ctx gpu.Context, opts upscale.BackendOptions) *Backend {
	return &Backend{
		ctx:     ctx,
		release: gpu.Borrow(ctx),
		opts:    opts,
		quality: opts.Quality,
	}
}

// Name implements upscale.Backend.
func (b *Backend) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hal != nil {
		return "bicubic compute shader"
	}
	return "bicubic compute shader (cpu)"
}

// Kind implements upscale.Backend.
func (b *Backend) Kind() upscale.Kind { return upscale.KindComputeShader }

// Quality implements upscale.Backend.
func (b *Backend) Quality() upscale.Quality {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quality
}

// SetQuality implements upscale.Backend. The shader does not depend on the
// tier, so an initialized backend only re-checks its geometry.
func (b *Backend) SetQuality(q upscale.Quality) error {
	if _, err := upscale.NativeMode(q, upscale.KindComputeShader); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if q != b.quality && b.initialized {
		b.dirty = true
	}
	b.quality = q
	return nil
}

// Initialize implements upscale.Backend.
func (b *Backend) Initialize(renderW, renderH, outputW, outputH int) error {
	g := upscale.Geometry{RenderW: renderW, RenderH: renderH, OutputW: outputW, OutputH: outputH}
	if err := g.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return upscale.ErrClosed
	}
	if b.initialized && !b.dirty && g == b.geom {
		return nil
	}
	if b.ctx.Lost() {
		return upscale.ErrDeviceLost
	}
	b.initialized = false

	if hc, ok := gpu.Unwrap(b.ctx).(*gpu.HALContext); ok && !b.halFailed {
		if err := b.initHAL(hc, g); err != nil {
			if errors.Is(err, gpu.ErrDeviceLost) {
				return err
			}
			b.disableHAL(err)
		}
	}
	if b.hal == nil && b.dispatcher == nil {
		b.dispatcher = parallel.NewTileDispatcher(b.opts.Workers)
	}

	b.geom = g
	b.initialized = true
	b.dirty = false
	upscale.Logger().Debug("compute: initialized", "geometry", g.String(), "gpu", b.hal != nil)
	return nil
}

func (b *Backend) initHAL(hc *gpu.HALContext, g upscale.Geometry) error {
	if b.hal == nil {
		p, err := newHALPipeline(hc)
		if err != nil {
			return err
		}
		b.hal = p
	}
	return b.hal.resize(g)
}

// disableHAL switches to the CPU kernel for the rest of the backend's life.
func (b *Backend) disableHAL(err error) {
	upscale.Logger().Warn("compute: gpu pipeline unavailable, using cpu kernel", "err", err)
	if b.hal != nil {
		b.hal.destroy()
		b.hal = nil
	}
	b.halFailed = true
}

// Upscale implements upscale.Backend.
func (b *Backend) Upscale(input []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, upscale.ErrClosed
	}
	if !b.initialized {
		return nil, upscale.ErrNotInitialized
	}
	if err := b.geom.CheckInput(input, 4); err != nil {
		return nil, err
	}
	if b.ctx.Lost() {
		return nil, upscale.ErrDeviceLost
	}

	if b.hal != nil {
		out, err := b.hal.run(input)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, gpu.ErrDeviceLost) || errors.Is(err, gpu.ErrDeviceTimeout) {
			return nil, fmt.Errorf("compute: %w", err)
		}
		b.disableHAL(err)
		if b.dispatcher == nil {
			b.dispatcher = parallel.NewTileDispatcher(b.opts.Workers)
		}
	}
	return resampleCPU(b.dispatcher, input, b.geom), nil
}

// Close implements upscale.Backend.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.initialized = false
	if b.hal != nil {
		b.hal.destroy()
		b.hal = nil
	}
	if b.dispatcher != nil {
		b.dispatcher.Close()
		b.dispatcher = nil
	}
	b.release()
}
