// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gputest opens HAL contexts on the noop backend for tests that
// need the hardware code path without a GPU.
package gputest

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/upscale/gpu"
)

// provider exposes a noop device the way a host application would.
type provider struct {
	device hal.Device
	queue  hal.Queue
}

type noopDevice struct{}

func (noopDevice) Poll(bool) {}
func (noopDevice) Destroy()  {}

type noopQueue struct{}

type noopAdapter struct{}

func (noopAdapter) Name() string { return "noop" }

func (p *provider) Device() gpucontext.Device             { return noopDevice{} }
func (p *provider) Queue() gpucontext.Queue               { return noopQueue{} }
func (p *provider) Adapter() gpucontext.Adapter           { return noopAdapter{} }
func (p *provider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (p *provider) HalDevice() any                        { return p.device }
func (p *provider) HalQueue() any                         { return p.queue }

// NoopContext returns a HAL context on a noop device. The device is
// destroyed when the test finishes.
func NoopContext(t testing.TB, opts gpu.OpenOptions) *gpu.HALContext {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend exposes no adapter")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	ctx, err := gpu.NewHALContextFromProvider(&provider{device: openDev.Device, queue: openDev.Queue}, opts)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		t.Fatalf("NewHALContextFromProvider failed: %v", err)
	}
	t.Cleanup(func() {
		ctx.Close()
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return ctx
}
