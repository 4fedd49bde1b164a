// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

// newNoopHALContext opens a noop HAL device and wraps it as an external
// device, so Close leaves destruction to the test.
func newNoopHALContext(t *testing.T) *HALContext {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	c := newHALContext(openDev.Device, openDev.Queue, AdapterInfo{Name: "noop", Backend: "noop"}, OpenOptions{}, true)
	t.Cleanup(func() {
		c.Close()
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return c
}

func TestHALContextTextureLifecycle(t *testing.T) {
	c := newNoopHALContext(t)
	tex, err := c.CreateTexture(TextureDesc{
		Label:  "noop_tex",
		Width:  96,
		Height: 96,
		Format: FormatRGBA8,
		Usage:  UsageStorage | UsageCopySrc,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if tex.Stride() != 512 {
		t.Errorf("stride = %d, want 512", tex.Stride())
	}
	if err := c.WriteTexture(tex, make([]byte, 96*96*4)); err != nil {
		t.Errorf("WriteTexture: %v", err)
	}
	c.DestroyTexture(tex)
	c.DestroyTexture(tex)
	if !tex.IsDestroyed() {
		t.Error("texture not marked destroyed")
	}
}

func TestHALContextDefaults(t *testing.T) {
	c := newNoopHALContext(t)
	if c.WaitTimeout() != DefaultWaitTimeout {
		t.Errorf("timeout = %v", c.WaitTimeout())
	}
	if c.Pool().Strategy() != StrategyConservative {
		t.Errorf("strategy = %v, want conservative for integrated", c.Pool().Strategy())
	}
	if c.HalDevice() == nil || c.HalQueue() == nil {
		t.Error("HAL accessors returned nil")
	}
}

func TestHALContextLost(t *testing.T) {
	c := newNoopHALContext(t)
	c.MarkLost()
	if _, err := c.CreateTexture(TextureDesc{Width: 4, Height: 4}); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("CreateTexture = %v, want ErrDeviceLost", err)
	}
	if _, err := c.NativeDeviceHandle(); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("NativeDeviceHandle = %v, want ErrDeviceLost", err)
	}
}

func TestHALContextForeignTexture(t *testing.T) {
	c := newNoopHALContext(t)
	sw := NewSoftwareContext(SoftwareOptions{})
	defer sw.Close()
	foreign, _ := sw.CreateTexture(TextureDesc{Width: 2, Height: 2})
	if err := c.WriteTexture(foreign, make([]byte, 16)); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("err = %v, want ErrInvalidTexture", err)
	}
}
