// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// HALContext is a Context backed by a gogpu/wgpu HAL device.
type HALContext struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     AdapterInfo

	pool        *StagingPool
	waitTimeout time.Duration

	// external is true when the device belongs to a host application and
	// must not be destroyed on Close.
	external bool
	lost     atomic.Bool
	closed   bool
}

var _ Context = (*HALContext)(nil)

// NewHALContext opens the first discrete or integrated Vulkan adapter.
func NewHALContext(opts OpenOptions) (*HALContext, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	info := AdapterInfo{
		Name:     selected.Info.Name,
		Vendor:   DetectVendor(selected.Info.Name),
		Discrete: selected.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU,
		Backend:  "vulkan",
	}
	info.Software = info.Vendor == VendorSoftware
	c := newHALContext(openDev.Device, openDev.Queue, info, opts, false)
	c.instance = instance
	slogger().Info("gpu: adapter selected", "adapter", info.String())
	return c, nil
}

// NewHALContextFromProvider shares a host application's device. The
// provider must also expose HalDevice() and HalQueue() returning hal types.
// The device is not destroyed on Close.
func NewHALContextFromProvider(provider gpucontext.DeviceProvider, opts OpenOptions) (*HALContext, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	info := AdapterInfo{Name: "shared device", Backend: "hal"}
	if named, ok := provider.Adapter().(interface{ Name() string }); ok {
		info.Name = named.Name()
		info.Vendor = DetectVendor(info.Name)
	}
	slogger().Info("gpu: using shared device", "adapter", info.Name)
	return newHALContext(device, queue, info, opts, true), nil
}

func newHALContext(device hal.Device, queue hal.Queue, info AdapterInfo, opts OpenOptions, external bool) *HALContext {
	timeout := opts.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	strategy := opts.Strategy
	if strategy == StrategyAuto {
		strategy = StrategyFor(info)
	}
	c := &HALContext{
		device:      device,
		queue:       queue,
		info:        info,
		waitTimeout: timeout,
		external:    external,
	}
	c.pool = NewStagingPool(strategy, func(size uint64) (*Buffer, error) {
		buf, err := newHALStagingBuffer(device, queue, size, "upscale_staging")
		if err != nil {
			return nil, err
		}
		buf.lost = c.lost.Load
		return buf, nil
	})
	return c
}

// HalDevice returns the HAL device for pipeline creation.
func (c *HALContext) HalDevice() hal.Device { return c.device }

// HalQueue returns the HAL queue.
func (c *HALContext) HalQueue() hal.Queue { return c.queue }

// WaitTimeout returns the device wait ceiling.
func (c *HALContext) WaitTimeout() time.Duration { return c.waitTimeout }

// Pool returns the staging buffer pool.
func (c *HALContext) Pool() *StagingPool { return c.pool }

// Info implements Context.
func (c *HALContext) Info() AdapterInfo { return c.info }

// Lost implements Context.
func (c *HALContext) Lost() bool { return c.lost.Load() }

// MarkLost invalidates the device. Every later operation fails with
// ErrDeviceLost.
func (c *HALContext) MarkLost() {
	if c.lost.CompareAndSwap(false, true) {
		slogger().Warn("gpu: device lost", "adapter", c.info.Name)
	}
}

func (c *HALContext) check() error {
	if c.lost.Load() {
		return ErrDeviceLost
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return nil
}

// CreateTexture implements Context.
func (c *HALContext) CreateTexture(desc TextureDesc) (*Texture, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := validateDesc(desc); err != nil {
		return nil, err
	}
	ht, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}, //nolint:gosec // validated positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format.halFormat(),
		Usage:         desc.Usage.halUsage(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: texture %q %dx%d: %v", ErrOutOfMemory, desc.Label, desc.Width, desc.Height, err)
	}
	slogger().Debug("gpu: texture created", "label", desc.Label, "width", desc.Width, "height", desc.Height)
	return &Texture{
		desc:   desc,
		stride: AlignedStride(desc.Width, desc.Format.BytesPerPixel()),
		owner:  c,
		impl:   ht,
	}, nil
}

// DestroyTexture implements Context.
func (c *HALContext) DestroyTexture(t *Texture) {
	if t == nil || t.owner != c || !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	if ht, ok := t.impl.(hal.Texture); ok && ht != nil && c.device != nil {
		c.device.DestroyTexture(ht)
	}
	t.impl = nil
}

// WriteTexture implements Context. Rows are re-laid at the aligned stride
// before the queue write.
func (c *HALContext) WriteTexture(t *Texture, data []byte) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkOwned(c, t); err != nil {
		return err
	}
	if len(data) != t.TightSize() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrDataSize, len(data), t.TightSize())
	}
	ht := t.impl.(hal.Texture)
	tight := TightStride(t.desc.Width, t.desc.Format.BytesPerPixel())
	padded := PadRows(data, tight, t.stride, t.desc.Height)
	w, h := uint32(t.desc.Width), uint32(t.desc.Height) //nolint:gosec // validated positive

	c.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  ht,
			MipLevel: 0,
			Origin:   hal.Origin3D{},
			Aspect:   gputypes.TextureAspectAll,
		},
		padded,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.stride), //nolint:gosec // aligned stride fits uint32
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// ReadTexture implements Context: copy into a pooled staging buffer,
// submit, wait on the fence, map, strip row padding.
func (c *HALContext) ReadTexture(t *Texture) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := checkOwned(c, t); err != nil {
		return nil, err
	}
	if !t.desc.Usage.Contains(UsageCopySrc) {
		return nil, fmt.Errorf("%w: %q lacks CopySrc usage", ErrInvalidTexture, t.desc.Label)
	}
	ht := t.impl.(hal.Texture)
	w, h := uint32(t.desc.Width), uint32(t.desc.Height) //nolint:gosec // validated positive
	size := uint64(t.stride) * uint64(h)

	staging, err := c.pool.Acquire(size)
	if err != nil {
		return nil, fmt.Errorf("acquire staging buffer: %w", err)
	}
	defer c.pool.Release(staging)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "upscale_readback"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("upscale_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	prev := gputypes.TextureUsageCopyDst
	if t.desc.Usage.Contains(UsageStorage) {
		prev = gputypes.TextureUsageStorageBinding
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: ht,
		Usage: hal.TextureUsageTransition{
			OldUsage: prev,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(ht, staging.Raw(), []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(t.stride), RowsPerImage: h}, //nolint:gosec // aligned stride fits uint32
		TextureBase:  hal.ImageCopyTexture{Texture: ht, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	if err := c.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}
	return mapAndStrip(staging, t.desc.Width, t.desc.Height, t.desc.Format.BytesPerPixel(), t.stride, c.waitTimeout)
}

// SubmitAndWait submits cmdBuf and blocks on a fence with the configured
// ceiling. A wait error invalidates the device.
func (c *HALContext) SubmitAndWait(cmdBuf hal.CommandBuffer) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.submitAndWait(cmdBuf)
}

func (c *HALContext) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		c.MarkLost()
		return fmt.Errorf("%w: submit: %v", ErrDeviceLost, err)
	}
	ok, err := c.device.Wait(fence, 1, c.waitTimeout)
	if err != nil {
		c.MarkLost()
		return fmt.Errorf("%w: wait: %v", ErrDeviceLost, err)
	}
	if !ok {
		return fmt.Errorf("%w: fence after %v", ErrDeviceTimeout, c.waitTimeout)
	}
	return nil
}

// ReadBuffer downloads size bytes from a storage buffer through the staging
// pool and the map handshake.
func (c *HALContext) ReadBuffer(src hal.Buffer, size uint64) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	staging, err := c.pool.Acquire(size)
	if err != nil {
		return nil, fmt.Errorf("acquire staging buffer: %w", err)
	}
	defer c.pool.Release(staging)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "upscale_buffer_readback"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("upscale_buffer_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(src, staging.Raw(), []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	if err := c.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}
	// A buffer is a single row with no padding.
	return mapAndStrip(staging, int(size), 1, 1, int(size), c.waitTimeout)
}

// NativeDeviceHandle implements Context.
func (c *HALContext) NativeDeviceHandle() (NativeHandle, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	nh, ok := c.device.(interface{ NativeHandle() uintptr })
	if !ok || nh.NativeHandle() == 0 {
		return 0, fmt.Errorf("%w: device", ErrNativeHandleUnavailable)
	}
	return NativeHandle(nh.NativeHandle()), nil
}

// NativeTextureHandle implements Context.
func (c *HALContext) NativeTextureHandle(t *Texture) (NativeHandle, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	if err := checkOwned(c, t); err != nil {
		return 0, err
	}
	h := t.impl.(hal.Texture).NativeHandle()
	if h == 0 {
		return 0, fmt.Errorf("%w: texture %q", ErrNativeHandleUnavailable, t.desc.Label)
	}
	return NativeHandle(h), nil
}

// Close implements Context.
func (c *HALContext) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.pool.Close()
	if c.external {
		c.device = nil
		c.queue = nil
		return
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
	c.queue = nil
}
