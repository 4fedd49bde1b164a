// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// softwareHandleBase is the first pseudo handle issued by SoftwareContext.
const softwareHandleBase = 0x1000

// SoftwareOptions configures a SoftwareContext.
type SoftwareOptions struct {
	// Name overrides the reported adapter name.
	Name string

	// WaitTimeout bounds map waits. Zero means DefaultWaitTimeout.
	WaitTimeout time.Duration

	// Strategy selects the staging pool policy. Auto means Minimal.
	Strategy AllocationStrategy

	// MapLatency delays every map completion. Tests use it to exercise the
	// wait ceiling.
	MapLatency time.Duration

	// NoNativeHandles makes every handle query fail with
	// ErrNativeHandleUnavailable.
	NoNativeHandles bool
}

// hostTexture is the storage behind a software texture: height rows of
// the texture's aligned stride.
type hostTexture struct {
	mu     sync.RWMutex
	data   []byte
	handle NativeHandle
}

// SoftwareContext is a host-memory Context. Textures keep the same aligned
// row layout as hardware so the transfer protocol runs unchanged, and every
// texture gets a unique non-null pseudo handle.
type SoftwareContext struct {
	opts SoftwareOptions
	info AdapterInfo
	pool *StagingPool

	mu         sync.Mutex
	byHandle   map[NativeHandle]*Texture
	nextHandle NativeHandle
	live       int

	lost   atomic.Bool
	closed atomic.Bool
}

var _ Context = (*SoftwareContext)(nil)

// NewSoftwareContext creates a host-memory device.
func NewSoftwareContext(opts SoftwareOptions) *SoftwareContext {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.Name == "" {
		opts.Name = "software rasterizer"
	}
	info := AdapterInfo{Name: opts.Name, Vendor: VendorSoftware, Software: true, Backend: "software"}
	strategy := opts.Strategy
	if strategy == StrategyAuto {
		strategy = StrategyFor(info)
	}
	c := &SoftwareContext{
		opts:       opts,
		info:       info,
		byHandle:   make(map[NativeHandle]*Texture),
		nextHandle: softwareHandleBase,
	}
	c.pool = NewStagingPool(strategy, func(size uint64) (*Buffer, error) {
		buf, err := newHostBuffer(size, "software_staging")
		if err != nil {
			return nil, err
		}
		buf.lost = c.lost.Load
		buf.pollDelay = opts.MapLatency
		return buf, nil
	})
	return c
}

// Info implements Context.
func (c *SoftwareContext) Info() AdapterInfo { return c.info }

// Lost implements Context.
func (c *SoftwareContext) Lost() bool { return c.lost.Load() }

// Invalidate simulates device loss.
func (c *SoftwareContext) Invalidate() {
	if c.lost.CompareAndSwap(false, true) {
		slogger().Warn("gpu: device lost", "adapter", c.info.Name)
	}
}

// Pool returns the staging buffer pool.
func (c *SoftwareContext) Pool() *StagingPool { return c.pool }

// LiveTextures returns the number of textures not yet destroyed.
func (c *SoftwareContext) LiveTextures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// TextureByHandle resolves a pseudo handle issued by NativeTextureHandle.
// It lets in-process SDK doubles reach texture contents.
func (c *SoftwareContext) TextureByHandle(h NativeHandle) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byHandle[h]
	return t, ok
}

func (c *SoftwareContext) check() error {
	if c.lost.Load() {
		return ErrDeviceLost
	}
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// CreateTexture implements Context.
func (c *SoftwareContext) CreateTexture(desc TextureDesc) (*Texture, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := validateDesc(desc); err != nil {
		return nil, err
	}
	stride := AlignedStride(desc.Width, desc.Format.BytesPerPixel())

	c.mu.Lock()
	h := c.nextHandle
	c.nextHandle += 0x10
	t := &Texture{
		desc:   desc,
		stride: stride,
		owner:  c,
		impl:   &hostTexture{data: make([]byte, stride*desc.Height), handle: h},
	}
	c.byHandle[h] = t
	c.live++
	c.mu.Unlock()
	return t, nil
}

// DestroyTexture implements Context.
func (c *SoftwareContext) DestroyTexture(t *Texture) {
	if t == nil || t.owner != c || !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	ht := t.impl.(*hostTexture)
	c.mu.Lock()
	delete(c.byHandle, ht.handle)
	c.live--
	c.mu.Unlock()
}

// WriteTexture implements Context.
func (c *SoftwareContext) WriteTexture(t *Texture, data []byte) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkOwned(c, t); err != nil {
		return err
	}
	if len(data) != t.TightSize() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrDataSize, len(data), t.TightSize())
	}
	ht := t.impl.(*hostTexture)
	tight := TightStride(t.desc.Width, t.desc.Format.BytesPerPixel())
	ht.mu.Lock()
	copy(ht.data, PadRows(data, tight, t.stride, t.desc.Height))
	ht.mu.Unlock()
	return nil
}

// ReadTexture implements Context. The aligned storage is copied into a
// staging buffer and read back through the same map handshake as hardware.
func (c *SoftwareContext) ReadTexture(t *Texture) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := checkOwned(c, t); err != nil {
		return nil, err
	}
	if !t.desc.Usage.Contains(UsageCopySrc) {
		return nil, fmt.Errorf("%w: %q lacks CopySrc usage", ErrInvalidTexture, t.desc.Label)
	}
	size := uint64(t.stride) * uint64(t.desc.Height)
	staging, err := c.pool.Acquire(size)
	if err != nil {
		return nil, fmt.Errorf("acquire staging buffer: %w", err)
	}
	defer c.pool.Release(staging)

	ht := t.impl.(*hostTexture)
	ht.mu.RLock()
	copy(staging.hostBytes(), ht.data)
	ht.mu.RUnlock()

	return mapAndStrip(staging, t.desc.Width, t.desc.Height, t.desc.Format.BytesPerPixel(), t.stride, c.opts.WaitTimeout)
}

// NativeDeviceHandle implements Context.
func (c *SoftwareContext) NativeDeviceHandle() (NativeHandle, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	if c.opts.NoNativeHandles {
		return 0, fmt.Errorf("%w: device", ErrNativeHandleUnavailable)
	}
	return softwareHandleBase - 0x10, nil
}

// NativeTextureHandle implements Context.
func (c *SoftwareContext) NativeTextureHandle(t *Texture) (NativeHandle, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	if err := checkOwned(c, t); err != nil {
		return 0, err
	}
	if c.opts.NoNativeHandles {
		return 0, fmt.Errorf("%w: texture %q", ErrNativeHandleUnavailable, t.desc.Label)
	}
	return t.impl.(*hostTexture).handle, nil
}

// Close implements Context.
func (c *SoftwareContext) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.pool.Close()
}
