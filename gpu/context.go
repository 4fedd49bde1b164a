// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"sync"
)

// Context is the GPU resource context: one device and queue, created once
// and shared by every backend session for the engine's lifetime.
//
// Every method fails with ErrDeviceLost once the device is invalidated.
// Implementations are safe for concurrent use.
type Context interface {
	// CreateTexture allocates a texture with exactly the requested usage.
	CreateTexture(desc TextureDesc) (*Texture, error)

	// DestroyTexture releases a texture. Destroying twice is a no-op.
	DestroyTexture(t *Texture)

	// WriteTexture uploads tightly packed rows into t.
	WriteTexture(t *Texture, data []byte) error

	// ReadTexture downloads t and returns tightly packed rows.
	ReadTexture(t *Texture) ([]byte, error)

	// NativeDeviceHandle exposes the graphics-API device object.
	NativeDeviceHandle() (NativeHandle, error)

	// NativeTextureHandle exposes the graphics-API object for t.
	// A null handle is reported as ErrNativeHandleUnavailable.
	NativeTextureHandle(t *Texture) (NativeHandle, error)

	// Info describes the adapter behind the context.
	Info() AdapterInfo

	// Lost reports whether the device has been invalidated.
	Lost() bool

	// Close destroys the device. Owned textures become invalid.
	Close()
}

// Shared is a reference-counted Context. The wrapped context is closed when
// the last reference is released.
type Shared struct {
	Context

	mu   sync.Mutex
	refs int
}

// NewShared wraps ctx with a reference count of one.
func NewShared(ctx Context) *Shared {
	return &Shared{Context: ctx, refs: 1}
}

// Retain adds a reference and returns s for chaining.
func (s *Shared) Retain() *Shared {
	s.mu.Lock()
	s.refs++
	s.mu.Unlock()
	return s
}

// Release drops a reference. The last release closes the context.
// Extra releases are ignored.
func (s *Shared) Release() {
	s.mu.Lock()
	if s.refs == 0 {
		s.mu.Unlock()
		return
	}
	s.refs--
	last := s.refs == 0
	s.mu.Unlock()
	if last {
		slogger().Debug("gpu: last context reference released")
		s.Context.Close()
	}
}

// Refs returns the current reference count.
func (s *Shared) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Close is equivalent to Release so that a Shared can be handed to code
// expecting a plain Context.
func (s *Shared) Close() { s.Release() }

// Borrow takes a reference on ctx when it is a Shared and returns the
// matching release. For any other Context the release is a no-op: the
// caller does not own it.
func Borrow(ctx Context) (release func()) {
	if s, ok := ctx.(*Shared); ok {
		s.Retain()
		var once sync.Once
		return func() { once.Do(s.Release) }
	}
	return func() {}
}

// Unwrap returns the context behind a Shared, or ctx itself.
func Unwrap(ctx Context) Context {
	if s, ok := ctx.(*Shared); ok {
		return s.Context
	}
	return ctx
}
