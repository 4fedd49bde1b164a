// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "errors"

// Device errors.
var (
	// ErrDeviceLost is returned by every operation once the device has been
	// invalidated. The context is not recreated.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrNativeHandleUnavailable is returned when the underlying graphics API
	// object cannot be exposed as a raw handle.
	ErrNativeHandleUnavailable = errors.New("gpu: native handle unavailable")

	// ErrDeviceTimeout is returned when a fence or map wait exceeds the
	// configured ceiling.
	ErrDeviceTimeout = errors.New("gpu: device wait timed out")

	// ErrOutOfMemory is returned when a texture or buffer allocation fails.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrNilHALDevice is returned when a HAL device is required but absent.
	ErrNilHALDevice = errors.New("gpu: hal device is nil")

	// ErrNoAdapter is returned when enumeration finds no usable adapter.
	ErrNoAdapter = errors.New("gpu: no adapter found")

	// ErrInvalidTexture is returned for nil, destroyed or foreign textures.
	ErrInvalidTexture = errors.New("gpu: invalid texture")

	// ErrInvalidTextureSize is returned for zero or negative dimensions.
	ErrInvalidTextureSize = errors.New("gpu: invalid texture size")

	// ErrDataSize is returned when upload data does not match the texture.
	ErrDataSize = errors.New("gpu: data size does not match texture")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("gpu: context closed")
)
