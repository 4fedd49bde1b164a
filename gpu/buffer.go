// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer errors.
var (
	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrInvalidBufferSize is returned when buffer size is invalid.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrBufferAlreadyMapped is returned when mapping an already mapped buffer.
	ErrBufferAlreadyMapped = errors.New("gpu: buffer is already mapped or mapping is pending")

	// ErrBufferNotMapped is returned when reading an unmapped buffer.
	ErrBufferNotMapped = errors.New("gpu: buffer is not mapped")

	// ErrBufferMapPending is returned when reading a buffer whose map is in flight.
	ErrBufferMapPending = errors.New("gpu: buffer mapping is pending")

	// ErrInvalidMapRange is returned when the map range is out of bounds.
	ErrInvalidMapRange = errors.New("gpu: map range out of bounds")

	// ErrMapUsageMismatch is returned when the buffer lacks MapRead usage.
	ErrMapUsageMismatch = errors.New("gpu: map mode does not match buffer usage flags")

	// ErrCallbackNil is returned when MapAsync is called with nil callback.
	ErrCallbackNil = errors.New("gpu: map callback is nil")
)

// BufferMapState is the mapping state of a buffer.
type BufferMapState int

const (
	BufferMapStateUnmapped BufferMapState = iota
	BufferMapStatePending
	BufferMapStateMapped
)

// String returns the state name.
func (s BufferMapState) String() string {
	switch s {
	case BufferMapStateUnmapped:
		return "Unmapped"
	case BufferMapStatePending:
		return "Pending"
	case BufferMapStateMapped:
		return "Mapped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// BufferMapAsyncStatus is delivered to the MapAsync callback.
type BufferMapAsyncStatus int

const (
	BufferMapAsyncStatusSuccess BufferMapAsyncStatus = iota
	BufferMapAsyncStatusValidationError
	BufferMapAsyncStatusDeviceLost
	BufferMapAsyncStatusDestroyedBeforeCallback
	BufferMapAsyncStatusUnmappedBeforeCallback
	BufferMapAsyncStatusMappingAlreadyPending
)

// String returns the status name.
func (s BufferMapAsyncStatus) String() string {
	switch s {
	case BufferMapAsyncStatusSuccess:
		return "Success"
	case BufferMapAsyncStatusValidationError:
		return "ValidationError"
	case BufferMapAsyncStatusDeviceLost:
		return "DeviceLost"
	case BufferMapAsyncStatusDestroyedBeforeCallback:
		return "DestroyedBeforeCallback"
	case BufferMapAsyncStatusUnmappedBeforeCallback:
		return "UnmappedBeforeCallback"
	case BufferMapAsyncStatusMappingAlreadyPending:
		return "MappingAlreadyPending"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// mapSource fills a mapped range once the copy into the buffer has
// completed. The hardware source reads through the queue; the host source
// copies from memory.
type mapSource interface {
	readInto(offset uint64, dst []byte) error
}

type queueSource struct {
	queue  hal.Queue
	buffer hal.Buffer
}

func (s queueSource) readInto(offset uint64, dst []byte) error {
	return s.queue.ReadBuffer(s.buffer, offset, dst)
}

type hostSource struct {
	data []byte
}

func (s *hostSource) readInto(offset uint64, dst []byte) error {
	copy(dst, s.data[offset:])
	return nil
}

// Buffer is a readback staging buffer with wgpu-style asynchronous mapping.
//
// Lifecycle:
//  1. Copy GPU data into the buffer (encoder copy, or host copy).
//  2. MapAsync with a callback.
//  3. PollMapAsync, usually from a poller goroutine, completes the map and
//     invokes the callback.
//  4. GetMappedRange while mapped.
//  5. ReleaseMappedRange once the bytes are copied out.
//  6. Unmap before the buffer is reused or destroyed.
//
// Buffer is safe for concurrent use. The callback runs on the polling
// goroutine without the buffer lock held.
type Buffer struct {
	mu sync.RWMutex

	label string
	size  uint64
	usage gputypes.BufferUsage

	// halBuffer and device are nil for host buffers.
	halBuffer hal.Buffer
	device    hal.Device
	source    mapSource

	mapState    BufferMapState
	mapOffset   uint64
	mapSize     uint64
	mappedData  []byte
	released    bool
	mapCallback func(BufferMapAsyncStatus)

	lost      func() bool
	pollDelay time.Duration
	destroyed bool
}

// newHALStagingBuffer creates a MapRead|CopyDst buffer on device.
func newHALStagingBuffer(device hal.Device, queue hal.Queue, size uint64, label string) (*Buffer, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: size is 0", ErrInvalidBufferSize)
	}
	// Copies require 4-byte aligned sizes.
	const copyBufferAlignment uint64 = 4
	aligned := (size + copyBufferAlignment - 1) &^ (copyBufferAlignment - 1)
	usage := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

	hb, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  aligned,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: staging buffer %d bytes: %v", ErrOutOfMemory, aligned, err)
	}
	return &Buffer{
		label:     label,
		size:      aligned,
		usage:     usage,
		halBuffer: hb,
		device:    device,
		source:    queueSource{queue: queue, buffer: hb},
	}, nil
}

// newHostBuffer creates a staging buffer backed by host memory.
func newHostBuffer(size uint64, label string) (*Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: size is 0", ErrInvalidBufferSize)
	}
	return &Buffer{
		label:  label,
		size:   size,
		usage:  gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		source: &hostSource{data: make([]byte, size)},
	}, nil
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// MapState returns the current mapping state.
func (b *Buffer) MapState() BufferMapState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mapState
}

// IsDestroyed reports whether Destroy has been called.
func (b *Buffer) IsDestroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

// Raw returns the HAL buffer, or nil for host buffers and destroyed buffers.
func (b *Buffer) Raw() hal.Buffer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.destroyed {
		return nil
	}
	return b.halBuffer
}

// hostBytes returns the backing store of a host buffer for copies into it.
func (b *Buffer) hostBytes() []byte {
	if hs, ok := b.source.(*hostSource); ok {
		return hs.data
	}
	return nil
}

// MapAsync starts mapping [offset, offset+size) for reading. The callback
// fires exactly once, from PollMapAsync, Unmap or Destroy.
func (b *Buffer) MapAsync(mode gputypes.MapMode, offset, size uint64, callback func(BufferMapAsyncStatus)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return ErrBufferDestroyed
	}
	if b.mapState != BufferMapStateUnmapped {
		if callback != nil {
			callback(BufferMapAsyncStatusMappingAlreadyPending)
		}
		return ErrBufferAlreadyMapped
	}
	if callback == nil {
		return ErrCallbackNil
	}
	if mode != gputypes.MapModeRead || !b.usage.Contains(gputypes.BufferUsageMapRead) {
		callback(BufferMapAsyncStatusValidationError)
		return fmt.Errorf("%w: staging buffers map for reading only", ErrMapUsageMismatch)
	}
	if offset+size > b.size {
		callback(BufferMapAsyncStatusValidationError)
		return fmt.Errorf("%w: offset %d + size %d > buffer size %d", ErrInvalidMapRange, offset, size, b.size)
	}

	b.mapState = BufferMapStatePending
	b.released = false
	b.mapOffset = offset
	b.mapSize = size
	b.mapCallback = callback
	return nil
}

// PollMapAsync completes a pending map: it reads the range from the source
// and invokes the callback. Returns true when no map is pending afterwards.
func (b *Buffer) PollMapAsync() bool {
	if b.pollDelay > 0 {
		time.Sleep(b.pollDelay)
	}
	b.mu.Lock()
	if b.mapState != BufferMapStatePending {
		b.mu.Unlock()
		return true
	}
	callback := b.mapCallback
	b.mapCallback = nil

	if b.lost != nil && b.lost() {
		b.mapState = BufferMapStateUnmapped
		b.mu.Unlock()
		callback(BufferMapAsyncStatusDeviceLost)
		return true
	}

	data := make([]byte, b.mapSize)
	status := BufferMapAsyncStatusSuccess
	if err := b.source.readInto(b.mapOffset, data); err != nil {
		slogger().Warn("gpu: staging readback failed", "buffer", b.label, "err", err)
		b.mapState = BufferMapStateUnmapped
		status = BufferMapAsyncStatusDeviceLost
	} else {
		b.mappedData = data
		b.mapState = BufferMapStateMapped
	}
	b.mu.Unlock()

	callback(status)
	return true
}

// GetMappedRange returns the mapped bytes for [offset, offset+size).
// The slice is invalid after Unmap.
func (b *Buffer) GetMappedRange(offset, size uint64) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrBufferDestroyed
	}
	switch b.mapState {
	case BufferMapStatePending:
		return nil, ErrBufferMapPending
	case BufferMapStateUnmapped:
		return nil, ErrBufferNotMapped
	}
	if b.released {
		return nil, fmt.Errorf("%w: mapped range released", ErrBufferNotMapped)
	}
	if offset < b.mapOffset || offset+size > b.mapOffset+b.mapSize {
		return nil, fmt.Errorf("%w: [%d,%d) outside mapped [%d,%d)",
			ErrInvalidMapRange, offset, offset+size, b.mapOffset, b.mapOffset+b.mapSize)
	}
	rel := offset - b.mapOffset
	return b.mappedData[rel : rel+size], nil
}

// ReleaseMappedRange drops the buffer's reference to the mapped bytes.
// Slices returned by GetMappedRange must not be used afterwards. The
// buffer stays mapped until Unmap.
func (b *Buffer) ReleaseMappedRange() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if b.mapState != BufferMapStateMapped {
		return ErrBufferNotMapped
	}
	b.mappedData = nil
	b.released = true
	return nil
}

// RangeReleased reports whether ReleaseMappedRange ran since the last map.
func (b *Buffer) RangeReleased() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.released
}

// Unmap releases the mapped range. A pending map is cancelled.
func (b *Buffer) Unmap() error {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return ErrBufferDestroyed
	}
	callback := b.mapCallback
	pending := b.mapState == BufferMapStatePending
	b.mapState = BufferMapStateUnmapped
	b.mappedData = nil
	b.mapCallback = nil
	b.mu.Unlock()

	if pending && callback != nil {
		callback(BufferMapAsyncStatusUnmappedBeforeCallback)
	}
	return nil
}

// Destroy releases the buffer. Idempotent.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	callback := b.mapCallback
	pending := b.mapState == BufferMapStatePending
	device, hb := b.device, b.halBuffer
	b.halBuffer = nil
	b.mappedData = nil
	b.mapCallback = nil
	b.mapState = BufferMapStateUnmapped
	b.mu.Unlock()

	if pending && callback != nil {
		callback(BufferMapAsyncStatusDestroyedBeforeCallback)
	}
	if device != nil && hb != nil {
		device.DestroyBuffer(hb)
	}
}
