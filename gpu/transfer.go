// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
)

// CopyPitchAlignment is the row pitch alignment required for
// texture/buffer copies.
const CopyPitchAlignment = 256

// TightStride returns width*bytesPerPixel.
func TightStride(width, bytesPerPixel int) int {
	return width * bytesPerPixel
}

// AlignedStride rounds the tight stride up to CopyPitchAlignment.
func AlignedStride(width, bytesPerPixel int) int {
	tight := TightStride(width, bytesPerPixel)
	return (tight + CopyPitchAlignment - 1) &^ (CopyPitchAlignment - 1)
}

// PadRows copies height rows of tightStride bytes from src into a new
// buffer whose rows are alignedStride bytes apart.
func PadRows(src []byte, tightStride, alignedStride, height int) []byte {
	if tightStride == alignedStride {
		out := make([]byte, tightStride*height)
		copy(out, src)
		return out
	}
	out := make([]byte, alignedStride*height)
	for row := range height {
		copy(out[row*alignedStride:row*alignedStride+tightStride], src[row*tightStride:(row+1)*tightStride])
	}
	return out
}

// StripRows copies the tight prefix of each aligned row of src into dst.
// dst must hold tightStride*height bytes.
func StripRows(dst, src []byte, tightStride, alignedStride, height int) {
	if tightStride == alignedStride {
		copy(dst, src[:tightStride*height])
		return
	}
	for row := range height {
		srcOff := row * alignedStride
		copy(dst[row*tightStride:(row+1)*tightStride], src[srcOff:srcOff+tightStride])
	}
}

// mapAndStrip maps buf, waits for the callback with a ceiling, copies the
// tight rows out, releases the mapped range and unmaps. The buffer is
// always unmapped on return.
func mapAndStrip(buf *Buffer, width, height, bytesPerPixel, stride int, timeout time.Duration) ([]byte, error) {
	size := uint64(stride) * uint64(height)
	done := make(chan BufferMapAsyncStatus, 1)
	if err := buf.MapAsync(gputypes.MapModeRead, 0, size, func(s BufferMapAsyncStatus) {
		done <- s
	}); err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}

	// Device poll runs off the caller's goroutine so the wait below can
	// enforce the ceiling.
	go buf.PollMapAsync()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var status BufferMapAsyncStatus
	select {
	case status = <-done:
	case <-timer.C:
		_ = buf.Unmap()
		return nil, fmt.Errorf("%w: map after %v", ErrDeviceTimeout, timeout)
	}
	switch status {
	case BufferMapAsyncStatusSuccess:
	case BufferMapAsyncStatusDeviceLost:
		_ = buf.Unmap()
		return nil, ErrDeviceLost
	default:
		_ = buf.Unmap()
		return nil, fmt.Errorf("gpu: map staging buffer: %s", status)
	}

	mapped, err := buf.GetMappedRange(0, size)
	if err != nil {
		_ = buf.Unmap()
		return nil, fmt.Errorf("get mapped range: %w", err)
	}
	tight := TightStride(width, bytesPerPixel)
	out := make([]byte, tight*height)
	StripRows(out, mapped, tight, stride, height)

	if err := buf.ReleaseMappedRange(); err != nil {
		_ = buf.Unmap()
		return nil, fmt.Errorf("release mapped range: %w", err)
	}
	if err := buf.Unmap(); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	slogger().Debug("gpu: readback complete",
		"width", width, "height", height, "stride", stride, "tight", tight)
	return out, nil
}
