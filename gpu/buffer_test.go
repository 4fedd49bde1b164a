// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestBufferMapLifecycle(t *testing.T) {
	buf, err := newHostBuffer(16, "lifecycle")
	if err != nil {
		t.Fatalf("newHostBuffer: %v", err)
	}
	copy(buf.hostBytes(), []byte("0123456789abcdef"))

	var got []BufferMapAsyncStatus
	if err := buf.MapAsync(gputypes.MapModeRead, 0, 16, func(s BufferMapAsyncStatus) {
		got = append(got, s)
	}); err != nil {
		t.Fatalf("MapAsync: %v", err)
	}
	if buf.MapState() != BufferMapStatePending {
		t.Fatalf("state = %v, want Pending", buf.MapState())
	}
	if _, err := buf.GetMappedRange(0, 16); !errors.Is(err, ErrBufferMapPending) {
		t.Errorf("GetMappedRange while pending = %v", err)
	}

	buf.PollMapAsync()
	if len(got) != 1 || got[0] != BufferMapAsyncStatusSuccess {
		t.Fatalf("callback statuses = %v", got)
	}
	data, err := buf.GetMappedRange(4, 4)
	if err != nil {
		t.Fatalf("GetMappedRange: %v", err)
	}
	if string(data) != "4567" {
		t.Errorf("mapped = %q", data)
	}
	if err := buf.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if _, err := buf.GetMappedRange(0, 4); !errors.Is(err, ErrBufferNotMapped) {
		t.Errorf("GetMappedRange after Unmap = %v", err)
	}
	buf.Destroy()
	buf.Destroy()
	if !buf.IsDestroyed() {
		t.Error("expected destroyed")
	}
}

func TestBufferMapErrors(t *testing.T) {
	buf, _ := newHostBuffer(8, "errors")
	noop := func(BufferMapAsyncStatus) {}

	if err := buf.MapAsync(gputypes.MapModeRead, 0, 8, nil); !errors.Is(err, ErrCallbackNil) {
		t.Errorf("nil callback = %v", err)
	}
	if err := buf.MapAsync(gputypes.MapModeRead, 4, 8, noop); !errors.Is(err, ErrInvalidMapRange) {
		t.Errorf("out of range = %v", err)
	}
	if err := buf.MapAsync(gputypes.MapModeWrite, 0, 8, noop); !errors.Is(err, ErrMapUsageMismatch) {
		t.Errorf("write mode = %v", err)
	}
	if err := buf.MapAsync(gputypes.MapModeRead, 0, 8, noop); err != nil {
		t.Fatalf("MapAsync: %v", err)
	}
	if err := buf.MapAsync(gputypes.MapModeRead, 0, 8, noop); !errors.Is(err, ErrBufferAlreadyMapped) {
		t.Errorf("double map = %v", err)
	}
}

func TestBufferDestroyWhilePending(t *testing.T) {
	buf, _ := newHostBuffer(8, "pending")
	var status BufferMapAsyncStatus = -1
	_ = buf.MapAsync(gputypes.MapModeRead, 0, 8, func(s BufferMapAsyncStatus) { status = s })
	buf.Destroy()
	if status != BufferMapAsyncStatusDestroyedBeforeCallback {
		t.Errorf("status = %v, want DestroyedBeforeCallback", status)
	}
	if err := buf.MapAsync(gputypes.MapModeRead, 0, 8, func(BufferMapAsyncStatus) {}); !errors.Is(err, ErrBufferDestroyed) {
		t.Errorf("map after destroy = %v", err)
	}
}

func TestBufferDeviceLostDuringMap(t *testing.T) {
	buf, _ := newHostBuffer(8, "lost")
	buf.lost = func() bool { return true }
	var status BufferMapAsyncStatus
	_ = buf.MapAsync(gputypes.MapModeRead, 0, 8, func(s BufferMapAsyncStatus) { status = s })
	buf.PollMapAsync()
	if status != BufferMapAsyncStatusDeviceLost {
		t.Errorf("status = %v, want DeviceLost", status)
	}
	if buf.MapState() != BufferMapStateUnmapped {
		t.Errorf("state = %v, want Unmapped", buf.MapState())
	}
}

func TestBufferReleaseMappedRange(t *testing.T) {
	buf, _ := newHostBuffer(8, "release")
	defer buf.Destroy()

	if err := buf.ReleaseMappedRange(); !errors.Is(err, ErrBufferNotMapped) {
		t.Errorf("release while unmapped = %v", err)
	}
	if err := buf.MapAsync(gputypes.MapModeRead, 0, 8, func(BufferMapAsyncStatus) {}); err != nil {
		t.Fatal(err)
	}
	buf.PollMapAsync()
	if _, err := buf.GetMappedRange(0, 8); err != nil {
		t.Fatalf("GetMappedRange: %v", err)
	}
	if err := buf.ReleaseMappedRange(); err != nil {
		t.Fatalf("ReleaseMappedRange: %v", err)
	}
	if !buf.RangeReleased() || buf.MapState() != BufferMapStateMapped {
		t.Errorf("released = %v, state = %v", buf.RangeReleased(), buf.MapState())
	}
	if _, err := buf.GetMappedRange(0, 8); !errors.Is(err, ErrBufferNotMapped) {
		t.Errorf("GetMappedRange after release = %v", err)
	}
	if err := buf.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}

	// A new map starts with a live range again.
	if err := buf.MapAsync(gputypes.MapModeRead, 0, 8, func(BufferMapAsyncStatus) {}); err != nil {
		t.Fatal(err)
	}
	buf.PollMapAsync()
	if buf.RangeReleased() {
		t.Error("released flag survived a new map")
	}
	if _, err := buf.GetMappedRange(0, 8); err != nil {
		t.Errorf("GetMappedRange after remap: %v", err)
	}
	_ = buf.Unmap()
}
