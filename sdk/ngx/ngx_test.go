// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ngx

import (
	"testing"

	"github.com/gogpu/upscale/sdk"
)

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		raw  int32
		want sdk.Status
	}{
		{ResultSuccess, sdk.StatusSuccess},
		{ResultFail, sdk.StatusFail},
		{ResultFeatureNotSupported, sdk.StatusFeatureNotSupported},
		{ResultNotInitialized, sdk.StatusNotInitialized},
		{ResultUnsupportedFormat, sdk.StatusUnsupportedFormat},
		{ResultOutOfMemory, sdk.StatusOutOfMemory},
		{42, sdk.StatusFail},
	}
	for _, tt := range tests {
		if got := DecodeStatus(tt.raw); got != tt.want {
			t.Errorf("DecodeStatus(%#x) = %v, want %v", uint32(tt.raw), got, tt.want)
		}
	}
}

func TestRawCodesMatchVendorHeader(t *testing.T) {
	tests := []struct {
		raw  int32
		want uint32
	}{
		{ResultFeatureNotSupported, 0xBEEF0001},
		{ResultOutOfMemory, 0xBEEF0004},
	}
	for _, tt := range tests {
		// The header spells the codes as unsigned; the shim returns them
		// as int32.
		if got := uint32(tt.raw); got != tt.want {
			t.Errorf("code %d = %#x, want %#x", tt.raw, got, tt.want)
		}
	}
}

func TestEncodeOptions(t *testing.T) {
	got := EncodeOptions(sdk.Options{HDR: true, Sharpness: 0.5, AutoExposure: true})
	want := FlagMVLowRes | FlagIsHDR | FlagDoSharpening | FlagAutoExposure
	if got != want {
		t.Errorf("flags = %#b, want %#b", got, want)
	}
	if got := EncodeOptions(sdk.Options{}); got != FlagMVLowRes {
		t.Errorf("default flags = %#b", got)
	}
}

func TestOpenAlwaysReturnsLibrary(t *testing.T) {
	lib, err := Open("/nonexistent/libnuscale_ngx.so")
	if Linked {
		if err == nil {
			t.Error("expected load failure for missing path")
		}
		return
	}
	if err != nil || lib == nil {
		t.Fatalf("Open = %v, %v", lib, err)
	}
	_, st, err := lib.CreateFeature(1, ModeBalanced, 64, 64, 1)
	if err != nil || st != sdk.StatusFeatureNotSupported {
		t.Errorf("stub CreateFeature = %v, %v", st, err)
	}
}
