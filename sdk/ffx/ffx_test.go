// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ffx

import (
	"testing"

	"github.com/gogpu/upscale/sdk"
)

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		raw  int32
		want sdk.Status
	}{
		{ErrorOK, sdk.StatusSuccess},
		{ErrorInvalidPointer, sdk.StatusFail},
		{ErrorInvalidArgument, sdk.StatusFail},
		{ErrorOutOfMemory, sdk.StatusOutOfMemory},
		{ErrorNotImplemented, sdk.StatusFeatureNotSupported},
		{ErrorNullDevice, sdk.StatusNotInitialized},
		{ErrorBackendAPI, sdk.StatusFail},
	}
	for _, tt := range tests {
		if got := DecodeStatus(tt.raw); got != tt.want {
			t.Errorf("DecodeStatus(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestEncodeOptions(t *testing.T) {
	if got := EncodeOptions(sdk.Options{}); got != 0 {
		t.Errorf("default flags = %#b", got)
	}
	got := EncodeOptions(sdk.Options{HDR: true, DepthInverted: true})
	if got != FlagHighDynamicRange|FlagDepthInverted {
		t.Errorf("flags = %#b", got)
	}
}

func TestSymbols(t *testing.T) {
	syms := ABI.Symbols()
	if len(syms) != 8 || syms[0] != "nuscale_ffx_init" || syms[7] != "nuscale_ffx_destroy_feature" {
		t.Errorf("symbols = %v", syms)
	}
}
