// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ngx binds the DLSS-class vendor SDK (VendorA). Build with the
// ngx tag to load the shim library at run time; without it every call
// reports FeatureNotSupported.
package ngx

import (
	"github.com/gogpu/upscale/sdk"
)

// Raw status codes returned by the NGX shim.
const (
	ResultSuccess             int32 = 0x1
	ResultFail                int32 = 0x0
	ResultFeatureNotSupported int32 = -0x4110ffff // 0xBEEF0001
	ResultNotInitialized      int32 = -0x4110fffe // 0xBEEF0002
	ResultUnsupportedFormat   int32 = -0x4110fffd // 0xBEEF0003
	ResultOutOfMemory         int32 = -0x4110fffc // 0xBEEF0004
)

// Performance/quality modes understood by the feature.
const (
	ModeMaxPerformance   int32 = 0
	ModeBalanced         int32 = 1
	ModeMaxQuality       int32 = 2
	ModeUltraPerformance int32 = 3
	ModeUltraQuality     int32 = 4
	ModeDLAA             int32 = 5
)

// Feature creation flags.
const (
	FlagIsHDR         uint32 = 1 << 0
	FlagMVLowRes      uint32 = 1 << 1
	FlagDepthInverted uint32 = 1 << 2
	FlagDoSharpening  uint32 = 1 << 3
	FlagAutoExposure  uint32 = 1 << 4
	FlagMVJittered    uint32 = 1 << 5
)

// DecodeStatus maps a raw NGX result onto sdk.Status. Unknown failures
// become StatusFail.
func DecodeStatus(raw int32) sdk.Status {
	switch raw {
	case ResultSuccess:
		return sdk.StatusSuccess
	case ResultFeatureNotSupported:
		return sdk.StatusFeatureNotSupported
	case ResultNotInitialized:
		return sdk.StatusNotInitialized
	case ResultUnsupportedFormat:
		return sdk.StatusUnsupportedFormat
	case ResultOutOfMemory:
		return sdk.StatusOutOfMemory
	default:
		return sdk.StatusFail
	}
}

// EncodeOptions packs options into the NGX flag word. Motion vectors are
// always render resolution.
func EncodeOptions(o sdk.Options) uint32 {
	flags := FlagMVLowRes
	if o.HDR {
		flags |= FlagIsHDR
	}
	if o.DepthInverted {
		flags |= FlagDepthInverted
	}
	if o.Sharpness > 0 {
		flags |= FlagDoSharpening
	}
	if o.AutoExposure {
		flags |= FlagAutoExposure
	}
	if o.JitteredMotionVectors {
		flags |= FlagMVJittered
	}
	return flags
}

// ABI describes the NGX shim for sdk.OpenDynamic.
var ABI = sdk.ABI{
	Name:          "ngx",
	Candidates:    []string{"libnuscale_ngx.so", "libnuscale_ngx.dylib", "nuscale_ngx.dll"},
	Prefix:        "nuscale_ngx_",
	Decode:        DecodeStatus,
	EncodeOptions: EncodeOptions,
}
