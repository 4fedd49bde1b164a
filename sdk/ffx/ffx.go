// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ffx binds the FSR-class vendor SDK (VendorB). Build with the ffx
// tag to load the shim library at run time; without it every call reports
// FeatureNotSupported.
package ffx

import "github.com/gogpu/upscale/sdk"

// Raw error codes returned by the FFX shim.
const (
	ErrorOK              int32 = 0
	ErrorInvalidPointer  int32 = 1
	ErrorInvalidArgument int32 = 2
	ErrorOutOfMemory     int32 = 3
	ErrorNotImplemented  int32 = 4
	ErrorNullDevice      int32 = 5
	ErrorBackendAPI      int32 = 6
)

// Quality modes. FSR has no native-resolution mode.
const (
	ModePerformance      int32 = 0
	ModeBalanced         int32 = 1
	ModeQuality          int32 = 2
	ModeUltraPerformance int32 = 3
	ModeUltraQuality     int32 = 4
)

// Context creation flags.
const (
	FlagHighDynamicRange uint32 = 1 << 0
	FlagAutoExposure     uint32 = 1 << 1
	FlagDepthInverted    uint32 = 1 << 2
	FlagJitteredMV       uint32 = 1 << 3
	FlagSharpen          uint32 = 1 << 4
)

// DecodeStatus maps a raw FFX error code onto sdk.Status.
func DecodeStatus(raw int32) sdk.Status {
	switch raw {
	case ErrorOK:
		return sdk.StatusSuccess
	case ErrorOutOfMemory:
		return sdk.StatusOutOfMemory
	case ErrorNotImplemented:
		return sdk.StatusFeatureNotSupported
	case ErrorNullDevice:
		return sdk.StatusNotInitialized
	default:
		return sdk.StatusFail
	}
}

// EncodeOptions packs options into the FFX flag word.
func EncodeOptions(o sdk.Options) uint32 {
	var flags uint32
	if o.HDR {
		flags |= FlagHighDynamicRange
	}
	if o.AutoExposure {
		flags |= FlagAutoExposure
	}
	if o.DepthInverted {
		flags |= FlagDepthInverted
	}
	if o.JitteredMotionVectors {
		flags |= FlagJitteredMV
	}
	if o.Sharpness > 0 {
		flags |= FlagSharpen
	}
	return flags
}

// ABI describes the FFX shim for sdk.OpenDynamic.
var ABI = sdk.ABI{
	Name:          "ffx",
	Candidates:    []string{"libnuscale_ffx.so", "libnuscale_ffx.dylib", "nuscale_ffx.dll"},
	Prefix:        "nuscale_ffx_",
	Decode:        DecodeStatus,
	EncodeOptions: EncodeOptions,
}
