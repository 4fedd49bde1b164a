// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sdk defines the foreign-function surface of vendor
// super-resolution SDKs and the process-wide runtime that initializes them.
//
// A Library is either a dynamic shim loaded at run time (see OpenDynamic)
// or a Stub that reports FeatureNotSupported for every call. The vendor
// packages sdk/ngx and sdk/ffx pick one with a build tag; callers never
// know which is linked.
package sdk

import (
	"errors"
	"fmt"
)

// ErrSymbolUnavailable is returned when an entry point could not be
// resolved in the loaded library.
var ErrSymbolUnavailable = errors.New("sdk: symbol unavailable")

// ErrLibraryNotFound is returned when no candidate library path loads.
var ErrLibraryNotFound = errors.New("sdk: library not found")

// Status is the vendor-neutral result of an SDK call. Each vendor maps its
// raw codes onto this set.
type Status int

const (
	StatusSuccess Status = iota
	StatusFail
	StatusFeatureNotSupported
	StatusNotInitialized
	StatusUnsupportedFormat
	StatusOutOfMemory
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFail:
		return "Fail"
	case StatusFeatureNotSupported:
		return "FeatureNotSupported"
	case StatusNotInitialized:
		return "NotInitialized"
	case StatusUnsupportedFormat:
		return "UnsupportedFormat"
	case StatusOutOfMemory:
		return "OutOfMemory"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// OK reports whether s is StatusSuccess.
func (s Status) OK() bool { return s == StatusSuccess }

// FeatureHandle identifies a created upscaling feature. Zero is null.
type FeatureHandle uintptr

// ParamsHandle identifies an SDK parameter block. Zero is null.
type ParamsHandle uintptr

// Options are applied to a feature after creation.
type Options struct {
	HDR          bool
	AutoExposure bool
	// Sharpness in [0,1]. Zero disables sharpening.
	Sharpness float32
	// DepthInverted marks a reversed-Z depth buffer.
	DepthInverted bool
	// JitteredMotionVectors marks motion vectors that include camera jitter.
	JitteredMotionVectors bool
}

// EvalParams are the per-frame inputs to Evaluate. Handles are native
// graphics-API texture handles; zero means absent.
type EvalParams struct {
	Input         uintptr
	Output        uintptr
	MotionVectors uintptr
	Depth         uintptr
	JitterX       float32
	JitterY       float32
	RenderWidth   int
	RenderHeight  int
}

// Library is the ABI surface of a vendor SDK. Every method returns a
// non-nil error only when the entry point could not be resolved; SDK
// failures are reported through Status.
type Library interface {
	// Name identifies the vendor library in logs.
	Name() string

	Init(appID uint64, device uintptr) (Status, error)
	Shutdown() (Status, error)
	AllocateParameters() (ParamsHandle, Status, error)
	DestroyParameters(p ParamsHandle) (Status, error)
	CreateFeature(appID uint64, mode int32, outW, outH int, device uintptr) (FeatureHandle, Status, error)
	SetOptions(f FeatureHandle, opts Options) (Status, error)
	Evaluate(f FeatureHandle, params EvalParams) (Status, error)
	DestroyFeature(f FeatureHandle) (Status, error)
}
