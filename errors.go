// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"errors"
	"fmt"

	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

// Precondition errors. These are reported before any GPU work is issued.
var (
	// ErrInvalidDimensions is returned for zero or negative sizes.
	ErrInvalidDimensions = errors.New("upscale: invalid dimensions")

	// ErrDimensionMismatch is returned when a buffer length does not match
	// its declared dimensions.
	ErrDimensionMismatch = errors.New("upscale: buffer length does not match dimensions")

	// ErrNotInitialized is returned by Upscale before a successful Initialize.
	ErrNotInitialized = errors.New("upscale: backend not initialized")

	// ErrUnsupportedQuality is returned when a backend has no mode for a tier.
	ErrUnsupportedQuality = errors.New("upscale: unsupported quality")

	// ErrUnknownBackend is returned for an unregistered backend kind.
	ErrUnknownBackend = errors.New("upscale: unknown backend")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("upscale: closed")
)

// Resource errors, shared with package gpu so that errors.Is matches either.
var (
	ErrDeviceLost              = gpu.ErrDeviceLost
	ErrNativeHandleUnavailable = gpu.ErrNativeHandleUnavailable
	ErrOutOfMemory             = gpu.ErrOutOfMemory
	ErrDeviceTimeout           = gpu.ErrDeviceTimeout
)

// Vendor errors.
var (
	// ErrBackendUnavailable is returned when a vendor SDK is missing, not
	// linked or does not support the device. It is permanent for the
	// lifetime of the process.
	ErrBackendUnavailable = errors.New("upscale: backend unavailable")

	// ErrEvaluationFailed is matched by every *EvaluationError from an
	// evaluate call. It is transient: the next frame may succeed.
	ErrEvaluationFailed = errors.New("upscale: evaluation failed")

	// ErrInvariantViolation is returned when an SDK breaks its contract,
	// for example by reporting success with a null handle.
	ErrInvariantViolation = errors.New("upscale: invariant violation")
)

// EvaluationError carries the status of a failed vendor SDK call.
type EvaluationError struct {
	Backend string
	Op      string
	Status  sdk.Status
}

// Error implements error.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("upscale: %s %s: %s", e.Backend, e.Op, e.Status)
}

// Is maps the status onto the package sentinels: out of memory matches
// ErrOutOfMemory, evaluate failures match ErrEvaluationFailed and setup
// failures match ErrBackendUnavailable.
func (e *EvaluationError) Is(target error) bool {
	switch target {
	case ErrOutOfMemory:
		return e.Status == sdk.StatusOutOfMemory
	case ErrEvaluationFailed:
		return e.Op == OpEvaluate && e.Status != sdk.StatusOutOfMemory
	case ErrBackendUnavailable:
		return e.Op != OpEvaluate && e.Status != sdk.StatusOutOfMemory
	}
	return false
}

// SDK operation names used in EvaluationError.Op.
const (
	OpInit          = "init"
	OpCreateFeature = "create feature"
	OpEvaluate      = "evaluate"
)

// IsPermanent reports whether err will recur on every retry with the same
// backend, so that switching backends is the only remedy.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrNativeHandleUnavailable) ||
		errors.Is(err, ErrUnsupportedQuality)
}
