// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

func TestEvaluationErrorIs(t *testing.T) {
	tests := []struct {
		name        string
		err         *EvaluationError
		evaluation  bool
		unavailable bool
		oom         bool
	}{
		{"evaluate fail", &EvaluationError{"ngx", OpEvaluate, sdk.StatusFail}, true, false, false},
		{"evaluate oom", &EvaluationError{"ngx", OpEvaluate, sdk.StatusOutOfMemory}, false, false, true},
		{"init unsupported", &EvaluationError{"ffx", OpInit, sdk.StatusFeatureNotSupported}, false, true, false},
		{"create format", &EvaluationError{"ffx", OpCreateFeature, sdk.StatusUnsupportedFormat}, false, true, false},
		{"create oom", &EvaluationError{"ffx", OpCreateFeature, sdk.StatusOutOfMemory}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", tt.err)
			if got := errors.Is(err, ErrEvaluationFailed); got != tt.evaluation {
				t.Errorf("Is(ErrEvaluationFailed) = %v", got)
			}
			if got := errors.Is(err, ErrBackendUnavailable); got != tt.unavailable {
				t.Errorf("Is(ErrBackendUnavailable) = %v", got)
			}
			if got := errors.Is(err, ErrOutOfMemory); got != tt.oom {
				t.Errorf("Is(ErrOutOfMemory) = %v", got)
			}
			var ee *EvaluationError
			if !errors.As(err, &ee) || ee.Status != tt.err.Status {
				t.Errorf("As() lost the status")
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrBackendUnavailable, true},
		{fmt.Errorf("x: %w", gpu.ErrNativeHandleUnavailable), true},
		{ErrUnsupportedQuality, true},
		{&EvaluationError{"ngx", OpInit, sdk.StatusFeatureNotSupported}, true},
		{&EvaluationError{"ngx", OpEvaluate, sdk.StatusFail}, false},
		{ErrDeviceLost, false},
		{ErrDeviceTimeout, false},
		{ErrDimensionMismatch, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsPermanent(tt.err); got != tt.want {
			t.Errorf("IsPermanent(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestResourceErrorsAliasGPU(t *testing.T) {
	if !errors.Is(fmt.Errorf("read: %w", gpu.ErrDeviceLost), ErrDeviceLost) {
		t.Error("gpu.ErrDeviceLost does not match ErrDeviceLost")
	}
}
