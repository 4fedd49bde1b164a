// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sdktest provides an in-process sdk.Library double that records
// every call, for testing session lifecycles without a vendor SDK.
package sdktest

import (
	"fmt"
	"sync"

	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

// Call names recorded by Fake.
const (
	CallInit               = "init"
	CallShutdown           = "shutdown"
	CallAllocateParameters = "allocate_parameters"
	CallDestroyParameters  = "destroy_parameters"
	CallCreateFeature      = "create_feature"
	CallSetOptions         = "set_options"
	CallEvaluate           = "evaluate"
	CallDestroyFeature     = "destroy_feature"
)

// Fake is a scriptable sdk.Library. Zero-valued statuses mean success.
type Fake struct {
	// Statuses returned by the corresponding calls.
	InitStatus       sdk.Status
	CreateStatus     sdk.Status
	SetOptionsStatus sdk.Status
	EvaluateStatus   sdk.Status
	DestroyStatus    sdk.Status

	// NullHandle makes a successful CreateFeature return a null handle.
	NullHandle bool

	// Missing lists call names whose symbol is unresolved.
	Missing map[string]bool

	// OnEvaluate, when set, replaces EvaluateStatus.
	OnEvaluate func(sdk.EvalParams) sdk.Status

	name string

	mu       sync.Mutex
	calls    []string
	next     sdk.FeatureHandle
	live     map[sdk.FeatureHandle]bool
	modes    []int32
	options  []sdk.Options
	evals    []sdk.EvalParams
	destroys []sdk.FeatureHandle
}

var _ sdk.Library = (*Fake)(nil)

// New returns a Fake reporting name.
func New(name string) *Fake {
	return &Fake{
		name:    name,
		Missing: make(map[string]bool),
		next:    0x100,
		live:    make(map[sdk.FeatureHandle]bool),
	}
}

func (f *Fake) record(call string) error {
	f.calls = append(f.calls, call)
	if f.Missing[call] {
		return fmt.Errorf("%w: %s", sdk.ErrSymbolUnavailable, call)
	}
	return nil
}

// Name implements sdk.Library.
func (f *Fake) Name() string { return f.name }

// Init implements sdk.Library.
func (f *Fake) Init(uint64, uintptr) (sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallInit); err != nil {
		return sdk.StatusFail, err
	}
	return f.InitStatus, nil
}

// Shutdown implements sdk.Library.
func (f *Fake) Shutdown() (sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallShutdown); err != nil {
		return sdk.StatusFail, err
	}
	return sdk.StatusSuccess, nil
}

// AllocateParameters implements sdk.Library.
func (f *Fake) AllocateParameters() (sdk.ParamsHandle, sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallAllocateParameters); err != nil {
		return 0, sdk.StatusFail, err
	}
	return 0x42, sdk.StatusSuccess, nil
}

// DestroyParameters implements sdk.Library.
func (f *Fake) DestroyParameters(sdk.ParamsHandle) (sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallDestroyParameters); err != nil {
		return sdk.StatusFail, err
	}
	return sdk.StatusSuccess, nil
}

// CreateFeature implements sdk.Library.
func (f *Fake) CreateFeature(_ uint64, mode int32, _, _ int, _ uintptr) (sdk.FeatureHandle, sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallCreateFeature); err != nil {
		return 0, sdk.StatusFail, err
	}
	f.modes = append(f.modes, mode)
	if !f.CreateStatus.OK() {
		return 0, f.CreateStatus, nil
	}
	if f.NullHandle {
		return 0, sdk.StatusSuccess, nil
	}
	h := f.next
	f.next += 0x10
	f.live[h] = true
	return h, sdk.StatusSuccess, nil
}

// SetOptions implements sdk.Library.
func (f *Fake) SetOptions(_ sdk.FeatureHandle, opts sdk.Options) (sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallSetOptions); err != nil {
		return sdk.StatusFail, err
	}
	f.options = append(f.options, opts)
	return f.SetOptionsStatus, nil
}

// Evaluate implements sdk.Library.
func (f *Fake) Evaluate(h sdk.FeatureHandle, p sdk.EvalParams) (sdk.Status, error) {
	f.mu.Lock()
	if err := f.record(CallEvaluate); err != nil {
		f.mu.Unlock()
		return sdk.StatusFail, err
	}
	f.evals = append(f.evals, p)
	if !f.live[h] {
		f.mu.Unlock()
		return sdk.StatusNotInitialized, nil
	}
	hook, st := f.OnEvaluate, f.EvaluateStatus
	f.mu.Unlock()
	if hook != nil {
		return hook(p), nil
	}
	return st, nil
}

// DestroyFeature implements sdk.Library.
func (f *Fake) DestroyFeature(h sdk.FeatureHandle) (sdk.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(CallDestroyFeature); err != nil {
		return sdk.StatusFail, err
	}
	f.destroys = append(f.destroys, h)
	delete(f.live, h)
	return f.DestroyStatus, nil
}

// Count returns how many times call was made.
func (f *Fake) Count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Calls returns the ordered call log.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Modes returns the native mode passed to each CreateFeature.
func (f *Fake) Modes() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32(nil), f.modes...)
}

// Options returns the options passed to each SetOptions.
func (f *Fake) Options() []sdk.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sdk.Options(nil), f.options...)
}

// Evaluations returns the parameters of each Evaluate.
func (f *Fake) Evaluations() []sdk.EvalParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sdk.EvalParams(nil), f.evals...)
}

// Destroyed returns the handles passed to DestroyFeature, in order.
func (f *Fake) Destroyed() []sdk.FeatureHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sdk.FeatureHandle(nil), f.destroys...)
}

// LiveFeatures returns the number of created, not yet destroyed features.
func (f *Fake) LiveFeatures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

// NearestScaler returns an OnEvaluate hook that performs nearest-neighbor
// scaling between the software textures named by the handles.
func NearestScaler(ctx *gpu.SoftwareContext) func(sdk.EvalParams) sdk.Status {
	return func(p sdk.EvalParams) sdk.Status {
		in, ok := ctx.TextureByHandle(gpu.NativeHandle(p.Input))
		if !ok {
			return sdk.StatusFail
		}
		out, ok := ctx.TextureByHandle(gpu.NativeHandle(p.Output))
		if !ok {
			return sdk.StatusFail
		}
		src, err := ctx.ReadTexture(in)
		if err != nil {
			return sdk.StatusFail
		}
		sw, sh := in.Width(), in.Height()
		dw, dh := out.Width(), out.Height()
		dst := make([]byte, dw*dh*4)
		for y := range dh {
			sy := y * sh / dh
			for x := range dw {
				sx := x * sw / dw
				copy(dst[(y*dw+x)*4:(y*dw+x)*4+4], src[(sy*sw+sx)*4:(sy*sw+sx)*4+4])
			}
		}
		if err := ctx.WriteTexture(out, dst); err != nil {
			return sdk.StatusFail
		}
		return sdk.StatusSuccess
	}
}
