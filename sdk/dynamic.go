// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build (amd64 || arm64) && (windows || ((darwin || freebsd || linux) && !cgo))

package sdk

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// entry is one bound shim function and its prepared call interface.
type entry struct {
	fn  unsafe.Pointer
	cif types.CallInterface
}

var (
	tPtr = types.PointerTypeDescriptor
	tU32 = types.UInt32TypeDescriptor
	tI32 = types.SInt32TypeDescriptor
	tU64 = types.UInt64TypeDescriptor
	tF32 = types.FloatTypeDescriptor
)

// signatures lists the argument types of every shim entry point. All of
// them return an int32 status.
var signatures = map[string][]*types.TypeDescriptor{
	symInit:               {tU64, tPtr},
	symShutdown:           nil,
	symAllocateParameters: {tPtr},
	symDestroyParameters:  {tPtr},
	symCreateFeature:      {tU64, tI32, tU32, tU32, tPtr, tPtr},
	symSetOptions:         {tPtr, tU32, tF32},
	symEvaluate:           {tPtr, tPtr, tPtr, tPtr, tPtr, tF32, tF32, tU32, tU32},
	symDestroyFeature:     {tPtr},
}

// dynamicLibrary calls into a shim loaded at run time. Entry points that
// failed to resolve are absent and report ErrSymbolUnavailable.
type dynamicLibrary struct {
	abi  ABI
	path string

	// mu serializes calls into the shim; vendor SDKs are not reentrant.
	// It also guards the call interfaces, which goffi does not allow to be
	// shared between concurrent calls.
	mu      sync.Mutex
	entries map[string]*entry
}

// OpenDynamic loads the first library in paths (or abi.Candidates when
// paths is empty) that opens, and binds its entry points. Missing entry
// points do not fail the load; calling them does.
func OpenDynamic(abi ABI, paths ...string) (Library, error) {
	if len(paths) == 0 {
		paths = abi.Candidates
	}
	var (
		handle unsafe.Pointer
		used   string
		errs   []error
	)
	for _, p := range paths {
		h, err := ffi.LoadLibrary(p)
		if err != nil {
			logger().Debug("sdk: failed to load library", "library", abi.Name, "path", p, "err", err)
			errs = append(errs, err)
			continue
		}
		handle, used = h, p
		break
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: %s (tried %d paths): %v", ErrLibraryNotFound, abi.Name, len(paths), errs)
	}

	lib := &dynamicLibrary{abi: abi, path: used, entries: make(map[string]*entry, len(signatures))}
	for name, args := range signatures {
		sym, err := ffi.GetSymbol(handle, abi.Prefix+name)
		if err != nil || sym == nil {
			logger().Warn("sdk: symbol missing", "library", abi.Name, "symbol", abi.Prefix+name)
			continue
		}
		e := &entry{fn: sym}
		if err := ffi.PrepareCallInterface(&e.cif, types.DefaultCall, tI32, args); err != nil {
			logger().Warn("sdk: cannot describe symbol", "library", abi.Name, "symbol", abi.Prefix+name, "err", err)
			continue
		}
		lib.entries[name] = e
	}

	logger().Info("sdk: library loaded", "library", abi.Name, "path", used, "symbols", len(lib.entries))
	return lib, nil
}

func (l *dynamicLibrary) Name() string { return l.abi.Name }

func (l *dynamicLibrary) missing(name string) error {
	return fmt.Errorf("%w: %s%s in %s", ErrSymbolUnavailable, l.abi.Prefix, name, l.path)
}

// call invokes the entry point name. Each element of args points at a
// value of the type declared in signatures.
func (l *dynamicLibrary) call(name string, args ...unsafe.Pointer) (Status, error) {
	e, ok := l.entries[name]
	if !ok {
		return StatusFail, l.missing(name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var raw int32
	if err := ffi.CallFunction(&e.cif, e.fn, unsafe.Pointer(&raw), args); err != nil {
		return StatusFail, fmt.Errorf("%s%s: %w", l.abi.Prefix, name, err)
	}
	return l.abi.Decode(raw), nil
}

func (l *dynamicLibrary) Init(appID uint64, device uintptr) (Status, error) {
	return l.call(symInit, unsafe.Pointer(&appID), unsafe.Pointer(&device))
}

func (l *dynamicLibrary) Shutdown() (Status, error) {
	return l.call(symShutdown)
}

func (l *dynamicLibrary) AllocateParameters() (ParamsHandle, Status, error) {
	var out uintptr
	outPtr := uintptr(unsafe.Pointer(&out))
	st, err := l.call(symAllocateParameters, unsafe.Pointer(&outPtr))
	runtime.KeepAlive(&out)
	return ParamsHandle(out), st, err
}

func (l *dynamicLibrary) DestroyParameters(p ParamsHandle) (Status, error) {
	h := uintptr(p)
	return l.call(symDestroyParameters, unsafe.Pointer(&h))
}

func (l *dynamicLibrary) CreateFeature(appID uint64, mode int32, outW, outH int, device uintptr) (FeatureHandle, Status, error) {
	w, h := uint32(outW), uint32(outH) //nolint:gosec // validated positive dims
	var out uintptr
	outPtr := uintptr(unsafe.Pointer(&out))
	st, err := l.call(symCreateFeature,
		unsafe.Pointer(&appID), unsafe.Pointer(&mode), unsafe.Pointer(&w), unsafe.Pointer(&h),
		unsafe.Pointer(&device), unsafe.Pointer(&outPtr))
	runtime.KeepAlive(&out)
	return FeatureHandle(out), st, err
}

func (l *dynamicLibrary) SetOptions(f FeatureHandle, opts Options) (Status, error) {
	var flags uint32
	if l.abi.EncodeOptions != nil {
		flags = l.abi.EncodeOptions(opts)
	}
	h, sharpness := uintptr(f), opts.Sharpness
	return l.call(symSetOptions, unsafe.Pointer(&h), unsafe.Pointer(&flags), unsafe.Pointer(&sharpness))
}

func (l *dynamicLibrary) Evaluate(f FeatureHandle, p EvalParams) (Status, error) {
	h := uintptr(f)
	rw, rh := uint32(p.RenderWidth), uint32(p.RenderHeight) //nolint:gosec // validated positive dims
	return l.call(symEvaluate,
		unsafe.Pointer(&h), unsafe.Pointer(&p.Input), unsafe.Pointer(&p.Output),
		unsafe.Pointer(&p.MotionVectors), unsafe.Pointer(&p.Depth),
		unsafe.Pointer(&p.JitterX), unsafe.Pointer(&p.JitterY),
		unsafe.Pointer(&rw), unsafe.Pointer(&rh))
}

func (l *dynamicLibrary) DestroyFeature(f FeatureHandle) (Status, error) {
	h := uintptr(f)
	return l.call(symDestroyFeature, unsafe.Pointer(&h))
}
