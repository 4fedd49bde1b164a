// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sdk_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/upscale/sdk"
	"github.com/gogpu/upscale/sdk/sdktest"
)

func TestAcquireInitializesOnce(t *testing.T) {
	lib := sdktest.New("once")
	t.Cleanup(func() { sdk.Forget(lib) })

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if st, err := sdk.Acquire(lib, 1, 1); err != nil || !st.OK() {
				t.Errorf("Acquire = %v, %v", st, err)
			}
		}()
	}
	wg.Wait()

	if n := lib.Count(sdktest.CallInit); n != 1 {
		t.Errorf("init calls = %d, want 1", n)
	}
	if n := sdk.Refs(lib); n != 16 {
		t.Errorf("refs = %d, want 16", n)
	}
	for range 16 {
		sdk.Release(lib)
	}
	if n := lib.Count(sdktest.CallShutdown); n != 1 {
		t.Errorf("shutdown calls = %d, want 1", n)
	}
	sdk.Release(lib)
	if n := lib.Count(sdktest.CallShutdown); n != 1 {
		t.Errorf("extra release shut down again: %d", n)
	}
}

func TestAcquireRemembersFailure(t *testing.T) {
	lib := sdktest.New("failing")
	lib.InitStatus = sdk.StatusFeatureNotSupported
	t.Cleanup(func() { sdk.Forget(lib) })

	for range 3 {
		st, err := sdk.Acquire(lib, 1, 1)
		if err != nil || st != sdk.StatusFeatureNotSupported {
			t.Fatalf("Acquire = %v, %v", st, err)
		}
	}
	if n := lib.Count(sdktest.CallInit); n != 1 {
		t.Errorf("init calls = %d, want 1", n)
	}
	sdk.Release(lib)
	if n := lib.Count(sdktest.CallShutdown); n != 0 {
		t.Errorf("failed init must not shut down, got %d", n)
	}
}

func TestAcquireMissingSymbol(t *testing.T) {
	lib := sdktest.New("missing")
	lib.Missing[sdktest.CallInit] = true
	t.Cleanup(func() { sdk.Forget(lib) })

	_, err := sdk.Acquire(lib, 1, 1)
	if !errors.Is(err, sdk.ErrSymbolUnavailable) {
		t.Errorf("err = %v, want ErrSymbolUnavailable", err)
	}
}

func TestStubReportsNotSupported(t *testing.T) {
	lib := sdk.NewStub("vendor")
	if _, st, err := lib.CreateFeature(1, 0, 8, 8, 1); err != nil || st != sdk.StatusFeatureNotSupported {
		t.Errorf("CreateFeature = %v, %v", st, err)
	}
	if st, err := lib.Evaluate(1, sdk.EvalParams{}); err != nil || st != sdk.StatusFeatureNotSupported {
		t.Errorf("Evaluate = %v, %v", st, err)
	}
	if st, err := lib.DestroyFeature(1); err != nil || !st.OK() {
		t.Errorf("DestroyFeature = %v, %v", st, err)
	}
	if lib.Name() != "vendor (stub)" {
		t.Errorf("Name = %q", lib.Name())
	}
}

func TestOpenDynamicMissingLibrary(t *testing.T) {
	abi := sdk.ABI{Name: "nothing", Decode: func(int32) sdk.Status { return sdk.StatusFail }}
	_, err := sdk.OpenDynamic(abi, "/nonexistent/libnothing.so")
	if !errors.Is(err, sdk.ErrLibraryNotFound) {
		t.Errorf("err = %v, want ErrLibraryNotFound", err)
	}
}

func TestStatusString(t *testing.T) {
	if sdk.StatusOutOfMemory.String() != "OutOfMemory" {
		t.Error(sdk.StatusOutOfMemory.String())
	}
	if sdk.Status(99).String() != "Status(99)" {
		t.Error(sdk.Status(99).String())
	}
}

// taggedStub is a value-type library that cannot be a map key.
type taggedStub struct {
	sdk.Stub
	tags []string
}

// taggedFake wraps a Fake in a value holding a slice.
type taggedFake struct {
	*sdktest.Fake
	tags []string
}

func TestAcquireNonComparableLibrary(t *testing.T) {
	stub := taggedStub{Stub: sdk.NewStub("tagged"), tags: []string{"a"}}
	t.Cleanup(func() { sdk.Forget(stub) })

	st, err := sdk.Acquire(stub, 1, 1)
	if err != nil || st != sdk.StatusFeatureNotSupported {
		t.Fatalf("Acquire = %v, %v", st, err)
	}
	sdk.Release(stub)

	fake := sdktest.New("tagged-fake")
	lib := taggedFake{Fake: fake, tags: []string{"b"}}
	t.Cleanup(func() { sdk.Forget(lib) })

	for range 2 {
		if st, err := sdk.Acquire(lib, 1, 1); err != nil || !st.OK() {
			t.Fatalf("Acquire = %v, %v", st, err)
		}
	}
	if n := fake.Count(sdktest.CallInit); n != 1 {
		t.Errorf("init calls = %d, want 1", n)
	}
	if n := sdk.Refs(lib); n != 2 {
		t.Errorf("refs = %d, want 2", n)
	}
	sdk.Release(lib)
	sdk.Release(lib)
	if n := fake.Count(sdktest.CallShutdown); n != 1 {
		t.Errorf("shutdown calls = %d, want 1", n)
	}
}
