// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sdk

// Stub is a Library linked when the vendor SDK is not built in. Every
// entry point resolves and reports StatusFeatureNotSupported, except
// Shutdown and the destroy calls which succeed so teardown stays quiet.
type Stub struct {
	name string
}

var _ Library = Stub{}

// NewStub returns a stub library reporting the given name.
func NewStub(name string) Stub { return Stub{name: name} }

func (s Stub) Name() string { return s.name + " (stub)" }

func (Stub) Init(uint64, uintptr) (Status, error) { return StatusFeatureNotSupported, nil }
func (Stub) Shutdown() (Status, error)            { return StatusSuccess, nil }

func (Stub) AllocateParameters() (ParamsHandle, Status, error) {
	return 0, StatusFeatureNotSupported, nil
}

func (Stub) DestroyParameters(ParamsHandle) (Status, error) { return StatusSuccess, nil }

func (Stub) CreateFeature(uint64, int32, int, int, uintptr) (FeatureHandle, Status, error) {
	return 0, StatusFeatureNotSupported, nil
}

func (Stub) SetOptions(FeatureHandle, Options) (Status, error) {
	return StatusFeatureNotSupported, nil
}

func (Stub) Evaluate(FeatureHandle, EvalParams) (Status, error) {
	return StatusFeatureNotSupported, nil
}

func (Stub) DestroyFeature(FeatureHandle) (Status, error) { return StatusSuccess, nil }
