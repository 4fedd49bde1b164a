// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/upscale/gpu"
)

// Factory creates a backend bound to ctx.
type Factory func(ctx gpu.Context, opts BackendOptions) (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	factories  = make(map[Kind]Factory)
)

// Register registers a backend factory for kind.
// This is typically called from init() functions in backend packages.
// If a factory for kind is already registered, it is replaced.
func Register(kind Kind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[kind] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(kind Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, kind)
}

// Available returns the registered kinds in a stable order.
func Available() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]Kind, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// IsRegistered reports whether a factory for kind is registered.
func IsRegistered(kind Kind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[kind]
	return ok
}

// NewBackend creates an uninitialized backend of kind at quality q.
func NewBackend(kind Kind, ctx gpu.Context, q Quality) (Backend, error) {
	return NewBackendWithOptions(kind, ctx, BackendOptions{Quality: q})
}

// NewBackendWithOptions creates an uninitialized backend of kind.
func NewBackendWithOptions(kind Kind, ctx gpu.Context, opts BackendOptions) (Backend, error) {
	if ctx == nil {
		return nil, fmt.Errorf("upscale: %s backend: nil gpu context", kind)
	}
	if !opts.Quality.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedQuality, opts.Quality)
	}
	registryMu.RLock()
	factory, ok := factories[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (is the backend package imported?)", ErrUnknownBackend, kind)
	}
	return factory(ctx, opts)
}
