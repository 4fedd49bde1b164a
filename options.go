// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"time"

	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

// Option configures a Pipeline during creation.
// Use functional options to customize Pipeline behavior.
//
// Example:
//
//	// Default: own GPU context, fallback to the compute shader enabled
//	p, err := upscale.New(upscale.Config{Quality: upscale.QualityQuality, OutputWidth: 1920, OutputHeight: 1080})
//
//	// Share the host application's device
//	p, err := upscale.New(cfg, upscale.WithContext(ctx), upscale.WithFallback(false))
type Option func(*options)

// options holds optional configuration for Pipeline creation.
type options struct {
	ctx           gpu.Context
	fallback      bool
	multipliers   MultiplierTable
	waitTimeout   time.Duration
	appID         uint64
	sdkOptions    sdk.Options
	libraries     map[Kind]sdk.Library
	libraryPaths  map[Kind]string
	workers       int
	forceSoftware bool
	strategy      gpu.AllocationStrategy
}

// defaultOptions returns the default pipeline options.
func defaultOptions() options {
	return options{
		fallback:     true,
		multipliers:  DefaultMultipliers,
		waitTimeout:  gpu.DefaultWaitTimeout,
		libraries:    make(map[Kind]sdk.Library),
		libraryPaths: make(map[Kind]string),
	}
}

// backendOptions returns the construction options for a backend of kind.
func (o *options) backendOptions(kind Kind, q Quality, f gpu.Format) BackendOptions {
	return BackendOptions{
		Quality:       q,
		Format:        f,
		ApplicationID: o.appID,
		SDKOptions:    o.sdkOptions,
		Library:       o.libraries[kind],
		LibraryPath:   o.libraryPaths[kind],
		Workers:       o.workers,
	}
}

// WithContext makes the pipeline use ctx instead of opening its own device.
// The pipeline does not close ctx unless it is a *gpu.Shared, in which case
// it holds one reference for its lifetime.
func WithContext(ctx gpu.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithFallback enables or disables switching to the compute-shader backend
// when a vendor backend fails permanently. Enabled by default.
func WithFallback(enabled bool) Option {
	return func(o *options) {
		o.fallback = enabled
	}
}

// WithMultipliers replaces the render-resolution ratios. New validates the
// table.
func WithMultipliers(m MultiplierTable) Option {
	return func(o *options) {
		o.multipliers = m
	}
}

// WithWaitTimeout sets the ceiling for a single device wait when the
// pipeline opens its own context.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

// WithApplicationID sets the application identifier passed to vendor SDKs.
func WithApplicationID(id uint64) Option {
	return func(o *options) {
		o.appID = id
	}
}

// WithSDKOptions sets the feature options applied by vendor backends.
func WithSDKOptions(opts sdk.Options) Option {
	return func(o *options) {
		o.sdkOptions = opts
	}
}

// WithLibrary injects the vendor library used for kind.
//
// Example:
//
//	lib, _ := ngx.Open("/opt/sdk/libnuscale_ngx.so")
//	p, err := upscale.New(cfg, upscale.WithLibrary(upscale.KindVendorA, lib))
func WithLibrary(kind Kind, lib sdk.Library) Option {
	return func(o *options) {
		o.libraries[kind] = lib
	}
}

// WithLibraryPath sets the shared library path searched for kind.
func WithLibraryPath(kind Kind, path string) Option {
	return func(o *options) {
		o.libraryPaths[kind] = path
	}
}

// WithWorkers bounds the CPU parallelism of the compute backend when it
// runs without a hardware device.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithForceSoftware makes the pipeline open a software device even when a
// hardware adapter is present.
func WithForceSoftware(force bool) Option {
	return func(o *options) {
		o.forceSoftware = force
	}
}

// WithStagingStrategy sets the readback buffer pooling policy when the
// pipeline opens its own context.
func WithStagingStrategy(s gpu.AllocationStrategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}
