// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ffi

import (
	"fmt"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
	"github.com/gogpu/upscale/sdk/ffx"
	"github.com/gogpu/upscale/sdk/ngx"
)

// init registers both vendor kinds on package import.
func init() {
	upscale.Register(upscale.KindVendorA, factory(upscale.KindVendorA, ngx.Open))
	upscale.Register(upscale.KindVendorB, factory(upscale.KindVendorB, ffx.Open))
}

// factory builds an upscale.Factory that loads the vendor library with open
// unless one is injected through BackendOptions.Library.
func factory(kind upscale.Kind, open func(path string) (sdk.Library, error)) upscale.Factory {
	return func(ctx gpu.Context, opts upscale.BackendOptions) (upscale.Backend, error) {
		lib := opts.Library
		if lib == nil {
			l, err := open(opts.LibraryPath)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", upscale.ErrBackendUnavailable, kind, err)
			}
			lib = l
		}
		return New(kind, ctx, lib, opts), nil
	}
}
