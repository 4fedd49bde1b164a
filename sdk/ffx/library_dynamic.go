// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build ffx

package ffx

import "github.com/gogpu/upscale/sdk"

// Linked reports whether the dynamic binding is compiled in.
const Linked = true

// Open loads the FFX shim from path, or from the default candidates when
// path is empty.
func Open(path string) (sdk.Library, error) {
	if path == "" {
		return sdk.OpenDynamic(ABI)
	}
	return sdk.OpenDynamic(ABI, path)
}
