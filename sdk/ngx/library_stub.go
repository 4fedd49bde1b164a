// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !ngx

package ngx

import "github.com/gogpu/upscale/sdk"

// Linked reports whether the dynamic binding is compiled in.
const Linked = false

// Open returns the stub library. The path is ignored.
func Open(string) (sdk.Library, error) {
	return stub, nil
}

var stub sdk.Library = sdk.NewStub(ABI.Name)
