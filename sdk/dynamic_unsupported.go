// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !((amd64 || arm64) && (windows || ((darwin || freebsd || linux) && !cgo)))

package sdk

import "fmt"

// OpenDynamic is unavailable on this platform.
func OpenDynamic(abi ABI, _ ...string) (Library, error) {
	return nil, fmt.Errorf("%w: %s: dynamic loading unsupported on this platform", ErrLibraryNotFound, abi.Name)
}
