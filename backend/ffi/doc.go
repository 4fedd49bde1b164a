// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ffi implements the vendor SDK upscalers on top of sdk.Library.
//
// One Backend drives one native feature through the states
//
//	uninitialized -> initialized(handle) -> destroyed
//
// Initialize with identical parameters makes no SDK call. Different
// parameters destroy the old feature before the new one is created. Close
// destroys a live feature exactly once and never fails.
//
// Importing the package registers upscale.KindVendorA (sdk/ngx) and
// upscale.KindVendorB (sdk/ffx). Without the ngx or ffx build tag the
// libraries are stubs, every session fails with ErrBackendUnavailable, and
// a Pipeline falls back to the compute shader.
package ffi
