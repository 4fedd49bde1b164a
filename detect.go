// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import "github.com/gogpu/upscale/gpu"

// RecommendedBackend picks the backend best suited to an adapter: the
// DLSS-class SDK on NVIDIA, the FSR-class SDK on AMD and Intel, and the
// compute shader everywhere else.
//
// The vendor SDK may still turn out to be unavailable at run time; a
// pipeline with fallback enabled then switches to the compute shader.
func RecommendedBackend(info gpu.AdapterInfo) Kind {
	if info.Software {
		return KindComputeShader
	}
	switch info.Vendor {
	case gpu.VendorNVIDIA:
		return KindVendorA
	case gpu.VendorAMD, gpu.VendorIntel:
		return KindVendorB
	default:
		return KindComputeShader
	}
}
