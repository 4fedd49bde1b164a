// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "testing"

func TestDetectVendor(t *testing.T) {
	tests := []struct {
		name string
		want Vendor
	}{
		{"NVIDIA GeForce RTX 4090", VendorNVIDIA},
		{"Quadro P2000", VendorNVIDIA},
		{"AMD Radeon RX 7900 XTX", VendorAMD},
		{"Radeon Pro W6800", VendorAMD},
		{"Intel(R) Iris(R) Xe Graphics", VendorIntel},
		{"Apple M2 Max", VendorApple},
		{"llvmpipe (LLVM 17.0.6, 256 bits)", VendorSoftware},
		{"Mystery Accelerator", VendorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectVendor(tt.name); got != tt.want {
				t.Errorf("DetectVendor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAdapterInfoString(t *testing.T) {
	info := AdapterInfo{Name: "GeForce", Vendor: VendorNVIDIA, Discrete: true, Backend: "vulkan"}
	if got, want := info.String(), "GeForce (NVIDIA, discrete, vulkan)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
