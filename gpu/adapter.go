// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"strings"
)

// Vendor identifies the hardware vendor of an adapter.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorNVIDIA
	VendorAMD
	VendorIntel
	VendorApple
	VendorSoftware
)

// String returns the vendor name.
func (v Vendor) String() string {
	switch v {
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorAMD:
		return "AMD"
	case VendorIntel:
		return "Intel"
	case VendorApple:
		return "Apple"
	case VendorSoftware:
		return "Software"
	case VendorUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Vendor(%d)", int(v))
	}
}

// vendorMarkers maps lowercase name fragments to vendors. Checked in order.
var vendorMarkers = []struct {
	marker string
	vendor Vendor
}{
	{"nvidia", VendorNVIDIA},
	{"geforce", VendorNVIDIA},
	{"quadro", VendorNVIDIA},
	{"rtx", VendorNVIDIA},
	{"amd", VendorAMD},
	{"radeon", VendorAMD},
	{"ati ", VendorAMD},
	{"intel", VendorIntel},
	{"iris", VendorIntel},
	{"apple", VendorApple},
	{"llvmpipe", VendorSoftware},
	{"swiftshader", VendorSoftware},
	{"lavapipe", VendorSoftware},
	{"software", VendorSoftware},
}

// DetectVendor classifies an adapter by its reported name.
func DetectVendor(name string) Vendor {
	lower := strings.ToLower(name)
	for _, m := range vendorMarkers {
		if strings.Contains(lower, m.marker) {
			return m.vendor
		}
	}
	return VendorUnknown
}

// AdapterInfo describes the adapter behind a Context.
type AdapterInfo struct {
	Name     string
	Vendor   Vendor
	Discrete bool
	Software bool
	Backend  string
}

// String formats the info for logs and the CLI.
func (a AdapterInfo) String() string {
	kind := "integrated"
	switch {
	case a.Software:
		kind = "software"
	case a.Discrete:
		kind = "discrete"
	}
	return fmt.Sprintf("%s (%s, %s, %s)", a.Name, a.Vendor, kind, a.Backend)
}
