// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/bicubic.wgsl
var bicubicShaderWGSL string

// WorkgroupSize is the edge of the shader's 2-D workgroup.
const WorkgroupSize = 16

// ShaderSource returns the WGSL source of the bicubic kernel.
func ShaderSource() string { return bicubicShaderWGSL }

// CompileSPIRV compiles the bicubic kernel to SPIR-V words.
func CompileSPIRV() ([]uint32, error) {
	spirvBytes, err := naga.Compile(bicubicShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("compute: compile bicubic shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// workgroups returns the dispatch size covering n pixels.
func workgroups(n int) uint32 {
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize) //nolint:gosec // dimensions always fit uint32
}
