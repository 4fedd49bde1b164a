// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sdk

// ABI describes how a vendor shim library is found and how its raw
// results are interpreted. The shim exports eight C functions named
// Prefix+"init", Prefix+"shutdown", Prefix+"allocate_parameters",
// Prefix+"destroy_parameters", Prefix+"create_feature",
// Prefix+"set_options", Prefix+"evaluate" and Prefix+"destroy_feature",
// each returning a 32-bit status code.
type ABI struct {
	// Name identifies the vendor in logs.
	Name string

	// Candidates are tried in order by OpenDynamic when no explicit path
	// is given.
	Candidates []string

	// Prefix is prepended to every symbol name.
	Prefix string

	// Decode maps a raw status code onto Status.
	Decode func(raw int32) Status

	// EncodeOptions packs Options into the vendor's flag word.
	EncodeOptions func(Options) uint32
}

// Symbol names relative to ABI.Prefix.
const (
	symInit               = "init"
	symShutdown           = "shutdown"
	symAllocateParameters = "allocate_parameters"
	symDestroyParameters  = "destroy_parameters"
	symCreateFeature      = "create_feature"
	symSetOptions         = "set_options"
	symEvaluate           = "evaluate"
	symDestroyFeature     = "destroy_feature"
)

// Symbols returns the full symbol names exported by a shim for abi.
func (abi ABI) Symbols() []string {
	names := []string{symInit, symShutdown, symAllocateParameters, symDestroyParameters,
		symCreateFeature, symSetOptions, symEvaluate, symDestroyFeature}
	for i, n := range names {
		names[i] = abi.Prefix + n
	}
	return names
}
