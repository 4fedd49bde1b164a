// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build (amd64 || arm64) && (windows || ((darwin || freebsd || linux) && !cgo))

package sdk

import (
	"strings"
	"testing"
)

func TestSignaturesCoverEveryShimSymbol(t *testing.T) {
	abi := ABI{Prefix: "x_"}
	syms := abi.Symbols()
	if len(signatures) != len(syms) {
		t.Fatalf("signatures has %d entries, shim exports %d", len(signatures), len(syms))
	}
	for _, full := range syms {
		if _, ok := signatures[strings.TrimPrefix(full, abi.Prefix)]; !ok {
			t.Errorf("no call signature for %s", full)
		}
	}
}

func TestSignatureArity(t *testing.T) {
	tests := []struct {
		sym  string
		want int
	}{
		{symInit, 2},
		{symShutdown, 0},
		{symCreateFeature, 6},
		{symSetOptions, 3},
		{symEvaluate, 9},
	}
	for _, tt := range tests {
		if got := len(signatures[tt.sym]); got != tt.want {
			t.Errorf("%s takes %d args, want %d", tt.sym, got, tt.want)
		}
	}
}

func TestDynamicMissingSymbol(t *testing.T) {
	lib := &dynamicLibrary{abi: ABI{Name: "v", Prefix: "v_"}, path: "libv.so", entries: map[string]*entry{}}
	st, err := lib.Evaluate(1, EvalParams{})
	if st != StatusFail {
		t.Errorf("status = %v, want Fail", st)
	}
	if err == nil || !strings.Contains(err.Error(), "v_evaluate") {
		t.Errorf("err = %v, want ErrSymbolUnavailable naming v_evaluate", err)
	}
}
