// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command nuscale upscales images and benchmarks upscaling backends.
//
// Usage:
//
//	nuscale upscale -o out/ --quality quality --width 3840 --height 2160 frame.png
//	nuscale bench --backend compute --backend dlss --frames 200
//	nuscale info
package main

import (
	"fmt"
	"os"
)

// Build information set via ldflags
var (
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
