// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
)

// Default configuration constants
const (
	defaultBenchFrames = 100
	defaultBenchWidth  = 1920
	defaultBenchHeight = 1080
)

// DefaultConfig returns the default configuration values for nuscale.
func DefaultConfig() *Config {
	return &Config{
		Quality:  upscale.QualityQuality.String(),
		Backend:  "",
		Fallback: true,
		GPU: GPUConfig{
			WaitTimeout:     gpu.DefaultWaitTimeout,
			StagingStrategy: gpu.StrategyAuto.String(),
		},
		SDK: SDKConfig{
			AutoExposure: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Bench: BenchConfig{
			Frames: defaultBenchFrames,
			Width:  defaultBenchWidth,
			Height: defaultBenchHeight,
		},
		Multipliers: map[string]float64{},
	}
}
