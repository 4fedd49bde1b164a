// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"
	"strings"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
)

// validateConfig performs validation of configuration values and reports
// every problem at once.
func validateConfig(c *Config) error {
	var validationErrors []string

	if _, err := upscale.ParseQuality(c.Quality); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("quality: %v", err))
	}
	if c.Backend != "" {
		if _, err := upscale.ParseKind(c.Backend); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("backend: %v", err))
		}
	}
	if c.Output.Width < 0 || c.Output.Height < 0 || (c.Output.Width == 0) != (c.Output.Height == 0) {
		validationErrors = append(validationErrors, "output.width and output.height must both be positive or both zero")
	}
	if c.Workers < 0 {
		validationErrors = append(validationErrors, "workers must be non-negative")
	}
	if c.GPU.WaitTimeout <= 0 {
		validationErrors = append(validationErrors, "gpu.wait_timeout must be positive")
	}
	if _, err := gpu.ParseAllocationStrategy(c.GPU.StagingStrategy); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("gpu.staging_strategy: %v", err))
	}
	if c.SDK.Sharpness < 0 || c.SDK.Sharpness > 1 {
		validationErrors = append(validationErrors, "sdk.sharpness must be between 0 and 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got: %s)", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format must be text or json (got: %s)", c.Logging.Format))
	}
	if c.Bench.Frames <= 0 || c.Bench.Width <= 0 || c.Bench.Height <= 0 {
		validationErrors = append(validationErrors, "bench.frames, bench.width and bench.height must be positive")
	}
	if _, err := c.MultiplierTable(); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("multipliers: %v", err))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}

// MultiplierTable applies the Multipliers overrides to the default table.
func (c *Config) MultiplierTable() (upscale.MultiplierTable, error) {
	m := upscale.DefaultMultipliers
	for name, r := range c.Multipliers {
		q, err := upscale.ParseQuality(name)
		if err != nil {
			return m, err
		}
		m[q] = r
	}
	return m, m.Validate()
}

// PipelineConfig converts the settings into an upscale.Config.
func (c *Config) PipelineConfig() (upscale.Config, error) {
	q, err := upscale.ParseQuality(c.Quality)
	if err != nil {
		return upscale.Config{}, err
	}
	var kind upscale.Kind
	if c.Backend != "" {
		if kind, err = upscale.ParseKind(c.Backend); err != nil {
			return upscale.Config{}, err
		}
	}
	return upscale.Config{
		Quality:      q,
		Backend:      kind,
		OutputWidth:  c.Output.Width,
		OutputHeight: c.Output.Height,
	}, nil
}

// SDKOptions returns the feature options for vendor backends.
func (c *Config) SDKOptions() sdk.Options {
	return sdk.Options{
		HDR:          c.SDK.HDR,
		AutoExposure: c.SDK.AutoExposure,
		Sharpness:    float32(c.SDK.Sharpness),
	}
}

// Options converts the settings into pipeline options.
func (c *Config) Options() ([]upscale.Option, error) {
	m, err := c.MultiplierTable()
	if err != nil {
		return nil, err
	}
	strategy, err := gpu.ParseAllocationStrategy(c.GPU.StagingStrategy)
	if err != nil {
		return nil, err
	}
	opts := []upscale.Option{
		upscale.WithFallback(c.Fallback),
		upscale.WithMultipliers(m),
		upscale.WithWaitTimeout(c.GPU.WaitTimeout),
		upscale.WithForceSoftware(c.GPU.ForceSoftware),
		upscale.WithStagingStrategy(strategy),
		upscale.WithApplicationID(c.SDK.ApplicationID),
		upscale.WithSDKOptions(c.SDKOptions()),
		upscale.WithWorkers(c.Workers),
	}
	if c.SDK.NGXLibrary != "" {
		opts = append(opts, upscale.WithLibraryPath(upscale.KindVendorA, c.SDK.NGXLibrary))
	}
	if c.SDK.FFXLibrary != "" {
		opts = append(opts, upscale.WithLibraryPath(upscale.KindVendorB, c.SDK.FFXLibrary))
	}
	return opts, nil
}

// OpenOptions returns the device settings for gpu.Open.
func (c *Config) OpenOptions() (gpu.OpenOptions, error) {
	strategy, err := gpu.ParseAllocationStrategy(c.GPU.StagingStrategy)
	if err != nil {
		return gpu.OpenOptions{}, err
	}
	return gpu.OpenOptions{
		ForceSoftware: c.GPU.ForceSoftware,
		WaitTimeout:   c.GPU.WaitTimeout,
		Strategy:      strategy,
	}, nil
}
