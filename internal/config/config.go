// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads nuscale settings from a config file, NUSCALE_*
// environment variables and built-in defaults, using Viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/gogpu/upscale"
)

// EnvPrefix prefixes every environment variable, e.g. NUSCALE_QUALITY or
// NUSCALE_OUTPUT_WIDTH.
const EnvPrefix = "NUSCALE"

// Config is the complete nuscale configuration.
type Config struct {
	// Quality is a tier name such as "quality" or "ultra-performance".
	Quality string `mapstructure:"quality" yaml:"quality"`
	// Backend is a backend name or alias. Empty or "auto" picks one from
	// the adapter.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Fallback switches to the compute shader when a vendor SDK is
	// unavailable.
	Fallback bool `mapstructure:"fallback" yaml:"fallback"`
	// Workers bounds CPU parallelism of the software path. Zero means all
	// cores.
	Workers int `mapstructure:"workers" yaml:"workers"`

	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	GPU     GPUConfig     `mapstructure:"gpu" yaml:"gpu"`
	SDK     SDKConfig     `mapstructure:"sdk" yaml:"sdk"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Bench   BenchConfig   `mapstructure:"bench" yaml:"bench"`

	// Multipliers overrides render ratios by quality name.
	Multipliers map[string]float64 `mapstructure:"multipliers" yaml:"multipliers"`
}

// OutputConfig is the presentation size. Zero derives it from the input.
type OutputConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// GPUConfig selects and tunes the device.
type GPUConfig struct {
	ForceSoftware   bool          `mapstructure:"force_software" yaml:"force_software"`
	WaitTimeout     time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	StagingStrategy string        `mapstructure:"staging_strategy" yaml:"staging_strategy"`
}

// SDKConfig configures the vendor upscalers.
type SDKConfig struct {
	ApplicationID uint64  `mapstructure:"application_id" yaml:"application_id"`
	HDR           bool    `mapstructure:"hdr" yaml:"hdr"`
	AutoExposure  bool    `mapstructure:"auto_exposure" yaml:"auto_exposure"`
	Sharpness     float64 `mapstructure:"sharpness" yaml:"sharpness"`
	NGXLibrary    string  `mapstructure:"ngx_library" yaml:"ngx_library"`
	FFXLibrary    string  `mapstructure:"ffx_library" yaml:"ffx_library"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// BenchConfig holds benchmark defaults.
type BenchConfig struct {
	Frames int `mapstructure:"frames" yaml:"frames"`
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a manager that searches the XDG config directory and
// the working directory for config.{yaml,json,toml}.
func NewManager() (*Manager, error) {
	v := viper.New()
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	return newManager(v), nil
}

// NewManagerWithFile creates a manager that reads exactly path.
func NewManagerWithFile(path string) *Manager {
	v := viper.New()
	v.SetConfigFile(path)
	return newManager(v)
}

func newManager(v *viper.Viper) *Manager {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Manager{viper: v}
}

// Load reads the config file if there is one, applies environment
// overrides and validates the result. A missing file is not an error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()
	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	cfg, err := m.decode()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// decode unmarshals, normalizes and validates the current viper state.
func (m *Manager) decode() (*Config, error) {
	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Override sets key above every other source, as command-line flags do,
// and re-validates the configuration.
func (m *Manager) Override(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.viper.Set(key, value)
	cfg, err := m.decode()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// File returns the config file in use, or "" when none was found.
func (m *Manager) File() string {
	return m.viper.ConfigFileUsed()
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	c := *m.config
	c.Multipliers = make(map[string]float64, len(m.config.Multipliers))
	for k, v := range m.config.Multipliers {
		c.Multipliers[k] = v
	}
	return &c
}

// Watch starts watching the config file and reloads it on change.
// Invalid edits are logged and the previous configuration is kept.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}
	if m.viper.ConfigFileUsed() == "" {
		return errors.New("config: no config file to watch")
	}

	m.viper.OnConfigChange(func(e fsnotify.Event) {
		if err := m.reload(); err != nil {
			upscale.Logger().Warn("config: reload failed", "file", e.Name, "err", err)
			return
		}

		m.mu.RLock()
		cfg := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		upscale.Logger().Info("config: reloaded", "file", e.Name)
		for _, callback := range callbacks {
			callback(cfg)
		}
	})
	m.viper.WatchConfig()

	m.watching = true
	return nil
}

// OnConfigChange registers a callback run after every successful reload.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}
	cfg, err := m.decode()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// setDefaults sets default configuration values in Viper. Every key needs
// a default so that AutomaticEnv overrides reach Unmarshal.
func (m *Manager) setDefaults() {
	d := DefaultConfig()

	m.viper.SetDefault("quality", d.Quality)
	m.viper.SetDefault("backend", d.Backend)
	m.viper.SetDefault("fallback", d.Fallback)
	m.viper.SetDefault("workers", d.Workers)

	m.viper.SetDefault("output.width", d.Output.Width)
	m.viper.SetDefault("output.height", d.Output.Height)

	m.viper.SetDefault("gpu.force_software", d.GPU.ForceSoftware)
	m.viper.SetDefault("gpu.wait_timeout", d.GPU.WaitTimeout)
	m.viper.SetDefault("gpu.staging_strategy", d.GPU.StagingStrategy)

	m.viper.SetDefault("sdk.application_id", d.SDK.ApplicationID)
	m.viper.SetDefault("sdk.hdr", d.SDK.HDR)
	m.viper.SetDefault("sdk.auto_exposure", d.SDK.AutoExposure)
	m.viper.SetDefault("sdk.sharpness", d.SDK.Sharpness)
	m.viper.SetDefault("sdk.ngx_library", d.SDK.NGXLibrary)
	m.viper.SetDefault("sdk.ffx_library", d.SDK.FFXLibrary)

	m.viper.SetDefault("logging.level", d.Logging.Level)
	m.viper.SetDefault("logging.format", d.Logging.Format)

	m.viper.SetDefault("bench.frames", d.Bench.Frames)
	m.viper.SetDefault("bench.width", d.Bench.Width)
	m.viper.SetDefault("bench.height", d.Bench.Height)
}

// normalizeConfig lower-cases names and maps "auto" to the empty backend.
func normalizeConfig(c *Config) {
	c.Quality = strings.ToLower(strings.TrimSpace(c.Quality))
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "auto" {
		c.Backend = ""
	}
	c.GPU.StagingStrategy = strings.ToLower(strings.TrimSpace(c.GPU.StagingStrategy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// LogLevel returns the slog level named by Logging.Level.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
