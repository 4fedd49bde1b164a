// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/upscale"
	_ "github.com/gogpu/upscale/backend/compute"
	_ "github.com/gogpu/upscale/backend/ffi"
	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/internal/config"
)

// app is the state shared by subcommands after flag parsing.
type app struct {
	configFile string
	manager    *config.Manager
	cfg        *config.Config
}

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"quality":   "quality",
	"backend":   "backend",
	"software":  "gpu.force_software",
	"workers":   "workers",
	"log-level": "logging.level",
	"fallback":  "fallback",
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "nuscale",
		Short: "Real-time frame upscaler",
		Long: `nuscale upscales frames with a bicubic compute shader or a vendor
super-resolution SDK (DLSS-class, FSR-class) when one is available.

Settings come from config.{yaml,json,toml} in $XDG_CONFIG_HOME/nuscale or
the working directory, NUSCALE_* environment variables, and flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: search XDG config dir and .)")
	pf.StringP("quality", "q", "", "quality tier: ultra-performance, performance, balanced, quality, ultra-quality, native")
	pf.StringP("backend", "b", "", "backend: auto, compute, ngx (dlss), ffx (fsr)")
	pf.Bool("software", false, "force the software device")
	pf.Int("workers", 0, "CPU workers for the software path (0 = all cores)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("fallback", true, "fall back to the compute shader when a vendor SDK is unavailable")

	root.AddCommand(
		newUpscaleCmd(a),
		newBenchCmd(a),
		newInfoCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration, applies changed flags and installs the
// logger.
func (a *app) load(cmd *cobra.Command) error {
	var err error
	if a.configFile != "" {
		a.manager = config.NewManagerWithFile(a.configFile)
	} else if a.manager, err = config.NewManager(); err != nil {
		return err
	}
	if err := a.manager.Load(); err != nil {
		return err
	}

	flags := cmd.Flags()
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := a.manager.Override(key, f.Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	a.cfg = a.manager.Get()
	upscale.SetLogger(newLogger(cmd.ErrOrStderr(), a.cfg))
	return nil
}

// newLogger builds the slog logger described by the logging settings.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openContext opens the device described by the GPU settings.
func (a *app) openContext() (gpu.Context, error) {
	o, err := a.cfg.OpenOptions()
	if err != nil {
		return nil, err
	}
	return gpu.Open(o), nil
}

// pipelineSetup returns the pipeline configuration and options.
func (a *app) pipelineSetup() (upscale.Config, []upscale.Option, error) {
	pc, err := a.cfg.PipelineConfig()
	if err != nil {
		return upscale.Config{}, nil, err
	}
	opts, err := a.cfg.Options()
	if err != nil {
		return upscale.Config{}, nil, err
	}
	return pc, opts, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nuscale %s\n", upscale.Version)
			fmt.Fprintf(out, "commit: %s\n", commit)
			fmt.Fprintf(out, "built: %s\n", buildDate)
		},
	}
}
