// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
)

type upscaleFlags struct {
	outDir    string
	width     int
	height    int
	jobs      int
	reference bool
}

func newUpscaleCmd(a *app) *cobra.Command {
	var fl upscaleFlags
	cmd := &cobra.Command{
		Use:   "upscale <image>...",
		Short: "Upscale PNG, JPEG or BMP images",
		Long: `Upscale each image to the configured output size, or by the quality
ratio when no size is set. Results are written as PNG files to the output
directory. Images are processed concurrently, each in its own session on a
shared device.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpscale(cmd, args, fl)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.outDir, "output", "o", "", "output directory (required)")
	f.IntVar(&fl.width, "width", 0, "output width (overrides config)")
	f.IntVar(&fl.height, "height", 0, "output height (overrides config)")
	f.IntVarP(&fl.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "images processed at once")
	f.BoolVar(&fl.reference, "reference", false, "also write a CPU Catmull-Rom reference image")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runUpscale(cmd *cobra.Command, files []string, fl upscaleFlags) error {
	cfg, opts, err := a.pipelineSetup()
	if err != nil {
		return err
	}
	if fl.width != 0 || fl.height != 0 {
		cfg.OutputWidth, cfg.OutputHeight = fl.width, fl.height
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(fl.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, err := a.openContext()
	if err != nil {
		return err
	}
	shared := gpu.NewShared(ctx)
	defer shared.Release()
	opts = append(opts, upscale.WithContext(shared))

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, fl.jobs))
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line, err := upscaleFile(file, fl, cfg, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			fmt.Fprintln(out, line)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// upscaleFile runs one image through its own pipeline.
func upscaleFile(file string, fl upscaleFlags, cfg upscale.Config, opts []upscale.Option) (string, error) {
	in, err := readFrame(file)
	if err != nil {
		return "", err
	}
	p, err := upscale.New(cfg, opts...)
	if err != nil {
		return "", err
	}
	defer p.Close()

	res, err := p.Process(in)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}
	dst := outputPath(fl.outDir, file, "")
	if err := writePNG(dst, frameImage(res)); err != nil {
		return "", err
	}
	if fl.reference {
		if err := writePNG(outputPath(fl.outDir, file, "reference"), referenceImage(in, res.Width, res.Height)); err != nil {
			return "", err
		}
	}
	st := p.Stats()
	return fmt.Sprintf("%s -> %s (%dx%d -> %dx%d, %s)",
		file, dst, in.Width, in.Height, res.Width, res.Height, st.Backend), nil
}
