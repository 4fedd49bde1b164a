// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/bench"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		backends  []string
		qualities []string
		frames    int
		width     int
		height    int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark backends across quality tiers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			suite := bench.Suite{
				OutputWidth:  a.cfg.Bench.Width,
				OutputHeight: a.cfg.Bench.Height,
				Frames:       a.cfg.Bench.Frames,
				Options:      a.backendOptions,
			}
			if cmd.Flags().Changed("frames") {
				suite.Frames = frames
			}
			if cmd.Flags().Changed("width") {
				suite.OutputWidth = width
			}
			if cmd.Flags().Changed("height") {
				suite.OutputHeight = height
			}

			var err error
			if suite.Kinds, err = parseKinds(backends); err != nil {
				return err
			}
			if suite.Qualities, err = parseQualities(qualities); err != nil {
				return err
			}

			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer ctx.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "adapter: %s\n\n", ctx.Info())

			results, runErr := bench.Compare(ctx, suite)
			if err := bench.WriteTable(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if runErr != nil && len(results) == 0 {
				return runErr
			}
			if runErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nskipped:\n%v\n", runErr)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&backends, "backends", nil, "backends to run (default: all registered)")
	f.StringSliceVar(&qualities, "qualities", nil, "quality tiers to run (default: all but native)")
	f.IntVar(&frames, "frames", 0, "frames per run")
	f.IntVar(&width, "width", 0, "output width")
	f.IntVar(&height, "height", 0, "output height")
	return cmd
}

// backendOptions returns the vendor settings for a benchmarked backend.
func (a *app) backendOptions(kind upscale.Kind, q upscale.Quality) upscale.BackendOptions {
	o := upscale.BackendOptions{
		Quality:       q,
		ApplicationID: a.cfg.SDK.ApplicationID,
		SDKOptions:    a.cfg.SDKOptions(),
		Workers:       a.cfg.Workers,
	}
	switch kind {
	case upscale.KindVendorA:
		o.LibraryPath = a.cfg.SDK.NGXLibrary
	case upscale.KindVendorB:
		o.LibraryPath = a.cfg.SDK.FFXLibrary
	}
	return o
}

func parseKinds(names []string) ([]upscale.Kind, error) {
	if len(names) == 0 {
		return upscale.Available(), nil
	}
	kinds := make([]upscale.Kind, 0, len(names))
	for _, n := range names {
		k, err := upscale.ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func parseQualities(names []string) ([]upscale.Quality, error) {
	if len(names) == 0 {
		return upscale.Qualities[:upscale.QualityNative], nil
	}
	qs := make([]upscale.Quality, 0, len(names))
	for _, n := range names {
		q, err := upscale.ParseQuality(n)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}
