// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/sdk/ffx"
	"github.com/gogpu/upscale/sdk/ngx"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the adapter, backends and effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer ctx.Close()
			info := ctx.Info()

			kinds := upscale.Available()
			names := make([]string, len(kinds))
			for i, k := range kinds {
				names[i] = k.String()
			}
			file := a.manager.File()
			if file == "" {
				file = "(none)"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "adapter:     %s\n", info)
			fmt.Fprintf(out, "vendor:      %s\n", info.Vendor)
			fmt.Fprintf(out, "recommended: %s\n", upscale.RecommendedBackend(info))
			fmt.Fprintf(out, "backends:    %s\n", strings.Join(names, ", "))
			fmt.Fprintf(out, "ngx linked:  %t\n", ngx.Linked)
			fmt.Fprintf(out, "ffx linked:  %t\n", ffx.Linked)
			fmt.Fprintf(out, "config:      %s\n", file)
			fmt.Fprintf(out, "quality:     %s\n", a.cfg.Quality)
			return nil
		},
	}
}
