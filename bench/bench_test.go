// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bench_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend/compute"
	_ "github.com/gogpu/upscale/backend/ffi"
	"github.com/gogpu/upscale/bench"
	"github.com/gogpu/upscale/gpu"
	"github.com/gogpu/upscale/sdk"
	"github.com/gogpu/upscale/sdk/sdktest"
)

func TestRun(t *testing.T) {
	ctx := gpu.NewSoftwareContext(gpu.SoftwareOptions{})
	defer ctx.Close()
	b := compute.New(ctx, upscale.BackendOptions{Quality: upscale.QualityQuality})
	defer b.Close()

	res, err := bench.Run(b, 32, 32, 48, 48, 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Frames != 3 || res.Backend != upscale.KindComputeShader {
		t.Errorf("result = %+v", res)
	}
	if res.Min > res.Avg || res.Avg > res.Max || res.Total < res.Max {
		t.Errorf("inconsistent timings: %v", res)
	}
	if res.Scale() != 1.5 {
		t.Errorf("scale = %v, want 1.5", res.Scale())
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	ctx := gpu.NewSoftwareContext(gpu.SoftwareOptions{})
	defer ctx.Close()
	b := compute.New(ctx, upscale.BackendOptions{})
	defer b.Close()

	if _, err := bench.Run(b, 0, 32, 48, 48, 1); !errors.Is(err, upscale.ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := bench.Run(b, 32, 32, 48, 48, 0); err == nil {
		t.Error("zero frames accepted")
	}
}

func TestTestPattern(t *testing.T) {
	p := bench.TestPattern(10, 4)
	if len(p) != 160 {
		t.Fatalf("len = %d", len(p))
	}
	if p[3] != 255 || p[0] != 0 {
		t.Errorf("first pixel = %v", p[:4])
	}
}

func TestCompare(t *testing.T) {
	ctx := gpu.NewSoftwareContext(gpu.SoftwareOptions{})
	defer ctx.Close()
	fake := sdktest.New("unsupported")
	fake.InitStatus = sdk.StatusFeatureNotSupported
	defer sdk.Forget(fake)

	results, err := bench.Compare(ctx, bench.Suite{
		Kinds:        []upscale.Kind{upscale.KindComputeShader, upscale.KindVendorA},
		Qualities:    []upscale.Quality{upscale.QualityPerformance, upscale.QualityQuality},
		OutputWidth:  24,
		OutputHeight: 24,
		Frames:       2,
		Options: func(kind upscale.Kind, _ upscale.Quality) upscale.BackendOptions {
			return upscale.BackendOptions{Library: fake}
		},
	})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if !errors.Is(err, upscale.ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
	if results[0].Geometry.RenderW != 12 || results[1].Geometry.RenderW != 16 {
		t.Errorf("render widths = %d, %d", results[0].Geometry.RenderW, results[1].Geometry.RenderW)
	}

	var buf bytes.Buffer
	if err := bench.WriteTable(&buf, results); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "BACKEND") {
		t.Errorf("table =\n%s", buf.String())
	}
}
