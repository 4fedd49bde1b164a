// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bench measures upscaling backends frame by frame.
package bench

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
)

// Result is the timing of one benchmark run.
type Result struct {
	Backend  upscale.Kind
	Name     string
	Quality  upscale.Quality
	Geometry upscale.Geometry
	Frames   int

	Total time.Duration
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	FPS   float64
}

// Scale returns the output-to-render ratio along the x axis.
func (r Result) Scale() float64 {
	if r.Geometry.RenderW == 0 {
		return 0
	}
	return float64(r.Geometry.OutputW) / float64(r.Geometry.RenderW)
}

// String formats the result on one line.
func (r Result) String() string {
	return fmt.Sprintf("%s/%s %s: %d frames, avg %v, min %v, max %v, %.1f fps",
		r.Backend, r.Quality, r.Geometry, r.Frames, r.Avg, r.Min, r.Max, r.FPS)
}

// Run initializes b for the given geometry and times frames calls to
// Upscale on a generated test pattern. The backend stays initialized.
func Run(b upscale.Backend, renderW, renderH, outW, outH, frames int) (Result, error) {
	g := upscale.Geometry{RenderW: renderW, RenderH: renderH, OutputW: outW, OutputH: outH}
	if err := g.Validate(); err != nil {
		return Result{}, err
	}
	if frames <= 0 {
		return Result{}, fmt.Errorf("bench: frame count %d, want > 0", frames)
	}
	if err := b.Initialize(renderW, renderH, outW, outH); err != nil {
		return Result{}, fmt.Errorf("bench: initialize %s: %w", b.Name(), err)
	}

	input := TestPattern(renderW, renderH)
	res := Result{
		Backend:  b.Kind(),
		Name:     b.Name(),
		Quality:  b.Quality(),
		Geometry: g,
		Frames:   frames,
		Min:      time.Duration(1<<63 - 1),
	}
	var busy time.Duration
	start := time.Now()
	for i := range frames {
		t0 := time.Now()
		if _, err := b.Upscale(input); err != nil {
			return Result{}, fmt.Errorf("bench: frame %d: %w", i, err)
		}
		d := time.Since(t0)
		busy += d
		res.Min = min(res.Min, d)
		res.Max = max(res.Max, d)
	}
	res.Total = time.Since(start)
	res.Avg = busy / time.Duration(frames)
	if res.Avg > 0 {
		res.FPS = float64(time.Second) / float64(res.Avg)
	}
	upscale.Logger().Debug("bench: run complete", "result", res.String())
	return res, nil
}

// TestPattern returns an RGBA gradient of w x h pixels.
func TestPattern(w, h int) []byte {
	data := make([]byte, w*h*4)
	for y := range h {
		for x := range w {
			i := (y*w + x) * 4
			data[i] = byte(x * 255 / w)
			data[i+1] = byte(y * 255 / h)
			data[i+2] = byte((x + y) * 255 / (w + h))
			data[i+3] = 255
		}
	}
	return data
}

// Suite describes a comparison across backends and quality tiers.
type Suite struct {
	Kinds     []upscale.Kind
	Qualities []upscale.Quality

	// OutputWidth and OutputHeight are the target size. Each tier renders
	// at upscale.RenderSize of it.
	OutputWidth  int
	OutputHeight int
	Frames       int

	// Options returns the construction options for a backend. Nil uses
	// only the quality.
	Options func(kind upscale.Kind, q upscale.Quality) upscale.BackendOptions
}

// Compare runs every kind at every quality on ctx. Combinations that fail
// are skipped and reported in the joined error; the results of the others
// are still returned.
func Compare(ctx gpu.Context, s Suite) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, kind := range s.Kinds {
		for _, q := range s.Qualities {
			res, err := runOne(ctx, s, kind, q)
			if err != nil {
				upscale.Logger().Warn("bench: combination failed", "backend", kind, "quality", q, "err", err)
				errs = append(errs, fmt.Errorf("%s/%s: %w", kind, q, err))
				continue
			}
			results = append(results, res)
		}
	}
	return results, errors.Join(errs...)
}

func runOne(ctx gpu.Context, s Suite, kind upscale.Kind, q upscale.Quality) (Result, error) {
	rw, rh, err := upscale.RenderSize(s.OutputWidth, s.OutputHeight, q)
	if err != nil {
		return Result{}, err
	}
	opts := upscale.BackendOptions{Quality: q}
	if s.Options != nil {
		opts = s.Options(kind, q)
		opts.Quality = q
	}
	b, err := upscale.NewBackendWithOptions(kind, ctx, opts)
	if err != nil {
		return Result{}, err
	}
	defer b.Close()
	return Run(b, rw, rh, s.OutputWidth, s.OutputHeight, s.Frames)
}

// WriteTable writes results as an aligned table.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tQUALITY\tRENDER\tOUTPUT\tFRAMES\tAVG\tMIN\tMAX\tFPS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%dx%d\t%d\t%v\t%v\t%v\t%.1f\n",
			r.Backend, r.Quality,
			r.Geometry.RenderW, r.Geometry.RenderH, r.Geometry.OutputW, r.Geometry.OutputH,
			r.Frames, r.Avg.Round(time.Microsecond), r.Min.Round(time.Microsecond), r.Max.Round(time.Microsecond), r.FPS)
	}
	return tw.Flush()
}
