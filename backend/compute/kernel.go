// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"math"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/internal/parallel"
)

// The CPU kernel mirrors shaders/bicubic.wgsl operation for operation in
// float32, so both paths agree up to float rounding.

// cubic evaluates the Catmull-Rom spline through p0..p3 at t in [0,1).
func cubic(p0, p1, p2, p3, t float32) float32 {
	return p1 + 0.5*t*(p2-p0+t*(2*p0-5*p1+4*p2-p3+t*(3*(p1-p2)+p3-p0)))
}

// quantize clamps c to [0,1] and rounds to 8 bits, half to even like
// WGSL round().
func quantize(c float32) byte {
	c = min(max(c, 0), 1)
	return byte(math.RoundToEven(float64(c * 255)))
}

// normalize converts 8-bit channels to floats in [0,1].
func normalize(src []byte) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v) / 255
	}
	return out
}

// resampler holds one frame's source texels.
type resampler struct {
	src    []float32
	geom   upscale.Geometry
	scaleX float32
	scaleY float32
}

func newResampler(input []byte, g upscale.Geometry) *resampler {
	return &resampler{
		src:    normalize(input),
		geom:   g,
		scaleX: float32(g.RenderW) / float32(g.OutputW),
		scaleY: float32(g.RenderH) / float32(g.OutputH),
	}
}

// texel returns channel ch of the source pixel (x, y), clamped to the border.
func (r *resampler) texel(x, y, ch int) float32 {
	x = min(max(x, 0), r.geom.RenderW-1)
	y = min(max(y, 0), r.geom.RenderH-1)
	return r.src[(y*r.geom.RenderW+x)*4+ch]
}

func (r *resampler) row(x, y, ch int, t float32) float32 {
	return cubic(r.texel(x-1, y, ch), r.texel(x, y, ch), r.texel(x+1, y, ch), r.texel(x+2, y, ch), t)
}

// tile writes the output pixels of one tile into dst.
func (r *resampler) tile(dst []byte, tile parallel.Tile) {
	outW := r.geom.OutputW
	for oy := tile.Y; oy < tile.Y+tile.Height; oy++ {
		py := float32(oy) * r.scaleY
		by := float32(math.Floor(float64(py)))
		ty := py - by
		y := int(by)
		for ox := tile.X; ox < tile.X+tile.Width; ox++ {
			px := float32(ox) * r.scaleX
			bx := float32(math.Floor(float64(px)))
			tx := px - bx
			x := int(bx)
			off := (oy*outW + ox) * 4
			for ch := range 4 {
				c := cubic(r.row(x, y-1, ch, tx), r.row(x, y, ch, tx), r.row(x, y+1, ch, tx), r.row(x, y+2, ch, tx), ty)
				dst[off+ch] = quantize(c)
			}
		}
	}
}

// resampleCPU runs the kernel over every output tile.
func resampleCPU(d *parallel.TileDispatcher, input []byte, g upscale.Geometry) []byte {
	r := newResampler(input, g)
	dst := make([]byte, g.OutputW*g.OutputH*4)
	d.Dispatch(g.OutputW, g.OutputH, func(t parallel.Tile) {
		r.tile(dst, t)
	})
	return dst
}
