// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/gogpu/upscale"
)

// readFrame decodes a PNG, JPEG or BMP file into an RGBA frame.
func readFrame(path string) (upscale.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return upscale.Frame{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return upscale.Frame{}, fmt.Errorf("decode %s: %w", path, err)
	}
	rgba := toRGBA(img)
	b := rgba.Bounds()
	return upscale.Frame{Data: rgba.Pix, Width: b.Dx(), Height: b.Dy(), Format: upscale.FormatRGBA8}, nil
}

// toRGBA returns img as a tightly packed *image.RGBA at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// frameImage wraps an RGBA frame without copying.
func frameImage(fr upscale.Frame) *image.RGBA {
	return &image.RGBA{
		Pix:    fr.Data,
		Stride: fr.Width * 4,
		Rect:   image.Rect(0, 0, fr.Width, fr.Height),
	}
}

// referenceImage scales src with the CPU Catmull-Rom filter for visual
// comparison.
func referenceImage(src upscale.Frame, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), frameImage(src), image.Rect(0, 0, src.Width, src.Height), draw.Src, nil)
	return dst
}

// writePNG encodes img to path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// outputPath returns dir/<base>.<suffix>.png, or dir/<base>.png without a
// suffix.
func outputPath(dir, input, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if suffix != "" {
		base += "." + suffix
	}
	return filepath.Join(dir, base+".png")
}
