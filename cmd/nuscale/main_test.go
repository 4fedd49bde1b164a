// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/upscale"
)

// isolate keeps tests away from real configuration files.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Cleanup(func() { upscale.SetLogger(nil) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	require.NoError(t, writePNG(path, img))
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nuscale "+upscale.Version)
	assert.Contains(t, out, "commit: "+commit)
}

func TestInfo(t *testing.T) {
	isolate(t)
	out, err := execute(t, "info", "--software", "-q", "balanced")
	require.NoError(t, err)
	assert.Contains(t, out, "backends:")
	assert.Contains(t, out, "compute")
	assert.Contains(t, out, "quality:     balanced")
	assert.Contains(t, out, "config:      (none)")
}

func TestInvalidQualityFlag(t *testing.T) {
	isolate(t)
	_, err := execute(t, "info", "--quality", "extreme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--quality")
}

func TestUpscale(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.png")
	writeTestPNG(t, in, 32, 16)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "upscale", "--software", "-b", "compute", "-q", "performance",
		"--reference", "-o", outDir, in)
	require.NoError(t, err)
	assert.Contains(t, out, "32x16 -> 64x32")

	img := decodePNG(t, filepath.Join(outDir, "frame.png"))
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())
	ref := decodePNG(t, filepath.Join(outDir, "frame.reference.png"))
	assert.Equal(t, img.Bounds(), ref.Bounds())
}

func TestUpscaleExplicitSize(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	for _, f := range files {
		writeTestPNG(t, f, 20, 10)
	}
	outDir := filepath.Join(dir, "out")

	args := append([]string{"upscale", "--software", "-b", "compute", "--width", "50", "--height", "25", "-j", "2", "-o", outDir}, files...)
	_, err := execute(t, args...)
	require.NoError(t, err)
	for _, name := range []string{"a.png", "b.png"} {
		img := decodePNG(t, filepath.Join(outDir, name))
		assert.Equal(t, image.Rect(0, 0, 50, 25), img.Bounds(), name)
	}
}

func TestUpscaleMissingOutput(t *testing.T) {
	isolate(t)
	_, err := execute(t, "upscale", "in.png")
	require.Error(t, err)
}

func TestUpscaleBadInput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))
	_, err := execute(t, "upscale", "--software", "-o", dir, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestBench(t *testing.T) {
	isolate(t)
	out, err := execute(t, "bench", "--software", "--backends", "compute",
		"--qualities", "performance,quality", "--frames", "2", "--width", "64", "--height", "32")
	require.NoError(t, err)
	assert.Contains(t, out, "adapter:")
	assert.Contains(t, out, "performance")
	assert.Contains(t, out, "quality")
}

func TestBenchUnknownBackend(t *testing.T) {
	isolate(t)
	_, err := execute(t, "bench", "--software", "--backends", "turbo")
	require.ErrorIs(t, err, upscale.ErrUnknownBackend)
}

func TestConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: ultra-quality\ngpu:\n  force_software: true\n"), 0o600))
	out, err := execute(t, "info", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "quality:     ultra-quality")
	assert.Contains(t, out, path)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "shot.png"), outputPath("out", "/tmp/shot.jpg", ""))
	assert.Equal(t, filepath.Join("out", "shot.reference.png"), outputPath("out", "shot.bmp", "reference"))
}
