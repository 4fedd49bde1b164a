// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel runs per-pixel kernels over an image in square tiles on
// a work-stealing goroutine pool.
//
// Tiles never overlap, so a kernel that writes only the pixels of its own
// tile produces the same image regardless of scheduling order.
//
// Thread safety: WorkerPool and TileDispatcher are safe for concurrent use.
package parallel

// TileSize is the edge length of a tile in pixels. It matches the compute
// shader's 16x16 workgroup so both paths cover the image the same way.
const TileSize = 16

// Tile is a rectangular region of the output image.
type Tile struct {
	// X and Y are the top-left pixel of the tile.
	X, Y int

	// Width and Height are the actual size; edge tiles may be smaller than
	// TileSize.
	Width, Height int
}

// Contains reports whether pixel (x, y) lies inside the tile.
func (t Tile) Contains(x, y int) bool {
	return x >= t.X && x < t.X+t.Width && y >= t.Y && y < t.Y+t.Height
}

// Pixels returns the number of pixels covered by the tile.
func (t Tile) Pixels() int {
	return t.Width * t.Height
}

// Tiles splits a width x height image into tiles of size pixels, in
// row-major order. It returns nil for an empty image.
func Tiles(width, height, size int) []Tile {
	if width <= 0 || height <= 0 {
		return nil
	}
	if size <= 0 {
		size = TileSize
	}
	tilesX := (width + size - 1) / size
	tilesY := (height + size - 1) / size

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			t := Tile{X: tx * size, Y: ty * size, Width: size, Height: size}
			// Right and bottom edge tiles
			if t.X+t.Width > width {
				t.Width = width - t.X
			}
			if t.Y+t.Height > height {
				t.Height = height - t.Y
			}
			tiles = append(tiles, t)
		}
	}
	return tiles
}
