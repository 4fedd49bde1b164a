// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

// TileDispatcher runs a kernel over every tile of an image.
type TileDispatcher struct {
	pool     *WorkerPool
	tileSize int
}

// NewTileDispatcher creates a dispatcher with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewTileDispatcher(workers int) *TileDispatcher {
	return &TileDispatcher{pool: NewWorkerPool(workers), tileSize: TileSize}
}

// Dispatch calls fn once for every tile of a width x height image and
// returns when all calls have finished. fn must only write pixels inside
// the tile it is given.
//
// After Close, Dispatch runs fn on the calling goroutine.
func (d *TileDispatcher) Dispatch(width, height int, fn func(Tile)) {
	tiles := Tiles(width, height, d.tileSize)
	if len(tiles) == 1 {
		fn(tiles[0])
		return
	}
	d.pool.Run(tiles, fn)
}

// Workers returns the number of pool workers.
func (d *TileDispatcher) Workers() int {
	return d.pool.Workers()
}

// Close stops the workers. It is safe to call multiple times.
func (d *TileDispatcher) Close() {
	d.pool.Close()
}
