// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"sync"
	"testing"
)

func TestTiles(t *testing.T) {
	tests := []struct {
		w, h      int
		wantCount int
		last      Tile
	}{
		{16, 16, 1, Tile{0, 0, 16, 16}},
		{17, 16, 2, Tile{16, 0, 1, 16}},
		{96, 96, 36, Tile{80, 80, 16, 16}},
		{50, 20, 8, Tile{48, 16, 2, 4}},
		{1, 1, 1, Tile{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		tiles := Tiles(tt.w, tt.h, TileSize)
		if len(tiles) != tt.wantCount {
			t.Fatalf("Tiles(%d, %d) = %d tiles, want %d", tt.w, tt.h, len(tiles), tt.wantCount)
		}
		if got := tiles[len(tiles)-1]; got != tt.last {
			t.Errorf("Tiles(%d, %d) last = %+v, want %+v", tt.w, tt.h, got, tt.last)
		}
		pixels := 0
		for _, tile := range tiles {
			pixels += tile.Pixels()
		}
		if pixels != tt.w*tt.h {
			t.Errorf("Tiles(%d, %d) cover %d pixels, want %d", tt.w, tt.h, pixels, tt.w*tt.h)
		}
	}
	if Tiles(0, 10, TileSize) != nil {
		t.Error("Tiles of an empty image should be nil")
	}
}

func TestTileContains(t *testing.T) {
	tile := Tile{X: 16, Y: 32, Width: 4, Height: 2}
	if !tile.Contains(16, 32) || !tile.Contains(19, 33) {
		t.Error("corner pixels not contained")
	}
	if tile.Contains(20, 32) || tile.Contains(16, 34) || tile.Contains(15, 32) {
		t.Error("outside pixels contained")
	}
}

func TestDispatchCoversEveryPixelOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		d := NewTileDispatcher(workers)
		const w, h = 70, 45
		var mu sync.Mutex
		hits := make([]int, w*h)
		d.Dispatch(w, h, func(tile Tile) {
			mu.Lock()
			defer mu.Unlock()
			for y := tile.Y; y < tile.Y+tile.Height; y++ {
				for x := tile.X; x < tile.X+tile.Width; x++ {
					hits[y*w+x]++
				}
			}
		})
		d.Close()
		for i, n := range hits {
			if n != 1 {
				t.Fatalf("workers=%d: pixel %d visited %d times", workers, i, n)
			}
		}
	}
}

func TestDispatchAfterClose(t *testing.T) {
	d := NewTileDispatcher(2)
	d.Close()
	calls := 0
	d.Dispatch(32, 32, func(Tile) { calls++ })
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}
