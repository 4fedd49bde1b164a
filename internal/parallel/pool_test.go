// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func tilesN(n int) []Tile {
	tiles := make([]Tile, n)
	for i := range tiles {
		tiles[i] = Tile{X: i * TileSize, Width: TileSize, Height: TileSize}
	}
	return tiles
}

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want GOMAXPROCS", n, pool.Workers())
		}
		pool.Close()
	}
}

func TestWorkerPool_RunEveryTileOnce(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const n = 100
	var seen [n]atomic.Int32
	pool.Run(tilesN(n), func(tile Tile) {
		seen[tile.X/TileSize].Add(1)
	})
	for i := range seen {
		if got := seen[i].Load(); got != 1 {
			t.Fatalf("tile %d ran %d times, want 1", i, got)
		}
	}
}

func TestWorkerPool_RunEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	called := false
	pool.Run(nil, func(Tile) { called = true })
	if called {
		t.Error("kernel called for an empty tile list")
	}
}

func TestWorkerPool_RunAfterCloseRunsInline(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()

	var count int
	pool.Run(tilesN(3), func(Tile) { count++ })
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()
	pool.Close()
	if pool.IsRunning() {
		t.Error("pool still running after Close")
	}
}

func TestWorkerPool_ConcurrentRuns(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const callers, perCaller = 10, 50
	var total atomic.Int64
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Run(tilesN(perCaller), func(Tile) { total.Add(1) })
		}()
	}
	wg.Wait()

	if got := total.Load(); got != callers*perCaller {
		t.Errorf("total = %d, want %d", got, callers*perCaller)
	}
}

func TestWorkerPool_Stealing(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// Every fourth tile lands on worker 0 and is slow.
	var slow, fast atomic.Int64
	pool.Run(tilesN(40), func(tile Tile) {
		if (tile.X/TileSize)%4 == 0 {
			time.Sleep(5 * time.Millisecond)
			slow.Add(1)
			return
		}
		fast.Add(1)
	})
	if slow.Load() != 10 || fast.Load() != 30 {
		t.Errorf("slow = %d, fast = %d; want 10, 30", slow.Load(), fast.Load())
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for range 5 {
		pool := NewWorkerPool(4)
		pool.Run(tilesN(100), func(Tile) {})
		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	if final := runtime.NumGoroutine(); final > baseline+2 {
		t.Errorf("goroutines: baseline %d, final %d", baseline, final)
	}
}
