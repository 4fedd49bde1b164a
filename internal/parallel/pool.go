// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// batch is one call of Run: a kernel and the tiles it still has to cover.
type batch struct {
	kernel  func(Tile)
	pending sync.WaitGroup
}

// job is a single tile of a batch.
type job struct {
	tile Tile
	b    *batch
}

func (j job) run() {
	defer j.b.pending.Done()
	j.b.kernel(j.tile)
}

// WorkerPool runs tile kernels on a fixed set of goroutines.
//
// Each worker owns a queue. Run deals tiles round-robin and idle workers
// steal from their neighbours, so edge tiles that finish early do not
// leave workers idle.
type WorkerPool struct {
	workers int
	queues  []chan job
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	depth := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan job, workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan job, depth)
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.loop(i)
	}
	return p
}

func (p *WorkerPool) loop(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case j := <-own:
			j.run()
			continue
		case <-p.done:
			p.drain(own)
			return
		default:
		}

		if j, ok := p.steal(id); ok {
			j.run()
			continue
		}
		select {
		case j := <-own:
			j.run()
		case <-p.done:
			p.drain(own)
			return
		}
	}
}

// drain runs whatever is left in q after shutdown.
func (p *WorkerPool) drain(q chan job) {
	for {
		select {
		case j := <-q:
			j.run()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) (job, bool) {
	for i := 1; i < p.workers; i++ {
		select {
		case j := <-p.queues[(id+i)%p.workers]:
			return j, true
		default:
		}
	}
	return job{}, false
}

// Run calls kernel once per tile and returns when every call has finished.
// On a closed pool the tiles run on the calling goroutine.
func (p *WorkerPool) Run(tiles []Tile, kernel func(Tile)) {
	if len(tiles) == 0 {
		return
	}
	if !p.running.Load() {
		for _, t := range tiles {
			kernel(t)
		}
		return
	}

	b := &batch{kernel: kernel}
	b.pending.Add(len(tiles))
	for i, t := range tiles {
		j := job{tile: t, b: b}
		select {
		case p.queues[i%p.workers] <- j:
		case <-p.done:
			j.run()
		}
	}
	b.pending.Wait()
}

// Close stops the workers after the queued tiles have run. It is safe to
// call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
