// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sync"
)

// AllocationStrategy controls how many idle staging buffers of each size
// are kept for reuse.
type AllocationStrategy int

const (
	// StrategyAuto picks a strategy from the adapter type.
	StrategyAuto AllocationStrategy = iota
	// StrategyAggressive keeps up to 8 buffers per size.
	StrategyAggressive
	// StrategyBalanced keeps up to 4 buffers per size.
	StrategyBalanced
	// StrategyConservative keeps up to 2 buffers per size.
	StrategyConservative
	// StrategyMinimal keeps nothing; every buffer is destroyed on release.
	StrategyMinimal
)

// MaxPooled returns the per-size retention limit.
func (s AllocationStrategy) MaxPooled() int {
	switch s {
	case StrategyAggressive:
		return 8
	case StrategyBalanced, StrategyAuto:
		return 4
	case StrategyConservative:
		return 2
	default:
		return 0
	}
}

// String returns the lowercase strategy name used in configuration.
func (s AllocationStrategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyAggressive:
		return "aggressive"
	case StrategyBalanced:
		return "balanced"
	case StrategyConservative:
		return "conservative"
	case StrategyMinimal:
		return "minimal"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseAllocationStrategy parses a configuration value.
func ParseAllocationStrategy(s string) (AllocationStrategy, error) {
	for st := StrategyAuto; st <= StrategyMinimal; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	if s == "" {
		return StrategyAuto, nil
	}
	return StrategyAuto, fmt.Errorf("gpu: unknown allocation strategy %q", s)
}

// StrategyFor picks a strategy for an adapter: discrete GPUs have memory to
// spare, integrated GPUs share it with the host, software devices gain
// nothing from pooling.
func StrategyFor(info AdapterInfo) AllocationStrategy {
	switch {
	case info.Software:
		return StrategyMinimal
	case info.Discrete:
		return StrategyBalanced
	default:
		return StrategyConservative
	}
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	Hits           uint64
	Misses         uint64
	Pooled         int
	PooledBytes    uint64
	AllocatedBytes uint64
}

// StagingPool recycles readback buffers by size.
type StagingPool struct {
	mu       sync.Mutex
	strategy AllocationStrategy
	alloc    func(size uint64) (*Buffer, error)
	free     map[uint64][]*Buffer
	stats    PoolStats
	closed   bool
}

// NewStagingPool creates a pool that allocates through alloc.
func NewStagingPool(strategy AllocationStrategy, alloc func(size uint64) (*Buffer, error)) *StagingPool {
	return &StagingPool{
		strategy: strategy,
		alloc:    alloc,
		free:     make(map[uint64][]*Buffer),
	}
}

// Strategy returns the retention policy.
func (p *StagingPool) Strategy() AllocationStrategy { return p.strategy }

// Acquire returns an unmapped buffer of exactly size bytes.
func (p *StagingPool) Acquire(size uint64) (*Buffer, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if list := p.free[size]; len(list) > 0 {
		buf := list[len(list)-1]
		p.free[size] = list[:len(list)-1]
		p.stats.Hits++
		p.stats.Pooled--
		p.stats.PooledBytes -= buf.Size()
		p.mu.Unlock()
		return buf, nil
	}
	p.stats.Misses++
	p.mu.Unlock()

	buf, err := p.alloc(size)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.stats.AllocatedBytes += buf.Size()
	p.mu.Unlock()
	slogger().Debug("gpu: staging buffer allocated", "size", size, "strategy", p.strategy.String())
	return buf, nil
}

// Release returns buf to the pool, or destroys it if the pool is full.
// The buffer must be unmapped.
func (p *StagingPool) Release(buf *Buffer) {
	if buf == nil || buf.IsDestroyed() {
		return
	}
	if buf.MapState() != BufferMapStateUnmapped {
		_ = buf.Unmap()
	}
	p.mu.Lock()
	if !p.closed && len(p.free[buf.Size()]) < p.strategy.MaxPooled() {
		p.free[buf.Size()] = append(p.free[buf.Size()], buf)
		p.stats.Pooled++
		p.stats.PooledBytes += buf.Size()
		p.mu.Unlock()
		return
	}
	p.stats.AllocatedBytes -= buf.Size()
	p.mu.Unlock()
	buf.Destroy()
}

// Stats returns a snapshot of pool counters.
func (p *StagingPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close destroys every pooled buffer. Later Acquire calls fail.
func (p *StagingPool) Close() {
	p.mu.Lock()
	free := p.free
	p.free = make(map[uint64][]*Buffer)
	p.closed = true
	p.stats.AllocatedBytes -= p.stats.PooledBytes
	p.stats.Pooled = 0
	p.stats.PooledBytes = 0
	p.mu.Unlock()

	for _, list := range free {
		for _, buf := range list {
			buf.Destroy()
		}
	}
}
