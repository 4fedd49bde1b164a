// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "testing"

func hostAlloc(size uint64) (*Buffer, error) { return newHostBuffer(size, "test") }

func TestStagingPoolReuse(t *testing.T) {
	p := NewStagingPool(StrategyBalanced, hostAlloc)
	defer p.Close()

	a, err := p.Acquire(1024)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(a)
	b, err := p.Acquire(1024)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if a != b {
		t.Error("expected pooled buffer to be reused")
	}
	st := p.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", st)
	}
	p.Release(b)
}

func TestStagingPoolRetentionLimit(t *testing.T) {
	tests := []struct {
		strategy AllocationStrategy
		want     int
	}{
		{StrategyAggressive, 8},
		{StrategyBalanced, 4},
		{StrategyConservative, 2},
		{StrategyMinimal, 0},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			p := NewStagingPool(tt.strategy, hostAlloc)
			defer p.Close()
			bufs := make([]*Buffer, 10)
			for i := range bufs {
				bufs[i], _ = p.Acquire(256)
			}
			destroyed := 0
			for _, b := range bufs {
				p.Release(b)
			}
			for _, b := range bufs {
				if b.IsDestroyed() {
					destroyed++
				}
			}
			if got := p.Stats().Pooled; got != tt.want {
				t.Errorf("pooled = %d, want %d", got, tt.want)
			}
			if destroyed != 10-tt.want {
				t.Errorf("destroyed = %d, want %d", destroyed, 10-tt.want)
			}
		})
	}
}

func TestStagingPoolClose(t *testing.T) {
	p := NewStagingPool(StrategyAggressive, hostAlloc)
	b, _ := p.Acquire(512)
	p.Release(b)
	p.Close()
	if !b.IsDestroyed() {
		t.Error("Close should destroy pooled buffers")
	}
	if _, err := p.Acquire(512); err != ErrClosed {
		t.Errorf("Acquire after Close = %v, want ErrClosed", err)
	}
}

func TestParseAllocationStrategy(t *testing.T) {
	for _, s := range []string{"auto", "aggressive", "balanced", "conservative", "minimal"} {
		st, err := ParseAllocationStrategy(s)
		if err != nil || st.String() != s {
			t.Errorf("ParseAllocationStrategy(%q) = %v, %v", s, st, err)
		}
	}
	if _, err := ParseAllocationStrategy("hoard"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestStrategyFor(t *testing.T) {
	if got := StrategyFor(AdapterInfo{Discrete: true}); got != StrategyBalanced {
		t.Errorf("discrete = %v", got)
	}
	if got := StrategyFor(AdapterInfo{}); got != StrategyConservative {
		t.Errorf("integrated = %v", got)
	}
	if got := StrategyFor(AdapterInfo{Software: true}); got != StrategyMinimal {
		t.Errorf("software = %v", got)
	}
}
