// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/upscale/gpu"
)

// Config selects what a Pipeline produces.
type Config struct {
	Quality Quality

	// Backend selects the upscaler. Empty picks RecommendedBackend for the
	// adapter.
	Backend Kind

	// OutputWidth and OutputHeight are the presentation size. Zero derives
	// the size from the input frame and the quality ratio.
	OutputWidth  int
	OutputHeight int
}

// Validate checks the quality, the backend name and the output size.
func (c Config) Validate() error {
	if !c.Quality.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedQuality, c.Quality)
	}
	if c.Backend != "" {
		if _, err := ParseKind(string(c.Backend)); err != nil {
			return err
		}
	}
	if c.OutputWidth < 0 || c.OutputHeight < 0 || (c.OutputWidth == 0) != (c.OutputHeight == 0) {
		return fmt.Errorf("%w: output %dx%d", ErrInvalidDimensions, c.OutputWidth, c.OutputHeight)
	}
	return nil
}

// Stats are pipeline counters.
type Stats struct {
	Frames            uint64
	Errors            uint64
	Reinitializations uint64
	Fallbacks         uint64

	// Backend is the kind currently processing frames.
	Backend Kind
	// Geometry is the geometry of the last initialized session.
	Geometry Geometry
}

// Pipeline turns captured frames into upscaled frames.
//
// It owns one GPU context and one backend session, re-initializes the
// session when the frame geometry or configuration changes, and falls back
// to the compute-shader backend when a vendor backend is permanently
// unavailable. Process calls are serialized.
type Pipeline struct {
	mu sync.Mutex

	cfg  Config
	opts options

	ctx     gpu.Context
	release func()

	backend Backend
	active  Kind
	format  gpu.Format
	geom    Geometry
	quality Quality
	ready   bool

	lost   bool
	closed bool
	stats  Stats
}

// New creates a pipeline. Without WithContext it opens a device with
// gpu.Open, so it succeeds even on machines without a GPU.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.multipliers.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend != "" {
		cfg.Backend, _ = ParseKind(string(cfg.Backend))
	}

	p := &Pipeline{cfg: cfg, opts: o}
	if o.ctx != nil {
		p.ctx = o.ctx
		p.release = gpu.Borrow(o.ctx)
	} else {
		shared := gpu.NewShared(gpu.Open(gpu.OpenOptions{
			ForceSoftware: o.forceSoftware,
			WaitTimeout:   o.waitTimeout,
			Strategy:      o.strategy,
		}))
		p.ctx = shared
		p.release = shared.Release
	}
	Logger().Info("upscale: pipeline created",
		"adapter", p.ctx.Info().String(), "backend", p.requestedKind(), "quality", cfg.Quality)
	return p, nil
}

// Context returns the GPU context frames are processed on.
func (p *Pipeline) Context() gpu.Context { return p.ctx }

// requestedKind resolves an empty Config.Backend.
func (p *Pipeline) requestedKind() Kind {
	if p.cfg.Backend != "" {
		return p.cfg.Backend
	}
	return RecommendedBackend(p.ctx.Info())
}

// Config returns the current configuration.
func (p *Pipeline) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Configure replaces the configuration. A changed backend closes the
// current session; a changed quality or output size re-initializes it on
// the next frame.
func (p *Pipeline) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Backend != "" {
		cfg.Backend, _ = ParseKind(string(cfg.Backend))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	old := p.cfg
	p.cfg = cfg
	if cfg.Backend != old.Backend {
		p.dropBackend()
		p.active = ""
		return nil
	}
	if cfg.Quality != old.Quality && p.backend != nil {
		if err := p.backend.SetQuality(cfg.Quality); err != nil {
			// The current backend has no mode for the tier; start over so
			// fallback can pick another one.
			Logger().Warn("upscale: quality change rejected, recreating backend",
				"backend", p.active, "quality", cfg.Quality, "err", err)
			p.dropBackend()
			p.active = ""
		}
	}
	return nil
}

// RenderSize returns the capture size producers should supply for the
// configured output size and quality.
func (p *Pipeline) RenderSize() (int, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts.multipliers.RenderSize(p.cfg.OutputWidth, p.cfg.OutputHeight, p.cfg.Quality)
}

// Stats returns a snapshot of the counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Backend = p.active
	return s
}

// BackendName returns the name of the active backend, or "" before the
// first frame.
func (p *Pipeline) BackendName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend == nil {
		return ""
	}
	return p.backend.Name()
}

// Process upscales one frame. The result has the configured output size
// (or the size derived from the quality ratio) and the input's format.
func (p *Pipeline) Process(in Frame) (Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Frame{}, ErrClosed
	}
	if p.lost {
		return Frame{}, ErrDeviceLost
	}
	if err := in.Validate(); err != nil {
		return Frame{}, err
	}

	geom, err := p.geometryFor(in)
	if err != nil {
		return Frame{}, err
	}
	data := in.Data
	if in.Format == FormatRGB8 {
		data = expandRGB(data)
	}
	format := in.Format.textureFormat()

	out, err := p.run(geom, format, data)
	if err != nil && IsPermanent(err) && p.canFallBack() {
		Logger().Warn("upscale: backend unavailable, falling back to compute shader",
			"backend", p.active, "err", err)
		p.dropBackend()
		p.active = KindComputeShader
		p.stats.Fallbacks++
		out, err = p.run(geom, format, data)
	}
	if err != nil {
		p.stats.Errors++
		if errors.Is(err, ErrDeviceLost) || p.ctx.Lost() {
			Logger().Error("upscale: device lost, pipeline disabled", "err", err)
			p.lost = true
			p.dropBackend()
			return Frame{}, fmt.Errorf("process frame: %w", ErrDeviceLost)
		}
		return Frame{}, fmt.Errorf("process frame %s: %w", geom, err)
	}

	p.stats.Frames++
	if in.Format == FormatRGB8 {
		out = packRGB(out)
	}
	return Frame{Data: out, Width: geom.OutputW, Height: geom.OutputH, Format: in.Format}, nil
}

// geometryFor computes the session geometry for an input frame.
func (p *Pipeline) geometryFor(in Frame) (Geometry, error) {
	g := Geometry{RenderW: in.Width, RenderH: in.Height, OutputW: p.cfg.OutputWidth, OutputH: p.cfg.OutputHeight}
	if g.OutputW == 0 {
		r, err := p.opts.multipliers.Ratio(p.cfg.Quality)
		if err != nil {
			return Geometry{}, err
		}
		g.OutputW = max(1, int(math.Round(float64(in.Width)/r)))
		g.OutputH = max(1, int(math.Round(float64(in.Height)/r)))
	}
	return g, g.Validate()
}

func (p *Pipeline) canFallBack() bool {
	return p.opts.fallback && p.active != KindComputeShader && !p.ctx.Lost()
}

// run makes sure a session for geom exists and processes one frame on it.
func (p *Pipeline) run(geom Geometry, format gpu.Format, data []byte) ([]byte, error) {
	if p.backend != nil && p.format != format {
		p.dropBackend()
	}
	if p.backend == nil {
		if p.active == "" {
			p.active = p.requestedKind()
		}
		b, err := NewBackendWithOptions(p.active, p.ctx, p.opts.backendOptions(p.active, p.cfg.Quality, format))
		if err != nil {
			return nil, err
		}
		p.backend = b
		p.format = format
		p.ready = false
		Logger().Info("upscale: backend created", "backend", b.Name(), "quality", p.cfg.Quality)
	}

	if p.ready && (geom != p.geom || p.quality != p.cfg.Quality) {
		p.stats.Reinitializations++
		Logger().Debug("upscale: re-initializing", "backend", p.active, "from", p.geom, "to", geom)
	}
	if p.backend.Quality() != p.cfg.Quality {
		if err := p.backend.SetQuality(p.cfg.Quality); err != nil {
			return nil, err
		}
	}
	if err := p.backend.Initialize(geom.RenderW, geom.RenderH, geom.OutputW, geom.OutputH); err != nil {
		p.ready = false
		return nil, err
	}
	p.geom = geom
	p.quality = p.cfg.Quality
	p.ready = true
	p.stats.Geometry = geom
	return p.backend.Upscale(data)
}

// dropBackend closes the current session. The next frame creates a new one
// of the active kind, or of the requested kind once active is cleared.
func (p *Pipeline) dropBackend() {
	if p.backend != nil {
		p.backend.Close()
		p.backend = nil
	}
	p.ready = false
}

// Close releases the session and the pipeline's context reference.
// It is idempotent and never fails.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.dropBackend()
	p.release()
}
