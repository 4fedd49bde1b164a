// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/upscale/sdk/ffx"
	"github.com/gogpu/upscale/sdk/ngx"
)

// Quality is an upscaling quality tier. Lower tiers render at a smaller
// resolution and leave more of the work to the upscaler.
type Quality int

const (
	QualityUltraPerformance Quality = iota
	QualityPerformance
	QualityBalanced
	QualityQuality
	QualityUltraQuality
	// QualityNative renders at output resolution (anti-aliasing only).
	QualityNative
)

// Qualities lists every tier from fastest to best.
var Qualities = []Quality{
	QualityUltraPerformance,
	QualityPerformance,
	QualityBalanced,
	QualityQuality,
	QualityUltraQuality,
	QualityNative,
}

var qualityNames = [...]string{
	QualityUltraPerformance: "ultra-performance",
	QualityPerformance:      "performance",
	QualityBalanced:         "balanced",
	QualityQuality:          "quality",
	QualityUltraQuality:     "ultra-quality",
	QualityNative:           "native",
}

// Valid reports whether q is one of the defined tiers.
func (q Quality) Valid() bool {
	return q >= QualityUltraPerformance && q <= QualityNative
}

// String returns the lowercase name used in configuration files.
func (q Quality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("quality(%d)", int(q))
	}
	return qualityNames[q]
}

// ParseQuality parses a tier name. Matching ignores case, and underscores
// or spaces may replace the hyphen.
func ParseQuality(s string) (Quality, error) {
	norm := strings.NewReplacer("_", "-", " ", "-").Replace(strings.ToLower(strings.TrimSpace(s)))
	for q, name := range qualityNames {
		if name == norm || strings.ReplaceAll(name, "-", "") == norm {
			return Quality(q), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedQuality, s)
}

// MultiplierTable holds the render-to-output ratio of each tier.
type MultiplierTable [len(qualityNames)]float64

// DefaultMultipliers are the ratios used unless a pipeline is configured
// otherwise.
var DefaultMultipliers = MultiplierTable{
	QualityUltraPerformance: 1.0 / 3.0,
	QualityPerformance:      0.5,
	QualityBalanced:         0.58,
	QualityQuality:          2.0 / 3.0,
	QualityUltraQuality:     0.77,
	QualityNative:           1.0,
}

// Validate checks that every ratio is in (0, 1], that Native is exactly 1
// and that ratios do not decrease from lower to higher tiers.
func (m MultiplierTable) Validate() error {
	for i, r := range m {
		if math.IsNaN(r) || r <= 0 || r > 1 {
			return fmt.Errorf("upscale: multiplier for %s is %v, want (0, 1]", Quality(i), r)
		}
		if i > 0 && r < m[i-1] {
			return fmt.Errorf("upscale: multiplier for %s (%v) is below %s (%v)", Quality(i), r, Quality(i-1), m[i-1])
		}
	}
	if m[QualityNative] != 1 {
		return fmt.Errorf("upscale: native multiplier is %v, want 1", m[QualityNative])
	}
	return nil
}

// Ratio returns the multiplier for q.
func (m MultiplierTable) Ratio(q Quality) (float64, error) {
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedQuality, q)
	}
	return m[q], nil
}

// RenderSize returns the render dimensions for the given output dimensions:
// each axis is round(out*ratio), never below one pixel.
func (m MultiplierTable) RenderSize(outW, outH int, q Quality) (int, int, error) {
	if outW <= 0 || outH <= 0 {
		return 0, 0, fmt.Errorf("%w: output %dx%d", ErrInvalidDimensions, outW, outH)
	}
	r, err := m.Ratio(q)
	if err != nil {
		return 0, 0, err
	}
	return scaleDim(outW, r), scaleDim(outH, r), nil
}

func scaleDim(n int, r float64) int {
	return max(1, int(math.Round(float64(n)*r)))
}

// ResolutionMultipliers returns the (width, height) render multipliers of q
// from DefaultMultipliers. Both axes use the same ratio.
func ResolutionMultipliers(q Quality) (w, h float64, err error) {
	r, err := DefaultMultipliers.Ratio(q)
	if err != nil {
		return 0, 0, err
	}
	return r, r, nil
}

// RenderSize returns the render dimensions for an output size using
// DefaultMultipliers.
func RenderSize(outW, outH int, q Quality) (int, int, error) {
	return DefaultMultipliers.RenderSize(outW, outH, q)
}

// NativeMode returns the backend-specific mode code for q.
//
// The compute shader uses the tier ordinal. VendorA maps Native to its
// DLAA mode. VendorB has no native mode and rejects it.
func NativeMode(q Quality, kind Kind) (int32, error) {
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedQuality, q)
	}
	switch kind {
	case KindComputeShader:
		return int32(q), nil
	case KindVendorA:
		return [...]int32{
			QualityUltraPerformance: ngx.ModeUltraPerformance,
			QualityPerformance:      ngx.ModeMaxPerformance,
			QualityBalanced:         ngx.ModeBalanced,
			QualityQuality:          ngx.ModeMaxQuality,
			QualityUltraQuality:     ngx.ModeUltraQuality,
			QualityNative:           ngx.ModeDLAA,
		}[q], nil
	case KindVendorB:
		if q == QualityNative {
			return 0, fmt.Errorf("%w: %s has no native mode", ErrUnsupportedQuality, kind)
		}
		return [...]int32{
			QualityUltraPerformance: ffx.ModeUltraPerformance,
			QualityPerformance:      ffx.ModePerformance,
			QualityBalanced:         ffx.ModeBalanced,
			QualityQuality:          ffx.ModeQuality,
			QualityUltraQuality:     ffx.ModeUltraQuality,
		}[q], nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownBackend, kind)
	}
}
