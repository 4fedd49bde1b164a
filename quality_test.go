// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upscale

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/upscale/sdk/ffx"
	"github.com/gogpu/upscale/sdk/ngx"
)

func TestResolutionMultipliersInRange(t *testing.T) {
	for _, q := range Qualities {
		w, h, err := ResolutionMultipliers(q)
		if err != nil {
			t.Fatalf("ResolutionMultipliers(%s) error: %v", q, err)
		}
		if w <= 0 || w > 1 || h <= 0 || h > 1 {
			t.Errorf("ResolutionMultipliers(%s) = (%v, %v), want (0, 1]", q, w, h)
		}
	}
	w, h, _ := ResolutionMultipliers(QualityNative)
	if w != 1 || h != 1 {
		t.Errorf("native multipliers = (%v, %v), want (1, 1)", w, h)
	}
}

func TestResolutionMultipliersRejectsUnknownTier(t *testing.T) {
	if _, _, err := ResolutionMultipliers(Quality(42)); !errors.Is(err, ErrUnsupportedQuality) {
		t.Errorf("err = %v, want ErrUnsupportedQuality", err)
	}
}

func TestDefaultMultipliersValidate(t *testing.T) {
	if err := DefaultMultipliers.Validate(); err != nil {
		t.Fatalf("DefaultMultipliers.Validate() = %v", err)
	}
}

func TestMultiplierTableValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MultiplierTable)
	}{
		{"zero", func(m *MultiplierTable) { m[QualityPerformance] = 0 }},
		{"above one", func(m *MultiplierTable) { m[QualityQuality] = 1.2 }},
		{"nan", func(m *MultiplierTable) { m[QualityBalanced] = math.NaN() }},
		{"decreasing", func(m *MultiplierTable) { m[QualityUltraQuality] = 0.4 }},
		{"native not one", func(m *MultiplierTable) { m[QualityNative] = 0.9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMultipliers
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestRenderSize(t *testing.T) {
	tests := []struct {
		q            Quality
		outW, outH   int
		wantW, wantH int
	}{
		{QualityUltraPerformance, 3840, 2160, 1280, 720},
		{QualityPerformance, 3840, 2160, 1920, 1080},
		{QualityBalanced, 1920, 1080, 1114, 626},
		{QualityQuality, 1920, 1080, 1280, 720},
		{QualityQuality, 96, 96, 64, 64},
		{QualityUltraQuality, 1920, 1080, 1478, 832},
		{QualityNative, 1920, 1080, 1920, 1080},
		{QualityUltraPerformance, 1, 1, 1, 1},
	}
	for _, tt := range tests {
		gotW, gotH, err := RenderSize(tt.outW, tt.outH, tt.q)
		if err != nil {
			t.Fatalf("RenderSize(%d, %d, %s) error: %v", tt.outW, tt.outH, tt.q, err)
		}
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("RenderSize(%d, %d, %s) = %dx%d, want %dx%d",
				tt.outW, tt.outH, tt.q, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestRenderSizeInvalid(t *testing.T) {
	if _, _, err := RenderSize(0, 1080, QualityQuality); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
}

func TestNativeMode(t *testing.T) {
	tests := []struct {
		q    Quality
		kind Kind
		want int32
	}{
		{QualityUltraPerformance, KindComputeShader, 0},
		{QualityNative, KindComputeShader, 5},
		{QualityPerformance, KindVendorA, ngx.ModeMaxPerformance},
		{QualityQuality, KindVendorA, ngx.ModeMaxQuality},
		{QualityUltraPerformance, KindVendorA, ngx.ModeUltraPerformance},
		{QualityNative, KindVendorA, ngx.ModeDLAA},
		{QualityPerformance, KindVendorB, ffx.ModePerformance},
		{QualityBalanced, KindVendorB, ffx.ModeBalanced},
		{QualityUltraQuality, KindVendorB, ffx.ModeUltraQuality},
	}
	for _, tt := range tests {
		got, err := NativeMode(tt.q, tt.kind)
		if err != nil {
			t.Fatalf("NativeMode(%s, %s) error: %v", tt.q, tt.kind, err)
		}
		if got != tt.want {
			t.Errorf("NativeMode(%s, %s) = %d, want %d", tt.q, tt.kind, got, tt.want)
		}
	}
}

func TestNativeModeTotal(t *testing.T) {
	for _, kind := range Kinds {
		for _, q := range Qualities {
			_, err := NativeMode(q, kind)
			unsupported := kind == KindVendorB && q == QualityNative
			if unsupported != errors.Is(err, ErrUnsupportedQuality) {
				t.Errorf("NativeMode(%s, %s) err = %v", q, kind, err)
			}
			if !unsupported && err != nil {
				t.Errorf("NativeMode(%s, %s) unexpected error %v", q, kind, err)
			}
		}
	}
	if _, err := NativeMode(QualityQuality, Kind("metal")); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown kind err = %v, want ErrUnknownBackend", err)
	}
}

func TestParseQuality(t *testing.T) {
	for _, q := range Qualities {
		got, err := ParseQuality(q.String())
		if err != nil || got != q {
			t.Errorf("ParseQuality(%q) = %v, %v", q.String(), got, err)
		}
	}
	aliases := map[string]Quality{
		"Ultra_Performance": QualityUltraPerformance,
		"ultraquality":      QualityUltraQuality,
		" Native ":          QualityNative,
	}
	for in, want := range aliases {
		if got, err := ParseQuality(in); err != nil || got != want {
			t.Errorf("ParseQuality(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseQuality("extreme"); !errors.Is(err, ErrUnsupportedQuality) {
		t.Errorf("ParseQuality(extreme) err = %v", err)
	}
}
