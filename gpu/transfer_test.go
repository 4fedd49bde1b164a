// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"bytes"
	"testing"
)

func TestAlignedStride(t *testing.T) {
	tests := []struct {
		width, bpp int
		want       int
	}{
		{1, 4, 256},
		{64, 4, 256},
		{65, 4, 512},
		{96, 4, 512},
		{100, 3, 512},
		{1920, 4, 7680},
	}
	for _, tt := range tests {
		if got := AlignedStride(tt.width, tt.bpp); got != tt.want {
			t.Errorf("AlignedStride(%d, %d) = %d, want %d", tt.width, tt.bpp, got, tt.want)
		}
	}
}

func TestPadStripRoundTrip(t *testing.T) {
	const w, h, bpp = 65, 7, 4
	tight := TightStride(w, bpp)
	aligned := AlignedStride(w, bpp)

	src := make([]byte, tight*h)
	for i := range src {
		src[i] = byte(i * 31)
	}
	padded := PadRows(src, tight, aligned, h)
	if len(padded) != aligned*h {
		t.Fatalf("padded length = %d, want %d", len(padded), aligned*h)
	}
	// Padding bytes stay zero.
	for row := range h {
		for _, b := range padded[row*aligned+tight : (row+1)*aligned] {
			if b != 0 {
				t.Fatalf("row %d padding not zero", row)
			}
		}
	}

	out := make([]byte, tight*h)
	StripRows(out, padded, tight, aligned, h)
	if !bytes.Equal(out, src) {
		t.Error("strip(pad(x)) != x")
	}
}

func TestStripRowsNoPadding(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 8)
	StripRows(dst, src, 4, 4, 2)
	if !bytes.Equal(dst, src) {
		t.Errorf("got %v, want %v", dst, src)
	}
}

func TestMapAndStripReleasesRangeThenUnmaps(t *testing.T) {
	const width, height, bpp = 3, 2, 4
	stride := AlignedStride(width, bpp)
	buf, err := newHostBuffer(uint64(stride*height), "readback")
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Destroy()
	src := buf.hostBytes()
	for row := range height {
		for i := range width * bpp {
			src[row*stride+i] = byte(row*100 + i)
		}
	}

	out, err := mapAndStrip(buf, width, height, bpp, stride, DefaultWaitTimeout)
	if err != nil {
		t.Fatalf("mapAndStrip: %v", err)
	}
	if len(out) != width*height*bpp || out[width*bpp] != 100 {
		t.Errorf("out = %v", out)
	}
	if !buf.RangeReleased() {
		t.Error("mapped range was not released")
	}
	if buf.MapState() != BufferMapStateUnmapped {
		t.Errorf("state = %v, want Unmapped", buf.MapState())
	}
}
