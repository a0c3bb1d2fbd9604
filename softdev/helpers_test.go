// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"errors"
	"testing"

	"github.com/gogpu/exa"
)

// testSurface is a mapped allocation with typed pixel access.
type testSurface struct {
	exa.Surface
	bo exa.Bo
	v  *view
}

func newTestDevice(t *testing.T) (*Device, *Allocator) {
	t.Helper()
	d := New()
	a := NewAllocator()
	t.Cleanup(func() { _ = d.Close() })
	return d, a
}

func newTestSurface(t *testing.T, d *Device, a *Allocator, format exa.Format, w, h int) *testSurface {
	t.Helper()
	stride := (w*format.BitsPerPixel()/8 + 3) &^ 3
	bo, err := a.Alloc(stride * h)
	if err != nil {
		t.Fatalf("Alloc() = %v", err)
	}
	t.Cleanup(func() { _ = a.Free(bo) })
	mem, err := d.MapBo(bo)
	if err != nil {
		t.Fatalf("MapBo() = %v", err)
	}
	s := exa.Surface{Mem: mem, Format: format, Stride: stride, Width: w, Height: h}
	v, err := newView(s, bo.Bytes())
	if err != nil {
		t.Fatalf("newView() = %v", err)
	}
	return &testSurface{Surface: s, bo: bo, v: v}
}

func (s *testSurface) fill(p uint32) {
	for y := range s.Height {
		for x := range s.Width {
			s.v.set(x, y, p)
		}
	}
}

func (s *testSurface) row(y int) []uint32 {
	out := make([]uint32, s.Width)
	for x := range out {
		out[x] = s.v.get(x, y)
	}
	return out
}

func wantCode(t *testing.T, err error, code exa.ErrorCode) {
	t.Helper()
	var de *exa.DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want device error %s", err, code)
	}
	if de.Code != code {
		t.Fatalf("error code = %s, want %s", de.Code, code)
	}
}
