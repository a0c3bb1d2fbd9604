package exa

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestMappingLRUBound(t *testing.T) {
	s := newTestScreen(t)

	pix := make([]*Pixmap, 40)
	for i := range pix {
		pix[i] = hostPixmap(16, 16, 32)
		if _, err := s.maps.acquire(pix[i]); err != nil {
			t.Fatalf("acquire(%d) = %v", i, err)
		}
		if n := s.maps.count(); n > DefaultMaxMappings {
			t.Fatalf("after acquire(%d): %d live mappings, want <= %d", i, n, DefaultMaxMappings)
		}
	}

	st := s.Stats().Mappings
	if st.Live != DefaultMaxMappings {
		t.Errorf("Live = %d, want %d", st.Live, DefaultMaxMappings)
	}
	if st.Evictions != 8 {
		t.Errorf("Evictions = %d, want 8", st.Evictions)
	}
	for i, p := range pix {
		if want := i >= 8; p.Mapped() != want {
			t.Errorf("pixmap %d Mapped() = %v, want %v", i, p.Mapped(), want)
		}
	}
	if len(s.dev.unmaps) != 8 {
		t.Errorf("device unmaps = %d, want 8", len(s.dev.unmaps))
	}
}

func TestMappingEvictsLeastRecentlyUsed(t *testing.T) {
	s := newTestScreen(t, withConfig(func(c *Config) { c.MaxMappings = 4 }))

	pix := make([]*Pixmap, 5)
	for i := range pix {
		pix[i] = hostPixmap(8, 8, 32)
	}
	for _, p := range pix[:4] {
		if _, err := s.maps.acquire(p); err != nil {
			t.Fatal(err)
		}
	}

	// Touch the oldest so the second one becomes the victim.
	if _, err := s.maps.acquire(pix[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := s.maps.acquire(pix[4]); err != nil {
		t.Fatal(err)
	}

	got := make([]bool, len(pix))
	for i, p := range pix {
		got[i] = p.Mapped()
	}
	want := []bool{true, false, true, true, true}
	if !slices.Equal(got, want) {
		t.Errorf("mapped = %v, want %v", got, want)
	}
}

func TestMappingHitReusesMapping(t *testing.T) {
	s := newTestScreen(t)
	p := hostPixmap(8, 8, 32)

	m1, err := s.maps.acquire(p)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := s.maps.acquire(p)
	if err != nil {
		t.Fatal(err)
	}
	if m1 != m2 {
		t.Error("second acquire returned a different mapping")
	}
	if s.dev.maps != 1 {
		t.Errorf("device maps = %d, want 1", s.dev.maps)
	}
	st := s.Stats().Mappings
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", st.Hits, st.Misses)
	}
}

func TestMappingScanoutIsNeverEvicted(t *testing.T) {
	s := newTestScreen(t, withConfig(func(c *Config) { c.MaxMappings = 4 }))

	scanout := hostPixmap(64, 64, 32)
	s.SetScanout(scanout)
	if _, err := s.maps.acquire(scanout); err != nil {
		t.Fatal(err)
	}

	for i := range 10 {
		if _, err := s.maps.acquire(hostPixmap(8, 8, 32)); err != nil {
			t.Fatalf("acquire(%d) = %v", i, err)
		}
	}

	if !scanout.Mapped() {
		t.Error("scanout mapping was evicted")
	}
	st := s.Stats().Mappings
	if st.Live != 4 {
		t.Errorf("Live = %d, want 4 (scanout not counted)", st.Live)
	}
	if !st.Scanout {
		t.Error("Stats().Mappings.Scanout = false, want true")
	}
}

func TestMappingScanoutReleaseIsDeferred(t *testing.T) {
	s := newTestScreen(t)

	scanout := hostPixmap(64, 64, 32)
	s.SetScanout(scanout)
	if _, err := s.maps.acquire(scanout); err != nil {
		t.Fatal(err)
	}

	s.maps.release(scanout, false)
	if !scanout.Mapped() {
		t.Fatal("non-destroy release unmapped the scanout")
	}
	if st := s.Stats().Mappings; st.Scanout || st.Deferred != 1 {
		t.Errorf("slot/deferred = %v/%d, want false/1", st.Scanout, st.Deferred)
	}
	if len(s.dev.unmaps) != 0 {
		t.Errorf("device unmaps = %d, want 0", len(s.dev.unmaps))
	}

	s.DestroyPixmap(scanout)
	if scanout.Mapped() {
		t.Error("destroy left the scanout mapped")
	}
	if len(s.dev.unmaps) != 1 {
		t.Errorf("device unmaps = %d, want 1", len(s.dev.unmaps))
	}
	if s.Scanout() != nil {
		t.Error("destroyed pixmap is still the scanout")
	}
}

func TestMappingDeferredUnmappedOnClose(t *testing.T) {
	s := newTestScreen(t)

	scanout := hostPixmap(64, 64, 32)
	s.SetScanout(scanout)
	if _, err := s.maps.acquire(scanout); err != nil {
		t.Fatal(err)
	}
	s.maps.release(scanout, false)

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if scanout.Mapped() {
		t.Error("Close left the deferred scanout mapping alive")
	}
	if len(s.dev.mapped) != 0 {
		t.Errorf("%d mappings alive after Close", len(s.dev.mapped))
	}
}

func TestMappingRetargetScanout(t *testing.T) {
	s := newTestScreen(t)

	a := hostPixmap(32, 32, 32)
	b := hostPixmap(32, 32, 32)
	s.SetScanout(a)
	if _, err := s.maps.acquire(a); err != nil {
		t.Fatal(err)
	}
	s.SetScanout(b)

	if !a.Mapped() {
		t.Fatal("old scanout was unmapped when the designation moved")
	}
	// The old scanout joins the LRU on its next use.
	if _, err := s.maps.acquire(a); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats().Mappings; st.Live != 1 || st.Deferred != 0 {
		t.Errorf("live/deferred = %d/%d, want 1/0", st.Live, st.Deferred)
	}
}

func TestMappingFailure(t *testing.T) {
	s := newTestScreen(t)
	s.dev.mapErr = &DeviceError{Op: "map", Code: CodeMappingFailed}
	p := hostPixmap(16, 16, 32)

	err := s.PrepareSolid(p, GXcopy, AllPlanes, 0)
	if !errors.Is(err, ErrMappingFailed) {
		t.Fatalf("PrepareSolid() = %v, want ErrMappingFailed", err)
	}
	var de *DeviceError
	if !errors.As(err, &de) || de.Code != CodeMappingFailed {
		t.Errorf("error does not carry the device code: %v", err)
	}
	if p.Mapped() {
		t.Error("pixmap mapped after failure")
	}
	st := s.Stats().Mappings
	if st.Live != 0 || st.Failures != 1 {
		t.Errorf("live/failures = %d/%d, want 0/1", st.Live, st.Failures)
	}

	// The screen stays usable.
	s.dev.mapErr = nil
	if err := s.PrepareSolid(p, GXcopy, AllPlanes, 0); err != nil {
		t.Fatalf("PrepareSolid() after recovery = %v", err)
	}
	s.DoneSolid(p)
}

func TestMappingNoBacking(t *testing.T) {
	s := newTestScreen(t)
	p := NewPixmap(0, 0, 32, 32, 0, nil)

	if _, err := s.maps.acquire(p); !errors.Is(err, ErrNoBacking) {
		t.Errorf("acquire() = %v, want ErrNoBacking", err)
	}
}

func TestMappingEvictionWaitsForGPU(t *testing.T) {
	s := newTestScreen(t, withConfig(func(c *Config) { c.MaxMappings = 4 }))

	first := hostPixmap(8, 8, 32)
	m, err := s.maps.acquire(first)
	if err != nil {
		t.Fatal(err)
	}
	s.MarkGPUOwned(first)

	for range 4 {
		if _, err := s.maps.acquire(hostPixmap(8, 8, 32)); err != nil {
			t.Fatal(err)
		}
	}

	h := m.mem.Handle
	wait := slices.Index(s.dev.events, fmt.Sprintf("wait:%d", h))
	unmap := slices.Index(s.dev.events, fmt.Sprintf("unmap:%d", h))
	if wait < 0 || unmap < 0 || wait > unmap {
		t.Errorf("events = %v, want wait:%d before unmap:%d", s.dev.events, h, h)
	}
	if first.GPUOwned() {
		t.Error("evicted pixmap still GPU-owned")
	}
}
