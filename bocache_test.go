package exa

import (
	"slices"
	"testing"
)

func newTestBoCache(budget int) (*boCache, *mockDevice, *mockAllocator) {
	dev := newMockDevice()
	alloc := &mockAllocator{}
	return newBoCache(dev, alloc, budget), dev, alloc
}

func mustAlloc(t *testing.T, a *mockAllocator, size int) Bo {
	t.Helper()
	bo, err := a.Alloc(size)
	if err != nil {
		t.Fatal(err)
	}
	return bo
}

func TestBoCacheExactSizeReuse(t *testing.T) {
	tests := []struct {
		name   string
		put    int
		get    int
		reused bool
	}{
		{"same size", 8192, 8192, true},
		{"same rounded size", 8192, 5000, true},
		{"smaller request", 8192, 4096, false},
		{"larger request", 4096, 8192, false},
		{"rounded put", 6000, 8000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, alloc := newTestBoCache(DefaultBoCacheBytes)
			bo := mustAlloc(t, alloc, tt.put)
			c.put(bo, nil)

			e := c.get(tt.get)
			if got := e != nil; got != tt.reused {
				t.Fatalf("get(%d) reused = %v, want %v", tt.get, got, tt.reused)
			}
			if tt.reused && e.bo != bo {
				t.Error("get returned a different allocation")
			}
		})
	}
}

func TestBoCacheGetTakesOldestMatch(t *testing.T) {
	c, _, alloc := newTestBoCache(DefaultBoCacheBytes)
	a := mustAlloc(t, alloc, 4096)
	b := mustAlloc(t, alloc, 8192)
	d := mustAlloc(t, alloc, 4096)
	c.put(a, nil)
	c.put(b, nil)
	c.put(d, nil)

	if e := c.get(4096); e == nil || e.bo != a {
		t.Fatal("first get did not return the oldest 4096-byte entry")
	}
	if e := c.get(4096); e == nil || e.bo != d {
		t.Fatal("second get did not return the remaining 4096-byte entry")
	}
	if e := c.get(4096); e != nil {
		t.Fatal("third get found an entry")
	}
	if c.len() != 1 || c.bytes != 8192 {
		t.Errorf("len/bytes = %d/%d, want 1/8192", c.len(), c.bytes)
	}
	if c.hits != 2 || c.misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", c.hits, c.misses)
	}
}

func TestBoCacheFIFOEviction(t *testing.T) {
	c, _, alloc := newTestBoCache(16384)

	// Eviction follows insertion order regardless of size.
	sizes := []int{4096, 8192, 4096, 8192}
	for _, size := range sizes {
		c.put(mustAlloc(t, alloc, size), nil)
		if c.bytes > 16384 {
			t.Fatalf("resident bytes %d exceed budget", c.bytes)
		}
	}

	if want := []int{1, 2}; !slices.Equal(alloc.frees, want) {
		t.Errorf("freed = %v, want %v", alloc.frees, want)
	}
	if c.len() != 2 || c.bytes != 12288 {
		t.Errorf("len/bytes = %d/%d, want 2/12288", c.len(), c.bytes)
	}
}

// Five 1 MiB puts followed by a sixth: the byte budget holds four, so the
// two oldest entries are gone by the end.
func TestBoCacheFiveThenSixth(t *testing.T) {
	c, _, alloc := newTestBoCache(DefaultBoCacheBytes)
	const mib = 1 << 20

	for range 5 {
		c.put(mustAlloc(t, alloc, mib), nil)
	}
	if c.bytes > DefaultBoCacheBytes {
		t.Fatalf("resident bytes %d exceed 4 MiB", c.bytes)
	}
	if want := []int{1}; !slices.Equal(alloc.frees, want) {
		t.Fatalf("freed after five puts = %v, want %v", alloc.frees, want)
	}

	c.put(mustAlloc(t, alloc, mib), nil)
	if c.bytes > DefaultBoCacheBytes {
		t.Errorf("resident bytes %d exceed 4 MiB", c.bytes)
	}
	if want := []int{1, 2}; !slices.Equal(alloc.frees, want) {
		t.Errorf("freed after sixth put = %v, want %v", alloc.frees, want)
	}
	if c.len() != 4 {
		t.Errorf("resident entries = %d, want 4", c.len())
	}
	if c.evictions != 2 {
		t.Errorf("evictions = %d, want 2", c.evictions)
	}
}

func TestBoCacheEvictionUnmapsLingeringMapping(t *testing.T) {
	c, dev, alloc := newTestBoCache(4096)
	bo := mustAlloc(t, alloc, 4096)
	mem, err := dev.MapBo(bo)
	if err != nil {
		t.Fatal(err)
	}

	c.put(bo, &mapping{mem: mem})
	c.put(mustAlloc(t, alloc, 4096), nil)

	if !slices.Equal(dev.unmaps, []uintptr{mem.Handle}) {
		t.Errorf("unmaps = %v, want [%d]", dev.unmaps, mem.Handle)
	}
	if !slices.Equal(alloc.frees, []int{1}) {
		t.Errorf("freed = %v, want [1]", alloc.frees)
	}
}

func TestBoCacheDrain(t *testing.T) {
	c, _, alloc := newTestBoCache(DefaultBoCacheBytes)
	for range 3 {
		c.put(mustAlloc(t, alloc, 4096), nil)
	}

	c.drain()
	if c.len() != 0 || c.bytes != 0 {
		t.Errorf("len/bytes after drain = %d/%d, want 0/0", c.len(), c.bytes)
	}
	if len(alloc.frees) != 3 {
		t.Errorf("freed %d allocations, want 3", len(alloc.frees))
	}
}

func TestBoCacheIgnoresNil(t *testing.T) {
	c, _, _ := newTestBoCache(DefaultBoCacheBytes)
	c.put(nil, nil)
	if c.len() != 0 {
		t.Errorf("len = %d, want 0", c.len())
	}
}

func TestDestroyedPixmapIsRecycled(t *testing.T) {
	s := newTestScreen(t)

	p, err := s.CreatePixmap(64, 64, 24, 32, UsageDefault)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PrepareSolid(p, GXcopy, AllPlanes, 0xff0000ff); err != nil {
		t.Fatal(err)
	}
	s.Solid(p, 0, 0, 8, 8)
	s.DoneSolid(p)
	bo := p.Bo()

	s.DestroyPixmap(p)
	if len(s.dev.unmaps) != 0 {
		t.Errorf("destroy unmapped %d mappings, want 0", len(s.dev.unmaps))
	}
	if st := s.Stats().BoCache; st.Entries != 1 {
		t.Fatalf("cached entries = %d, want 1", st.Entries)
	}

	q, err := s.CreatePixmap(64, 64, 24, 32, UsageDefault)
	if err != nil {
		t.Fatal(err)
	}
	if q.Bo() != bo {
		t.Error("CreatePixmap did not reuse the cached allocation")
	}
	if !q.Mapped() {
		t.Error("recycled allocation lost its mapping")
	}
	if s.dev.maps != 1 {
		t.Errorf("device maps = %d, want 1", s.dev.maps)
	}
	if s.alloc.allocs != 1 {
		t.Errorf("allocations = %d, want 1", s.alloc.allocs)
	}
	if st := s.Stats().BoCache; st.Hits != 1 || st.Entries != 0 {
		t.Errorf("hits/entries = %d/%d, want 1/0", st.Hits, st.Entries)
	}
}

func TestDestroyScanoutFrees(t *testing.T) {
	s := newTestScreen(t)

	p, err := s.CreatePixmap(64, 64, 24, 32, UsageScanout)
	if err != nil {
		t.Fatal(err)
	}
	s.SetScanout(p)
	if _, err := s.maps.acquire(p); err != nil {
		t.Fatal(err)
	}

	s.DestroyPixmap(p)
	if st := s.Stats().BoCache; st.Entries != 0 {
		t.Errorf("scanout allocation was cached")
	}
	if len(s.alloc.frees) != 1 || len(s.dev.unmaps) != 1 {
		t.Errorf("frees/unmaps = %d/%d, want 1/1", len(s.alloc.frees), len(s.dev.unmaps))
	}
}

func TestRecycledMappingIsTrackedByNewOwner(t *testing.T) {
	tests := []struct {
		name  string
		evict bool
	}{
		{"evicted", true},
		{"closed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScreen(t)

			a, err := s.CreatePixmap(64, 64, 24, 32, UsageDefault)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.maps.acquire(a); err != nil {
				t.Fatal(err)
			}
			s.DestroyPixmap(a)

			b, err := s.CreatePixmap(64, 64, 24, 32, UsageDefault)
			if err != nil {
				t.Fatal(err)
			}
			if !b.Mapped() {
				t.Fatal("recycled allocation lost its mapping")
			}

			if tt.evict {
				for range DefaultMaxMappings {
					if _, err := s.maps.acquire(hostPixmap(8, 8, 32)); err != nil {
						t.Fatal(err)
					}
				}
				if b.Mapped() {
					t.Error("recycled mapping survived eviction")
				}
				if got := len(s.dev.mapped); got != DefaultMaxMappings {
					t.Errorf("device live mappings = %d, want %d", got, DefaultMaxMappings)
				}
				if got := s.maps.count(); got != DefaultMaxMappings {
					t.Errorf("tracked mappings = %d, want %d", got, DefaultMaxMappings)
				}
			}

			if err := s.Close(); err != nil {
				t.Fatal(err)
			}
			if got := len(s.dev.mapped); got != 0 {
				t.Errorf("device still holds %d mappings after Close", got)
			}
		})
	}
}
