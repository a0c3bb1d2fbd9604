package exa

import (
	"fmt"

	"github.com/gogpu/exa/internal/cache"
)

// mapping is the GPU view of one pixmap's allocation.
type mapping struct {
	mem MemInfo

	// node links the owning pixmap into the LRU list; nil or unlinked
	// for the scanout slot, deferred scanout mappings and mappings
	// parked in the allocation cache.
	node *cache.Node[*Pixmap]
}

// mapCache keeps at most max LRU-tracked mappings alive.
//
// The designated scanout pixmap is never LRU-tracked: its mapping sits in
// a dedicated slot and survives until the pixmap is destroyed or the cache
// is closed.
type mapCache struct {
	dev Device
	max int
	lru *cache.List[*Pixmap]

	// scanout is the designated scanout pixmap, slot the pixmap whose
	// mapping occupies the scanout slot.
	scanout *Pixmap
	slot    *Pixmap

	// deferred holds former scanout mappings whose unmap waits for
	// destroy or close.
	deferred map[*Pixmap]struct{}

	// beforeEvict runs before an LRU victim is unmapped.
	beforeEvict func(*Pixmap)

	hits      uint64
	misses    uint64
	evictions uint64
	failures  uint64
}

func newMapCache(dev Device, max int, beforeEvict func(*Pixmap)) *mapCache {
	return &mapCache{
		dev:         dev,
		max:         max,
		lru:         cache.NewList[*Pixmap](),
		deferred:    make(map[*Pixmap]struct{}),
		beforeEvict: beforeEvict,
	}
}

// acquire returns the mapping of p, creating it when needed, and marks it
// most recently used. A failure leaves p unmapped and nothing registered.
func (c *mapCache) acquire(p *Pixmap) (*mapping, error) {
	if p.bo == nil {
		return nil, ErrNoBacking
	}

	if m := p.mapping; m != nil {
		c.hits++
		c.markUsed(p)
		return m, nil
	}
	c.misses++

	if p != c.scanout {
		c.makeRoom()
	}

	mem, err := c.dev.MapBo(p.bo)
	if err != nil {
		c.failures++
		Logger().Warn("exa: map pixmap failed",
			"size", p.bo.Size(), "code", codeOf(err).String(), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrMappingFailed, err)
	}

	p.mapping = &mapping{mem: mem}
	c.markUsed(p)
	return p.mapping, nil
}

// markUsed moves a mapped pixmap to the MRU end, or into the scanout slot.
func (c *mapCache) markUsed(p *Pixmap) {
	m := p.mapping
	delete(c.deferred, p)

	if p == c.scanout {
		c.lru.Remove(m.node)
		c.slot = p
		return
	}

	if m.node.Linked() {
		c.lru.MoveToBack(m.node)
		return
	}

	c.makeRoom()
	if m.node == nil {
		m.node = c.lru.PushBack(p)
	} else {
		c.lru.MoveToBack(m.node)
	}
}

// makeRoom evicts least recently used mappings until one more fits.
func (c *mapCache) makeRoom() {
	for c.lru.Len() >= c.max {
		victim, ok := c.lru.PopFront()
		if !ok {
			return
		}
		Logger().Debug("exa: mappings list is full, evicting oldest",
			"live", c.lru.Len()+1, "max", c.max)
		if c.beforeEvict != nil {
			c.beforeEvict(victim)
		}
		c.unmap(victim)
		c.evictions++
	}
}

// release drops the mapping of p.
//
// The scanout mapping is only unmapped when the pixmap is being destroyed;
// otherwise the slot is cleared and the unmap deferred to destroy or close.
func (c *mapCache) release(p *Pixmap, destroying bool) {
	m := p.mapping
	if m == nil {
		return
	}

	if p == c.slot {
		c.slot = nil
	}
	if p == c.scanout && !destroying {
		c.deferred[p] = struct{}{}
		return
	}

	c.lru.Remove(m.node)
	delete(c.deferred, p)
	c.unmap(p)
}

// detach unregisters the mapping of p without unmapping it and returns it.
// The allocation cache keeps detached mappings with their allocations.
func (c *mapCache) detach(p *Pixmap) *mapping {
	m := p.mapping
	if m == nil {
		return nil
	}
	if p == c.slot {
		c.slot = nil
	}
	delete(c.deferred, p)
	c.lru.Remove(m.node)
	p.mapping = nil
	return m
}

// attach hands a detached mapping to p and tracks it as most recently used.
// The node still names the previous owner, so a fresh one is linked.
func (c *mapCache) attach(p *Pixmap, m *mapping) {
	m.node = nil
	p.mapping = m
	c.markUsed(p)
}

// setScanout designates p as the scanout pixmap. A mapping previously in
// the slot is kept and deferred.
func (c *mapCache) setScanout(p *Pixmap) {
	if c.scanout == p {
		return
	}
	if old := c.slot; old != nil {
		c.slot = nil
		c.deferred[old] = struct{}{}
	}
	c.scanout = p
	if p != nil && p.mapping != nil {
		c.markUsed(p)
	}
}

// count returns the number of LRU-tracked mappings.
func (c *mapCache) count() int {
	return c.lru.Len()
}

// close unmaps every mapping the cache knows about.
func (c *mapCache) close() {
	for n := range c.lru.All() {
		p := n.Value
		c.lru.Remove(n)
		c.unmap(p)
	}
	if p := c.slot; p != nil {
		c.slot = nil
		c.unmap(p)
	}
	for p := range c.deferred {
		c.unmap(p)
	}
	clear(c.deferred)
	c.scanout = nil
}

func (c *mapCache) unmap(p *Pixmap) {
	m := p.mapping
	if m == nil {
		return
	}
	p.mapping = nil
	unmapMem(c.dev, m.mem)
}

// mapAll maps every pixmap of one submission. An acquire may evict a
// pixmap mapped earlier in the same call, so all are checked at the end.
func (s *Screen) mapAll(pix ...*Pixmap) error {
	for _, p := range pix {
		if _, err := s.maps.acquire(p); err != nil {
			return err
		}
	}
	for _, p := range pix {
		if p.mapping == nil {
			return fmt.Errorf("%w: %d surfaces do not fit in %d mappings", ErrMappingFailed, len(pix), s.maps.max)
		}
	}
	return nil
}

func unmapMem(dev Device, mem MemInfo) {
	if err := dev.UnmapBo(mem); err != nil {
		Logger().Warn("exa: unmap failed", "code", codeOf(err).String(), "err", err)
	}
}
