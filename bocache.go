package exa

import "github.com/gogpu/exa/internal/cache"

// boEntry is a free allocation parked in the allocation cache together with
// the mapping it still carries.
type boEntry struct {
	bo      Bo
	size    int
	mapping *mapping
}

// boCache pools freed allocations for reuse by exact rounded size.
//
// Entries are kept in insertion order and evicted oldest first once the
// resident bytes exceed the budget, independent of entry size.
type boCache struct {
	dev     Device
	alloc   Allocator
	budget  int
	entries *cache.List[*boEntry]
	bytes   int

	hits      uint64
	misses    uint64
	evictions uint64
}

func newBoCache(dev Device, alloc Allocator, budget int) *boCache {
	return &boCache{
		dev:     dev,
		alloc:   alloc,
		budget:  budget,
		entries: cache.NewList[*boEntry](),
	}
}

// get removes and returns the oldest entry whose rounded size equals the
// rounded request. It returns nil when there is none.
func (c *boCache) get(size int) *boEntry {
	want := roundAlloc(size)
	for n := range c.entries.All() {
		if n.Value.size != want {
			continue
		}
		c.entries.Remove(n)
		c.bytes -= n.Value.size
		c.hits++
		return n.Value
	}
	c.misses++
	return nil
}

// put parks bo and its lingering mapping, then evicts the oldest entries
// while the resident bytes exceed the budget.
func (c *boCache) put(bo Bo, m *mapping) {
	if bo == nil {
		return
	}
	e := &boEntry{bo: bo, size: roundAlloc(bo.Size()), mapping: m}
	c.entries.PushBack(e)
	c.bytes += e.size

	for c.bytes > c.budget {
		old, ok := c.entries.PopFront()
		if !ok {
			break
		}
		c.bytes -= old.size
		c.evict(old)
		Logger().Debug("exa: allocation cache over budget, evicted oldest",
			"size", old.size, "resident", c.bytes, "budget", c.budget)
	}
}

// fits reports whether an allocation of size can ever stay resident.
func (c *boCache) fits(size int) bool {
	return roundAlloc(size) <= c.budget
}

// drain evicts every entry.
func (c *boCache) drain() {
	for {
		e, ok := c.entries.PopFront()
		if !ok {
			break
		}
		c.evict(e)
	}
	c.bytes = 0
}

func (c *boCache) evict(e *boEntry) {
	if e.mapping != nil {
		unmapMem(c.dev, e.mapping.mem)
		e.mapping = nil
	}
	if err := c.alloc.Free(e.bo); err != nil {
		Logger().Warn("exa: free allocation failed", "size", e.size, "err", err)
	}
	c.evictions++
}

// len returns the number of resident entries.
func (c *boCache) len() int {
	return c.entries.Len()
}
