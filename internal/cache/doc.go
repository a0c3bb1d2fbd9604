// Package cache provides the ordering and keyed-cache primitives used by the
// mapping and allocation caches of package exa.
//
// # List[T]
//
// An intrusive doubly-linked list. The front holds the oldest element and the
// back the newest, so the same type serves as an LRU list (MoveToBack on use,
// evict from the front) and as a FIFO pool (PushBack on insert, scan from the
// front).
//
//	l := cache.NewList[*Entry]()
//	n := l.PushBack(e)
//	l.MoveToBack(n)
//	oldest, ok := l.PopFront()
//
// # Cache[K, V]
//
// A keyed cache with a soft limit. When the limit is exceeded the least
// recently used quarter of the entries is evicted and handed to the
// eviction callback, so owners of device resources can release them.
//
//	c := cache.New[Key, Handle](32, func(k Key, h Handle) { dev.Free(h) })
//	h := c.GetOrCreate(k, load)
//
// # Thread Safety
//
// List is not safe for concurrent use; callers serialize access. Cache is safe
// for concurrent use and must not be copied after creation.
package cache
