// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gogpu/exa"
)

// ErrForeignBo is returned by Allocator.Free for allocations it did not make.
var ErrForeignBo = errors.New("softdev: allocation not owned by this allocator")

// Allocator hands out page-granular backing allocations.
//
// Allocator is safe for concurrent use.
type Allocator struct {
	mu    sync.Mutex
	live  map[*Bo]struct{}
	bytes int
	limit int
}

// NewAllocator returns an allocator without a byte limit.
func NewAllocator() *Allocator {
	return &Allocator{live: make(map[*Bo]struct{})}
}

// SetLimit bounds the total bytes of live allocations. Zero removes the
// bound. Allocations that would exceed it fail.
func (a *Allocator) SetLimit(bytes int) {
	a.mu.Lock()
	a.limit = bytes
	a.mu.Unlock()
}

// Alloc returns a zeroed allocation of at least size bytes, rounded up to
// the page size.
func (a *Allocator) Alloc(size int) (exa.Bo, error) {
	if size <= 0 {
		return nil, fmt.Errorf("softdev: alloc %d bytes: invalid size", size)
	}
	page := os.Getpagesize()
	size = (size + page - 1) &^ (page - 1)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.limit > 0 && a.bytes+size > a.limit {
		return nil, fmt.Errorf("softdev: alloc %d bytes: %d of %d in use", size, a.bytes, a.limit)
	}

	bo, err := newBo(size)
	if err != nil {
		return nil, fmt.Errorf("softdev: alloc %d bytes: %w", size, err)
	}
	a.live[bo] = struct{}{}
	a.bytes += size
	return bo, nil
}

// Free releases an allocation made by a.
func (a *Allocator) Free(b exa.Bo) error {
	bo, ok := b.(*Bo)
	if !ok {
		return ErrForeignBo
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[bo]; !ok {
		return ErrForeignBo
	}
	delete(a.live, bo)
	a.bytes -= bo.Size()
	return bo.release()
}

// Live returns the number and total size of outstanding allocations.
func (a *Allocator) Live() (count, bytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live), a.bytes
}
