// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"errors"
	"os"
	"testing"
)

func TestAllocatorRoundsToPages(t *testing.T) {
	a := NewAllocator()
	page := os.Getpagesize()

	bo, err := a.Alloc(1)
	if err != nil {
		t.Fatalf("Alloc() = %v", err)
	}
	if bo.Size() != page {
		t.Errorf("Size() = %d, want %d", bo.Size(), page)
	}
	buf := bo.Bytes()
	buf[0], buf[len(buf)-1] = 0xaa, 0x55
	if bo.Bytes()[0] != 0xaa || bo.Bytes()[page-1] != 0x55 {
		t.Error("allocation is not writable through Bytes")
	}

	if n, bytes := a.Live(); n != 1 || bytes != page {
		t.Errorf("Live() = %d, %d; want 1, %d", n, bytes, page)
	}
	if err := a.Free(bo); err != nil {
		t.Fatalf("Free() = %v", err)
	}
	if n, bytes := a.Live(); n != 0 || bytes != 0 {
		t.Errorf("Live() after Free = %d, %d; want 0, 0", n, bytes)
	}
}

func TestAllocatorFreeErrors(t *testing.T) {
	a := NewAllocator()
	bo, err := a.Alloc(100)
	if err != nil {
		t.Fatalf("Alloc() = %v", err)
	}
	if err := a.Free(bo); err != nil {
		t.Fatalf("Free() = %v", err)
	}
	if err := a.Free(bo); !errors.Is(err, ErrForeignBo) {
		t.Errorf("double Free() = %v, want ErrForeignBo", err)
	}

	other := NewAllocator()
	bo2, err := other.Alloc(100)
	if err != nil {
		t.Fatalf("Alloc() = %v", err)
	}
	defer other.Free(bo2)
	if err := a.Free(bo2); !errors.Is(err, ErrForeignBo) {
		t.Errorf("Free() of foreign allocation = %v, want ErrForeignBo", err)
	}
}

func TestAllocatorLimit(t *testing.T) {
	a := NewAllocator()
	page := os.Getpagesize()
	a.SetLimit(2 * page)

	first, err := a.Alloc(page)
	if err != nil {
		t.Fatalf("Alloc() = %v", err)
	}
	if _, err := a.Alloc(page + 1); err == nil {
		t.Fatal("Alloc() over the limit succeeded")
	}
	if err := a.Free(first); err != nil {
		t.Fatalf("Free() = %v", err)
	}
	bo, err := a.Alloc(page + 1)
	if err != nil {
		t.Fatalf("Alloc() after Free = %v", err)
	}
	_ = a.Free(bo)
}

func TestAllocatorRejectsEmpty(t *testing.T) {
	if _, err := NewAllocator().Alloc(0); err == nil {
		t.Error("Alloc(0) succeeded")
	}
}
