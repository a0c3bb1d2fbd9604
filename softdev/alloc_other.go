// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package softdev

// Bo is a heap allocation.
type Bo struct {
	data []byte
}

func newBo(size int) (*Bo, error) {
	return &Bo{data: make([]byte, size)}, nil
}

// Size returns the allocation size in bytes.
func (b *Bo) Size() int { return len(b.data) }

// Bytes returns the allocation.
func (b *Bo) Bytes() []byte { return b.data }

// Fd returns -1; heap allocations cannot be exported.
func (b *Bo) Fd() int { return -1 }

func (b *Bo) release() error {
	b.data = nil
	return nil
}
