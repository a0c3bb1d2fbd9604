// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package softdev

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Bo is a memfd-backed shared mapping.
type Bo struct {
	fd   int
	data []byte
}

func newBo(size int) (*Bo, error) {
	fd, err := unix.MemfdCreate("exa-bo", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &Bo{fd: fd, data: data}, nil
}

// Size returns the allocation size in bytes.
func (b *Bo) Size() int { return len(b.data) }

// Bytes returns the CPU mapping.
func (b *Bo) Bytes() []byte { return b.data }

// Fd returns the memfd backing the allocation, for export to other
// processes. It is valid until the allocation is freed.
func (b *Bo) Fd() int { return b.fd }

func (b *Bo) release() error {
	var err error
	if b.data != nil {
		err = unix.Munmap(b.data)
		b.data = nil
	}
	if b.fd >= 0 {
		if cerr := unix.Close(b.fd); err == nil {
			err = cerr
		}
		b.fd = -1
	}
	return err
}
