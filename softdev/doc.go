// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package softdev is a software implementation of the exa blit service.
//
// It provides the three collaborators an exa.Screen needs:
//
//   - Device: an exa.Device that executes 2D ROP3 blits, USE-program 3D
//     blits, Porter-Duff composites and video conversions on the CPU
//   - Allocator: page-granular backing allocations. On Linux they are
//     memfd-backed shared mappings, the same kind of object a dma-buf
//     exporter hands out; elsewhere they live on the Go heap
//   - Display: a scanout sink that can model a manual-update panel
//
// Submissions complete synchronously, so QueryBlitsComplete never blocks.
// The device is meant for tests, tools and headless servers; it follows
// the semantics of the hardware closely enough that pixel results of the
// accelerated paths can be compared with the host's software fallbacks.
//
// # Usage
//
//	srv := exa.NewServices(softdev.Connect)
//	s, err := exa.NewScreen(srv, softdev.NewAllocator(),
//	    exa.WithDisplay(softdev.NewDisplay(true)))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// # Pixel layout
//
// 32bpp surfaces store one little-endian uint32 per pixel with alpha in
// the top byte (A8R8G8B8, or A8B8G8R8 for the BGR formats); RGB565 stores
// one uint16; A8 one byte. Render pictures are premultiplied.
package softdev
