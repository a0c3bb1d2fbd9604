// Package exa is a 2D acceleration core for an X11 display server.
//
// # Overview
//
// exa binds the host's EXA-style acceleration hooks to a GPU blit service.
// It translates solid fills, copies and Render composites into batched
// hardware submissions, and decides when CPU-visible pixmaps become
// GPU-visible and back.
//
// # Quick Start
//
//	srv := exa.NewServices(func() (exa.Device, error) { return softdev.New(), nil })
//	s, err := exa.NewScreen(srv, softdev.NewAllocator())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	p, _ := s.CreatePixmap(640, 480, 24, 32, exa.UsageDefault)
//	if err := s.PrepareSolid(p, exa.GXcopy, exa.AllPlanes, 0xff336699); err == nil {
//	    s.Solid(p, 0, 0, 320, 240)
//	    s.DoneSolid(p)
//	}
//
// A non-nil error from any Prepare or Check call means the request cannot
// be accelerated and the host must use its software path.
//
// # Architecture
//
// A Screen owns:
//   - the mapping cache: at most Config.MaxMappings GPU mappings in LRU
//     order, plus a dedicated slot for the scanout pixmap
//   - the allocation cache: freed allocations, with their mappings, kept in
//     insertion order under a byte budget and reused by exact size
//   - the batch engines: solid, copy and composite rectangles accumulated
//     up to a fixed capacity and submitted together
//   - the ownership tracker: a per-pixmap "GPU wrote last" flag that gates
//     blocking waits before CPU access and scanout flushes after GPU writes
//
// Devices are shared between screens through a refcounted Services value.
// The softdev package provides a software device for tests and tools.
//
// # Threading
//
// A Screen is used from the host's event loop only. The only blocking call
// is the wait for outstanding GPU work on one pixmap.
package exa

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
