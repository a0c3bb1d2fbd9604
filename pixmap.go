package exa

// UsageHint tells CreatePixmap what the pixmap is for.
type UsageHint uint8

// Usage hints.
const (
	UsageDefault UsageHint = iota
	UsageScanout
	UsageGlyphCache
)

// AccessKind names the role a pixmap plays in a CPU access.
type AccessKind uint8

// Access kinds, as passed by the host to PrepareAccess.
const (
	AccessDest AccessKind = iota
	AccessSrc
	AccessMask
	AccessAuxDest
)

// Pixmap is a pixel buffer owned by the host.
//
// The geometry fields are read-only for the host once the pixmap has been
// created; use Screen.ModifyPixmapHeader to change them.
type Pixmap struct {
	Width        int
	Height       int
	Depth        int
	BitsPerPixel int
	Pitch        int

	bo    Bo
	usage UsageHint

	// owned is set for allocations made by the screen; only those are
	// freed or recycled on destroy.
	owned bool

	// mapping is the GPU view of bo, nil when unmapped.
	mapping *mapping

	// gpuOwned records that the GPU was the last writer.
	gpuOwned bool

	// access counts nested PrepareAccess calls.
	access int
}

// NewPixmap wraps an allocation made by the host.
// Pixmaps created this way are never recycled into the allocation cache.
func NewPixmap(width, height, depth, bitsPerPixel, pitch int, bo Bo) *Pixmap {
	return &Pixmap{
		Width:        width,
		Height:       height,
		Depth:        depth,
		BitsPerPixel: bitsPerPixel,
		Pitch:        pitch,
		bo:           bo,
	}
}

// Bo returns the backing allocation, or nil.
func (p *Pixmap) Bo() Bo {
	return p.bo
}

// Pixels returns the CPU view of the backing allocation, or nil.
// Callers must bracket access with Screen.PrepareAccess/FinishAccess.
func (p *Pixmap) Pixels() []byte {
	if p.bo == nil {
		return nil
	}
	return p.bo.Bytes()
}

// Mapped reports whether the pixmap currently has a GPU mapping.
func (p *Pixmap) Mapped() bool {
	return p.mapping != nil
}

// GPUOwned reports whether the GPU was the last writer and no CPU access
// has waited for it since.
func (p *Pixmap) GPUOwned() bool {
	return p.gpuOwned
}

// Box returns the full extent of the pixmap.
func (p *Pixmap) Box() Box {
	return Box{X1: p.Width, Y1: p.Height}
}

// surface describes p for a device descriptor. p must be mapped.
func (p *Pixmap) surface(format Format) Surface {
	return Surface{
		Mem:    p.mapping.mem,
		Format: format,
		Stride: p.Pitch,
		Width:  p.Width,
		Height: p.Height,
	}
}

// pitchFor returns the aligned row size for width pixels.
func pitchFor(width, bitsPerPixel, align int) int {
	row := (width*bitsPerPixel + 7) / 8
	return (row + align - 1) &^ (align - 1)
}

// roundAlloc rounds size up to the allocation granularity.
func roundAlloc(size int) int {
	return (size + AllocGranularity - 1) &^ (AllocGranularity - 1)
}
