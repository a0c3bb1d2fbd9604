package exa

// Bo is a CPU-addressable backing allocation (buffer object).
type Bo interface {
	// Size returns the allocation size in bytes.
	Size() int

	// Bytes returns the CPU view of the allocation.
	Bytes() []byte
}

// Allocator creates and destroys backing allocations.
// The core only frees allocations it obtained through the allocation cache.
type Allocator interface {
	Alloc(size int) (Bo, error)
	Free(bo Bo) error
}

// MemInfo is a GPU-visible view of one Bo, as returned by Device.MapBo.
type MemInfo struct {
	// Handle is the opaque device handle of the mapping.
	Handle uintptr

	// DevVAddr is the device virtual address of the first byte.
	DevVAddr uint32

	// Size is the mapped size in bytes.
	Size int
}

// Valid reports whether m refers to a live mapping.
func (m MemInfo) Valid() bool {
	return m.Handle != 0
}

// UseHandle identifies a USE program loaded into the device.
// The zero handle selects the device's default program.
type UseHandle uintptr

// UseKind selects the family of a USE program.
type UseKind uint8

// USE program families.
const (
	// UseSolid8 fills A8 surfaces with a raster op; see UseProgram.Alu.
	UseSolid8 UseKind = iota + 1

	// UseComposite blends sources for a render op; see UseProgram.Op.
	UseComposite
)

// UseProgram describes a USE program to load.
// It is comparable and used as the program cache key.
type UseProgram struct {
	Kind      UseKind
	Alu       Alu
	Op        PictOp
	Mask      bool
	Transform Transformation
}

// Surface describes a mapped pixmap as seen by the device.
type Surface struct {
	Mem    MemInfo
	Format Format
	Stride int
	Width  int
	Height int
}

// BlitFlags modify a 2D blit.
type BlitFlags uint32

// 2D blit flags.
const (
	BlitDisableAll BlitFlags = 0
	BlitReverseX   BlitFlags = 1 << 0
	BlitReverseY   BlitFlags = 1 << 1
)

// BltInfo is a 2D blitter descriptor.
// CopyCode is a ROP3 code combining pattern (Colour), source and destination.
type BltInfo struct {
	CopyCode  uint8
	Colour    uint32
	ColourKey uint32
	Flags     BlitFlags

	// Src is nil for fills.
	Src          *Surface
	SrcX, SrcY   int
	SizeX, SizeY int

	Dst            Surface
	DstX, DstY     int
	DSizeX, DSizeY int
}

// Blt3DInfo is a 3D blit descriptor driven by a USE program.
type Blt3DInfo struct {
	Src     Surface
	Dst     Surface
	SrcRect Box
	DstRect Box
	Use     UseHandle

	// UseParams are the program constants, e.g. the fill colour.
	UseParams        [2]uint32
	NumTemporaryRegs int
}

// TransferKind selects the transfer-queue operation.
type TransferKind uint8

// Transfer-queue operations.
const (
	// TransferShaderBlit blends sources (source, destination as texture,
	// optional mask) through a custom shader, one rectangle per submission.
	TransferShaderBlit TransferKind = iota + 1

	// TransferAtlasBlit blends many rectangles from one source in one submission.
	TransferAtlasBlit

	// TransferCustomBlit blends a single rectangle.
	TransferCustomBlit

	// TransferVideoBlit converts and scales a video image.
	TransferVideoBlit
)

// AlphaMode selects the alpha source of an atlas blit.
type AlphaMode uint8

// Alpha modes.
const (
	AlphaSource AlphaMode = iota
	AlphaDest
)

// Transfer is a transfer-queue descriptor.
//
// Sources[0] is the source picture; for shader blits Sources[1] is the
// destination read as texture and Sources[2] the mask. For video blits the
// sources are the image planes and only Sources[0] carries a full Surface.
type Transfer struct {
	Kind    TransferKind
	Sources []Surface
	Dest    Surface

	SrcRects  []Box
	DestRects []Box
	MaskRects []Box

	// DestBounds encloses every DestRects entry.
	DestBounds Box

	Op     PictOp
	Blend  BlendState
	Shader UseHandle

	SrcRepeat  Repeat
	MaskRepeat Repeat
	Transform  Transformation
	Matrix     *Transform

	SrcForceAlpha  bool
	DestForceAlpha bool
	AlphaMode      AlphaMode

	SeparatePlanes bool
	Flags          uint32
}

// Device is the GPU blit service.
type Device interface {
	// MapBo maps an allocation into the GPU address space.
	MapBo(bo Bo) (MemInfo, error)

	// UnmapBo releases a mapping.
	UnmapBo(mem MemInfo) error

	// Blt submits a 2D blit.
	Blt(info *BltInfo) error

	// Blt3D submits a USE-program driven 3D blit.
	Blt3D(info *Blt3DInfo) error

	// QueryBlitsComplete reports whether all blits touching mem have
	// completed. With wait set it blocks until they have.
	QueryBlitsComplete(mem MemInfo, wait bool) error

	// QueueTransfer submits a transfer-queue operation.
	QueueTransfer(t *Transfer) error

	// LoadUseCode loads a USE program.
	LoadUseCode(prog UseProgram) (UseHandle, error)

	// FreeUseCode releases a USE program.
	FreeUseCode(h UseHandle) error

	// Close releases the device context.
	Close() error
}

// Display is the host side of the scanout.
type Display interface {
	// ManualUpdate reports whether the panel refreshes only on FlushScanout.
	ManualUpdate() bool

	// FlushScanout pushes the damaged region of the scanout to the panel.
	FlushScanout(damage Box) error
}

// autoDisplay is a continuously refreshed display.
type autoDisplay struct{}

func (autoDisplay) ManualUpdate() bool     { return false }
func (autoDisplay) FlushScanout(Box) error { return nil }
