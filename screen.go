package exa

import (
	"errors"
	"fmt"

	"github.com/gogpu/exa/internal/cache"
)

// Screen is the acceleration context of one host screen. It owns the
// mapping cache, the allocation cache, the loaded USE programs and the
// state of the active batch.
//
// Screen is not safe for concurrent use; the host calls it from its event
// loop only.
type Screen struct {
	cfg     Config
	srv     *Services
	dev     Device
	alloc   Allocator
	display Display

	maps    *mapCache
	bos     *boCache
	solid8  [16]UseHandle
	shaders *cache.Cache[UseProgram, UseHandle]

	active opKind
	solid  *solidOp
	copy   *copyOp
	comp   *compositeOp

	video       videoVariant
	videoWarned bool

	closed bool
	stats  screenStats
}

// NewScreen acquires the shared device from srv and prepares a screen.
// alloc provides the backing allocations of pixmaps created by the screen.
func NewScreen(srv *Services, alloc Allocator, opts ...ScreenOption) (*Screen, error) {
	o := defaultScreenOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	dev, err := srv.Acquire()
	if err != nil {
		return nil, err
	}

	s := &Screen{
		cfg:     o.config,
		srv:     srv,
		dev:     dev,
		alloc:   alloc,
		display: o.display,
		video:   videoVariantFor(o.config.Chipset),
	}
	s.maps = newMapCache(dev, s.cfg.MaxMappings, s.WaitIfNeeded)
	s.bos = newBoCache(dev, alloc, s.cfg.BoCacheBytes)
	s.shaders = cache.New(s.cfg.ShaderCacheSize, func(_ UseProgram, h UseHandle) {
		s.freeUse(h)
	})

	if err := s.loadSolid8(); err != nil {
		s.freeSolid8()
		return nil, errors.Join(err, srv.Release())
	}

	Logger().Info("exa: screen initialized",
		"chipset", fmt.Sprintf("%#x", s.cfg.Chipset),
		"max_pixmap", s.cfg.MaxPixmapSize(),
		"max_mappings", s.cfg.MaxMappings,
		"bo_cache_bytes", s.cfg.BoCacheBytes,
		"video", s.video.String(),
		"manual_update", s.display.ManualUpdate())
	return s, nil
}

// loadSolid8 loads one 8-bit fill program per raster op.
func (s *Screen) loadSolid8() error {
	for alu := GXclear; alu <= GXset; alu++ {
		h, err := s.dev.LoadUseCode(UseProgram{Kind: UseSolid8, Alu: alu})
		if err != nil {
			return fmt.Errorf("exa: load 8-bit solid program for alu %d: %w", alu, err)
		}
		s.solid8[alu] = h
	}
	return nil
}

func (s *Screen) freeSolid8() {
	for i, h := range s.solid8 {
		s.freeUse(h)
		s.solid8[i] = 0
	}
}

func (s *Screen) freeUse(h UseHandle) {
	if h == 0 {
		return
	}
	if err := s.dev.FreeUseCode(h); err != nil {
		Logger().Warn("exa: free USE program failed", "err", err)
	}
}

// Config returns the screen configuration.
func (s *Screen) Config() Config {
	return s.cfg
}

// MaxPixmapSize returns the largest pixmap edge the screen accepts.
func (s *Screen) MaxPixmapSize() int {
	return s.cfg.MaxPixmapSize()
}

// Close releases every mapping, cached allocation and program and drops
// the screen's reference on the shared device. An active batch is
// abandoned. Close is idempotent.
func (s *Screen) Close() error {
	if s.closed {
		return nil
	}
	if s.active != opIdle {
		Logger().Warn("exa: closing screen with an active batch", "op", s.active.String())
		s.active, s.solid, s.copy, s.comp = opIdle, nil, nil, nil
	}

	s.bos.drain()
	s.maps.close()
	s.shaders.Clear()
	s.freeSolid8()
	s.closed = true

	Logger().Info("exa: screen closed",
		"mapping_evictions", s.maps.evictions,
		"bo_cache_hits", s.bos.hits,
		"bo_cache_misses", s.bos.misses)
	return s.srv.Release()
}

// CreatePixmap creates a pixmap with a screen-owned allocation, reusing a
// cached allocation of the same rounded size when one is available.
// Zero-sized pixmaps get no allocation.
func (s *Screen) CreatePixmap(width, height, depth, bitsPerPixel int, hint UsageHint) (*Pixmap, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if width < 0 || height < 0 || bitsPerPixel <= 0 {
		return nil, fmt.Errorf("%w: pixmap %dx%d at %d bpp", ErrUnsupported, width, height, bitsPerPixel)
	}
	if limit := s.cfg.MaxPixmapSize(); width > limit || height > limit {
		return nil, fmt.Errorf("%w: pixmap %dx%d exceeds %d", ErrUnsupported, width, height, limit)
	}

	p := &Pixmap{
		Width:        width,
		Height:       height,
		Depth:        depth,
		BitsPerPixel: bitsPerPixel,
		usage:        hint,
		owned:        true,
	}
	if width == 0 || height == 0 {
		return p, nil
	}
	p.Pitch = pitchFor(width, bitsPerPixel, s.cfg.PitchAlign)

	if err := s.allocate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// allocate gives p a backing allocation for its current geometry.
func (s *Screen) allocate(p *Pixmap) error {
	size := p.Pitch * p.Height
	if p.usage != UsageScanout {
		if e := s.bos.get(size); e != nil {
			p.bo = e.bo
			if e.mapping != nil {
				s.maps.attach(p, e.mapping)
			}
			return nil
		}
	}

	bo, err := s.alloc.Alloc(roundAlloc(size))
	if err != nil {
		return fmt.Errorf("%w: %d bytes: %w", ErrAllocFailed, size, err)
	}
	p.bo = bo
	return nil
}

// DestroyPixmap releases p. Screen-owned allocations are parked in the
// allocation cache together with their mapping; the scanout and
// allocations larger than the cache budget are unmapped and freed.
func (s *Screen) DestroyPixmap(p *Pixmap) {
	if p == nil || p.bo == nil {
		return
	}
	if s.active != opIdle && s.batchUses(p) {
		s.violation("destroying a pixmap used by the active batch")
	}

	// The allocation is recycled or freed, so even the scanout of a
	// continuously refreshed display must be idle.
	s.wait(p)
	s.releaseBo(p)
	if s.maps.scanout == p {
		s.maps.setScanout(nil)
	}
	p.gpuOwned = false
	p.access = 0
}

// releaseBo detaches the allocation from p, recycling or freeing it.
func (s *Screen) releaseBo(p *Pixmap) {
	bo := p.bo
	p.bo = nil

	recycle := p.owned && !s.closed && p.usage != UsageScanout &&
		p != s.maps.scanout && s.bos.fits(bo.Size())
	if recycle {
		s.bos.put(bo, s.maps.detach(p))
		return
	}

	s.maps.release(p, true)
	if !p.owned {
		return
	}
	if err := s.alloc.Free(bo); err != nil {
		Logger().Warn("exa: free allocation failed", "size", bo.Size(), "err", err)
	}
}

// ModifyPixmapHeader changes the geometry of p. Non-positive arguments keep
// the current value; a non-positive pitch is recomputed. The mapping is
// released, and a screen-owned allocation that no longer fits is replaced.
func (s *Screen) ModifyPixmapHeader(p *Pixmap, width, height, depth, bitsPerPixel, pitch int) error {
	if s.closed {
		return ErrClosed
	}
	if s.active != opIdle && s.batchUses(p) {
		s.violation("modifying a pixmap used by the active batch")
		return fmt.Errorf("%w: pixmap in use", ErrBusy)
	}

	w, h, d, bpp := p.Width, p.Height, p.Depth, p.BitsPerPixel
	if width > 0 {
		w = width
	}
	if height > 0 {
		h = height
	}
	if depth > 0 {
		d = depth
	}
	if bitsPerPixel > 0 {
		bpp = bitsPerPixel
	}
	if pitch <= 0 {
		pitch = pitchFor(w, bpp, s.cfg.PitchAlign)
	}
	if limit := s.cfg.MaxPixmapSize(); w > limit || h > limit {
		return fmt.Errorf("%w: pixmap %dx%d exceeds %d", ErrUnsupported, w, h, limit)
	}

	need := pitch * h
	fits := p.bo != nil && need <= p.bo.Size()
	if !fits && p.bo != nil && !p.owned {
		return fmt.Errorf("%w: host allocation of %d bytes cannot hold %d", ErrUnsupported, p.bo.Size(), need)
	}

	s.WaitIfNeeded(p)
	if fits {
		s.maps.release(p, false)
	} else if p.bo != nil {
		s.releaseBo(p)
	}

	p.Width, p.Height, p.Depth, p.BitsPerPixel, p.Pitch = w, h, d, bpp, pitch
	if fits || need == 0 {
		return nil
	}
	p.owned = true
	return s.allocate(p)
}

// batchUses reports whether the active batch references p.
func (s *Screen) batchUses(p *Pixmap) bool {
	switch s.active {
	case opSolid:
		return s.solid.dst == p
	case opCopy:
		return s.copy.dst == p || s.copy.src == p
	case opComposite:
		c := s.comp
		return c.dst.Pixmap == p || c.src.Pixmap == p || (c.mask != nil && c.mask.Pixmap == p)
	}
	return false
}

// SetScanout designates p as the displayed pixmap. Its mapping is kept out
// of the LRU and is never evicted. Passing nil clears the designation.
func (s *Screen) SetScanout(p *Pixmap) {
	s.maps.setScanout(p)
}

// Scanout returns the designated scanout pixmap, or nil.
func (s *Screen) Scanout() *Pixmap {
	return s.maps.scanout
}

// PrepareAccess makes p safe for CPU access, waiting for outstanding GPU
// writes when needed. Calls nest; each must be matched by FinishAccess.
func (s *Screen) PrepareAccess(p *Pixmap, kind AccessKind) error {
	if p.bo == nil {
		return ErrNoBacking
	}
	s.WaitIfNeeded(p)
	p.access++
	return nil
}

// FinishAccess ends a CPU access started by PrepareAccess.
func (s *Screen) FinishAccess(p *Pixmap) {
	if p.access == 0 {
		s.violation("FinishAccess without PrepareAccess")
		return
	}
	p.access--
}
