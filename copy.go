package exa

import "fmt"

// copyRect pairs the source and destination of one copied rectangle.
type copyRect struct {
	src Box
	dst Box
}

// copyOp is the state of one PrepareCopy..DoneCopy sequence.
type copyOp struct {
	src       *Pixmap
	dst       *Pixmap
	srcFormat Format
	dstFormat Format
	alu       Alu
	flags     BlitFlags
	batch     batch[copyRect]
}

// PrepareCopy starts copies from src to dst. Negative xdir or ydir request
// right-to-left or bottom-to-top traversal for overlapping copies.
func (s *Screen) PrepareCopy(src, dst *Pixmap, xdir, ydir int, alu Alu, planeMask Pixel) error {
	if err := s.begin(opCopy); err != nil {
		return err
	}
	if planeMask != AllPlanes {
		return fmt.Errorf("%w: plane mask %#x", ErrUnsupported, uint32(planeMask))
	}
	bpp := src.BitsPerPixel
	if !supportedBpp(bpp) {
		return fmt.Errorf("%w: copy at %d bpp", ErrUnsupported, bpp)
	}
	if dst.BitsPerPixel != bpp {
		return fmt.Errorf("%w: copy from %d to %d bpp", ErrUnsupported, bpp, dst.BitsPerPixel)
	}
	if alu > GXset || (bpp == 8 && alu != GXcopy) {
		return fmt.Errorf("%w: raster op %d at %d bpp", ErrUnsupported, alu, bpp)
	}
	if err := s.mapAll(dst, src); err != nil {
		return err
	}

	op := &copyOp{
		src:       src,
		dst:       dst,
		srcFormat: formatForBpp(src.BitsPerPixel),
		dstFormat: formatForBpp(dst.BitsPerPixel),
		alu:       alu,
		flags:     BlitDisableAll,
	}
	if xdir < 0 {
		op.flags |= BlitReverseX
	}
	if ydir < 0 {
		op.flags |= BlitReverseY
	}
	op.batch.init(s.cfg.CopyBatchRects, dst, src)

	s.copy = op
	s.active = opCopy
	return nil
}

// Copy copies a width x height rectangle from (srcX, srcY) to (dstX, dstY).
// The destination is clipped to dst and the source shifted to match.
func (s *Screen) Copy(dst *Pixmap, srcX, srcY, dstX, dstY, width, height int) {
	op := s.copy
	if !s.current(opCopy, op.pixmap(), dst, "Copy") {
		return
	}

	w, h := dst.Width, dst.Height
	if dstX >= w || dstY >= h {
		return
	}
	if dstX < 0 {
		width += dstX
		srcX -= dstX
		dstX = 0
	}
	if dstY < 0 {
		height += dstY
		srcY -= dstY
		dstY = 0
	}
	w = min(w-dstX, width)
	h = min(h-dstY, height)
	if w <= 0 || h <= 0 {
		return
	}

	r := copyRect{
		src: Box{srcX, srcY, srcX + w, srcY + h},
		dst: Box{dstX, dstY, dstX + w, dstY + h},
	}
	if op.batch.full() {
		s.flushCopy(op)
	}
	op.batch.add(r, r.dst, r.src)
}

// DoneCopy flushes the remaining rectangles and ends the copy.
func (s *Screen) DoneCopy(dst *Pixmap) {
	op := s.copy
	if !s.current(opCopy, op.pixmap(), dst, "DoneCopy") {
		return
	}

	s.flushCopy(op)
	damage := op.batch.damaged()
	s.copy = nil
	s.active = opIdle
	s.finishWrite(dst, damage)
}

func (op *copyOp) pixmap() *Pixmap {
	if op == nil {
		return nil
	}
	return op.dst
}

func (s *Screen) flushCopy(op *copyOp) {
	rects, bounds := op.batch.take()
	if len(rects) == 0 {
		return
	}
	if err := s.mapAll(op.dst, op.src); err != nil {
		s.submitFailed("copy", err, len(rects))
		return
	}
	src := op.src.surface(op.srcFormat)
	dst := op.dst.surface(op.dstFormat)

	if op.dst.BitsPerPixel == 8 {
		info := Blt3DInfo{Src: src, Dst: dst}
		submitEach(s, "copy 3D blit", rects, bounds[surfDst], func(r copyRect) error {
			info.SrcRect = r.src
			info.DstRect = r.dst
			return s.dev.Blt3D(&info)
		})
		return
	}

	info := BltInfo{
		CopyCode: SourceROP3(op.alu),
		Flags:    op.flags,
		Src:      &src,
		Dst:      dst,
	}
	submitEach(s, "copy blit", rects, bounds[surfDst], func(r copyRect) error {
		info.SrcX, info.SrcY = r.src.X0, r.src.Y0
		info.SizeX, info.SizeY = r.src.Dx(), r.src.Dy()
		info.DstX, info.DstY = r.dst.X0, r.dst.Y0
		info.DSizeX, info.DSizeY = r.dst.Dx(), r.dst.Dy()
		return s.dev.Blt(&info)
	})
}
