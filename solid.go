package exa

import "fmt"

// solidOp is the state of one PrepareSolid..DoneSolid sequence.
type solidOp struct {
	dst    *Pixmap
	format Format
	alu    Alu
	colour uint32
	batch  batch[Box]
}

// PrepareSolid starts a solid fill of p with raster op alu and colour fg.
// Only full plane masks at 8, 16 and 32 bits per pixel are accelerated.
func (s *Screen) PrepareSolid(p *Pixmap, alu Alu, planeMask, fg Pixel) error {
	if err := s.begin(opSolid); err != nil {
		return err
	}
	if planeMask != AllPlanes {
		return fmt.Errorf("%w: plane mask %#x", ErrUnsupported, uint32(planeMask))
	}
	if !supportedBpp(p.BitsPerPixel) {
		return fmt.Errorf("%w: solid at %d bpp", ErrUnsupported, p.BitsPerPixel)
	}
	if alu > GXset {
		return fmt.Errorf("%w: raster op %d", ErrUnsupported, alu)
	}
	if _, err := s.maps.acquire(p); err != nil {
		return err
	}

	op := &solidOp{
		dst:    p,
		format: formatForBpp(p.BitsPerPixel),
		alu:    alu,
		colour: uint32(fg),
	}
	if p.BitsPerPixel == 16 {
		op.colour = fill565(fg)
	}
	op.batch.init(s.cfg.SolidBatchRects, p)

	s.solid = op
	s.active = opSolid
	return nil
}

// Solid fills the rectangle (x0,y0)-(x1,y1) of the prepared pixmap.
// The rectangle is clipped to the pixmap; nothing outside is drawn.
func (s *Screen) Solid(p *Pixmap, x0, y0, x1, y1 int) {
	op := s.solid
	if !s.current(opSolid, op.pixmap(), p, "Solid") {
		return
	}

	r := Box{x0, y0, x1, y1}.Intersect(p.Box())
	if r.Empty() {
		return
	}
	if op.batch.full() {
		s.flushSolid(op)
	}
	op.batch.add(r, r)
}

// DoneSolid flushes the remaining rectangles and ends the fill.
func (s *Screen) DoneSolid(p *Pixmap) {
	op := s.solid
	if !s.current(opSolid, op.pixmap(), p, "DoneSolid") {
		return
	}

	s.flushSolid(op)
	damage := op.batch.damaged()
	s.solid = nil
	s.active = opIdle
	s.finishWrite(p, damage)
}

func (op *solidOp) pixmap() *Pixmap {
	if op == nil {
		return nil
	}
	return op.dst
}

func (s *Screen) flushSolid(op *solidOp) {
	rects, bounds := op.batch.take()
	if len(rects) == 0 {
		return
	}
	if _, err := s.maps.acquire(op.dst); err != nil {
		s.submitFailed("solid", err, len(rects))
		return
	}
	dst := op.dst.surface(op.format)

	if op.dst.BitsPerPixel == 8 {
		info := Blt3DInfo{
			Src:              dst,
			Dst:              dst,
			Use:              s.solid8[op.alu],
			UseParams:        [2]uint32{op.colour, 0},
			NumTemporaryRegs: 1,
		}
		submitEach(s, "solid 3D blit", rects, bounds[surfDst], func(r Box) error {
			info.SrcRect = r
			info.DstRect = r
			return s.dev.Blt3D(&info)
		})
		return
	}

	info := BltInfo{
		CopyCode: PatternROP3(op.alu),
		Colour:   op.colour,
		Flags:    BlitDisableAll,
		Dst:      dst,
	}
	submitEach(s, "solid blit", rects, bounds[surfDst], func(r Box) error {
		info.DstX, info.DstY = r.X0, r.Y0
		info.DSizeX, info.DSizeY = r.Dx(), r.Dy()
		return s.dev.Blt(&info)
	})
}
