package exa

import "fmt"

// compositeRect is one composited rectangle in source, mask and
// destination coordinates.
type compositeRect struct {
	src  Box
	mask Box
	dst  Box
}

// compositeOp is the state of one PrepareComposite..DoneComposite sequence.
type compositeOp struct {
	op        PictOp
	src       *Picture
	mask      *Picture
	dst       *Picture
	transform Transformation
	blend     BlendState
	batch     batch[compositeRect]

	// Whole-pixel translations of untransformed source and mask.
	srcDX, srcDY   int
	maskDX, maskDY int
}

// CheckComposite reports whether op can be accelerated for the pictures.
// mask may be nil. It has no side effects.
func (s *Screen) CheckComposite(op PictOp, src, mask, dst *Picture) error {
	if _, ok := BlendStateFor(op); !ok {
		return fmt.Errorf("%w: render op %d", ErrUnsupported, op)
	}
	if src == nil || src.Pixmap == nil {
		return fmt.Errorf("%w: source is not a drawable", ErrUnsupported)
	}
	if dst == nil || dst.Pixmap == nil {
		return fmt.Errorf("%w: destination is not a drawable", ErrUnsupported)
	}
	if !src.Format.compositable() {
		return fmt.Errorf("%w: source format %s", ErrUnsupported, src.Format)
	}
	if !dst.Format.compositable() {
		return fmt.Errorf("%w: destination format %s", ErrUnsupported, dst.Format)
	}

	if mask != nil {
		switch {
		case mask.Pixmap == nil:
			return fmt.Errorf("%w: mask is not a drawable", ErrUnsupported)
		case mask.ComponentAlpha:
			return fmt.Errorf("%w: component alpha mask", ErrUnsupported)
		case !mask.Format.compositable():
			return fmt.Errorf("%w: mask format %s", ErrUnsupported, mask.Format)
		case ClassifyTransform(mask.Transform) != TransformNone:
			return fmt.Errorf("%w: transformed mask", ErrUnsupported)
		case !integralOffset(mask.Transform):
			return fmt.Errorf("%w: fractional mask translation", ErrUnsupported)
		case mask.Repeat > RepeatNormal:
			return fmt.Errorf("%w: mask repeat %d", ErrUnsupported, mask.Repeat)
		}
	}

	t := ClassifyTransform(src.Transform)
	switch {
	case t == TransformUnknown:
		return fmt.Errorf("%w: source transform", ErrUnsupported)
	case t == TransformNone && !integralOffset(src.Transform):
		return fmt.Errorf("%w: fractional source translation", ErrUnsupported)
	case t != TransformNone && src.Repeat != RepeatNone:
		return fmt.Errorf("%w: repeat with %s source", ErrUnsupported, t)
	case src.Repeat > RepeatNormal:
		return fmt.Errorf("%w: source repeat %d", ErrUnsupported, src.Repeat)
	case t != TransformNone && op == PictOpSrc && mask == nil:
		return fmt.Errorf("%w: %s source copy", ErrNotImplemented, t)
	}
	return nil
}

// PrepareComposite starts compositing src (through mask, which may be nil)
// onto dst with op.
func (s *Screen) PrepareComposite(op PictOp, src, mask, dst *Picture) error {
	if err := s.begin(opComposite); err != nil {
		return err
	}
	if err := s.CheckComposite(op, src, mask, dst); err != nil {
		return err
	}

	surfaces := []*Pixmap{dst.Pixmap, src.Pixmap}
	if mask != nil {
		surfaces = append(surfaces, mask.Pixmap)
	}
	if err := s.mapAll(surfaces...); err != nil {
		return err
	}

	blend, _ := BlendStateFor(op)
	c := &compositeOp{
		op:        op,
		src:       src,
		mask:      mask,
		dst:       dst,
		transform: ClassifyTransform(src.Transform),
		blend:     blend,
	}
	if c.transform == TransformNone {
		c.srcDX, c.srcDY, _ = src.Transform.offset()
	}
	if mask != nil {
		c.maskDX, c.maskDY, _ = mask.Transform.offset()
	}
	c.batch.init(s.cfg.CompositeBatchRects, surfaces...)

	s.comp = c
	s.active = opComposite
	return nil
}

// Composite blends a width x height rectangle. The destination is clipped
// to dst and the source and mask origins shifted to match.
func (s *Screen) Composite(dst *Pixmap, srcX, srcY, maskX, maskY, dstX, dstY, width, height int) {
	c := s.comp
	if !s.current(opComposite, c.pixmap(), dst, "Composite") {
		return
	}

	r := Box{dstX, dstY, dstX + width, dstY + height}
	clipped := r.Intersect(dst.Box())
	if clipped.Empty() {
		return
	}
	dx, dy := clipped.X0-r.X0, clipped.Y0-r.Y0
	w, h := clipped.Dx(), clipped.Dy()
	srcX, srcY = srcX+dx+c.srcDX, srcY+dy+c.srcDY
	maskX, maskY = maskX+dx+c.maskDX, maskY+dy+c.maskDY

	cr := compositeRect{
		src:  Box{srcX, srcY, srcX + w, srcY + h},
		mask: Box{maskX, maskY, maskX + w, maskY + h},
		dst:  clipped,
	}
	if c.batch.full() {
		s.flushComposite(c)
	}
	if c.mask != nil {
		c.batch.add(cr, cr.dst, cr.src, cr.mask)
	} else {
		c.batch.add(cr, cr.dst, cr.src)
	}
}

// DoneComposite flushes the remaining rectangles and ends the operation.
func (s *Screen) DoneComposite(dst *Pixmap) {
	c := s.comp
	if !s.current(opComposite, c.pixmap(), dst, "DoneComposite") {
		return
	}

	s.flushComposite(c)
	damage := c.batch.damaged()
	s.comp = nil
	s.active = opIdle
	s.finishWrite(dst, damage)
}

func (c *compositeOp) pixmap() *Pixmap {
	if c == nil {
		return nil
	}
	return c.dst.Pixmap
}

// template returns the transfer fields shared by every submission.
func (c *compositeOp) template(src, dst Surface) Transfer {
	t := Transfer{
		Sources:        []Surface{src},
		Dest:           dst,
		Op:             c.op,
		Blend:          c.blend,
		SrcRepeat:      c.src.Repeat,
		Transform:      c.transform,
		Matrix:         c.src.Transform,
		SrcForceAlpha:  c.src.Format.forceAlpha(),
		DestForceAlpha: c.dst.Format.forceAlpha(),
	}
	if c.mask != nil {
		t.MaskRepeat = c.mask.Repeat
	}
	return t
}

// flushComposite submits the batch on the cheapest path the operation
// allows: atlas blits for several plain rectangles, a custom blit for a
// single one, and per-rectangle shader blits for masks and transforms.
func (s *Screen) flushComposite(c *compositeOp) {
	rects, bounds := c.batch.take()
	if len(rects) == 0 {
		return
	}

	pix := []*Pixmap{c.dst.Pixmap, c.src.Pixmap}
	if c.mask != nil {
		pix = append(pix, c.mask.Pixmap)
	}
	if err := s.mapAll(pix...); err != nil {
		s.submitFailed("composite", err, len(rects))
		return
	}
	src := c.src.Pixmap.surface(c.src.Format)
	dst := c.dst.Pixmap.surface(c.dst.Format)

	if c.mask != nil || c.transform != TransformNone {
		s.compositeShader(c, rects, bounds[surfDst], src, dst)
		return
	}

	if len(rects) == 1 {
		t := c.template(src, dst)
		t.Kind = TransferCustomBlit
		t.SrcRects = []Box{rects[0].src}
		t.DestRects = []Box{rects[0].dst}
		t.DestBounds = rects[0].dst
		submitEach(s, "composite custom blit", []*Transfer{&t}, bounds[surfDst], s.dev.QueueTransfer)
		return
	}

	t := c.template(src, dst)
	t.Kind = TransferAtlasBlit
	t.AlphaMode = AlphaSource
	t.SrcRects = make([]Box, len(rects))
	t.DestRects = make([]Box, len(rects))
	for i, r := range rects {
		t.SrcRects[i] = r.src
		t.DestRects[i] = r.dst
	}
	t.DestBounds = bounds[surfDst]

	s.stats.submissions++
	err := s.dev.QueueTransfer(&t)
	if err == nil {
		s.stats.flushes++
		Logger().Debug("exa: flush batch", "op", "composite atlas blit",
			"rects", len(rects), "bounds", t.DestBounds)
		return
	}
	s.stats.atlasFallbacks++
	code := codeOf(err)
	Logger().Warn("exa: atlas blit failed, falling back to shader blits",
		"code", int(code), "desc", code.String(), "rects", len(rects))
	s.compositeShader(c, rects, bounds[surfDst], src, dst)
}

// compositeShader submits one shader blit per rectangle. Sources are the
// source picture, the destination read back as texture and the mask.
func (s *Screen) compositeShader(c *compositeOp, rects []compositeRect, bounds Box, src, dst Surface) {
	prog := UseProgram{
		Kind:      UseComposite,
		Op:        c.op,
		Mask:      c.mask != nil,
		Transform: c.transform,
	}
	h, err := s.shaders.GetOrCreate(prog, func() (UseHandle, error) {
		return s.dev.LoadUseCode(prog)
	})
	if err != nil {
		s.submitFailed("composite shader load", err, len(rects))
		return
	}

	t := c.template(src, dst)
	t.Kind = TransferShaderBlit
	t.Shader = h
	t.Sources = append(t.Sources, dst)
	if c.mask != nil {
		t.Sources = append(t.Sources, c.mask.Pixmap.surface(c.mask.Format))
	}

	submitEach(s, "composite shader blit", rects, bounds, func(r compositeRect) error {
		t.SrcRects = []Box{r.src}
		t.DestRects = []Box{r.dst}
		t.DestBounds = r.dst
		t.MaskRects = nil
		if c.mask != nil {
			t.MaskRects = []Box{r.mask}
		}
		return s.dev.QueueTransfer(&t)
	})
}
