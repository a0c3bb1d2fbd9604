// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import "github.com/gogpu/exa"

// Blt executes a 2D blit. Pixels are combined with the ROP3 copy code
// from the pattern colour, the source pixel and the destination pixel.
// The reverse flags select the scan direction for overlapping copies.
func (d *Device) Blt(info *exa.BltInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	dst, err := d.view(info.Dst)
	if err != nil {
		return err
	}
	r := exa.Box{X0: info.DstX, Y0: info.DstY, X1: info.DstX + info.DSizeX, Y1: info.DstY + info.DSizeY}
	r = r.Intersect(dst.bounds())

	var src *view
	var dx, dy int
	if info.Src != nil {
		if src, err = d.view(*info.Src); err != nil {
			return err
		}
		if src.bpp != dst.bpp {
			return deviceError("blt", exa.CodeHWFeatureNotSupported)
		}
		if info.SizeX != info.DSizeX || info.SizeY != info.DSizeY {
			return deviceError("blt", exa.CodeHWFeatureNotSupported)
		}
		dx, dy = info.SrcX-info.DstX, info.SrcY-info.DstY
		r = r.Intersect(src.bounds().Translate(-dx, -dy))
	}
	d.stats.Blits++
	if r.Empty() {
		return nil
	}

	pat := dst.fromARGB(info.Colour)
	m := dst.mask()
	reverseX := info.Flags&exa.BlitReverseX != 0
	reverseY := info.Flags&exa.BlitReverseY != 0

	for j := range r.Dy() {
		y := r.Y0 + j
		if reverseY {
			y = r.Y1 - 1 - j
		}
		for i := range r.Dx() {
			x := r.X0 + i
			if reverseX {
				x = r.X1 - 1 - i
			}
			var s uint32
			if src != nil {
				s = src.get(x+dx, y+dy)
			}
			dst.set(x, y, exa.EvalROP3(info.CopyCode, pat, s, dst.get(x, y))&m)
		}
	}
	return nil
}

// Blt3D executes a USE-program driven blit. Handle 0 is the default copy
// program, which scales SrcRect onto DstRect with point sampling; 8-bit
// solid programs fill DstRect with UseParams[0] through their raster op.
func (d *Device) Blt3D(info *exa.Blt3DInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	dst, err := d.view(info.Dst)
	if err != nil {
		return err
	}
	r := info.DstRect.Intersect(dst.bounds())

	if info.Use == 0 {
		src, err := d.view(info.Src)
		if err != nil {
			return err
		}
		if src.bpp != dst.bpp {
			return deviceError("blt3d", exa.CodeHWFeatureNotSupported)
		}
		d.stats.Blits3D++
		copy3D(src, info.SrcRect, dst, info.DstRect, r)
		return nil
	}

	prog, ok := d.programs[info.Use]
	if !ok {
		return deviceError("blt3d", exa.CodeInvalidParameter)
	}
	if prog.Kind != exa.UseSolid8 || dst.bpp != 8 || info.NumTemporaryRegs < 1 {
		return deviceError("blt3d", exa.CodeHWFeatureNotSupported)
	}
	d.stats.Blits3D++

	rop := exa.PatternROP3(prog.Alu)
	pat := info.UseParams[0] & 0xff
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			dst.set(x, y, exa.EvalROP3(rop, pat, 0, dst.get(x, y))&0xff)
		}
	}
	return nil
}

// copy3D samples sr into the clip region of dr. The source is read
// completely before the destination is written, so overlap is safe.
func copy3D(src *view, sr exa.Box, dst *view, dr, clip exa.Box) {
	if clip.Empty() || sr.Empty() || dr.Empty() {
		return
	}
	tmp := make([]uint32, 0, clip.Dx()*clip.Dy())
	for y := clip.Y0; y < clip.Y1; y++ {
		sy := sr.Y0 + (y-dr.Y0)*sr.Dy()/dr.Dy()
		for x := clip.X0; x < clip.X1; x++ {
			sx := sr.X0 + (x-dr.X0)*sr.Dx()/dr.Dx()
			var p uint32
			if sx >= 0 && sy >= 0 && sx < src.w && sy < src.h {
				p = src.get(sx, sy)
			}
			tmp = append(tmp, p)
		}
	}
	i := 0
	for y := clip.Y0; y < clip.Y1; y++ {
		for x := clip.X0; x < clip.X1; x++ {
			dst.set(x, y, tmp[i])
			i++
		}
	}
}
