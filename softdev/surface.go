// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"image"
	"image/color"

	"honnef.co/go/safeish"

	"github.com/gogpu/exa"
)

// view is a typed window onto a mapped surface.
type view struct {
	format exa.Format
	bpp    int
	stride int
	w, h   int

	u8  []byte
	u16 []uint16
	u32 []uint32
}

// newView validates s against the bytes of its mapping.
func newView(s exa.Surface, buf []byte) (*view, error) {
	bpp := s.Format.BitsPerPixel()
	if bpp != 8 && bpp != 16 && bpp != 32 {
		return nil, deviceError("surface", exa.CodeHWFeatureNotSupported)
	}
	if s.Width <= 0 || s.Height <= 0 || s.Stride < s.Width*bpp/8 || s.Stride%(bpp/8) != 0 {
		return nil, deviceError("surface", exa.CodeInvalidParameter)
	}
	if s.Stride*s.Height > len(buf) {
		return nil, deviceError("surface", exa.CodeInvalidParameter)
	}

	v := &view{format: s.Format, bpp: bpp, stride: s.Stride, w: s.Width, h: s.Height}
	switch bpp {
	case 8:
		v.u8 = buf
	case 16:
		v.u16 = safeish.SliceCast[[]uint16](buf)
	case 32:
		v.u32 = safeish.SliceCast[[]uint32](buf)
	}
	return v, nil
}

func (v *view) bounds() exa.Box {
	return exa.Box{X1: v.w, Y1: v.h}
}

func (v *view) get(x, y int) uint32 {
	switch v.bpp {
	case 8:
		return uint32(v.u8[y*v.stride+x])
	case 16:
		return uint32(v.u16[y*(v.stride/2)+x])
	default:
		return v.u32[y*(v.stride/4)+x]
	}
}

func (v *view) set(x, y int, p uint32) {
	switch v.bpp {
	case 8:
		v.u8[y*v.stride+x] = uint8(p)
	case 16:
		v.u16[y*(v.stride/2)+x] = uint16(p)
	default:
		v.u32[y*(v.stride/4)+x] = p
	}
}

// mask returns the significant bits of a raw pixel.
func (v *view) mask() uint32 {
	if v.bpp == 32 {
		return 0xffffffff
	}
	return 1<<v.bpp - 1
}

// fromARGB converts a blitter colour (A8R8G8B8) to a raw pixel.
func (v *view) fromARGB(c uint32) uint32 {
	switch v.format {
	case exa.FormatA8:
		return c >> 24
	case exa.FormatRGB565:
		return (c>>8)&0xf800 | (c>>5)&0x07e0 | (c>>3)&0x001f
	case exa.FormatABGR8888, exa.FormatXBGR8888:
		return c&0xff00ff00 | (c>>16)&0xff | (c&0xff)<<16
	default:
		return c
	}
}

// toARGB converts a raw pixel to a premultiplied A8R8G8B8 colour.
func (v *view) toARGB(p uint32) uint32 {
	switch v.format {
	case exa.FormatA8:
		return p << 24
	case exa.FormatRGB565:
		r, g, b := p>>11&0x1f, p>>5&0x3f, p&0x1f
		return 0xff000000 | (r<<3|r>>2)<<16 | (g<<2|g>>4)<<8 | (b<<3 | b>>2)
	case exa.FormatXRGB8888:
		return p | 0xff000000
	case exa.FormatABGR8888:
		return p&0xff00ff00 | (p>>16)&0xff | (p&0xff)<<16
	case exa.FormatXBGR8888:
		return 0xff000000 | p&0x0000ff00 | (p>>16)&0xff | (p&0xff)<<16
	default:
		return p
	}
}

// surfaceImage adapts a view to draw.Image for resampling. Colours are
// premultiplied.
type surfaceImage struct {
	v *view

	// opaque forces alpha to 0xff.
	opaque bool
}

func (im surfaceImage) ColorModel() color.Model { return color.RGBAModel }

func (im surfaceImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.v.w, im.v.h)
}

func (im surfaceImage) At(x, y int) color.Color {
	if !image.Pt(x, y).In(im.Bounds()) {
		return color.RGBA{}
	}
	c := im.v.toARGB(im.v.get(x, y))
	if im.opaque {
		c |= 0xff000000
	}
	return argbColor(c)
}

func (im surfaceImage) Set(x, y int, c color.Color) {
	if !image.Pt(x, y).In(im.Bounds()) {
		return
	}
	im.v.set(x, y, im.v.fromARGB(colorARGB(c)))
}

func argbColor(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)}
}

func colorARGB(c color.Color) uint32 {
	r, g, b, a := c.RGBA()
	return (a>>8)<<24 | (r>>8)<<16 | (g>>8)<<8 | b>>8
}
