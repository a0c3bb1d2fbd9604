// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/exa"
)

// QueueTransfer executes a transfer-queue operation.
func (d *Device) QueueTransfer(t *exa.Transfer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if code, ok := d.faults[t.Kind]; ok {
		return deviceError("transfer", code)
	}

	var err error
	switch t.Kind {
	case exa.TransferShaderBlit, exa.TransferAtlasBlit, exa.TransferCustomBlit:
		err = d.composite(t)
	case exa.TransferVideoBlit:
		err = d.video(t)
	default:
		err = deviceError("transfer", exa.CodeInvalidParameter)
	}
	if err == nil {
		d.stats.Transfers++
	}
	return err
}

// composite blends SrcRects of the source onto DestRects of the
// destination with the transfer's blend state.
func (d *Device) composite(t *exa.Transfer) error {
	if len(t.Sources) == 0 || len(t.SrcRects) != len(t.DestRects) {
		return deviceError("composite", exa.CodeInvalidParameter)
	}
	if t.Kind != exa.TransferAtlasBlit && len(t.DestRects) != 1 {
		return deviceError("composite", exa.CodeInvalidParameter)
	}
	if t.Kind == exa.TransferAtlasBlit && t.AlphaMode != exa.AlphaSource {
		return deviceError("atlas blit", exa.CodeHWFeatureNotSupported)
	}
	if err := checkBlend(t.Blend); err != nil {
		return err
	}

	src, err := d.view(t.Sources[0])
	if err != nil {
		return err
	}
	dst, err := d.view(t.Dest)
	if err != nil {
		return err
	}

	var mask *view
	if t.Kind == exa.TransferShaderBlit {
		prog, ok := d.programs[t.Shader]
		if !ok || prog.Kind != exa.UseComposite || prog.Op != t.Op {
			return deviceError("shader blit", exa.CodeInvalidParameter)
		}
		if prog.Mask {
			if len(t.Sources) < 3 || len(t.MaskRects) != 1 {
				return deviceError("shader blit", exa.CodeInvalidParameter)
			}
			if mask, err = d.view(t.Sources[2]); err != nil {
				return err
			}
		}
	}

	transformed := t.Transform != exa.TransformNone && t.Matrix != nil
	for i, dr := range t.DestRects {
		sr := t.SrcRects[i]
		smp := sampler{v: src, repeat: t.SrcRepeat, opaque: t.SrcForceAlpha, dx: sr.X0 - dr.X0, dy: sr.Y0 - dr.Y0}
		if transformed {
			smp.pre = resample(src, t.Matrix, sr, dr, t.SrcForceAlpha)
			if smp.pre == nil {
				return deviceError("composite", exa.CodeInvalidParameter)
			}
		}
		var msmp *sampler
		if mask != nil {
			mr := t.MaskRects[0]
			msmp = &sampler{v: mask, repeat: t.MaskRepeat, dx: mr.X0 - dr.X0, dy: mr.Y0 - dr.Y0}
		}
		blendRect(dst, dr.Intersect(dst.bounds()), &smp, msmp, t.Blend, t.DestForceAlpha)
	}
	return nil
}

// checkBlend rejects factors the compositor cannot evaluate.
func checkBlend(bs exa.BlendState) error {
	for _, c := range []exa.BlendComponent{bs.Color, bs.Alpha} {
		if c.Operation != gputypes.BlendOperationAdd {
			return deviceError("composite", exa.CodeHWFeatureNotSupported)
		}
		for _, f := range []gputypes.BlendFactor{c.SrcFactor, c.DstFactor} {
			switch f {
			case gputypes.BlendFactorZero, gputypes.BlendFactorOne,
				gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha,
				gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOneMinusDstAlpha:
			default:
				return deviceError("composite", exa.CodeHWFeatureNotSupported)
			}
		}
	}
	return nil
}

// sampler reads premultiplied A8R8G8B8 colours of a picture in
// destination coordinates.
type sampler struct {
	v      *view
	repeat exa.Repeat
	opaque bool

	// dx, dy translate destination to picture coordinates.
	dx, dy int

	// pre holds the resampled source of a transformed picture in
	// destination coordinates.
	pre *image.RGBA
}

func (s *sampler) at(x, y int) uint32 {
	if s.pre != nil {
		c := s.pre.RGBAAt(x, y)
		return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	}

	px, ok := wrap(x+s.dx, s.v.w, s.repeat)
	if !ok {
		return 0
	}
	py, ok := wrap(y+s.dy, s.v.h, s.repeat)
	if !ok {
		return 0
	}
	c := s.v.toARGB(s.v.get(px, py))
	if s.opaque {
		c |= 0xff000000
	}
	return c
}

// wrap maps a coordinate into [0, n) according to the repeat type.
func wrap(c, n int, r exa.Repeat) (int, bool) {
	if c >= 0 && c < n {
		return c, true
	}
	switch r {
	case exa.RepeatNormal:
		c %= n
		if c < 0 {
			c += n
		}
		return c, true
	case exa.RepeatPad:
		return min(max(c, 0), n-1), true
	case exa.RepeatReflect:
		c %= 2 * n
		if c < 0 {
			c += 2 * n
		}
		if c >= n {
			c = 2*n - 1 - c
		}
		return c, true
	default:
		return 0, false
	}
}

// resample renders the transformed source for the destination rectangle
// dr. The picture transform maps destination space, anchored at the
// source origin of sr, to source space. It returns nil for singular
// transforms.
func resample(src *view, m *exa.Transform, sr, dr exa.Box, opaque bool) *image.RGBA {
	a, b, c := m[0][0].Float(), m[0][1].Float(), m[0][2].Float()
	d, e, f := m[1][0].Float(), m[1][1].Float(), m[1][2].Float()

	// Destination-to-source, with the rectangle origin folded in.
	c += a*float64(sr.X0) + b*float64(sr.Y0)
	f += d*float64(sr.X0) + e*float64(sr.Y0)

	det := a*e - b*d
	if det == 0 {
		return nil
	}
	s2d := f64.Aff3{
		e / det, -b / det, (b*f - e*c) / det,
		-d / det, a / det, (d*c - a*f) / det,
	}

	out := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	im := surfaceImage{v: src, opaque: opaque}
	draw.NearestNeighbor.Transform(out, s2d, im, im.Bounds(), draw.Src, nil)
	out.Rect = out.Rect.Add(image.Pt(dr.X0, dr.Y0))
	return out
}

// blendRect composites the clip region of a destination rectangle.
func blendRect(dst *view, clip exa.Box, src, mask *sampler, bs exa.BlendState, dstOpaque bool) {
	for y := clip.Y0; y < clip.Y1; y++ {
		for x := clip.X0; x < clip.X1; x++ {
			s := src.at(x, y)
			if mask != nil {
				s = scale(s, mask.at(x, y)>>24)
			}
			dp := dst.toARGB(dst.get(x, y))
			if dstOpaque {
				dp |= 0xff000000
			}
			dst.set(x, y, dst.fromARGB(blendPixel(s, dp, bs)))
		}
	}
}

// scale multiplies every channel of c by a/255.
func scale(c, a uint32) uint32 {
	var out uint32
	for shift := 0; shift < 32; shift += 8 {
		ch := c >> shift & 0xff
		out |= div255(ch*a) << shift
	}
	return out
}

func blendPixel(s, d uint32, bs exa.BlendState) uint32 {
	sa, da := s>>24, d>>24
	out := blendChannel(sa, da, sa, da, bs.Alpha) << 24
	for shift := 0; shift < 24; shift += 8 {
		out |= blendChannel(s>>shift&0xff, d>>shift&0xff, sa, da, bs.Color) << shift
	}
	return out
}

func blendChannel(s, d, sa, da uint32, c exa.BlendComponent) uint32 {
	v := div255(s*factor(c.SrcFactor, sa, da) + d*factor(c.DstFactor, sa, da))
	return min(v, 0xff)
}

func factor(f gputypes.BlendFactor, sa, da uint32) uint32 {
	switch f {
	case gputypes.BlendFactorOne:
		return 0xff
	case gputypes.BlendFactorSrcAlpha:
		return sa
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 0xff - sa
	case gputypes.BlendFactorDstAlpha:
		return da
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 0xff - da
	default:
		return 0
	}
}

// div255 divides by 255 with rounding.
func div255(v uint32) uint32 {
	v += 0x80
	return (v + v>>8) >> 8
}
