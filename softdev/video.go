// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package softdev

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/exa"
)

// video converts a YUV image to the destination format and scales the
// source box onto the destination box. Video boxes are inclusive.
func (d *Device) video(t *exa.Transfer) error {
	if len(t.Sources) == 0 || len(t.SrcRects) != 1 || len(t.DestRects) != 1 {
		return deviceError("video blit", exa.CodeInvalidParameter)
	}
	dst, err := d.view(t.Dest)
	if err != nil {
		return err
	}

	planes := make([][]byte, len(t.Sources))
	for i, s := range t.Sources {
		bo, ok := d.maps[s.Mem.Handle]
		if !ok {
			return deviceError("video blit", exa.CodeInvalidParameter)
		}
		planes[i] = bo.Bytes()
	}
	img, err := decodeYUV(t.Sources, planes)
	if err != nil {
		return err
	}

	sb, db := t.SrcRects[0], t.DestRects[0]
	sr := image.Rect(sb.X0, sb.Y0, sb.X1+1, sb.Y1+1).Intersect(img.Rect)
	dr := image.Rect(db.X0, db.Y0, db.X1+1, db.Y1+1)
	draw.ApproxBiLinear.Scale(surfaceImage{v: dst}, dr, img, sr, draw.Src, nil)
	return nil
}

// decodeYUV builds a YCbCr image from the planes of a video source.
// Planar images passed as a single source carry their chroma planes after
// the luma plane, at half the luma stride (YV12, I420) or at the luma
// stride (NV12).
func decodeYUV(src []exa.Surface, planes [][]byte) (*image.YCbCr, error) {
	s := src[0]
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		return nil, deviceError("video blit", exa.CodeInvalidParameter)
	}
	cw, ch := (w+1)/2, (h+1)/2

	switch s.Format {
	case exa.FormatYV12, exa.FormatI420:
		if len(src) != 1 && len(src) != 3 {
			return nil, deviceError("video blit", exa.CodeInvalidParameter)
		}
		img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
		end := s.Stride * h
		u, v := plane{planes[0], end, s.Stride / 2}, plane{planes[0], end + s.Stride/2*ch, s.Stride / 2}
		if len(src) == 3 {
			u, v = plane{planes[1], 0, src[1].Stride}, plane{planes[2], 0, src[2].Stride}
		}
		if s.Format == exa.FormatYV12 {
			u, v = v, u
		}
		luma := plane{planes[0], 0, s.Stride}
		if !luma.copyTo(img.Y, img.YStride, w, h) ||
			!u.copyTo(img.Cb, img.CStride, cw, ch) ||
			!v.copyTo(img.Cr, img.CStride, cw, ch) {
			return nil, deviceError("video blit", exa.CodeInvalidParameter)
		}
		return img, nil

	case exa.FormatNV12:
		if len(src) != 1 && len(src) != 2 {
			return nil, deviceError("video blit", exa.CodeInvalidParameter)
		}
		img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
		uv := plane{planes[0], s.Stride * h, s.Stride}
		if len(src) == 2 {
			uv = plane{planes[1], 0, src[1].Stride}
		}
		luma := plane{planes[0], 0, s.Stride}
		if !luma.copyTo(img.Y, img.YStride, w, h) ||
			!uv.deinterleave(img.Cb, img.Cr, img.CStride, cw, ch, 0, 1) {
			return nil, deviceError("video blit", exa.CodeInvalidParameter)
		}
		return img, nil

	case exa.FormatYUY2, exa.FormatYUYV, exa.FormatUYVY:
		if len(src) != 1 {
			return nil, deviceError("video blit", exa.CodeInvalidParameter)
		}
		img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
		p := plane{planes[0], 0, s.Stride}
		if len(p.buf) < s.Stride*h || s.Stride < cw*4 {
			return nil, deviceError("video blit", exa.CodeInvalidParameter)
		}
		yo, uo, vo := 0, 1, 3
		if s.Format == exa.FormatUYVY {
			yo, uo, vo = 1, 0, 2
		}
		for y := range h {
			row := p.buf[y*s.Stride:]
			for x := range w {
				img.Y[y*img.YStride+x] = row[x*2+yo]
			}
			for x := range cw {
				img.Cb[y*img.CStride+x] = row[x*4+uo]
				img.Cr[y*img.CStride+x] = row[x*4+vo]
			}
		}
		return img, nil

	default:
		return nil, deviceError("video blit", exa.CodeHWFeatureNotSupported)
	}
}

// plane is one image plane inside a mapping.
type plane struct {
	buf    []byte
	offset int
	stride int
}

// copyTo copies a w x h byte plane into dst.
func (p plane) copyTo(dst []byte, dstStride, w, h int) bool {
	if p.stride < w || p.offset+p.stride*(h-1)+w > len(p.buf) {
		return false
	}
	for y := range h {
		o := p.offset + y*p.stride
		copy(dst[y*dstStride:y*dstStride+w], p.buf[o:o+w])
	}
	return true
}

// deinterleave splits a plane of w x h byte pairs into two planes.
func (p plane) deinterleave(a, b []byte, dstStride, w, h, ao, bo int) bool {
	if p.stride < 2*w || p.offset+p.stride*(h-1)+2*w > len(p.buf) {
		return false
	}
	for y := range h {
		row := p.buf[p.offset+y*p.stride:]
		for x := range w {
			a[y*dstStride+x] = row[2*x+ao]
			b[y*dstStride+x] = row[2*x+bo]
		}
	}
	return true
}
