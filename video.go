package exa

import "fmt"

// videoFlags are the transfer-queue flags of a video blit.
const videoFlags = 0x50000

// videoVariant is the transfer-queue layout a chipset understands.
type videoVariant uint8

const (
	videoUnsupported videoVariant = iota
	video343x
	video443x
)

func (v videoVariant) String() string {
	switch v {
	case video343x:
		return "343x"
	case video443x:
		return "443x"
	default:
		return "unsupported"
	}
}

func videoVariantFor(chipset uint32) videoVariant {
	switch {
	case chipset <= 0x34FF:
		return video343x
	case chipset >= 0x4430 && chipset <= 0x443F:
		return video443x
	default:
		return videoUnsupported
	}
}

// videoFormat describes the planes of a video image format.
type videoFormat struct {
	format Format
	planes int
}

var videoFormats = map[FourCC]videoFormat{
	FourCCYV12: {FormatYV12, 3},
	FourCCI420: {FormatI420, 3},
	FourCCNV12: {FormatNV12, 2},
	FourCCYUYV: {FormatYUYV, 1},
	FourCCYUY2: {FormatYUY2, 1},
	FourCCUYVY: {FormatUYVY, 1},
}

// VideoFormats returns the advertised video image formats.
func (s *Screen) VideoFormats() []FourCC {
	return []FourCC{FourCCNV12, FourCCYV12, FourCCI420, FourCCUYVY, FourCCYUY2}
}

// PutTextureImage converts and scales the srcBox region of a video image
// into the dstBox region of dst. Planar formats pass the chroma planes in
// extra; without them the image is read as a single source.
func (s *Screen) PutTextureImage(src *Pixmap, srcBox Box, dst *Pixmap, dstBox Box, extra []*Pixmap, fourcc FourCC) error {
	if s.closed {
		return ErrClosed
	}
	if s.video == videoUnsupported {
		if !s.videoWarned {
			s.videoWarned = true
			Logger().Error("exa: unsupported chipset for video", "chipset", fmt.Sprintf("%#x", s.cfg.Chipset))
		}
		return fmt.Errorf("%w: video on chipset %#x", ErrUnsupported, s.cfg.Chipset)
	}
	if !supportedBpp(dst.BitsPerPixel) {
		return fmt.Errorf("%w: video to %d bpp", ErrUnsupported, dst.BitsPerPixel)
	}

	vf, ok := videoFormats[fourcc]
	if !ok {
		return fmt.Errorf("%w: video format %s", ErrUnsupported, fourcc)
	}
	planes := 1
	if len(extra) > 0 {
		if len(extra)+1 != vf.planes {
			return fmt.Errorf("%w: %s with %d planes", ErrUnsupported, fourcc, len(extra)+1)
		}
		planes = vf.planes
	}

	if err := s.mapAll(append([]*Pixmap{dst, src}, extra...)...); err != nil {
		return err
	}

	destFormat := FormatXRGB8888
	switch dst.BitsPerPixel {
	case 8:
		destFormat = FormatA8
	case 16:
		destFormat = FormatRGB565
	}

	t := Transfer{
		Kind:           TransferVideoBlit,
		Sources:        make([]Surface, 0, planes),
		Dest:           dst.surface(destFormat),
		SrcRects:       []Box{clampVideoBox(srcBox, src.Width, src.Height)},
		DestRects:      []Box{clampVideoBox(dstBox, dst.Width, dst.Height)},
		SeparatePlanes: true,
		Flags:          videoFlags,
	}
	t.DestBounds = t.DestRects[0]
	t.Sources = append(t.Sources, src.surface(vf.format))
	for _, p := range extra[:planes-1] {
		t.Sources = append(t.Sources, p.surface(vf.format))
	}

	s.stats.submissions++
	if err := s.dev.QueueTransfer(&t); err != nil {
		s.submitFailed("video blit ("+s.video.String()+")", err, 1)
		return fmt.Errorf("exa: video blit: %w", err)
	}
	s.stats.videoBlits++
	s.finishWrite(dst, t.DestBounds)
	return nil
}

// clampVideoBox clamps b to the last addressable pixel of a w x h surface
// and raises negative coordinates to zero.
func clampVideoBox(b Box, w, h int) Box {
	return Box{
		X0: max(0, min(b.X0, w-1)),
		Y0: max(0, min(b.Y0, h-1)),
		X1: max(0, min(b.X1, w-1)),
		Y1: max(0, min(b.Y1, h-1)),
	}
}
