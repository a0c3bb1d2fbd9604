package exa

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Format is a device pixel format.
type Format uint8

// Pixel formats understood by the blit service.
const (
	FormatUnknown Format = iota
	Format1BPP
	FormatA8
	FormatRGB565
	FormatRGB888
	FormatARGB8888
	FormatXRGB8888
	FormatABGR8888
	FormatXBGR8888

	// Video formats, only valid as transfer sources.
	FormatNV12
	FormatYV12
	FormatI420
	FormatYUYV
	FormatYUY2
	FormatUYVY
)

var formatNames = [...]string{
	FormatUnknown:  "Unknown",
	Format1BPP:     "1BPP",
	FormatA8:       "A8",
	FormatRGB565:   "RGB565",
	FormatRGB888:   "RGB888",
	FormatARGB8888: "ARGB8888",
	FormatXRGB8888: "XRGB8888",
	FormatABGR8888: "ABGR8888",
	FormatXBGR8888: "XBGR8888",
	FormatNV12:     "NV12",
	FormatYV12:     "YV12",
	FormatI420:     "I420",
	FormatYUYV:     "YUYV",
	FormatYUY2:     "YUY2",
	FormatUYVY:     "UYVY",
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// BitsPerPixel returns the storage size of one pixel of the first plane.
func (f Format) BitsPerPixel() int {
	switch f {
	case Format1BPP:
		return 1
	case FormatA8, FormatNV12, FormatYV12, FormatI420:
		return 8
	case FormatRGB565, FormatYUYV, FormatYUY2, FormatUYVY:
		return 16
	case FormatRGB888:
		return 24
	case FormatARGB8888, FormatXRGB8888, FormatABGR8888, FormatXBGR8888:
		return 32
	default:
		return 0
	}
}

// HasAlpha reports whether the format stores an alpha channel.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatA8, FormatARGB8888, FormatABGR8888:
		return true
	default:
		return false
	}
}

// TextureFormat returns the equivalent GPU texture format, or
// gputypes.TextureFormatUndefined when there is none.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatA8:
		return gputypes.TextureFormatR8Unorm
	case FormatARGB8888, FormatXRGB8888:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatABGR8888, FormatXBGR8888:
		return gputypes.TextureFormatRGBA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// compositable reports whether the compositor samples or renders f.
func (f Format) compositable() bool {
	return f.TextureFormat() != gputypes.TextureFormatUndefined
}

// forceAlpha reports whether f carries an unused alpha channel that must
// read as opaque.
func (f Format) forceAlpha() bool {
	return f == FormatXRGB8888 || f == FormatXBGR8888
}

// formatForBpp converts a drawable depth to the blitter format.
func formatForBpp(bitsPerPixel int) Format {
	switch bitsPerPixel {
	case 1:
		return Format1BPP
	case 8:
		return FormatA8
	case 16:
		return FormatRGB565
	case 24:
		return FormatRGB888
	case 32:
		return FormatARGB8888
	default:
		return FormatUnknown
	}
}

// supportedBpp reports whether the blitter accelerates the depth.
func supportedBpp(bitsPerPixel int) bool {
	return bitsPerPixel == 8 || bitsPerPixel == 16 || bitsPerPixel == 32
}

// FourCC is a video image format tag.
type FourCC uint32

// MakeFourCC builds a tag from its four characters.
func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Video image formats.
var (
	FourCCNV12 = MakeFourCC('N', 'V', '1', '2')
	FourCCYV12 = MakeFourCC('Y', 'V', '1', '2')
	FourCCI420 = MakeFourCC('I', '4', '2', '0')
	FourCCUYVY = MakeFourCC('U', 'Y', 'V', 'Y')
	FourCCYUY2 = MakeFourCC('Y', 'U', 'Y', '2')
	FourCCYUYV = MakeFourCC('Y', 'U', 'Y', 'V')
)

// String returns the four characters of the tag.
func (f FourCC) String() string {
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// fill565 expands an RGB565 pixel to ARGB8888 with opaque alpha.
func fill565(p Pixel) uint32 {
	r := uint32(p>>11) & 0x1f
	g := uint32(p>>5) & 0x3f
	b := uint32(p) & 0x1f
	r = r<<3 | r>>2
	g = g<<2 | g>>4
	b = b<<3 | b>>2
	return 0xff000000 | r<<16 | g<<8 | b
}
