package exa

// Transformation classifies a picture transform for the hardware.
type Transformation uint8

// Transform classes.
const (
	TransformNone Transformation = iota
	TransformRotate90
	TransformRotate180
	TransformRotate270
	TransformScale
	TransformUnknown
)

// String returns a human-readable name for the class.
func (t Transformation) String() string {
	switch t {
	case TransformNone:
		return "none"
	case TransformRotate90:
		return "rotate90"
	case TransformRotate180:
		return "rotate180"
	case TransformRotate270:
		return "rotate270"
	case TransformScale:
		return "scale"
	default:
		return "unknown"
	}
}

// ClassifyTransform sorts a picture transform into a class the hardware can
// sample with. Only the 2x2 linear part and the projective row are
// inspected; the translation of a TransformNone picture is applied by
// Composite as a source offset. A nil transform is TransformNone.
//
// Rotations are recognised by the sign and zero pattern of the four linear
// coefficients. A rotation combined with a uniform scale still classifies
// as a rotation; a non-uniform one is TransformUnknown.
func ClassifyTransform(m *Transform) Transformation {
	if m == nil {
		return TransformNone
	}
	if m[2][0] != 0 || m[2][1] != 0 || m[2][2] != FixedOne {
		return TransformUnknown
	}

	a, b := m[0][0], m[0][1]
	c, d := m[1][0], m[1][1]

	switch {
	case b == 0 && c == 0:
		switch {
		case a == FixedOne && d == FixedOne:
			return TransformNone
		case a < 0 && a == d:
			return TransformRotate180
		case a > 0 && d > 0:
			return TransformScale
		}
	case a == 0 && d == 0:
		switch {
		case b < 0 && c == -b:
			return TransformRotate90
		case b > 0 && c == -b:
			return TransformRotate270
		}
	}
	return TransformUnknown
}

// offset returns the translation of m in whole pixels. ok is false when
// either component is fractional. A nil transform has no offset.
func (m *Transform) offset() (dx, dy int, ok bool) {
	if m == nil {
		return 0, 0, true
	}
	tx, ty := m[0][2], m[1][2]
	if tx&(FixedOne-1) != 0 || ty&(FixedOne-1) != 0 {
		return 0, 0, false
	}
	return int(tx >> 16), int(ty >> 16), true
}

// integralOffset reports whether m translates by whole pixels.
func integralOffset(m *Transform) bool {
	_, _, ok := m.offset()
	return ok
}
