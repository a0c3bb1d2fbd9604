package exa

import "github.com/gogpu/gputypes"

// Pixel is a raw pixel value in the pixmap's format.
type Pixel uint32

// AllPlanes is the only plane mask the blitter accelerates.
const AllPlanes Pixel = 0xffffffff

// Alu is an X raster operation (GXclear..GXset).
type Alu uint8

// X raster operations.
const (
	GXclear Alu = iota
	GXand
	GXandReverse
	GXcopy
	GXandInverted
	GXnoop
	GXxor
	GXor
	GXnor
	GXequiv
	GXinvert
	GXorReverse
	GXcopyInverted
	GXorInverted
	GXnand
	GXset
)

// PictOp is a Render compositing operator.
type PictOp uint8

// Render operators.
const (
	PictOpClear PictOp = iota
	PictOpSrc
	PictOpDst
	PictOpOver
	PictOpOverReverse
	PictOpIn
	PictOpInReverse
	PictOpOut
	PictOpOutReverse
	PictOpAtop
	PictOpAtopReverse
	PictOpXor
	PictOpAdd
	PictOpSaturate
)

// Repeat is the Render repeat attribute of a picture.
type Repeat uint8

// Repeat types.
const (
	RepeatNone Repeat = iota
	RepeatNormal
	RepeatPad
	RepeatReflect
)

// Fixed is a 16.16 fixed-point number.
type Fixed int32

// FixedOne is 1.0 in Fixed.
const FixedOne Fixed = 1 << 16

// Float returns f as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / float64(FixedOne)
}

// Transform is a Render picture transform mapping destination space to
// source space, row major.
type Transform [3][3]Fixed

// IdentityTransform returns the identity transform.
func IdentityTransform() *Transform {
	return &Transform{
		{FixedOne, 0, 0},
		{0, FixedOne, 0},
		{0, 0, FixedOne},
	}
}

// Picture is a compositing-capable drawable.
type Picture struct {
	// Pixmap is nil for solid and gradient source pictures.
	Pixmap *Pixmap

	Format         Format
	Transform      *Transform
	Repeat         Repeat
	ComponentAlpha bool
}

// BlendComponent describes how one channel group is blended.
type BlendComponent struct {
	// SrcFactor is the source blend factor.
	SrcFactor gputypes.BlendFactor

	// DstFactor is the destination blend factor.
	DstFactor gputypes.BlendFactor

	// Operation is the blend operation.
	Operation gputypes.BlendOperation
}

// BlendState is the premultiplied blend equation of a render operator.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

func blend(src, dst gputypes.BlendFactor) BlendState {
	c := BlendComponent{SrcFactor: src, DstFactor: dst, Operation: gputypes.BlendOperationAdd}
	return BlendState{Color: c, Alpha: c}
}

var blendStates = [...]BlendState{
	PictOpClear:       blend(gputypes.BlendFactorZero, gputypes.BlendFactorZero),
	PictOpSrc:         blend(gputypes.BlendFactorOne, gputypes.BlendFactorZero),
	PictOpDst:         blend(gputypes.BlendFactorZero, gputypes.BlendFactorOne),
	PictOpOver:        blend(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha),
	PictOpOverReverse: blend(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOne),
	PictOpIn:          blend(gputypes.BlendFactorDstAlpha, gputypes.BlendFactorZero),
	PictOpInReverse:   blend(gputypes.BlendFactorZero, gputypes.BlendFactorSrcAlpha),
	PictOpOut:         blend(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorZero),
	PictOpOutReverse:  blend(gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha),
	PictOpAtop:        blend(gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOneMinusSrcAlpha),
	PictOpAtopReverse: blend(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorSrcAlpha),
	PictOpXor:         blend(gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOneMinusSrcAlpha),
	PictOpAdd:         blend(gputypes.BlendFactorOne, gputypes.BlendFactorOne),
}

// BlendStateFor returns the blend equation of op.
// The second result is false for operators without a blend equation.
func BlendStateFor(op PictOp) (BlendState, bool) {
	if int(op) >= len(blendStates) {
		return BlendState{}, false
	}
	return blendStates[op], true
}
