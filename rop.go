package exa

// ROP3 codes for each X raster op, combining source and destination.
var ropSource = [16]uint8{
	GXclear:        0x00,
	GXand:          0x88,
	GXandReverse:   0x44,
	GXcopy:         0xCC,
	GXandInverted:  0x22,
	GXnoop:         0xAA,
	GXxor:          0x66,
	GXor:           0xEE,
	GXnor:          0x11,
	GXequiv:        0x99,
	GXinvert:       0x55,
	GXorReverse:    0xDD,
	GXcopyInverted: 0x33,
	GXorInverted:   0xBB,
	GXnand:         0x77,
	GXset:          0xFF,
}

// ROP3 codes for each X raster op, combining pattern and destination.
var ropPattern = [16]uint8{
	GXclear:        0x00,
	GXand:          0xA0,
	GXandReverse:   0x50,
	GXcopy:         0xF0,
	GXandInverted:  0x0A,
	GXnoop:         0xAA,
	GXxor:          0x5A,
	GXor:           0xFA,
	GXnor:          0x05,
	GXequiv:        0xA5,
	GXinvert:       0x55,
	GXorReverse:    0xF5,
	GXcopyInverted: 0x0F,
	GXorInverted:   0xAF,
	GXnand:         0x5F,
	GXset:          0xFF,
}

// SourceROP3 returns the copy ROP3 code of alu.
func SourceROP3(alu Alu) uint8 {
	return ropSource[alu&0xf]
}

// PatternROP3 returns the fill ROP3 code of alu.
func PatternROP3(alu Alu) uint8 {
	return ropPattern[alu&0xf]
}

// EvalROP3 applies a ROP3 code bitwise to pattern, source and destination.
// Bit i of the result is bit (p<<2 | s<<1 | d) of rop.
func EvalROP3(rop uint8, pat, src, dst uint32) uint32 {
	var out uint32
	for i := range 8 {
		if rop&(1<<i) == 0 {
			continue
		}
		p, s, d := pat, src, dst
		if i&4 == 0 {
			p = ^p
		}
		if i&2 == 0 {
			s = ^s
		}
		if i&1 == 0 {
			d = ^d
		}
		out |= p & s & d
	}
	return out
}
