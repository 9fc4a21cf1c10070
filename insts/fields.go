package insts

// Field layout (bit 0 is the least significant bit):
//
//	31..26  primary opcode
//	25..21  A field
//	20..16  B field
//	15..0   immediate, or extended sub-fields in the X/XFX forms

// A returns the A register field (bits 25-21).
func (i Instruction) A() uint8 {
	return uint8(i.Word>>21) & 0x1F
}

// B returns the B register field (bits 20-16).
func (i Instruction) B() uint8 {
	return uint8(i.Word>>16) & 0x1F
}

// UImm returns the 16-bit immediate zero-extended.
func (i Instruction) UImm() uint32 {
	return i.Word & 0xFFFF
}

// SImm returns the 16-bit immediate sign-extended.
func (i Instruction) SImm() int32 {
	return int32(int16(uint16(i.Word)))
}

// ExtendedOpcode returns the 10-bit extended opcode (bits 10-1).
func (i Instruction) ExtendedOpcode() uint16 {
	return uint16(i.Word>>1) & 0x3FF
}

// SPR returns the special purpose register number of an XFX-form word. The
// 10-bit field at bits 20-11 stores the two 5-bit halves swapped.
func (i Instruction) SPR() uint16 {
	field := uint16(i.Word>>11) & 0x3FF
	return (field&0x1F)<<5 | field>>5
}
