package insts

import "encoding/binary"

// EncodeDForm builds a D-form word from a primary opcode byte, the A and B
// register fields and a 16-bit immediate.
func EncodeDForm(primary uint8, a, b uint8, imm uint16) uint32 {
	return uint32(primary&0xFC)<<24 |
		uint32(a&0x1F)<<21 |
		uint32(b&0x1F)<<16 |
		uint32(imm)
}

// EncodeXFX builds an XFX-form word (mtspr/mfspr) of the PrimaryX group.
func EncodeXFX(reg uint8, spr uint16, xo uint16) uint32 {
	split := uint32(spr&0x1F)<<5 | uint32(spr>>5)&0x1F
	return uint32(PrimaryX)<<24 |
		uint32(reg&0x1F)<<21 |
		split<<11 |
		uint32(xo&0x3FF)<<1
}

// EncodeLIS encodes lis rd, imm.
func EncodeLIS(rd uint8, imm int16) uint32 {
	return EncodeDForm(PrimaryLIS, rd, 0, uint16(imm))
}

// EncodeLI encodes li rd, imm (addi rd, 0, imm).
func EncodeLI(rd uint8, imm uint16) uint32 {
	return EncodeDForm(PrimaryADDI, rd, 0, imm)
}

// EncodeADDI encodes addi rd, ra, imm.
func EncodeADDI(rd, ra uint8, imm uint16) uint32 {
	return EncodeDForm(PrimaryADDI, rd, ra, imm)
}

// EncodeORI encodes ori ra, rs, imm. The source register occupies the A
// field and the destination the B field.
func EncodeORI(ra, rs uint8, imm uint16) uint32 {
	return EncodeDForm(PrimaryORI, rs, ra, imm)
}

// EncodeNOP encodes the canonical nop (ori 0, 0, 0).
func EncodeNOP() uint32 {
	return EncodeORI(0, 0, 0)
}

// EncodeLWZ encodes lwz rd, d(ra).
func EncodeLWZ(rd, ra uint8, d uint16) uint32 {
	return EncodeDForm(PrimaryLWZ, rd, ra, d)
}

// EncodeSTW encodes stw rs, d(ra).
func EncodeSTW(rs, ra uint8, d uint16) uint32 {
	return EncodeDForm(PrimarySTW, rs, ra, d)
}

// EncodeMTSPR encodes mtspr spr, rs.
func EncodeMTSPR(spr uint16, rs uint8) uint32 {
	return EncodeXFX(rs, spr, ExtMTSPR)
}

// EncodeMFSPR encodes mfspr rd, spr.
func EncodeMFSPR(rd uint8, spr uint16) uint32 {
	return EncodeXFX(rd, spr, ExtMFSPR)
}

// EncodeSC encodes sc.
func EncodeSC() uint32 {
	return uint32(PrimarySC)<<24 | 0x2
}

// Program lays out instruction words as a big-endian byte image.
func Program(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(out[4*i:], w)
	}
	return out
}
