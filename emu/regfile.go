package emu

import (
	"fmt"

	"github.com/sarchlab/ppcsim/insts"
)

// Register file layout.
const (
	// NumGPRs is the number of general-purpose registers.
	NumGPRs = 32
	// NumRegs is the total number of registers, GPRs followed by the
	// special registers.
	NumRegs = 36

	RegSP  = 1  // Stack pointer by convention
	RegCR  = 32 // Condition
	RegLR  = 33 // Link
	RegCTR = 34 // Count
	RegXER = 35 // Integer exception state
)

var specialNames = [...]string{"cr", "lr", "ctr", "xer"}

// RegName returns the assembler name of a register index.
func RegName(index int) string {
	switch {
	case index >= 0 && index < NumGPRs:
		return fmt.Sprintf("r%d", index)
	case index >= NumGPRs && index < NumRegs:
		return specialNames[index-NumGPRs]
	default:
		return fmt.Sprintf("reg(%d)", index)
	}
}

// RegFile represents the register file and the program counter.
type RegFile struct {
	// R holds the 32 general-purpose registers followed by CR, LR, CTR and
	// XER. R[0] is an ordinary register.
	R [NumRegs]uint32

	// PC is the program counter, a byte offset into memory.
	PC uint32
}

// Read returns the register at index.
func (r *RegFile) Read(index int) (uint32, error) {
	if index < 0 || index >= NumRegs {
		return 0, &OutOfBoundsError{
			Kind:  AccessRegister,
			Addr:  uint64(index),
			Size:  1,
			Limit: NumRegs,
		}
	}
	return r.R[index], nil
}

// Write sets the register at index.
func (r *RegFile) Write(index int, value uint32) error {
	if index < 0 || index >= NumRegs {
		return &OutOfBoundsError{
			Kind:  AccessRegister,
			Addr:  uint64(index),
			Size:  1,
			Limit: NumRegs,
		}
	}
	r.R[index] = value
	return nil
}

// ReadReg reads a register named by a decoded instruction field. Decoded
// fields are 5 bits wide, so they always name a GPR.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg]
}

// WriteReg writes a register named by a decoded instruction field.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg] = value
}

// SPRTable maps SPR numbers used by mtspr/mfspr to register file indices.
// SPR numbers without an entry are ignored by the move handlers.
type SPRTable map[uint16]int

// DefaultSPRTable returns the mapping for XER, LR and CTR.
func DefaultSPRTable() SPRTable {
	return SPRTable{
		insts.SPRXER: RegXER,
		insts.SPRLR:  RegLR,
		insts.SPRCTR: RegCTR,
	}
}
