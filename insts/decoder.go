// Package insts provides PowerPC-style instruction definitions and decoding.
package insts

import "fmt"

// Op represents a decoded operation. Each Op selects exactly one handler in
// the emulator.
type Op uint8

// Operations.
const (
	OpUnknown Op = iota
	OpHalt
	OpExtended // primary group resolved through the ExtendedTable
	OpLIS
	OpADDI
	OpORI
	OpLWZ
	OpSTW
	OpMTSPR
	OpMFSPR
	OpSC
)

var opNames = map[Op]string{
	OpUnknown:  "unknown",
	OpHalt:     "halt",
	OpExtended: "extended",
	OpLIS:      "lis",
	OpADDI:     "addi",
	OpORI:      "ori",
	OpLWZ:      "lwz",
	OpSTW:      "stw",
	OpMTSPR:    "mtspr",
	OpMFSPR:    "mfspr",
	OpSC:       "sc",
}

// String returns the base mnemonic of the operation.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Primary opcode bytes, as produced by PrimaryOpcode. The 6-bit primary
// opcode sits in the top byte, so each value is the architectural opcode
// shifted left by two.
const (
	PrimaryHalt uint8 = 0x00 // 0: never dispatched, terminates the run
	PrimaryADDI uint8 = 0x38 // 14: addi / li
	PrimaryLIS  uint8 = 0x3C // 15: addis used as lis
	PrimarySC   uint8 = 0x44 // 17
	PrimaryORI  uint8 = 0x60 // 24
	PrimaryX    uint8 = 0x7C // 31: X/XFX-form group
	PrimaryLWZ  uint8 = 0x80 // 32
	PrimarySTW  uint8 = 0x90 // 36
)

// Extended opcodes (bits 10-1) within the PrimaryX group.
const (
	ExtMFSPR uint16 = 339
	ExtMTSPR uint16 = 467
)

// Special purpose register numbers as encoded by mtspr/mfspr.
const (
	SPRXER uint16 = 1
	SPRLR  uint16 = 8
	SPRCTR uint16 = 9
)

// PrimaryOpcode extracts the dispatch key of an instruction word. The low two
// bits of the top byte are discarded, so words whose top bytes differ only in
// those bits share a table entry.
func PrimaryOpcode(word uint32) uint8 {
	return uint8(word>>24) & 0xFC
}

// OpcodeTable maps primary opcode bytes to operations. Entries left as
// OpUnknown are unimplemented.
type OpcodeTable [256]Op

// Register binds op to the primary opcode byte. Only bytes with the low two
// bits clear are reachable, and the halt opcode is never dispatched.
func (t *OpcodeTable) Register(opcode uint8, op Op) error {
	if opcode&0x03 != 0 {
		return fmt.Errorf("opcode 0x%02x is not reachable through the 0xFC mask", opcode)
	}
	if opcode == PrimaryHalt {
		return fmt.Errorf("opcode 0x%02x is reserved for halt", opcode)
	}
	t[opcode] = op
	return nil
}

// DefaultOpcodeTable returns the primary table for the built-in handler set.
func DefaultOpcodeTable() OpcodeTable {
	var t OpcodeTable
	t[PrimaryLIS] = OpLIS
	t[PrimaryADDI] = OpADDI
	t[PrimaryORI] = OpORI
	t[PrimaryLWZ] = OpLWZ
	t[PrimarySTW] = OpSTW
	t[PrimarySC] = OpSC
	t[PrimaryX] = OpExtended
	return t
}

// ExtendedTable maps extended opcodes of the PrimaryX group to operations.
type ExtendedTable map[uint16]Op

// DefaultExtendedTable returns the extended table for the built-in handler
// set.
func DefaultExtendedTable() ExtendedTable {
	return ExtendedTable{
		ExtMTSPR: OpMTSPR,
		ExtMFSPR: OpMFSPR,
	}
}

// Instruction is a fetched word together with its dispatch result. Operand
// fields are extracted on demand by the handler that executes it.
type Instruction struct {
	Word   uint32 // Raw big-endian instruction word
	Opcode uint8  // Primary opcode byte (word >> 24) & 0xFC
	Op     Op     // Operation selected by the opcode tables
}

// Decoder resolves instruction words through an immutable pair of tables.
type Decoder struct {
	primary  OpcodeTable
	extended ExtendedTable
}

// NewDecoder creates a decoder with the default tables.
func NewDecoder() *Decoder {
	return NewDecoderWithTables(DefaultOpcodeTable(), DefaultExtendedTable())
}

// NewDecoderWithTables creates a decoder from the given tables. Both tables
// are copied, so later changes by the caller do not affect dispatch.
func NewDecoderWithTables(primary OpcodeTable, extended ExtendedTable) *Decoder {
	ext := make(ExtendedTable, len(extended))
	for k, v := range extended {
		ext[k] = v
	}
	return &Decoder{
		primary:  primary,
		extended: ext,
	}
}

// Lookup returns the operation registered for a primary opcode byte.
func (d *Decoder) Lookup(opcode uint8) Op {
	return d.primary[opcode]
}

// PrimaryTable returns a copy of the primary table.
func (d *Decoder) PrimaryTable() OpcodeTable {
	return d.primary
}

// ExtendedTable returns a copy of the extended table.
func (d *Decoder) ExtendedTable() ExtendedTable {
	ext := make(ExtendedTable, len(d.extended))
	for k, v := range d.extended {
		ext[k] = v
	}
	return ext
}

// Decode resolves a 32-bit instruction word. The halt opcode is recognized
// before the table is consulted.
func (d *Decoder) Decode(word uint32) Instruction {
	inst := Instruction{
		Word:   word,
		Opcode: PrimaryOpcode(word),
	}

	if inst.Opcode == PrimaryHalt {
		inst.Op = OpHalt
		return inst
	}

	inst.Op = d.primary[inst.Opcode]
	if inst.Op == OpExtended {
		op, ok := d.extended[inst.ExtendedOpcode()]
		if !ok {
			op = OpUnknown
		}
		inst.Op = op
	}

	return inst
}
