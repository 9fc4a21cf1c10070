// Package insts provides PowerPC-style instruction definitions and decoding.
//
// This package turns 32-bit big-endian instruction words into structured
// Instruction values. Dispatch is two-level:
//   - Primary opcode: (word >> 24) & 0xFC, looked up in a 256-entry OpcodeTable
//   - Extended opcode: bits 10-1 for the X/XFX-form group (primary 0x7C),
//     looked up in an ExtendedTable
//
// Supported operations: lis, addi/li, ori, lwz, stw, mtspr, mfspr, sc.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x3C200005) // lis r1, 0x5
//	fmt.Printf("Op: %v, A: %d, Imm: 0x%x\n", inst.Op, inst.A(), inst.UImm())
package insts
