package insts

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/arch/ppc64/ppc64asm"
)

// Disassemble renders a word with the x/arch Power disassembler in GNU
// syntax. It covers the whole architecture, not only the words this package
// dispatches.
func Disassemble(word uint32, pc uint32) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], word)

	inst, err := ppc64asm.Decode(buf[:], binary.BigEndian)
	if err != nil {
		return fmt.Sprintf(".long 0x%08x", word)
	}

	return ppc64asm.GNUSyntax(inst, uint64(pc))
}
