package insts

import "fmt"

var sprNames = map[uint16]string{
	SPRXER: "xer",
	SPRLR:  "lr",
	SPRCTR: "ctr",
}

// String renders the instruction as a mnemonic line with its decoded
// operands, e.g. "lwz r2, 8(r6)".
func (i Instruction) String() string {
	switch i.Op {
	case OpHalt:
		return "halt"
	case OpLIS:
		return fmt.Sprintf("lis r%d, %s", i.A(), signedHex(i.SImm()))
	case OpADDI:
		if i.B() == 0 {
			return fmt.Sprintf("li r%d, %d", i.A(), i.UImm())
		}
		return fmt.Sprintf("addi r%d, r%d, %d", i.A(), i.B(), i.UImm())
	case OpORI:
		if i.Word == 0x60000000 {
			return "nop"
		}
		return fmt.Sprintf("ori r%d, r%d, 0x%x", i.B(), i.A(), i.UImm())
	case OpLWZ:
		return fmt.Sprintf("lwz r%d, %d(r%d)", i.A(), i.UImm(), i.B())
	case OpSTW:
		return fmt.Sprintf("stw r%d, %d(r%d)", i.A(), i.UImm(), i.B())
	case OpMTSPR:
		if name, ok := sprNames[i.SPR()]; ok {
			return fmt.Sprintf("mt%s r%d", name, i.A())
		}
		return fmt.Sprintf("mtspr %d, r%d", i.SPR(), i.A())
	case OpMFSPR:
		if name, ok := sprNames[i.SPR()]; ok {
			return fmt.Sprintf("mf%s r%d", name, i.A())
		}
		return fmt.Sprintf("mfspr r%d, %d", i.A(), i.SPR())
	case OpSC:
		return "sc"
	default:
		return fmt.Sprintf(".long 0x%08x", i.Word)
	}
}

func signedHex(v int32) string {
	if v < 0 {
		return fmt.Sprintf("-0x%x", -int64(v))
	}
	return fmt.Sprintf("0x%x", v)
}
