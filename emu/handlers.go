package emu

import "github.com/sarchlab/ppcsim/insts"

// Effective addresses of loads and stores drop the top nibble of the base
// register.
const loadStoreAddrMask = 0x0FFFFFFF

// execute dispatches a decoded instruction to its handler. Every handler
// extracts its own operands from the raw word. All handlers except the exit
// system call advance the pc by 4.
func (e *Emulator) execute(inst insts.Instruction) StepResult {
	e.trace(inst)

	var err error

	switch inst.Op {
	case insts.OpLIS:
		e.executeLIS(inst)
	case insts.OpADDI:
		e.executeADDI(inst)
	case insts.OpORI:
		e.executeORI(inst)
	case insts.OpLWZ:
		err = e.executeLWZ(inst)
	case insts.OpSTW:
		err = e.executeSTW(inst)
	case insts.OpMTSPR:
		err = e.executeMTSPR(inst)
	case insts.OpMFSPR:
		err = e.executeMFSPR(inst)
	case insts.OpSC:
		return e.executeSC(inst)
	default:
		return e.unimplemented(inst)
	}

	if err != nil {
		return StepResult{Halted: true, Reason: HaltOutOfBounds, Err: err}
	}

	e.regFile.PC += 4

	return StepResult{}
}

// handled reports whether execute has a handler for op.
func handled(op insts.Op) bool {
	switch op {
	case insts.OpLIS, insts.OpADDI, insts.OpORI, insts.OpLWZ, insts.OpSTW,
		insts.OpMTSPR, insts.OpMFSPR, insts.OpSC:
		return true
	}
	return false
}

func (e *Emulator) trace(inst insts.Instruction) {
	if e.tracer == nil {
		return
	}
	e.tracer.Trace(e.regFile.PC, inst.Word, inst.String())
}

// executeLIS: reg[A] = sign_extend(imm) << 16
func (e *Emulator) executeLIS(inst insts.Instruction) {
	e.regFile.WriteReg(inst.A(), uint32(inst.SImm())<<16)
}

// executeADDI covers both li and addi. A zero B field selects the
// load-immediate form; register 0 itself stays an ordinary register.
func (e *Emulator) executeADDI(inst insts.Instruction) {
	rd, ra := inst.A(), inst.B()
	if ra == 0 {
		e.regFile.WriteReg(rd, inst.UImm())
		return
	}
	e.regFile.WriteReg(rd, e.regFile.ReadReg(ra)+inst.UImm())
}

// executeORI: reg[B] = reg[A] | imm
func (e *Emulator) executeORI(inst insts.Instruction) {
	e.regFile.WriteReg(inst.B(), e.regFile.ReadReg(inst.A())|inst.UImm())
}

// EffectiveAddress computes the data address of a load or store,
// (reg[B] & 0x0FFFFFFF) + imm, from the current registers.
func (e *Emulator) EffectiveAddress(inst insts.Instruction) uint32 {
	return e.regFile.ReadReg(inst.B())&loadStoreAddrMask + inst.UImm()
}

// executeLWZ loads a single byte, zero-extended, into reg[A]. The word-wide
// load the mnemonic names is not performed.
func (e *Emulator) executeLWZ(inst insts.Instruction) error {
	value, err := e.memory.Read8(e.EffectiveAddress(inst))
	if err != nil {
		return err
	}
	e.regFile.WriteReg(inst.A(), uint32(value))
	return nil
}

// executeSTW stores reg[A] as a big-endian word.
func (e *Emulator) executeSTW(inst insts.Instruction) error {
	return e.memory.Write32(e.EffectiveAddress(inst), e.regFile.ReadReg(inst.A()))
}

// executeMTSPR copies reg[A] into the special register selected by the SPR
// field. Unmapped SPR numbers are ignored.
func (e *Emulator) executeMTSPR(inst insts.Instruction) error {
	index, ok := e.sprs[inst.SPR()]
	if !ok {
		return nil
	}
	return e.regFile.Write(index, e.regFile.ReadReg(inst.A()))
}

// executeMFSPR copies the selected special register into reg[A].
func (e *Emulator) executeMFSPR(inst insts.Instruction) error {
	index, ok := e.sprs[inst.SPR()]
	if !ok {
		return nil
	}
	value, err := e.regFile.Read(index)
	if err != nil {
		return err
	}
	e.regFile.WriteReg(inst.A(), value)
	return nil
}
