package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/insts"
)

var _ = Describe("Emulator", func() {
	var bridge *recordingBridge

	BeforeEach(func() {
		bridge = newRecordingBridge()
	})

	Describe("NewEmulator", func() {
		It("should use the default machine", func() {
			e := newTestEmulator(bridge)

			Expect(e.RegFile().PC).To(Equal(uint32(0xB0)))
			Expect(e.RegFile().R[emu.RegSP]).To(Equal(uint32(0x500)))
			Expect(e.Memory().Capacity()).To(Equal(uint32(0x40000)))
			Expect(e.Decoder()).NotTo(BeNil())
			Expect(e.Halted()).To(BeFalse())
		})

		It("should apply entry, stack and memory options", func() {
			e := emu.NewEmulator(
				emu.WithEntryPoint(0x100),
				emu.WithStackPointer(0x800),
				emu.WithMemorySize(0x1000),
				emu.WithSyscallBridge(bridge),
			)

			Expect(e.RegFile().PC).To(Equal(uint32(0x100)))
			Expect(e.RegFile().R[emu.RegSP]).To(Equal(uint32(0x800)))
			Expect(e.Memory().Capacity()).To(Equal(uint32(0x1000)))
		})

		It("should leave every other register zero", func() {
			e := newTestEmulator(bridge)

			for i := 0; i < emu.NumRegs; i++ {
				if i == emu.RegSP {
					continue
				}
				Expect(e.RegFile().Read(i)).To(Equal(uint32(0)), emu.RegName(i))
			}
		})
	})

	Describe("FetchWord", func() {
		It("should compose the word at pc big-endian", func() {
			e := newTestEmulator(bridge)
			Expect(e.LoadImage([]byte{0x3C, 0x20, 0x00, 0x05}, 0xB0)).To(Succeed())

			Expect(e.FetchWord(0)).To(Equal(uint32(0x3C200005)))
		})

		It("should read ahead of pc", func() {
			e := newTestEmulator(bridge, insts.EncodeNOP(), insts.EncodeSC())

			Expect(e.FetchWord(4)).To(Equal(uint32(0x44000002)))
		})

		It("should fault when any byte is outside memory", func() {
			e := emu.NewEmulator(
				emu.WithMemorySize(0x100),
				emu.WithEntryPoint(0xFC),
				emu.WithSyscallBridge(bridge),
			)

			_, err := e.FetchWord(4)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))

			_, err = e.FetchWord(-0x200)
			Expect(err).To(MatchError(emu.ErrOutOfBounds))
		})
	})

	Describe("Step", func() {
		It("should end the program on the halt opcode", func() {
			e := newTestEmulator(bridge)

			result := e.Step()

			Expect(result.Halted).To(BeTrue())
			Expect(result.Reason).To(Equal(emu.HaltEndOfProgram))
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.RegFile().PC).To(Equal(uint32(0xB0)))
			Expect(e.InstructionCount()).To(BeZero())
		})

		It("should treat top bytes 0x01-0x03 as halt", func() {
			e := newTestEmulator(bridge, 0x03FFFFFF)

			Expect(e.Step().Reason).To(Equal(emu.HaltEndOfProgram))
		})

		It("should report the exact unimplemented opcode", func() {
			e := newTestEmulator(bridge, 0x4B000010)

			result := e.Step()

			Expect(result.Halted).To(BeTrue())
			Expect(result.Reason).To(Equal(emu.HaltUnimplementedOpcode))
			Expect(result.Opcode).To(Equal(uint8(0x48)))
			Expect(result.Err).To(MatchError(emu.ErrUnimplementedOpcode))

			var uerr *emu.UnimplementedOpcodeError
			Expect(result.Err).To(BeAssignableToTypeOf(uerr))
			uerr = result.Err.(*emu.UnimplementedOpcodeError)
			Expect(uerr.Word).To(Equal(uint32(0x4B000010)))
			Expect(uerr.PC).To(Equal(uint32(0xB0)))
		})

		It("should report unknown extended opcodes under their primary opcode", func() {
			e := newTestEmulator(bridge, 0x7C0002A8)

			result := e.Step()

			Expect(result.Reason).To(Equal(emu.HaltUnimplementedOpcode))
			Expect(result.Opcode).To(Equal(insts.PrimaryX))
		})

		It("should halt out of bounds when pc reaches the capacity", func() {
			e := emu.NewEmulator(
				emu.WithMemorySize(0x100),
				emu.WithEntryPoint(0x100),
				emu.WithSyscallBridge(bridge),
				emu.WithLogger(quietLogger()),
			)

			result := e.Step()

			Expect(result.Reason).To(Equal(emu.HaltOutOfBounds))
			Expect(result.Err).To(MatchError(emu.ErrOutOfBounds))
		})

		It("should stay halted", func() {
			e := newTestEmulator(bridge, 0x4B000010)

			first := e.Step()
			Expect(e.LoadImage(insts.Program(insts.EncodeNOP()), 0xB0)).To(Succeed())
			second := e.Step()

			Expect(second).To(Equal(first))
			Expect(e.Halted()).To(BeTrue())
			Expect(e.InstructionCount()).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("should run a program to the end", func() {
			e := newTestEmulator(bridge,
				insts.EncodeLIS(5, 0x1234),
				insts.EncodeORI(5, 5, 0x5678),
				insts.EncodeLI(3, 10),
				insts.EncodeADDI(4, 3, 5),
				insts.EncodeMTSPR(insts.SPRCTR, 4),
			)

			result := e.Run()

			Expect(result.Reason).To(Equal(emu.HaltEndOfProgram))
			Expect(result.ProcessExitCode()).To(Equal(0))
			Expect(e.RegFile().R[5]).To(Equal(uint32(0x12345678)))
			Expect(e.RegFile().R[4]).To(Equal(uint32(15)))
			Expect(e.RegFile().R[emu.RegCTR]).To(Equal(uint32(15)))
			Expect(e.RegFile().PC).To(Equal(uint32(0xB0 + 5*4)))
			Expect(e.InstructionCount()).To(Equal(uint64(5)))
		})

		It("should stop at the instruction limit", func() {
			e := emu.NewEmulator(
				emu.WithSyscallBridge(bridge),
				emu.WithLogger(quietLogger()),
				emu.WithMaxInstructions(3),
			)
			nops := make([]uint32, 10)
			for i := range nops {
				nops[i] = insts.EncodeNOP()
			}
			Expect(e.LoadImage(insts.Program(nops...), 0xB0)).To(Succeed())

			result := e.Run()

			Expect(result.Reason).To(Equal(emu.HaltInstructionLimit))
			Expect(result.Err).To(MatchError(emu.ErrInstructionLimit))
			Expect(result.ProcessExitCode()).To(Equal(1))
			Expect(e.InstructionCount()).To(Equal(uint64(3)))
		})

		It("should walk off the end of memory into an out-of-bounds halt", func() {
			e := emu.NewEmulator(
				emu.WithMemorySize(0x10),
				emu.WithEntryPoint(0),
				emu.WithSyscallBridge(bridge),
				emu.WithLogger(quietLogger()),
			)
			Expect(e.LoadImage(insts.Program(
				insts.EncodeNOP(), insts.EncodeNOP(), insts.EncodeNOP(), insts.EncodeNOP(),
			), 0)).To(Succeed())

			result := e.Run()

			Expect(result.Reason).To(Equal(emu.HaltOutOfBounds))
			Expect(e.RegFile().PC).To(Equal(uint32(0x10)))
			Expect(e.InstructionCount()).To(Equal(uint64(4)))
		})

		It("should be deterministic", func() {
			program := []uint32{
				insts.EncodeLIS(6, 0x1000),
				insts.EncodeLI(7, 0xAB),
				insts.EncodeSTW(7, 6, 0x40),
				insts.EncodeLWZ(8, 6, 0x43),
				insts.EncodeMTSPR(insts.SPRLR, 8),
				insts.EncodeMFSPR(9, insts.SPRLR),
				0x4B000010,
			}

			run := func() ([emu.NumRegs]uint32, emu.StepResult) {
				e := newTestEmulator(newRecordingBridge(), program...)
				result := e.Run()
				return e.RegFile().R, result
			}

			regsA, resultA := run()
			regsB, resultB := run()

			Expect(regsA).To(Equal(regsB))
			Expect(resultA).To(Equal(resultB))
			Expect(regsA[9]).To(Equal(uint32(0xAB)))
		})
	})

	Describe("Custom dispatch", func() {
		It("should dispatch through an injected table without other changes", func() {
			table := insts.DefaultOpcodeTable()
			Expect(table.Register(0x48, insts.OpLIS)).To(Succeed())

			e := emu.NewEmulator(
				emu.WithDecoder(insts.NewDecoderWithTables(table, insts.DefaultExtendedTable())),
				emu.WithSyscallBridge(bridge),
				emu.WithLogger(quietLogger()),
			)
			Expect(e.LoadImage(insts.Program(0x48A00001), 0xB0)).To(Succeed())

			result := e.Step()

			Expect(result.Halted).To(BeFalse())
			Expect(e.RegFile().R[5]).To(Equal(uint32(0x00010000)))
		})

		It("should report opcodes whose operation has no handler", func() {
			var table insts.OpcodeTable
			Expect(table.Register(0x48, insts.OpExtended)).To(Succeed())
			decoder := insts.NewDecoderWithTables(table, insts.ExtendedTable{0: insts.Op(200)})
			traced := 0

			e := emu.NewEmulator(
				emu.WithDecoder(decoder),
				emu.WithSyscallBridge(bridge),
				emu.WithLogger(quietLogger()),
				emu.WithTracer(emu.TraceFunc(func(uint32, uint32, string) { traced++ })),
			)
			Expect(e.LoadImage(insts.Program(0x48000000), 0xB0)).To(Succeed())

			result := e.Step()

			Expect(result.Halted).To(BeTrue())
			Expect(result.Reason).To(Equal(emu.HaltUnimplementedOpcode))
			Expect(result.Opcode).To(Equal(uint8(0x48)))
			Expect(e.InstructionCount()).To(BeZero())
			Expect(traced).To(BeZero())
			Expect(e.RegFile().PC).To(Equal(uint32(0xB0)))
		})
	})
})
