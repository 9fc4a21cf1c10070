// Package emu provides functional emulation of a 32-bit PowerPC-style core.
package emu

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/ppcsim/insts"
)

// Default entry point and initial stack pointer.
const (
	DefaultEntryPoint   = 0xB0
	DefaultStackPointer = 0x500
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true once the emulator reached a terminal state.
	Halted bool

	// Reason tells why the emulator halted.
	Reason HaltReason

	// Opcode is the offending primary opcode for HaltUnimplementedOpcode.
	Opcode uint8

	// ExitCode is the code requested by the guest for HaltHostExit.
	ExitCode int32

	// Err is set for the fatal halts (out of bounds, unimplemented opcode,
	// instruction limit).
	Err error
}

// ProcessExitCode maps the result to a host process exit status.
func (r StepResult) ProcessExitCode() int {
	switch r.Reason {
	case HaltNone, HaltEndOfProgram:
		return 0
	case HaltHostExit:
		return int(r.ExitCode)
	default:
		return 1
	}
}

// Emulator executes instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder
	sprs    SPRTable
	bridge  SyscallBridge
	tracer  Tracer
	logger  logrus.FieldLogger

	memorySize uint32

	// Execution state
	halt             *StepResult
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemorySize sets the memory capacity in bytes.
func WithMemorySize(size uint32) EmulatorOption {
	return func(e *Emulator) {
		e.memorySize = size
	}
}

// WithEntryPoint sets the initial program counter.
func WithEntryPoint(pc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.PC = pc
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.R[RegSP] = sp
	}
}

// WithSyscallBridge sets the host capability used by sc.
func WithSyscallBridge(bridge SyscallBridge) EmulatorOption {
	return func(e *Emulator) {
		e.bridge = bridge
	}
}

// WithDecoder sets the decoder, and with it the opcode tables.
func WithDecoder(decoder *insts.Decoder) EmulatorOption {
	return func(e *Emulator) {
		e.decoder = decoder
	}
}

// WithSPRTable sets the SPR number to register mapping used by mtspr/mfspr.
func WithSPRTable(table SPRTable) EmulatorOption {
	return func(e *Emulator) {
		sprs := make(SPRTable, len(table))
		for k, v := range table {
			sprs[k] = v
		}
		e.sprs = sprs
	}
}

// WithTracer sets the sink for decoded-instruction traces.
func WithTracer(tracer Tracer) EmulatorOption {
	return func(e *Emulator) {
		e.tracer = tracer
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new emulator. Without options it has 256 KiB of
// memory, starts at 0xB0 with r1 = 0x500, and writes guest output to the
// process stdout/stderr.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:    &RegFile{PC: DefaultEntryPoint},
		memorySize: DefaultMemorySize,
		logger:     logrus.StandardLogger(),
	}
	e.regFile.R[RegSP] = DefaultStackPointer

	for _, opt := range opts {
		opt(e)
	}

	e.memory = NewMemory(e.memorySize)

	if e.decoder == nil {
		e.decoder = insts.NewDecoder()
	}
	if e.sprs == nil {
		e.sprs = DefaultSPRTable()
	}
	if e.bridge == nil {
		e.bridge = NewHostBridge(os.Stdout, os.Stderr)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Decoder returns the emulator's decoder.
func (e *Emulator) Decoder() *insts.Decoder {
	return e.decoder
}

// InstructionCount returns the number of instructions dispatched to a
// handler.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted reports whether the emulator reached a terminal state.
func (e *Emulator) Halted() bool {
	return e.halt != nil
}

// LoadImage copies a program image into memory at offset.
func (e *Emulator) LoadImage(image []byte, offset uint32) error {
	return e.memory.LoadImage(image, offset)
}

// FetchWord reads the big-endian word at pc+offset.
func (e *Emulator) FetchWord(offset int32) (uint32, error) {
	return e.memory.fetch32(int64(e.regFile.PC) + int64(offset))
}

// Step executes a single instruction. Once a terminal state is reached every
// further call returns the same result.
func (e *Emulator) Step() StepResult {
	if e.halt != nil {
		return *e.halt
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return e.stop(StepResult{Reason: HaltInstructionLimit, Err: ErrInstructionLimit})
	}

	// 1. Fetch
	word, err := e.FetchWord(0)
	if err != nil {
		return e.stop(StepResult{Reason: HaltOutOfBounds, Err: err})
	}

	// 2. Decode
	inst := e.decoder.Decode(word)

	switch inst.Op {
	case insts.OpHalt:
		return e.stop(StepResult{Reason: HaltEndOfProgram})
	}

	if !handled(inst.Op) {
		return e.stop(e.unimplemented(inst))
	}

	// 3. Execute
	result := e.execute(inst)
	e.instructionCount++

	if result.Halted {
		return e.stop(result)
	}

	return result
}

// Run executes instructions until the emulator halts and returns the
// terminal result.
func (e *Emulator) Run() StepResult {
	for {
		result := e.Step()
		if result.Halted {
			return result
		}
	}
}

func (e *Emulator) stop(result StepResult) StepResult {
	result.Halted = true
	e.halt = &result

	entry := e.logger.WithFields(logrus.Fields{
		"pc":           e.regFile.PC,
		"reason":       result.Reason.String(),
		"instructions": e.instructionCount,
	})
	if result.Err != nil {
		entry = entry.WithError(result.Err)
	}
	entry.Debug("emulator halted")

	return result
}

func (e *Emulator) unimplemented(inst insts.Instruction) StepResult {
	return StepResult{
		Halted: true,
		Reason: HaltUnimplementedOpcode,
		Opcode: inst.Opcode,
		Err: &UnimplementedOpcodeError{
			Opcode: inst.Opcode,
			Word:   inst.Word,
			PC:     e.regFile.PC,
		},
	}
}
