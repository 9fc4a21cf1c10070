package emu

import (
	"errors"
	"fmt"
)

// Sentinel errors. Concrete errors returned by the emulator match these with
// errors.Is.
var (
	ErrOutOfBounds         = errors.New("out of bounds")
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
	ErrInstructionLimit    = errors.New("max instructions reached")
)

// AccessKind names the operation that touched an address.
type AccessKind uint8

// Access kinds.
const (
	AccessRegister AccessKind = iota
	AccessFetch
	AccessLoad
	AccessStore
	AccessSyscall
	AccessImage
)

func (k AccessKind) String() string {
	switch k {
	case AccessRegister:
		return "register"
	case AccessFetch:
		return "fetch"
	case AccessLoad:
		return "load"
	case AccessStore:
		return "store"
	case AccessSyscall:
		return "syscall buffer"
	case AccessImage:
		return "image"
	default:
		return fmt.Sprintf("access(%d)", uint8(k))
	}
}

// OutOfBoundsError reports an access outside the register file or memory.
type OutOfBoundsError struct {
	Kind  AccessKind
	Addr  uint64 // Address or register index (negative offsets wrap into the high range)
	Size  uint64 // Number of bytes or registers accessed
	Limit uint64 // Capacity that was exceeded
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s out of bounds: 0x%x+%d exceeds capacity 0x%x",
		e.Kind, e.Addr, e.Size, e.Limit)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// UnimplementedOpcodeError reports a word whose opcode has no handler.
type UnimplementedOpcodeError struct {
	Opcode uint8
	Word   uint32
	PC     uint32
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("0x%02x is not a registered opcode (word 0x%08x at pc 0x%x)",
		e.Opcode, e.Word, e.PC)
}

// Is reports whether target is ErrUnimplementedOpcode.
func (e *UnimplementedOpcodeError) Is(target error) bool {
	return target == ErrUnimplementedOpcode
}

// HaltReason describes why the execution loop stopped.
type HaltReason uint8

// Halt reasons.
const (
	HaltNone HaltReason = iota
	HaltEndOfProgram
	HaltUnimplementedOpcode
	HaltOutOfBounds
	HaltHostExit
	HaltInstructionLimit
)

func (r HaltReason) String() string {
	switch r {
	case HaltNone:
		return "running"
	case HaltEndOfProgram:
		return "end of program"
	case HaltUnimplementedOpcode:
		return "unimplemented opcode"
	case HaltOutOfBounds:
		return "out of bounds"
	case HaltHostExit:
		return "host exit"
	case HaltInstructionLimit:
		return "instruction limit"
	default:
		return fmt.Sprintf("halt(%d)", uint8(r))
	}
}
