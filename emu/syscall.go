package emu

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/ppcsim/insts"
)

// System call numbers, selected by r0.
const (
	SyscallExit  uint32 = 1 // exit(r3)
	SyscallWrite uint32 = 4 // write(r3 fd, r4 buf, r5 count)
)

// The write buffer address is masked before it indexes memory.
const syscallBufferMask = 0x0FF0FFFF

// SyscallBridge is the host capability behind sc. It is the only path from
// the core to host I/O.
type SyscallBridge interface {
	// Write writes p to the host file descriptor fd.
	Write(fd int, p []byte) (int, error)

	// Exit terminates the host process with code. Implementations used in
	// production do not return; test doubles may, in which case the
	// emulator halts with HaltHostExit.
	Exit(code int32)
}

// HostBridge is the default SyscallBridge. File descriptors 1 and 2 go to the
// configured stdout and stderr writers, higher descriptors to an FDTable.
type HostBridge struct {
	stdout io.Writer
	stderr io.Writer
	files  *FDTable
	exit   func(int)
}

// HostBridgeOption is a functional option for configuring a HostBridge.
type HostBridgeOption func(*HostBridge)

// WithFDTable exposes the open files of t as guest descriptors 3 and up.
func WithFDTable(t *FDTable) HostBridgeOption {
	return func(b *HostBridge) {
		b.files = t
	}
}

// WithExitFunc replaces os.Exit as the exit path.
func WithExitFunc(exit func(int)) HostBridgeOption {
	return func(b *HostBridge) {
		b.exit = exit
	}
}

// NewHostBridge creates a host bridge writing to stdout and stderr.
func NewHostBridge(stdout, stderr io.Writer, opts ...HostBridgeOption) *HostBridge {
	b := &HostBridge{
		stdout: stdout,
		stderr: stderr,
		exit:   os.Exit,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Write implements SyscallBridge.
func (b *HostBridge) Write(fd int, p []byte) (int, error) {
	switch fd {
	case 1:
		return b.stdout.Write(p)
	case 2:
		return b.stderr.Write(p)
	}

	if b.files == nil || fd < 3 {
		return 0, os.ErrInvalid
	}

	return b.files.Write(fd, p)
}

// Exit implements SyscallBridge.
func (b *HostBridge) Exit(code int32) {
	b.exit(int(code))
}

// executeSC performs the system call selected by r0. Unknown numbers are
// ignored.
func (e *Emulator) executeSC(_ insts.Instruction) StepResult {
	regs := &e.regFile.R

	switch regs[0] {
	case SyscallWrite:
		buf, err := e.memory.Slice(regs[4]&syscallBufferMask, regs[5])
		if err != nil {
			return StepResult{Halted: true, Reason: HaltOutOfBounds, Err: err}
		}

		if _, err := e.bridge.Write(int(regs[3]), buf); err != nil {
			e.logger.WithFields(logrus.Fields{
				"pc": e.regFile.PC,
				"fd": regs[3],
			}).WithError(err).Warn("host write failed")
		}

	case SyscallExit:
		code := int32(regs[3])
		e.bridge.Exit(code)

		return StepResult{Halted: true, Reason: HaltHostExit, ExitCode: code}
	}

	e.regFile.PC += 4

	return StepResult{}
}
