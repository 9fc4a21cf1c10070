package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/ppcsim/emu"
)

const monitorHelp = `commands:
  step [n]         execute n instructions (default 1)
  run              execute until the machine halts
  regs             print all registers
  mem <addr> [n]   dump n bytes of memory (default 16)
  pc               print the instruction at pc
  help             print this message
  quit             leave the monitor
`

// monitor is the command interpreter behind the debug REPL.
type monitor struct {
	emulator *emu.Emulator
	out      io.Writer
	last     emu.StepResult
}

func newMonitor(e *emu.Emulator, out io.Writer) *monitor {
	return &monitor{emulator: e, out: out}
}

// exec runs one command line and reports whether the monitor should quit.
func (m *monitor) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error

	switch fields[0] {
	case "step", "s":
		err = m.step(fields[1:])
	case "run", "c":
		m.report(m.emulator.Run())
	case "regs", "r":
		m.regs()
	case "mem", "m":
		err = m.mem(fields[1:])
	case "pc":
		m.pc()
	case "help", "?":
		fmt.Fprint(m.out, monitorHelp)
	case "quit", "q", "exit":
		return true
	default:
		err = fmt.Errorf("unknown command %q, try help", fields[0])
	}

	if err != nil {
		fmt.Fprintf(m.out, "error: %v\n", err)
	}
	return false
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}

func (m *monitor) step(args []string) error {
	n := uint64(1)
	if len(args) > 0 {
		var err error
		if n, err = parseUint(args[0], 32); err != nil {
			return err
		}
	}

	for i := uint64(0); i < n; i++ {
		if !m.emulator.Halted() {
			m.pc()
		}
		result := m.emulator.Step()
		if result.Halted {
			m.report(result)
			return nil
		}
	}
	return nil
}

func (m *monitor) report(result emu.StepResult) {
	m.last = result
	fmt.Fprintf(m.out, "halted: %s", result.Reason)
	if result.Reason == emu.HaltHostExit {
		fmt.Fprintf(m.out, " (code %d)", result.ExitCode)
	}
	if result.Err != nil {
		fmt.Fprintf(m.out, ": %v", result.Err)
	}
	fmt.Fprintf(m.out, "\n")
}

func (m *monitor) regs() {
	regFile := m.emulator.RegFile()
	for i := 0; i < emu.NumRegs; i++ {
		fmt.Fprintf(m.out, "%-4s %08x", emu.RegName(i), regFile.R[i])
		if i%4 == 3 {
			fmt.Fprintf(m.out, "\n")
		} else {
			fmt.Fprintf(m.out, "  ")
		}
	}
	fmt.Fprintf(m.out, "pc   %08x\n", regFile.PC)
}

func (m *monitor) mem(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mem <addr> [n]")
	}

	addr, err := parseUint(args[0], 32)
	if err != nil {
		return err
	}
	n := uint64(16)
	if len(args) > 1 {
		if n, err = parseUint(args[1], 32); err != nil {
			return err
		}
	}

	memory := m.emulator.Memory()
	for i := uint64(0); i < n; i++ {
		if i%16 == 0 {
			if i > 0 {
				fmt.Fprintf(m.out, "\n")
			}
			fmt.Fprintf(m.out, "%08x:", addr+i)
		}

		b, err := memory.Read8(uint32(addr + i))
		if err != nil {
			fmt.Fprintf(m.out, "\n")
			return err
		}
		fmt.Fprintf(m.out, " %02x", b)
	}
	fmt.Fprintf(m.out, "\n")
	return nil
}

func (m *monitor) pc() {
	pc := m.emulator.RegFile().PC
	word, err := m.emulator.FetchWord(0)
	if err != nil {
		fmt.Fprintf(m.out, "%08x:  <%v>\n", pc, err)
		return
	}

	inst := m.emulator.Decoder().Decode(word)
	fmt.Fprintf(m.out, "%08x:  %08x  %s\n", pc, word, inst.String())
}

// lastResult returns the most recent terminal result seen by the monitor.
func (m *monitor) lastResult() emu.StepResult {
	return m.last
}
