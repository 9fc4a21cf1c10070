package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/loader"
)

// machineFlags are the loading flags shared by run and debug.
type machineFlags struct {
	configPath      string
	entry           uint32
	stack           uint32
	memory          uint32
	imageSize       uint32
	maxInstructions uint64
	fds             []string
}

func (f *machineFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Path to machine configuration JSON file")
	flags.Uint32Var(&f.entry, "entry", emu.DefaultEntryPoint, "Initial program counter")
	flags.Uint32Var(&f.stack, "stack", emu.DefaultStackPointer, "Initial stack pointer (r1)")
	flags.Uint32Var(&f.memory, "memory", emu.DefaultMemorySize, "Memory size in bytes")
	flags.Uint32Var(&f.imageSize, "image-size", emu.DefaultImageSize, "Bytes of a raw image loaded at address 0")
	flags.Uint64Var(&f.maxInstructions, "max-instructions", 0, "Stop after this many instructions (0 = no limit)")
	flags.StringArrayVar(&f.fds, "fd", nil, "Host file exposed to the guest as fd 3, 4, ... (repeatable)")
}

// config resolves the machine configuration: defaults, then the config
// file, then flags given on the command line.
func (f *machineFlags) config(cmd *cobra.Command) (*emu.Config, error) {
	config := emu.DefaultConfig()
	if f.configPath != "" {
		var err error
		config, err = emu.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("entry") {
		config.EntryPoint = f.entry
	}
	if flags.Changed("stack") {
		config.StackPointer = f.stack
	}
	if flags.Changed("memory") {
		config.MemorySize = f.memory
	}
	if flags.Changed("image-size") {
		config.ImageSize = f.imageSize
	}
	if flags.Changed("max-instructions") {
		config.MaxInstructions = f.maxInstructions
	}

	return config, nil
}

// machine is a loaded emulator together with the host files it owns.
type machine struct {
	emulator *emu.Emulator
	program  *loader.Program
	files    *emu.FDTable
}

func (m *machine) close() {
	_ = m.files.CloseAll()
}

// build loads the image at path into a new emulator.
func (f *machineFlags) build(
	cmd *cobra.Command,
	a *app,
	path string,
	extra ...emu.EmulatorOption,
) (*machine, error) {
	config, err := f.config(cmd)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine configuration: %w", err)
	}

	prog, err := loader.Load(path, config.ImageSize)
	if err != nil {
		return nil, err
	}
	if prog.HasEntryPoint && !cmd.Flags().Changed("entry") {
		config.EntryPoint = prog.EntryPoint
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid ELF entry point: %w", err)
		}
	}

	files := emu.NewFDTable()
	for _, p := range f.fds {
		if _, err := files.Open(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644); err != nil {
			_ = files.CloseAll()
			return nil, err
		}
	}

	// The guest exit is reported as HaltHostExit and the process exits in
	// main once the run has been reported.
	bridge := emu.NewHostBridge(a.stdout, a.stderr,
		emu.WithFDTable(files),
		emu.WithExitFunc(func(int) {}),
	)

	opts := append(config.Options(),
		emu.WithSyscallBridge(bridge),
		emu.WithLogger(a.logger),
	)
	opts = append(opts, extra...)

	e := emu.NewEmulator(opts...)
	if err := prog.LoadInto(e.Memory()); err != nil {
		_ = files.CloseAll()
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"image":    path,
		"format":   prog.Format.String(),
		"segments": len(prog.Segments),
		"entry":    fmt.Sprintf("0x%x", config.EntryPoint),
	}).Debug("image loaded")

	return &machine{
		emulator: e,
		program:  prog,
		files:    files,
	}, nil
}
