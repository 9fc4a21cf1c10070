package emu

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultImageSize is the number of bytes of a raw image loaded at address 0.
const DefaultImageSize = 0x200

// Config holds the machine parameters of an emulator run.
type Config struct {
	// MemorySize is the memory capacity in bytes. Default: 0x40000.
	MemorySize uint32 `json:"memory_size"`

	// EntryPoint is the initial program counter. Default: 0xB0.
	EntryPoint uint32 `json:"entry_point"`

	// StackPointer is the initial value of r1. Default: 0x500.
	StackPointer uint32 `json:"stack_pointer"`

	// ImageSize is how many bytes of a raw image are loaded at address 0.
	// Default: 0x200.
	ImageSize uint32 `json:"image_size"`

	// MaxInstructions stops the run after that many instructions. 0 means
	// no limit.
	MaxInstructions uint64 `json:"max_instructions"`
}

// DefaultConfig returns the default machine configuration.
func DefaultConfig() *Config {
	return &Config{
		MemorySize:   DefaultMemorySize,
		EntryPoint:   DefaultEntryPoint,
		StackPointer: DefaultStackPointer,
		ImageSize:    DefaultImageSize,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emulator config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse emulator config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize emulator config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write emulator config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a runnable machine.
func (c *Config) Validate() error {
	if c.MemorySize == 0 {
		return fmt.Errorf("memory_size must be > 0")
	}
	if c.EntryPoint%4 != 0 {
		return fmt.Errorf("entry_point 0x%x must be a multiple of 4", c.EntryPoint)
	}
	if c.EntryPoint >= c.MemorySize {
		return fmt.Errorf("entry_point 0x%x must be below memory_size 0x%x",
			c.EntryPoint, c.MemorySize)
	}
	if c.ImageSize > c.MemorySize {
		return fmt.Errorf("image_size 0x%x must not exceed memory_size 0x%x",
			c.ImageSize, c.MemorySize)
	}
	return nil
}

// Options converts the configuration into emulator options.
func (c *Config) Options() []EmulatorOption {
	return []EmulatorOption{
		WithMemorySize(c.MemorySize),
		WithEntryPoint(c.EntryPoint),
		WithStackPointer(c.StackPointer),
		WithMaxInstructions(c.MaxInstructions),
	}
}
