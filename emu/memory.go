package emu

import "encoding/binary"

// DefaultMemorySize is the default memory capacity (256 KiB).
const DefaultMemorySize = 0x40000

// Memory is a flat, zero-initialised, byte-addressable buffer of fixed
// capacity. Every access is bounds-checked.
type Memory struct {
	data []byte
}

// NewMemory creates a memory of the given capacity in bytes.
func NewMemory(capacity uint32) *Memory {
	return &Memory{data: make([]byte, capacity)}
}

// Capacity returns the size of the memory in bytes.
func (m *Memory) Capacity() uint32 {
	return uint32(len(m.data))
}

func (m *Memory) check(kind AccessKind, addr uint32, size uint64) error {
	if uint64(addr)+size > uint64(len(m.data)) {
		return &OutOfBoundsError{
			Kind:  kind,
			Addr:  uint64(addr),
			Size:  size,
			Limit: uint64(len(m.data)),
		}
	}
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	if err := m.check(AccessLoad, addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) error {
	if err := m.check(AccessStore, addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// Read32 reads a big-endian 32-bit word.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := m.check(AccessLoad, addr, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.data[addr:]), nil
}

// Write32 writes a big-endian 32-bit word.
func (m *Memory) Write32(addr uint32, value uint32) error {
	if err := m.check(AccessStore, addr, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(m.data[addr:], value)
	return nil
}

// Slice returns a view of n bytes starting at addr. The view aliases memory.
func (m *Memory) Slice(addr uint32, n uint32) ([]byte, error) {
	if err := m.check(AccessSyscall, addr, uint64(n)); err != nil {
		return nil, err
	}
	return m.data[addr : uint64(addr)+uint64(n)], nil
}

// LoadImage copies image into memory at offset. The whole image must fit.
func (m *Memory) LoadImage(image []byte, offset uint32) error {
	if err := m.check(AccessImage, offset, uint64(len(image))); err != nil {
		return err
	}
	copy(m.data[offset:], image)
	return nil
}

// fetch32 reads an instruction word. addr is 64-bit so that pc+offset never
// wraps before the check.
func (m *Memory) fetch32(addr int64) (uint32, error) {
	if addr < 0 || uint64(addr)+4 > uint64(len(m.data)) {
		return 0, &OutOfBoundsError{
			Kind:  AccessFetch,
			Addr:  uint64(addr),
			Size:  4,
			Limit: uint64(len(m.data)),
		}
	}
	return binary.BigEndian.Uint32(m.data[addr:]), nil
}
