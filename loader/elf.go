// Package loader reads guest program images: raw binaries copied to address
// 0, and 32-bit big-endian PowerPC ELF executables.
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/ppcsim/emu"
)

// Format identifies how an image file was interpreted.
type Format int

const (
	// FormatRaw is a flat binary copied to address 0.
	FormatRaw Format = iota
	// FormatELF is an ELF executable loaded segment by segment.
	FormatELF
)

func (f Format) String() string {
	if f == FormatELF {
		return "elf"
	}
	return "raw"
}

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment is a block of bytes placed at a guest address.
type Segment struct {
	// VirtAddr is the guest address of the first byte.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program is a parsed image ready to be copied into emulator memory.
type Program struct {
	Format Format

	// EntryPoint is the ELF entry address. Raw images carry none, and the
	// machine's configured entry point applies.
	EntryPoint    uint32
	HasEntryPoint bool

	Segments []Segment
}

// ImageWriter is the memory a Program is loaded into.
type ImageWriter interface {
	Capacity() uint32
	LoadImage(image []byte, offset uint32) error
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads the image at path. Files starting with the ELF magic are parsed
// as PowerPC ELF32 executables; anything else is a raw image of which the
// first imageSize bytes are placed at address 0. Raw files shorter than
// imageSize are accepted.
func Load(path string, imageSize uint32) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var magic [4]byte
	n, err := io.ReadFull(f, magic[:])
	if err == nil && bytes.Equal(magic[:], elfMagic) {
		return loadELF(f)
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return loadRaw(f, magic[:n], imageSize)
}

func loadRaw(r io.Reader, head []byte, imageSize uint32) (*Program, error) {
	data, err := io.ReadAll(io.LimitReader(
		io.MultiReader(bytes.NewReader(head), r), int64(imageSize)))
	if err != nil {
		return nil, fmt.Errorf("failed to read raw image: %w", err)
	}

	return &Program{
		Format: FormatRaw,
		Segments: []Segment{{
			Data:    data,
			MemSize: uint32(len(data)),
			Flags:   SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}

func loadELF(r io.ReaderAt) (*Program, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Data != elf.ELFDATA2MSB {
		return nil, fmt.Errorf("not a big-endian ELF file")
	}
	if f.Machine != elf.EM_PPC {
		return nil, fmt.Errorf("not a PowerPC ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		Format:        FormatELF,
		EntryPoint:    uint32(f.Entry),
		HasEntryPoint: true,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data, err := io.ReadAll(phdr.Open())
		if err != nil {
			return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(len(data)) != phdr.Filesz {
			return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, len(data), phdr.Filesz)
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// LoadInto copies every segment into mem. The BSS tail of a segment is
// zero-filled, so it must fit in memory as well.
func (p *Program) LoadInto(mem ImageWriter) error {
	for _, seg := range p.Segments {
		size := uint64(max(seg.MemSize, uint32(len(seg.Data))))
		if uint64(seg.VirtAddr)+size > uint64(mem.Capacity()) {
			err := &emu.OutOfBoundsError{
				Kind:  emu.AccessImage,
				Addr:  uint64(seg.VirtAddr),
				Size:  size,
				Limit: uint64(mem.Capacity()),
			}
			return fmt.Errorf("failed to load segment at 0x%x: %w", seg.VirtAddr, err)
		}

		image := seg.Data
		if seg.MemSize > uint32(len(image)) {
			image = make([]byte, seg.MemSize)
			copy(image, seg.Data)
		}

		if err := mem.LoadImage(image, seg.VirtAddr); err != nil {
			return fmt.Errorf("failed to load segment at 0x%x: %w", seg.VirtAddr, err)
		}
	}
	return nil
}

// Size returns the number of bytes the program occupies in memory.
func (p *Program) Size() uint32 {
	var total uint32
	for _, seg := range p.Segments {
		size := seg.MemSize
		if size < uint32(len(seg.Data)) {
			size = uint32(len(seg.Data))
		}
		total += size
	}
	return total
}
