package main

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/insts"
	"github.com/sarchlab/ppcsim/loader"
)

func newDisasmCmd(a *app) *cobra.Command {
	var (
		start     uint32
		count     int
		imageSize uint32
	)

	cmd := &cobra.Command{
		Use:   "disasm <image>",
		Short: "List the instruction words of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := emu.DefaultConfig()
			config.ImageSize = imageSize
			if err := config.Validate(); err != nil {
				return fmt.Errorf("invalid image size: %w", err)
			}

			prog, err := loader.Load(args[0], imageSize)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("start") {
				start = emu.DefaultEntryPoint
				if prog.HasEntryPoint {
					start = prog.EntryPoint
				}
			}

			decoder := insts.NewDecoder()
			listed := 0

			for _, seg := range prog.Segments {
				if seg.Flags&loader.SegmentFlagExecute == 0 {
					continue
				}

				for off := 0; off+4 <= len(seg.Data); off += 4 {
					addr := seg.VirtAddr + uint32(off)
					if addr < start {
						continue
					}
					if count > 0 && listed >= count {
						return nil
					}

					word := binary.BigEndian.Uint32(seg.Data[off:])
					inst := decoder.Decode(word)
					fmt.Fprintf(a.stdout, "%08x:  %08x  %-24s %s\n",
						addr, word, inst.String(), insts.Disassemble(word, addr))
					listed++
				}
			}

			return nil
		},
	}

	cmd.Flags().Uint32Var(&start, "start", 0, "First address to list (default: entry point)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of words to list (0 = to the end of the image)")
	cmd.Flags().Uint32Var(&imageSize, "image-size", emu.DefaultImageSize, "Bytes of a raw image loaded at address 0")

	return cmd
}
