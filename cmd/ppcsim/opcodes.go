package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/insts"
)

func newOpcodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "opcodes",
		Short: "Print the dispatch tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(a.stdout, dispatchTree(insts.NewDecoder(), emu.DefaultSPRTable()).String())
			return nil
		},
	}
}

// dispatchTree renders the primary table, the extended group under its
// primary opcode, and the SPR mapping.
func dispatchTree(decoder *insts.Decoder, sprs emu.SPRTable) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue("dispatch")

	primary := tree.AddBranch("primary opcode (word >> 24) & 0xfc")
	primary.AddNode(fmt.Sprintf("0x%02x %s", insts.PrimaryHalt, insts.OpHalt))

	table := decoder.PrimaryTable()
	extended := decoder.ExtendedTable()

	for opcode := 4; opcode < len(table); opcode += 4 {
		op := table[opcode]
		switch op {
		case insts.OpUnknown:
			continue
		case insts.OpExtended:
			group := primary.AddBranch(fmt.Sprintf("0x%02x extended opcode (word >> 1) & 0x3ff", opcode))
			for _, xo := range slices.Sorted(maps.Keys(extended)) {
				group.AddNode(fmt.Sprintf("%d %s", xo, extended[xo]))
			}
		default:
			primary.AddNode(fmt.Sprintf("0x%02x %s", opcode, op))
		}
	}

	spr := tree.AddBranch("special purpose registers")
	for _, n := range slices.Sorted(maps.Keys(sprs)) {
		spr.AddNode(fmt.Sprintf("spr %d -> %s", n, emu.RegName(sprs[n])))
	}

	return tree
}
