// Package main provides the entry point for ppcsim.
// ppcsim is a functional emulator for a 32-bit PowerPC-style core.
//
// For the full CLI, use: go run ./cmd/ppcsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ppcsim - 32-bit PowerPC-style emulator")
	fmt.Println("")
	fmt.Println("Usage: ppcsim <command> [flags] <image>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run        Run an image until it halts")
	fmt.Println("  disasm     List the instruction words of an image")
	fmt.Println("  opcodes    Print the dispatch tables")
	fmt.Println("  debug      Step through an image interactively")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/ppcsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/ppcsim' instead.")
	}
}
