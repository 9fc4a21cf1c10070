package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newDebugCmd(a *app) *cobra.Command {
	var (
		mf          machineFlags
		historyFile string
	)

	cmd := &cobra.Command{
		Use:   "debug <image>",
		Short: "Step through a guest image in an interactive monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mf.build(cmd, a, args[0])
			if err != nil {
				return err
			}
			defer m.close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "(ppcsim) ",
				HistoryFile: historyFile,
				Stdin:       io.NopCloser(a.stdin),
				Stdout:      a.stdout,
				Stderr:      a.stderr,
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			mon := newMonitor(m.emulator, a.stdout)
			mon.pc()

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if err != nil {
					break
				}
				if mon.exec(line) {
					break
				}
			}

			return a.finish(mon.lastResult())
		},
	}

	mf.register(cmd)
	cmd.Flags().StringVar(&historyFile, "history", filepath.Join(os.TempDir(), "ppcsim_history"),
		"Monitor command history file")

	return cmd
}
