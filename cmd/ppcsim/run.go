package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/timing/core"
	"github.com/sarchlab/ppcsim/timing/latency"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		mf               machineFlags
		trace            bool
		timing           bool
		timingConfigPath string
	)

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Run a guest image until it halts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []emu.EmulatorOption
			if trace {
				extra = append(extra, emu.WithTracer(emu.NewLogrusTracer(a.traceLogger())))
			}

			m, err := mf.build(cmd, a, args[0], extra...)
			if err != nil {
				return err
			}
			defer m.close()

			if !timing {
				return a.finish(m.emulator.Run())
			}

			timingConfig, err := loadTimingConfig(timingConfigPath)
			if err != nil {
				return err
			}

			c := core.NewCoreFromConfig(m.emulator, timingConfig)
			result := c.Run()
			printTimingReport(a.stdout, args[0], result, c.Stats())

			return a.finish(result)
		},
	}

	mf.register(cmd)
	cmd.Flags().BoolVar(&trace, "trace", false, "Log every executed instruction")
	cmd.Flags().BoolVar(&timing, "timing", false, "Estimate cycles with the latency and icache model")
	cmd.Flags().StringVar(&timingConfigPath, "timing-config", "", "Path to timing configuration JSON file")

	return cmd
}

func loadTimingConfig(path string) (*latency.TimingConfig, error) {
	config := latency.DefaultTimingConfig()
	if path != "" {
		var err error
		config, err = latency.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing configuration: %w", err)
	}
	return config, nil
}

func printTimingReport(w io.Writer, program string, result emu.StepResult, stats core.Stats) {
	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Program: %s\n", program)
	fmt.Fprintf(w, "Halt: %s\n", result.Reason)
	fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Breakdown:\n")
	fmt.Fprintf(w, "  Fetch stalls: %4d cycles (%5.1f%%)\n",
		stats.FetchStalls, 100.0*float64(stats.FetchStalls)/float64(totalCycles))
	fmt.Fprintf(w, "  ICache:       %4d hits, %d misses (%.1f%% hit rate)\n",
		stats.ICacheHits, stats.ICacheMisses, 100.0*stats.ICacheHitRate())
	fmt.Fprintf(w, "  Memory:       %4d loads, %d stores\n", stats.Loads, stats.Stores)
}
