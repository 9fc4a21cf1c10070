// Package main provides the ppcsim command line: run, disassemble and debug
// guest images on the emulated 32-bit PowerPC-style core.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ppcsim/emu"
)

// exitCodeError carries a non-zero process exit status out of a command.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds what every command shares: the process streams and the logger.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger   *logrus.Logger
	logLevel string
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(level)
	return logger
}

// traceLogger returns the Info-level sink used for instruction traces,
// independent of --log-level.
func (a *app) traceLogger() *logrus.Logger {
	return newLogger(a.stderr, logrus.InfoLevel)
}

// finish logs a fatal halt and converts the result to the command's error.
func (a *app) finish(result emu.StepResult) error {
	if result.Err != nil {
		a.logger.WithFields(logrus.Fields{
			"reason": result.Reason.String(),
		}).WithError(result.Err).Error("emulation stopped")
	}

	if code := result.ProcessExitCode(); code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: newLogger(stderr, logrus.WarnLevel),
	}

	rootCmd := &cobra.Command{
		Use:           "ppcsim",
		Short:         "32-bit PowerPC-style instruction set emulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.logger.SetLevel(level)
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn",
		"Diagnostic log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newDisasmCmd(a),
		newOpcodesCmd(a),
		newDebugCmd(a),
	)

	return rootCmd
}

func main() {
	rootCmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		var exit exitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
