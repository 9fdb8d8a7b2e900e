package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flowtrace/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "flowtrace",
	Short: "Function tracing toolkit for Go source trees",
	Long:  `flowtrace analyzes Go sources, marks functions for tracing, and weaves the runtime calls that emit enter/exit events`,
}

// main wires the command tree, registers persistent flags, and maps
// failures onto exit codes: 2 for usage mistakes, 1 for everything else.
func main() {
	// Версия для автоматического флага --version
	rootCmd.Version = version.Colored()

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(instrumentCmd)
	rootCmd.AddCommand(weaveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("ui", "auto", "progress UI mode (auto|on|off)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given path")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	if err := rootCmd.Execute(); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
