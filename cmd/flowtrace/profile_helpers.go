package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/prof"
)

// setupProfiling reads the persistent profiling flags and starts a
// profiling session. The returned cleanup is safe to call multiple
// times; profiler teardown failures are reported but never fail the
// command.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	cpuPath, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memPath, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}

	session, err := prof.Begin(cpuPath, memPath)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.End(); err != nil {
			fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
		}
	}, nil
}
