package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowtrace/internal/filter"
)

// readGlobalFlags resolves the persistent flags every command honors.
// It also switches fatih/color off when --no-color is set.
func readGlobalFlags(cmd *cobra.Command) (quiet, timings bool, err error) {
	root := cmd.Root()

	quiet, err = root.PersistentFlags().GetBool("quiet")
	if err != nil {
		return false, false, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err = root.PersistentFlags().GetBool("timings")
	if err != nil {
		return false, false, fmt.Errorf("failed to get timings flag: %w", err)
	}
	noColor, err := root.PersistentFlags().GetBool("no-color")
	if err != nil {
		return false, false, fmt.Errorf("failed to get no-color flag: %w", err)
	}
	if noColor {
		color.NoColor = true
	}
	return quiet, timings, nil
}

// filterFromFlags builds the include/exclude set for a command. Explicit
// flags win; otherwise the [scan] section of a discovered flowtrace.toml
// applies; otherwise the default include pattern.
func filterFromFlags(cmd *cobra.Command) (*filter.Set, error) {
	include, err := cmd.Flags().GetStringSlice("include")
	if err != nil {
		return nil, fmt.Errorf("failed to get include flag: %w", err)
	}
	exclude, err := cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, fmt.Errorf("failed to get exclude flag: %w", err)
	}

	if len(include) == 0 && len(exclude) == 0 {
		manifest, found, err := loadProjectManifest(".")
		if err != nil {
			return nil, err
		}
		if found {
			include = manifest.Config.Scan.Include
			exclude = manifest.Config.Scan.Exclude
		}
	}

	set, err := filter.New(include, exclude)
	if err != nil {
		return nil, &usageError{err: err}
	}
	return set, nil
}
