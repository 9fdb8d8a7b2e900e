package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowtrace/internal/scancache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the scan cache",
	Long: `Remove cached scan results. The next analyze run re-parses every file
and repopulates the cache.`,
	Args: exactArgs(0),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	quiet, _, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}

	cache, err := scancache.Open("flowtrace")
	if err != nil {
		return fmt.Errorf("failed to open scan cache: %w", err)
	}
	if err := cache.Drop(); err != nil {
		return fmt.Errorf("failed to drop scan cache: %w", err)
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "scan cache removed")
	}
	return nil
}
