package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowtrace/internal/pipeline"
	"flowtrace/internal/rewrite"
)

var instrumentCmd = &cobra.Command{
	Use:   "instrument [flags] <file.go|directory>",
	Short: "Mark eligible functions with the tracing marker",
	Long:  "Insert the //flowtrace:trace marker above every eligible function. A second run over the same tree changes nothing.",
	Args:  exactArgs(1),
	RunE:  runInstrument,
}

func init() {
	instrumentCmd.Flags().Bool("dry-run", false, "report what would change without writing")
	instrumentCmd.Flags().Bool("backup", false, "write a .bak copy next to each modified file")
	instrumentCmd.Flags().StringSlice("include", nil, "glob patterns of files to include (default from flowtrace.toml or **/*.go)")
	instrumentCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
}

func runInstrument(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	target := args[0]

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	backup, err := cmd.Flags().GetBool("backup")
	if err != nil {
		return fmt.Errorf("failed to get backup flag: %w", err)
	}
	quiet, showTimings, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiPick, err := parseUIChoice(uiValue)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	set, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	if dryRun && !quiet {
		banner := color.New(color.FgYellow)
		banner.Fprintln(os.Stdout, "dry run: no files will be modified")
	}

	opts := rewrite.Options{DryRun: dryRun, Backup: backup}
	apply := func(path string) (pipeline.FileOutcome, error) {
		res, err := rewrite.File(path, opts)
		if err != nil {
			return pipeline.FileOutcome{}, err
		}
		return pipeline.FileOutcome{
			Count:     res.Count,
			Functions: res.Functions,
			Changed:   res.Changed,
		}, nil
	}

	useTUI := uiPick.active() && !quiet
	res, err := executeRun(cmd.Context(), "flowtrace instrument", target, set, pipeline.StageRewrite, apply, useTUI, quiet)
	if showTimings {
		printStageTimings(os.Stdout, res.Timings)
	}
	if err != nil {
		return err
	}

	verb := "marked"
	if dryRun {
		verb = "would mark"
	}
	renderRunSummary(os.Stdout, res, verb, "no eligible functions", quiet)
	return nil
}
