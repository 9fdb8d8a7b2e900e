package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowtrace/internal/pipeline"
	"flowtrace/internal/weave"
)

var weaveCmd = &cobra.Command{
	Use:   "weave [flags] <file.go|directory>",
	Short: "Generate tracing calls inside marked functions",
	Long: `Rewrite every function carrying the //flowtrace:trace marker so its body
reports entry, exit, and panics through the flowtrace runtime. Functions
already woven are left alone.`,
	Args: exactArgs(1),
	RunE: runWeave,
}

func init() {
	weaveCmd.Flags().Bool("dry-run", false, "report what would change without writing")
	weaveCmd.Flags().Bool("backup", false, "write a .bak copy next to each modified file")
	weaveCmd.Flags().StringSlice("include", nil, "glob patterns of files to include (default from flowtrace.toml or **/*.go)")
	weaveCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
}

func runWeave(cmd *cobra.Command, args []string) error {
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

	opts := weave.Options{DryRun: dryRun, Backup: backup}
	apply := func(path string) (pipeline.FileOutcome, error) {
		res, err := weave.File(path, opts)
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
	res, err := executeRun(cmd.Context(), "flowtrace weave", target, set, pipeline.StageWeave, apply, useTUI, quiet)
	if showTimings {
		printStageTimings(os.Stdout, res.Timings)
	}
	if err != nil {
		return err
	}

	verb := "wove"
	if dryRun {
		verb = "would weave"
	}
	renderRunSummary(os.Stdout, res, verb, "no marked functions", quiet)
	return nil
}
