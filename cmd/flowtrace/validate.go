package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowtrace"
	"flowtrace/internal/filter"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flowtrace.toml]",
	Short: "Check the project manifest",
	Long: `Parse and type-check a flowtrace.toml manifest. Without an argument the
manifest is discovered upward from the current directory. Unknown keys
are reported as warnings, not errors.`,
	Args: maximumArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	quiet, _, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}

	var manifestPath string
	if len(args) == 1 {
		manifestPath = args[0]
	} else {
		path, ok, err := findFlowtraceToml(".")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(noManifestMessage)
		}
		manifestPath = path
	}

	cfg, warnings, err := loadManifestConfig(manifestPath)
	if err != nil {
		return err
	}

	// The scan patterns must compile; a manifest with a broken glob
	// breaks every command that honors it.
	if _, err := filter.New(cfg.Scan.Include, cfg.Scan.Exclude); err != nil {
		return fmt.Errorf("%s: [scan]: %w", manifestPath, err)
	}

	// The agent section must map onto a runnable tracer config.
	agentCfg := flowtrace.Config{
		Path:         cfg.Agent.Path,
		Console:      cfg.Agent.Console,
		MaxArgLength: cfg.Agent.MaxArgLength,
	}
	if err := agentCfg.Validate(); err != nil {
		return fmt.Errorf("%s: [agent]: %w", manifestPath, err)
	}

	out := cmd.OutOrStdout()
	okColor := color.New(color.FgGreen, color.Bold)
	okColor.Fprintf(out, "%s: OK\n", manifestPath)
	if !quiet {
		fmt.Fprintf(out, "  project:   %s\n", cfg.Project.Name)
		fmt.Fprintf(out, "  include:   %s\n", strings.Join(cfg.Scan.Include, ", "))
		if len(cfg.Scan.Exclude) > 0 {
			fmt.Fprintf(out, "  exclude:   %s\n", strings.Join(cfg.Scan.Exclude, ", "))
		}
		fmt.Fprintf(out, "  agent log: %s\n", cfg.Agent.Path)
	}

	warnColor := color.New(color.FgYellow)
	for _, w := range warnings {
		warnColor.Fprintf(os.Stderr, "warning: %s: %s\n", manifestPath, w)
	}
	return nil
}
