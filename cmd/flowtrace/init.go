package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flowtrace"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a flowtrace project",
	Long: `Initialize a flowtrace project by creating a project manifest
(flowtrace.toml). If [path|name] is omitted, initializes the current
directory. If a non-existing name is provided, a directory will be
created.`,
	Args: maximumArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	arg := "."
	if len(args) == 1 {
		arg = args[0]
	}
	target, err := prepareProjectDir(arg)
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(target, manifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(projectName(target))), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized flowtrace project in %s\n", displayPath(target))
	fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", manifestName)
	return nil
}

// prepareProjectDir turns the init argument into an absolute directory
// path, creating the directory when it does not exist yet.
func prepareProjectDir(arg string) (string, error) {
	target, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(target, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	case err != nil:
		return "", err
	case !st.IsDir():
		return "", fmt.Errorf("%q is not a directory", target)
	}
	return target, nil
}

// projectName derives a manifest name from the directory basename.
func projectName(target string) string {
	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "flowtrace-project"
	}
	return name
}

// displayPath prefers a path relative to the working directory when
// one exists; absolute paths in output are noise for the common case.
func displayPath(target string) string {
	wd, err := os.Getwd()
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(wd, target)
	if err != nil {
		return target
	}
	return rel
}

// buildDefaultManifest returns the starter manifest for a new project.
// Every key mirrors a flag or environment default, so a freshly
// initialized project behaves exactly like an unconfigured one.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# flowtrace project manifest
[project]
name = "%s"

[scan]
include = ["**/*.go"]
exclude = []

[agent]
path = "%s"
console = false
max_arg_length = %d
`, name, flowtrace.DefaultPath, flowtrace.DefaultMaxArgLength)
}
