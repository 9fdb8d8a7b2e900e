package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowtrace/internal/version"
)

const versionTagline = "every call leaves a trace"

// buildInfo is the machine-readable shape of `version --json`. Fields
// left empty by the build are omitted rather than filled with
// placeholders.
type buildInfo struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Built   string `json:"built,omitempty"`
}

var versionAsJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionAsJSON, "json", false, "emit machine-readable build info")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show flowtrace build fingerprints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionAsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(collectBuildInfo())
		}
		fmt.Fprintf(out, "flowtrace %s (%s)\n", version.Colored(), versionTagline)
		if commit := strings.TrimSpace(version.GitCommit); commit != "" {
			fmt.Fprintf(out, "  commit %s\n", commit)
		}
		if built := strings.TrimSpace(version.BuildDate); built != "" {
			fmt.Fprintf(out, "  built  %s\n", built)
		}
		return nil
	},
}

func collectBuildInfo() buildInfo {
	return buildInfo{
		Tool:    "flowtrace",
		Version: strings.TrimSpace(version.Number),
		Commit:  strings.TrimSpace(version.GitCommit),
		Built:   strings.TrimSpace(version.BuildDate),
	}
}
