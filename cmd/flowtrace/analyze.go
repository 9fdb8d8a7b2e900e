package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowtrace/internal/filter"
	"flowtrace/internal/inspect"
	"flowtrace/internal/observ"
	"flowtrace/internal/scan"
	"flowtrace/internal/scancache"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file.go|directory>",
	Short: "Scan Go sources and report instrumentation statistics",
	Long:  "Walk a file or directory, classify every function, and print how much of the tree is covered by tracing markers.",
	Args:  exactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolP("verbose", "v", false, "show the detailed function breakdown")
	analyzeCmd.Flags().Bool("explain", false, "list every function with its eligibility verdict")
	analyzeCmd.Flags().Bool("json", false, "print statistics as JSON")
	analyzeCmd.Flags().Bool("no-cache", false, "ignore and do not update the scan cache")
	analyzeCmd.Flags().StringSlice("include", nil, "glob patterns of files to include (default from flowtrace.toml or **/*.go)")
	analyzeCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
}

type analyzePayload struct {
	Root        string         `json:"root"`
	Stats       scan.Stats     `json:"stats"`
	CoveragePct float64        `json:"coverage_pct"`
	Timings     *observ.Report `json:"timings,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	root := args[0]

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return fmt.Errorf("failed to get explain flag: %w", err)
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	quiet, showTimings, err := readGlobalFlags(cmd)
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

	var timer *observ.Timer
	if showTimings {
		timer = observ.New()
	}

	doneWalk := timer.Track("walk")
	files, err := scan.Files(root, set)
	doneWalk(fmt.Sprintf("files=%d", len(files)))
	if err != nil {
		return err
	}

	stats, err := scanWithCache(root, files, set, noCache, quiet, timer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		payload := analyzePayload{
			Root:        filepath.ToSlash(root),
			Stats:       stats,
			CoveragePct: stats.Coverage(),
		}
		if timer != nil {
			report := timer.Report()
			payload.Timings = &report
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	renderStats(out, stats, verbose, quiet)
	if explain {
		if err := renderExplain(out, root, files); err != nil {
			return err
		}
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
	return nil
}

// scanWithCache parses the file list, going through the scan cache
// unless it was disabled. Cache trouble is never fatal: a broken cache
// degrades to a plain scan.
func scanWithCache(root string, files []string, set *filter.Set, noCache, quiet bool, timer *observ.Timer) (scan.Stats, error) {
	scanner := scan.New(set)
	if noCache {
		done := timer.Track("parse")
		stats, err := scanner.ScanFiles(files)
		done(fmt.Sprintf("funcs=%d", stats.TotalFunctions))
		return stats, err
	}

	cache, cacheErr := scancache.Open("flowtrace")
	if cacheErr != nil && !quiet {
		fmt.Fprintf(os.Stderr, "scan cache unavailable: %v\n", cacheErr)
	}

	doneFp := timer.Track("fingerprint")
	fp, fpErr := scancache.Fingerprint(files)
	doneFp("")
	if fpErr == nil {
		done := timer.Track("cache")
		if stats, ok := cache.Load(root, fp); ok {
			done("hit")
			return stats, nil
		}
		done("miss")
	}

	doneParse := timer.Track("parse")
	stats, err := scanner.ScanFiles(files)
	doneParse(fmt.Sprintf("funcs=%d", stats.TotalFunctions))
	if err != nil {
		return stats, err
	}
	if fpErr == nil {
		if storeErr := cache.Store(root, fp, len(files), stats); storeErr != nil && !quiet {
			fmt.Fprintf(os.Stderr, "scan cache store failed: %v\n", storeErr)
		}
	}
	return stats, nil
}

func renderStats(out io.Writer, stats scan.Stats, verbose, quiet bool) {
	header := color.New(color.FgCyan, color.Bold)
	instrumentable := color.New(color.FgGreen)
	instrumented := color.New(color.FgBlue)

	if !quiet {
		header.Fprintln(out, "Analysis results:")
	}
	fmt.Fprintf(out, "  %d files analyzed\n", stats.TotalFiles)
	fmt.Fprintf(out, "  %d total functions found\n", stats.TotalFunctions)
	fmt.Fprintf(out, "  %s instrumentable functions\n", instrumentable.Sprintf("%d", stats.InstrumentableFunctions))
	fmt.Fprintf(out, "  %s already instrumented\n", instrumented.Sprintf("%d", stats.InstrumentedFunctions))
	fmt.Fprintf(out, "  %.1f%% coverage\n", stats.Coverage())
	fmt.Fprintf(out, "  %d lines of code\n", stats.TotalLines)

	if verbose {
		if !quiet {
			header.Fprintln(out, "Detailed statistics:")
		}
		fmt.Fprintf(out, "  Goroutine launchers: %d\n", stats.AsyncFunctions)
		fmt.Fprintf(out, "  Plain functions:     %d\n", stats.SyncFunctions)
		fmt.Fprintf(out, "  Exported:            %d\n", stats.PublicFunctions)
		fmt.Fprintf(out, "  Unexported:          %d\n", stats.PrivateFunctions)
	}

	if stats.InstrumentableFunctions > 0 && !quiet {
		tip := color.New(color.FgGreen)
		tip.Fprintln(out, "Tip: run 'flowtrace instrument <path>' to add tracing markers")
	}
}

// renderExplain re-parses every file and prints a per-function verdict.
// The statistics above never say WHICH function is held back; this does.
func renderExplain(out io.Writer, root string, files []string) error {
	eligible := color.New(color.FgGreen)
	marked := color.New(color.FgBlue)
	skipped := color.New(color.FgYellow)

	for i, path := range files {
		f, err := inspect.ParseFile(path)
		if err != nil {
			return err
		}
		display := path
		if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." {
			display = rel
		}
		fmt.Fprintf(out, "%s\n", filepath.ToSlash(display))
		for _, fn := range f.Functions {
			name := fn.QualifiedName()
			switch {
			case fn.Marked:
				fmt.Fprintf(out, "  %s %s\n", marked.Sprint("marked  "), name)
			case inspect.Eligible(fn):
				fmt.Fprintf(out, "  %s %s\n", eligible.Sprint("eligible"), name)
			default:
				fmt.Fprintf(out, "  %s %s (%s)\n", skipped.Sprint("skipped "), name, inspect.Reason(fn))
			}
		}
		if i < len(files)-1 {
			fmt.Fprintln(out)
		}
	}
	return nil
}
