package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"flowtrace/internal/filter"
	"flowtrace/internal/pipeline"
	"flowtrace/internal/scan"
)

// executeRun drives a file or directory run, behind the TUI when the
// terminal allows it and behind a plain text sink otherwise.
func executeRun(ctx context.Context, title, root string, set *filter.Set, stage pipeline.Stage, apply pipeline.ApplyFunc, useTUI, quiet bool) (pipeline.Result, error) {
	req := &pipeline.Request{
		Root:   root,
		Filter: set,
		Stage:  stage,
		Apply:  apply,
	}

	if useTUI {
		files, err := scan.Files(root, set)
		if err != nil {
			return pipeline.Result{}, err
		}
		req.Files = files
		if len(files) > 1 {
			return runPipelineWithUI(ctx, title, pipeline.DisplayPaths(root, files), req)
		}
		// Single file: the TUI would flash and exit, run plain instead.
	}

	if !quiet {
		req.Progress = pipeline.TextSink{Out: os.Stdout}
	}
	return pipeline.Run(ctx, req)
}

// renderRunSummary prints the aggregate of a finished run plus the
// per-function detail unless quiet.
func renderRunSummary(out io.Writer, res pipeline.Result, verb, emptyNote string, quiet bool) {
	if res.Touched == 0 {
		fmt.Fprintf(out, "%s in %d file(s)\n", emptyNote, res.Files)
		return
	}
	fmt.Fprintf(out, "%s %d function(s) in %d of %d file(s)\n", verb, res.Touched, res.Changed, res.Files)
	if quiet {
		return
	}
	for _, outcome := range res.Outcomes {
		for _, name := range outcome.Functions {
			fmt.Fprintf(out, "  %s: %s\n", outcome.Path, name)
		}
	}
}
