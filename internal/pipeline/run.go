package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"flowtrace/internal/filter"
	"flowtrace/internal/scan"
)

// ApplyFunc processes one file and reports what changed in it.
type ApplyFunc func(path string) (FileOutcome, error)

// FileOutcome is the per-file result of an instrumentation pass.
type FileOutcome struct {
	Path      string
	Count     int
	Functions []string
	Changed   bool
}

// Request configures a directory-wide run.
type Request struct {
	Root   string
	Filter *filter.Set

	// Files bypasses the walk when the caller already collected the
	// paths, for example to seed a progress UI.
	Files []string

	// Stage labels the per-file work phase in progress events.
	Stage Stage

	// Apply does the actual per-file work.
	Apply ApplyFunc

	// Progress receives events; nil disables reporting.
	Progress Sink
}

// Result aggregates a finished run. On error the outcomes collected so
// far are still returned: files already rewritten stay rewritten, and
// the caller should say so.
type Result struct {
	Outcomes []FileOutcome
	Files    int
	Touched  int
	Changed  int
	Timings  Timings
}

// Run walks the tree under req.Root and applies req.Apply to every
// accepted file, in walk order. The first failure aborts the run.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing run request")
	}
	if req.Apply == nil {
		return result, fmt.Errorf("missing apply function")
	}

	files := req.Files
	if len(files) == 0 {
		walkStart := time.Now()
		emitRun(req.Progress, StageWalk, StatusWorking, nil, 0)
		var err error
		files, err = scan.Files(req.Root, req.Filter)
		if err != nil {
			emitRun(req.Progress, StageWalk, StatusError, err, 0)
			return result, err
		}
		result.Timings.Set(StageWalk, time.Since(walkStart))
		emitRun(req.Progress, StageWalk, StatusDone, nil, result.Timings.Duration(StageWalk))
	}

	// Файлы уже в порядке обхода, поэтому прогресс детерминирован.
	display := DisplayPaths(req.Root, files)
	emitQueued(req.Progress, display)

	stageStart := time.Now()
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			emitRun(req.Progress, req.Stage, StatusError, err, 0)
			return result, err
		}

		emitFile(req.Progress, display[i], StageParse, StatusWorking, nil, 0)
		fileStart := time.Now()
		outcome, err := req.Apply(path)
		if err != nil {
			emitFile(req.Progress, display[i], req.Stage, StatusError, err, time.Since(fileStart))
			return result, err
		}
		outcome.Path = display[i]
		result.Outcomes = append(result.Outcomes, outcome)
		result.Files++
		result.Touched += outcome.Count
		if outcome.Changed {
			result.Changed++
		}
		emitFile(req.Progress, display[i], req.Stage, StatusDone, nil, time.Since(fileStart))
	}
	result.Timings.Set(req.Stage, time.Since(stageStart))
	return result, nil
}

// DisplayPaths shortens absolute walk paths to root-relative slashed
// form for progress output.
func DisplayPaths(root string, files []string) []string {
	out := make([]string, len(files))
	for i, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			out[i] = filepath.ToSlash(path)
			continue
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func emitQueued(sink Sink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitFile(sink Sink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitRun(sink Sink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
