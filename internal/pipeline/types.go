// Package pipeline orchestrates directory-wide instrumentation runs
// and reports their progress through a sink, so the CLI can render the
// same run as plain text or as a live terminal UI.
package pipeline

import "time"

// Stage describes a high-level phase of a run.
type Stage string

const (
	// StageWalk is the file discovery stage.
	StageWalk Stage = "walk"
	// StageParse is the per-file parsing stage.
	StageParse Stage = "parse"
	// StageRewrite is the marker injection stage.
	StageRewrite Stage = "rewrite"
	// StageWeave is the body generation stage.
	StageWeave Stage = "weave"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting its turn.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished cleanly.
	StatusDone Status = "done"
	// StatusError indicates processing failed.
	StatusError Status = "error"
)

// Event reports progress for a file, or for the overall run when File
// is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
