// Package observ times the phases of a CLI run for the --timings flag.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one timed phase of an analysis or instrumentation run.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer collects phase durations. Not safe for concurrent use. A nil
// *Timer records nothing, so call sites don't need --timings checks.
type Timer struct {
	phases []Phase
}

// New returns an empty timer.
func New() *Timer { return &Timer{} }

// Track opens a phase and returns its closer, which records the
// elapsed time together with an optional note:
//
//	done := timer.Track("parse")
//	...
//	done(fmt.Sprintf("funcs=%d", n))
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	start := time.Now()
	return func(note string) {
		t.phases = append(t.phases, Phase{Name: name, Dur: time.Since(start), Note: note})
	}
}

// Add records a phase whose duration was measured elsewhere.
func (t *Timer) Add(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.phases = append(t.phases, Phase{Name: name, Dur: dur, Note: note})
}

// PhaseReport — фаза в миллисекундах, готовая к сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report — итог всех фаз одного прогона.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report flattens the recorded phases into milliseconds.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: toMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = toMillis(total)
	return report
}

// Summary renders the report as indented text.
func (t *Timer) Summary() string {
	report := t.Report()

	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-14s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-14s %8.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
