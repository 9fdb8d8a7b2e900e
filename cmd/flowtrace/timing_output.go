package main

import (
	"fmt"
	"io"
	"time"

	"flowtrace/internal/pipeline"
)

// stageVerbs maps run stages to the past-tense verb shown by --timings,
// in report order.
var stageVerbs = []struct {
	stage pipeline.Stage
	verb  string
}{
	{pipeline.StageWalk, "walked"},
	{pipeline.StageParse, "parsed"},
	{pipeline.StageRewrite, "rewrote"},
	{pipeline.StageWeave, "wove"},
}

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	for _, row := range stageVerbs {
		if !timings.Has(row.stage) {
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", row.verb, toMillis(timings.Duration(row.stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
