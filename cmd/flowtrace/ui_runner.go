package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"flowtrace/internal/pipeline"
	"flowtrace/internal/ui"
)

// runPipelineWithUI executes the run behind a live terminal UI. The
// pipeline streams events into the UI through a channel; the outcome is
// collected once both the run goroutine and the UI loop have exited.
func runPipelineWithUI(ctx context.Context, title string, files []string, req *pipeline.Request) (pipeline.Result, error) {
	if req == nil {
		return pipeline.Result{}, fmt.Errorf("missing run request")
	}
	events := make(chan pipeline.Event, 256)

	var (
		res     pipeline.Result
		runErr  error
		runDone = make(chan struct{})
	)
	go func() {
		defer close(runDone)
		defer close(events)
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, runErr = pipeline.Run(ctx, &reqCopy)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, len(files), events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()

	// When the UI stops early the run goroutine may still be emitting;
	// drain the channel so it can finish instead of blocking on a send.
	for range events {
	}
	<-runDone

	if uiErr != nil {
		return res, uiErr
	}
	return res, runErr
}
