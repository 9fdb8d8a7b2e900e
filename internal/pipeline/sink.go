package pipeline

import (
	"fmt"
	"io"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// TextSink prints one line per finished file, for runs without a
// terminal UI. Queued and working transitions are deliberately silent;
// plain output should read like a log, not a ticker.
type TextSink struct {
	Out io.Writer
}

func (s TextSink) OnEvent(evt Event) {
	if s.Out == nil {
		return
	}
	switch {
	case evt.Status == StatusError && evt.File != "":
		fmt.Fprintf(s.Out, "  %-8s %s: %v\n", evt.Stage, evt.File, evt.Err)
	case evt.Status == StatusError:
		fmt.Fprintf(s.Out, "%s: %v\n", evt.Stage, evt.Err)
	case evt.Status == StatusDone && evt.File != "":
		fmt.Fprintf(s.Out, "  %-8s %s\n", evt.Stage, evt.File)
	}
}
