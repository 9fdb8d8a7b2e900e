// Package ui renders a live terminal view of an instrumentation run.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"flowtrace/internal/pipeline"
)

// tailSize caps how many finished files stay visible below the bar.
const tailSize = 6

var (
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	phaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// runView follows a directory run as a counter, a progress bar and a
// short tail of recently finished files. A source tree can hold
// thousands of files, so the view never tries to list all of them.
type runView struct {
	caption  string
	events   <-chan pipeline.Event
	spin     spinner.Model
	bar      progress.Model
	total    int
	finished int
	failed   int
	phase    string
	current  string
	tail     []tailEntry
	width    int
	done     bool
}

type tailEntry struct {
	path    string
	elapsed time.Duration
	failed  bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows a run over
// total files, fed from events until the channel closes.
func NewProgressModel(caption string, total int, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = phaseStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 48

	return &runView{
		caption: caption,
		events:  events,
		spin:    sp,
		bar:     bar,
		total:   total,
		width:   80,
	}
}

func (v *runView) Init() tea.Cmd {
	return tea.Batch(v.spin.Tick, v.nextEvent())
}

// nextEvent pulls one pipeline event off the channel; a closed channel
// ends the program.
func (v *runView) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-v.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (v *runView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := v.consume(pipeline.Event(msg))
		return v, tea.Batch(cmd, v.nextEvent())
	case doneMsg:
		v.done = true
		return v, tea.Quit
	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd
	case progress.FrameMsg:
		next, cmd := v.bar.Update(msg)
		v.bar = next.(progress.Model)
		return v, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			v.width = msg.Width
			if w := msg.Width - 24; w < v.bar.Width {
				v.bar.Width = w
			}
		}
		return v, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		return v, nil
	}
	return v, nil
}

func (v *runView) consume(ev pipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == pipeline.StatusWorking {
			v.phase = phaseName(ev.Stage)
		}
		return nil
	}
	switch ev.Status {
	case pipeline.StatusWorking:
		v.current = ev.File
		v.phase = phaseName(ev.Stage)
	case pipeline.StatusDone, pipeline.StatusError:
		v.finished++
		if ev.Status == pipeline.StatusError {
			v.failed++
		}
		v.remember(tailEntry{path: ev.File, elapsed: ev.Elapsed, failed: ev.Status == pipeline.StatusError})
		if v.current == ev.File {
			v.current = ""
		}
		if v.total > 0 {
			return v.bar.SetPercent(float64(v.finished) / float64(v.total))
		}
	}
	return nil
}

func (v *runView) remember(entry tailEntry) {
	v.tail = append(v.tail, entry)
	if len(v.tail) > tailSize {
		v.tail = v.tail[len(v.tail)-tailSize:]
	}
}

func (v *runView) View() string {
	var b strings.Builder

	if v.done {
		b.WriteString(headStyle.Render("done: " + v.caption))
	} else {
		b.WriteString(v.spin.View())
		b.WriteString(" ")
		b.WriteString(headStyle.Render(v.caption))
		if v.phase != "" {
			b.WriteString(" ")
			b.WriteString(dimStyle.Render("(" + v.phase + ")"))
		}
	}
	b.WriteString("\n\n")

	if v.done {
		b.WriteString(v.bar.ViewAs(1.0))
	} else {
		b.WriteString(v.bar.View())
	}
	b.WriteString(fmt.Sprintf("  %d/%d files", v.finished, v.total))
	if v.failed > 0 {
		b.WriteString(failStyle.Render(fmt.Sprintf("  %d failed", v.failed)))
	}
	b.WriteString("\n")

	nameWidth := v.width - 16
	for _, entry := range v.tail {
		mark := okStyle.Render("✓")
		if entry.failed {
			mark = failStyle.Render("✗")
		}
		b.WriteString("  ")
		b.WriteString(mark)
		b.WriteString(" ")
		b.WriteString(clip(entry.path, nameWidth))
		if entry.elapsed > 0 {
			b.WriteString(" ")
			b.WriteString(dimStyle.Render(entry.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteString("\n")
	}
	if !v.done && v.current != "" {
		b.WriteString(dimStyle.Render("  … " + clip(v.current, nameWidth)))
		b.WriteString("\n")
	}
	return b.String()
}

func phaseName(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageWalk:
		return "scanning"
	case pipeline.StageParse:
		return "parsing"
	case pipeline.StageRewrite:
		return "marking"
	case pipeline.StageWeave:
		return "weaving"
	}
	return string(stage)
}

func clip(value string, width int) string {
	if width < 12 {
		width = 12
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, "…")
}
