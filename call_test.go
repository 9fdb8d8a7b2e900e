package flowtrace

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestCallEmitsEnterExit(t *testing.T) {
	path := startTestTracer(t)

	Call("jobs", "Sweep", Args{{Name: "limit", Value: 10}}, func() {})

	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("expected enter+exit, got %d events", len(events))
	}
	if events[0]["args"] != "{limit=10}" {
		t.Fatalf("expected ordered args snapshot, got %v", events[0]["args"])
	}
	if events[1]["event"] != "EXIT" || events[1]["result"] != "()" {
		t.Fatalf("expected void exit, got %v", events[1])
	}
}

func TestCall1RecordsResult(t *testing.T) {
	path := startTestTracer(t)

	got := Call1("jobs", "Count", nil, func() int { return 37 })
	if got != 37 {
		t.Fatalf("expected wrapped call to return 37, got %d", got)
	}

	events := readEvents(t, path)
	if events[1]["result"] != "37" {
		t.Fatalf("expected result snapshot 37, got %v", events[1]["result"])
	}
}

func TestCallErrErrorEmitsExceptionNeverExit(t *testing.T) {
	path := startTestTracer(t)

	wantErr := errors.New("queue closed")
	v, err := CallErr("jobs", "Pop", nil, func() (string, error) {
		return "", wantErr
	})
	if v != "" || !errors.Is(err, wantErr) {
		t.Fatalf("wrapper must pass the failure through, got %q, %v", v, err)
	}

	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("expected enter+exception, got %d events", len(events))
	}
	term := events[1]
	if term["event"] != "EXCEPTION" {
		t.Fatalf("expected EXCEPTION for a failed call, got %v", term["event"])
	}
	if term["exception"] != "queue closed" {
		t.Fatalf("expected error text, got %v", term["exception"])
	}
	for _, ev := range events {
		if ev["event"] == "EXIT" {
			t.Fatalf("failed call must not emit EXIT: %v", events)
		}
	}
}

func TestCallErrSuccessEmitsExit(t *testing.T) {
	path := startTestTracer(t)

	v, err := CallErr("jobs", "Pop", nil, func() (string, error) {
		return "job-1", nil
	})
	if v != "job-1" || err != nil {
		t.Fatalf("unexpected passthrough %q, %v", v, err)
	}

	events := readEvents(t, path)
	if events[1]["event"] != "EXIT" || events[1]["result"] != "job-1" {
		t.Fatalf("expected exit with result, got %v", events[1])
	}
}

func TestDoTracesErrorResult(t *testing.T) {
	path := startTestTracer(t)

	if err := Do("jobs", "Flush", nil, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantErr := errors.New("flush failed")
	if err := Do("jobs", "Flush", nil, func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected passthrough error, got %v", err)
	}

	events := readEvents(t, path)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1]["event"] != "EXIT" || events[3]["event"] != "EXCEPTION" {
		t.Fatalf("expected exit then exception, got %v", events)
	}
}

func TestCallPanicEmitsExceptionAndReRaises(t *testing.T) {
	path := startTestTracer(t)

	sentinel := errors.New("boom")
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		Call("jobs", "Explode", nil, func() { panic(sentinel) })
	}()

	if recovered != sentinel {
		t.Fatalf("expected the identical panic value, got %v", recovered)
	}
	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("expected enter+exception, got %d events", len(events))
	}
	if events[1]["event"] != "EXCEPTION" || events[1]["exception"] != "boom" {
		t.Fatalf("expected panic exception, got %v", events[1])
	}
}

func TestEnterArgsTruncated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "events.jsonl")
	cfg.MaxArgLength = 5
	if err := Start(cfg); err != nil {
		t.Fatalf("start tracer: %v", err)
	}
	t.Cleanup(func() { _ = Stop() })

	Call("jobs", "Name", Args{{Name: "s", Value: "abcdefghij"}}, func() {})

	events := readEvents(t, cfg.Path)
	if events[0]["args"] != "{s=abcde...}" {
		t.Fatalf("expected truncated snapshot, got %v", events[0]["args"])
	}
}

func TestEnterSnapshotsArgsBeforeCall(t *testing.T) {
	path := startTestTracer(t)

	type counter struct{ N int }
	c := &counter{N: 1}
	Call("jobs", "Mutate", Args{{Name: "c", Value: c}}, func() {
		c.N = 2
	})

	events := readEvents(t, path)
	if got := events[0]["args"]; got != "{c=&{1}}" {
		t.Fatalf("expected entry-time snapshot, got %v", got)
	}
}

func TestFinishBranches(t *testing.T) {
	path := startTestTracer(t)

	c := Enter("jobs", "A", nil)
	c.Finish(nil, nil)

	c = Enter("jobs", "B", nil)
	c.Finish(12, nil)

	c = Enter("jobs", "C", nil)
	c.Finish(nil, errors.New("bad"))

	events := readEvents(t, path)
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	if events[1]["result"] != "()" {
		t.Fatalf("expected void marker for nil result, got %v", events[1]["result"])
	}
	if events[3]["result"] != "12" {
		t.Fatalf("expected value snapshot, got %v", events[3]["result"])
	}
	if events[5]["event"] != "EXCEPTION" || events[5]["exception"] != "bad" {
		t.Fatalf("expected exception branch, got %v", events[5])
	}
}

func TestCallContextTerminalIsExclusive(t *testing.T) {
	path := startTestTracer(t)

	c := Enter("jobs", "Once", nil)
	c.Exit(1)
	c.Exit(2)
	c.Fail(errors.New("late"))
	c.ExitVoid()

	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("expected exactly one terminal event, got %d events", len(events))
	}
	if events[1]["result"] != "1" {
		t.Fatalf("first terminal must win, got %v", events[1])
	}
}

func TestPanicMessageFallbacks(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{errors.New("wrapped"), "wrapped"},
		{"plain", "plain"},
		{42, "42"},
		{"", "unknown panic"},
	}
	for _, tt := range tests {
		if got := panicMessage(tt.value); got != tt.want {
			t.Fatalf("panicMessage(%v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}

func TestArgsSnapshotOrder(t *testing.T) {
	args := Args{
		{Name: "z", Value: 1},
		{Name: "a", Value: 2},
		{Name: "m", Value: "x y"},
	}
	got := args.snapshot(0)
	want := "{z=1, a=2, m=x y}"
	if got != want {
		t.Fatalf("expected declaration order %q, got %q", want, got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"overflowing", 4, "over..."},
		{"unbounded", 0, "unbounded"},
		{strings.Repeat("a", 100), 3, "aaa..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d): expected %q, got %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
