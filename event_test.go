package flowtrace

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func decodeLine(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(line, &m); err != nil {
		t.Fatalf("event line is not valid JSON: %v\n%s", err, line)
	}
	return m
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindEnter, "ENTER"},
		{KindExit, "EXIT"},
		{KindException, "EXCEPTION"},
		{Kind(0), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestEncodeLineFieldsPerKind(t *testing.T) {
	tests := []struct {
		name   string
		ev     Event
		want   []string
		absent []string
	}{
		{
			name:   "enter without args",
			ev:     NewEnter("pkg/os", "Read", nil),
			want:   []string{"event", "timestamp", "class", "method", "thread"},
			absent: []string{"args", "result", "exception", "durationMillis", "durationMicros"},
		},
		{
			name:   "enter with args",
			ev:     NewEnter("pkg/os", "Read", strptr("{n=4096}")),
			want:   []string{"args"},
			absent: []string{"result", "exception", "durationMillis", "durationMicros"},
		},
		{
			name:   "exit",
			ev:     NewExit("pkg/os", "Read", strptr("4096"), 1500*time.Microsecond),
			want:   []string{"result", "durationMillis", "durationMicros"},
			absent: []string{"args", "exception"},
		},
		{
			name:   "exception",
			ev:     NewException("pkg/os", "Read", "file closed", 10*time.Microsecond),
			want:   []string{"exception", "durationMillis", "durationMicros"},
			absent: []string{"args", "result"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeLine(t, encodeLine(tt.ev))
			for _, key := range tt.want {
				if _, ok := m[key]; !ok {
					t.Fatalf("expected field %q in %v", key, m)
				}
			}
			for _, key := range tt.absent {
				if _, ok := m[key]; ok {
					t.Fatalf("expected field %q to be absent in %v", key, m)
				}
			}
		})
	}
}

func TestEncodeLineWireNames(t *testing.T) {
	ev := NewException("billing/ledger", "Post", "short read", 2500*time.Microsecond)
	m := decodeLine(t, encodeLine(ev))

	if m["event"] != "EXCEPTION" {
		t.Fatalf("expected event EXCEPTION, got %v", m["event"])
	}
	if m["class"] != "billing/ledger" {
		t.Fatalf("expected class billing/ledger, got %v", m["class"])
	}
	if m["method"] != "Post" {
		t.Fatalf("expected method Post, got %v", m["method"])
	}
	if m["exception"] != "short read" {
		t.Fatalf("expected exception text, got %v", m["exception"])
	}
}

func TestDurationMillisIsMicrosDiv1000(t *testing.T) {
	tests := []struct {
		elapsed    time.Duration
		wantMicros float64
		wantMillis float64
	}{
		{0, 0, 0},
		{999 * time.Microsecond, 999, 0},
		{1000 * time.Microsecond, 1000, 1},
		{2500 * time.Microsecond, 2500, 2},
		{1999999 * time.Microsecond, 1999999, 1999},
	}

	for _, tt := range tests {
		m := decodeLine(t, encodeLine(NewExit("p", "f", nil, tt.elapsed)))
		if m["durationMicros"] != tt.wantMicros {
			t.Fatalf("elapsed %v: expected durationMicros %v, got %v", tt.elapsed, tt.wantMicros, m["durationMicros"])
		}
		if m["durationMillis"] != tt.wantMillis {
			t.Fatalf("elapsed %v: expected durationMillis %v, got %v", tt.elapsed, tt.wantMillis, m["durationMillis"])
		}
	}
}

func TestTimestampIsMicrosecondsSinceEpoch(t *testing.T) {
	before := time.Now().UnixMicro()
	ev := NewEnter("p", "f", nil)
	after := time.Now().UnixMicro()

	if ev.Timestamp < before || ev.Timestamp > after {
		t.Fatalf("timestamp %d outside [%d, %d]", ev.Timestamp, before, after)
	}
}

func TestThreadLabel(t *testing.T) {
	ev := NewEnter("p", "f", nil)
	if !strings.HasPrefix(ev.Thread, "goroutine-") {
		t.Fatalf("expected goroutine-<id> thread label, got %q", ev.Thread)
	}
	if ev.Thread == "goroutine-0" {
		t.Fatalf("expected a real goroutine id, got %q", ev.Thread)
	}
}

func TestEncodeLineEndsWithNewline(t *testing.T) {
	line := encodeLine(NewEnter("p", "f", nil))
	if line[len(line)-1] != '\n' {
		t.Fatalf("expected trailing newline, got %q", line)
	}
	if strings.Count(string(line), "\n") != 1 {
		t.Fatalf("expected exactly one newline per line, got %q", line)
	}
}
