package filter

import "testing"

func TestDefaultIncludeMatchesGoFiles(t *testing.T) {
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	tests := []struct {
		rel  string
		want bool
	}{
		{"main.go", true},
		{"pkg/billing/ledger.go", true},
		{"pkg/billing/ledger_test.go", true},
		{"README.md", false},
		{"pkg/data.json", false},
	}
	for _, tt := range tests {
		if got := s.Match(tt.rel); got != tt.want {
			t.Fatalf("Match(%q): expected %v, got %v", tt.rel, tt.want, got)
		}
	}
}

func TestExcludeWinsOverInclude(t *testing.T) {
	s, err := New([]string{"**/*.go"}, []string{"**/generated/**"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if s.Match("pkg/generated/api.go") {
		t.Fatal("expected excluded path to be rejected")
	}
	if !s.Match("pkg/handlers/api.go") {
		t.Fatal("expected non-excluded path to pass")
	}
}

func TestNarrowInclude(t *testing.T) {
	s, err := New([]string{"internal/**/*.go"}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if s.Match("cmd/main.go") {
		t.Fatal("path outside include must be rejected")
	}
	if !s.Match("internal/scan/scan.go") {
		t.Fatal("path inside include must pass")
	}
}

func TestInvalidPatternRejected(t *testing.T) {
	if _, err := New([]string{"[unterminated"}, nil); err == nil {
		t.Fatal("expected error for invalid include pattern")
	}
	if _, err := New(nil, []string{"[unterminated"}); err == nil {
		t.Fatal("expected error for invalid exclude pattern")
	}
}

func TestNilSetMatchesEverything(t *testing.T) {
	var s *Set
	if !s.Match("anything/at/all.txt") {
		t.Fatal("nil set must match everything")
	}
}
