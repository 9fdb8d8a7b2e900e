package inspect

import "testing"

func TestReasonRules(t *testing.T) {
	tests := []struct {
		name string
		d    FunctionDescriptor
		want string
	}{
		{
			name: "eligible plain function",
			d:    FunctionDescriptor{Name: "Transfer", BodyStmts: 3},
			want: "",
		},
		{
			name: "already marked",
			d:    FunctionDescriptor{Name: "Transfer", BodyStmts: 3, Marked: true},
			want: "already marked",
		},
		{
			name: "test file",
			d:    FunctionDescriptor{Name: "helper", BodyStmts: 1, TestFile: true},
			want: "test function",
		},
		{
			name: "test prefix",
			d:    FunctionDescriptor{Name: "TestTransfer", BodyStmts: 3},
			want: "test function",
		},
		{
			name: "benchmark prefix",
			d:    FunctionDescriptor{Name: "BenchmarkTransfer", BodyStmts: 3},
			want: "test function",
		},
		{
			name: "fuzz prefix",
			d:    FunctionDescriptor{Name: "FuzzParse", BodyStmts: 3},
			want: "test function",
		},
		{
			name: "example prefix",
			d:    FunctionDescriptor{Name: "ExampleTransfer", BodyStmts: 3},
			want: "test function",
		},
		{
			name: "underscore test prefix",
			d:    FunctionDescriptor{Name: "test_transfer", BodyStmts: 3},
			want: "test function",
		},
		{
			name: "Testify is not a test",
			d:    FunctionDescriptor{Name: "Testify", BodyStmts: 3},
			want: "",
		},
		{
			name: "empty body",
			d:    FunctionDescriptor{Name: "Stub", BodyStmts: 0},
			want: "empty body",
		},
		{
			name: "main",
			d:    FunctionDescriptor{Name: "main", BodyStmts: 5},
			want: "entrypoint",
		},
		{
			name: "init",
			d:    FunctionDescriptor{Name: "init", BodyStmts: 5},
			want: "entrypoint",
		},
		{
			name: "method named main is ordinary",
			d:    FunctionDescriptor{Name: "main", Receiver: "App", BodyStmts: 5},
			want: "",
		},
		{
			name: "generated file",
			d:    FunctionDescriptor{Name: "Decode", BodyStmts: 4, Generated: true},
			want: "generated file",
		},
		{
			name: "marked wins over test",
			d:    FunctionDescriptor{Name: "TestX", BodyStmts: 1, Marked: true},
			want: "already marked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.d); got != tt.want {
				t.Fatalf("expected reason %q, got %q", tt.want, got)
			}
			if got := Eligible(tt.d); got != (tt.want == "") {
				t.Fatalf("Eligible disagrees with Reason for %+v", tt.d)
			}
		})
	}
}

func TestClassifierIsDeterministic(t *testing.T) {
	d := FunctionDescriptor{Name: "Transfer", BodyStmts: 2, Exported: true}
	first := Eligible(d)
	for i := 0; i < 100; i++ {
		if Eligible(d) != first {
			t.Fatal("classification of an identical descriptor changed")
		}
	}
}

func TestQualifiedName(t *testing.T) {
	d := FunctionDescriptor{Name: "Close", Receiver: "Conn"}
	if got := d.QualifiedName(); got != "Conn.Close" {
		t.Fatalf("expected Conn.Close, got %q", got)
	}
	d.Receiver = ""
	if got := d.QualifiedName(); got != "Close" {
		t.Fatalf("expected Close, got %q", got)
	}
}
