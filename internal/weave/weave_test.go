package weave

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowtrace/internal/inspect"
)

const markedSource = `package billing

import "fmt"

//flowtrace:trace
func Charge(id string, cents int) error {
	if cents <= 0 {
		return fmt.Errorf("bad amount")
	}
	return nil
}

func Plain(id string) string {
	return id
}
`

func writeSample(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func weaveSample(t *testing.T, src string) string {
	t.Helper()
	path := writeSample(t, "sample.go", src)
	res, err := File(path, Options{})
	if err != nil {
		t.Fatalf("weave: %v", err)
	}
	if res.Count == 0 {
		t.Fatalf("expected at least one woven function")
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return string(out)
}

func TestFileWeavesMarkedFunction(t *testing.T) {
	path := writeSample(t, "charge.go", markedSource)

	res, err := File(path, Options{})
	if err != nil {
		t.Fatalf("weave: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected 1 woven function, got %d", res.Count)
	}
	if res.Functions[0] != "Charge" {
		t.Fatalf("expected Charge, got %q", res.Functions[0])
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		`__ft_ctx := flowtrace.Enter("billing", "Charge", flowtrace.Args{{Name: "id", Value: id}, {Name: "cents", Value: cents}})`,
		"__ft_ctx.Finish(nil, __ft_res0)",
		"defer __ft_ctx.Recover()",
		"(__ft_res0 error)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in woven output:\n%s", want, text)
		}
	}

	// The unmarked neighbor stays untouched.
	if strings.Count(text, "__ft_ctx :=") != 1 {
		t.Fatalf("expected exactly one woven body:\n%s", text)
	}

	// Recover is registered after the finish defer so it runs first
	// while a panic unwinds.
	if strings.Index(text, "__ft_ctx.Finish") > strings.Index(text, "defer __ft_ctx.Recover()") {
		t.Fatalf("defers registered in the wrong order:\n%s", text)
	}
}

func TestFileOutputParses(t *testing.T) {
	path := writeSample(t, "charge.go", markedSource)
	if _, err := File(path, Options{}); err != nil {
		t.Fatalf("weave: %v", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	f, err := inspect.ParseSource(path, out)
	if err != nil {
		t.Fatalf("woven output does not parse: %v", err)
	}
	for i, d := range f.Functions {
		if d.Name != "Charge" {
			continue
		}
		if !woven(f.FuncDecls()[i]) {
			t.Fatalf("Charge body does not start with the context assignment")
		}
	}
}

func TestFileIsIdempotent(t *testing.T) {
	path := writeSample(t, "charge.go", markedSource)

	if _, err := File(path, Options{}); err != nil {
		t.Fatalf("first weave: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	res, err := File(path, Options{})
	if err != nil {
		t.Fatalf("second weave: %v", err)
	}
	if res.Count != 0 || res.Changed {
		t.Fatalf("second weave must be a no-op, got %+v", res)
	}

	again, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(after) != string(again) {
		t.Fatalf("second weave modified the file")
	}
}

func TestFileSynthesizesResultNames(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Balance(id string) (int, error) {
	return 0, nil
}
`)
	if !strings.Contains(text, "(__ft_res0 int, __ft_res1 error)") {
		t.Fatalf("results not named:\n%s", text)
	}
	if !strings.Contains(text, "__ft_ctx.Finish(__ft_res0, __ft_res1)") {
		t.Fatalf("finish defer does not read synthesized results:\n%s", text)
	}
}

func TestFileKeepsExistingResultNames(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Balance(id string) (n int, err error) {
	return 0, nil
}
`)
	if strings.Contains(text, resPrefix) {
		t.Fatalf("named results must not be renamed:\n%s", text)
	}
	if !strings.Contains(text, "__ft_ctx.Finish(n, err)") {
		t.Fatalf("finish defer does not read existing names:\n%s", text)
	}
}

func TestFileVoidFunctionUsesExitVoid(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Touch(id string) {
	_ = id
}
`)
	if !strings.Contains(text, "defer __ft_ctx.ExitVoid()") {
		t.Fatalf("void function must defer ExitVoid:\n%s", text)
	}
	if strings.Contains(text, "Finish(") {
		t.Fatalf("void function must not call Finish:\n%s", text)
	}
}

func TestFileMultipleResultsCollected(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Split(s string) (string, string) {
	return s, s
}
`)
	if !strings.Contains(text, "__ft_ctx.Finish([]any{__ft_res0, __ft_res1}, nil)") {
		t.Fatalf("results not collected:\n%s", text)
	}
}

func TestFileMethodRecordsReceiver(t *testing.T) {
	text := weaveSample(t, `package billing

type Ledger struct{ total int }

//flowtrace:trace
func (l *Ledger) Post(cents int) (total int, err error) {
	l.total += cents
	return l.total, nil
}
`)
	if !strings.Contains(text, `flowtrace.Enter("billing", "Ledger.Post", flowtrace.Args{{Name: "receiver", Value: l}, {Name: "cents", Value: cents}})`) {
		t.Fatalf("receiver not recorded:\n%s", text)
	}
	if !strings.Contains(text, "__ft_ctx.Finish(total, err)") {
		t.Fatalf("named results not read:\n%s", text)
	}
}

func TestFileBlankParamSkipped(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Mix(_ string, n int) int {
	return n
}
`)
	if strings.Contains(text, "Value: _") {
		t.Fatalf("blank parameter must not be referenced:\n%s", text)
	}
	if !strings.Contains(text, `{Name: "n", Value: n}`) {
		t.Fatalf("named parameter missing:\n%s", text)
	}
}

func TestFileNoArgsPassesNil(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Tick() {
	_ = 0
}
`)
	if !strings.Contains(text, `flowtrace.Enter("billing", "Tick", nil)`) {
		t.Fatalf("argless function must pass nil:\n%s", text)
	}
}

func TestFileAddsRuntimeImport(t *testing.T) {
	text := weaveSample(t, `package billing

//flowtrace:trace
func Tick() {
	_ = 0
}
`)
	if !strings.Contains(text, `"flowtrace"`) {
		t.Fatalf("runtime import missing:\n%s", text)
	}

	text = weaveSample(t, markedSource)
	if !strings.Contains(text, `"flowtrace"`) || !strings.Contains(text, `"fmt"`) {
		t.Fatalf("expected both imports:\n%s", text)
	}
}

func TestFileDryRunLeavesFileAlone(t *testing.T) {
	path := writeSample(t, "charge.go", markedSource)

	res, err := File(path, Options{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if res.Count != 1 || !res.Changed {
		t.Fatalf("dry run must still report the work, got %+v", res)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(out) != markedSource {
		t.Fatalf("dry run modified the file")
	}
}

func TestFileUnmarkedFileUntouched(t *testing.T) {
	src := "package billing\n\nfunc Plain() {}\n"
	path := writeSample(t, "plain.go", src)

	res, err := File(path, Options{})
	if err != nil {
		t.Fatalf("weave: %v", err)
	}
	if res.Count != 0 || res.Changed {
		t.Fatalf("expected no-op, got %+v", res)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(out) != src {
		t.Fatalf("no-op weave modified the file")
	}
}

func TestFileBackupHoldsOriginal(t *testing.T) {
	path := writeSample(t, "charge.go", markedSource)

	res, err := File(path, Options{Backup: true})
	if err != nil {
		t.Fatalf("weave: %v", err)
	}
	if res.BackupPath != path+".bak" {
		t.Fatalf("expected backup path, got %q", res.BackupPath)
	}
	backup, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != markedSource {
		t.Fatalf("backup must hold the original content")
	}
}
