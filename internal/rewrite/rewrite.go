// Package rewrite injects the instrumentation marker above eligible
// functions. Files are edited as text: whole marker lines are inserted
// and every other byte of the original survives unchanged, so running
// the rewriter twice equals running it once.
package rewrite

import (
	"fmt"
	"os"
	"sort"

	"flowtrace/internal/inspect"
	"flowtrace/internal/marker"
)

// Options configures a rewrite.
type Options struct {
	// DryRun computes the result without touching the filesystem
	// beyond reading.
	DryRun bool

	// Backup copies the original to <path>.bak before writing. A
	// failed backup aborts the rewrite with the file unmodified.
	Backup bool
}

// Result reports what a rewrite did, or would do for dry runs.
type Result struct {
	// Count is the number of newly marked functions.
	Count int

	// Functions lists their qualified names in file order.
	Functions []string

	// BackupPath is set when a backup file was written.
	BackupPath string

	// Changed reports whether the file content differs after the
	// rewrite. Already-instrumented files come back unchanged.
	Changed bool
}

// edit is one pending marker insertion.
type edit struct {
	offset int    // byte offset of the function's line start
	text   string // marker line, indentation included
	guard  string // expected bytes at offset, aborts on mismatch
}

// File marks every eligible function in path. Parse failures abort
// before any write; an already-instrumented file yields Count 0 and
// stays byte-identical.
func File(path string, opts Options) (Result, error) {
	f, err := inspect.ParseFile(path)
	if err != nil {
		return Result{}, err
	}

	edits, names, err := plan(f)
	if err != nil {
		return Result{}, err
	}
	if len(edits) == 0 {
		return Result{}, nil
	}

	res := Result{Count: len(edits), Functions: names, Changed: true}
	if opts.DryRun {
		return res, nil
	}

	out, err := apply(f.Src, edits)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	if opts.Backup {
		backupPath := path + ".bak"
		if err := os.WriteFile(backupPath, f.Src, mode); err != nil {
			return Result{}, fmt.Errorf("write backup: %w", err)
		}
		res.BackupPath = backupPath
	}

	if err := os.WriteFile(path, out, mode); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	return res, nil
}

// plan computes the insertions for all eligible functions, in file
// order.
func plan(f *inspect.File) ([]edit, []string, error) {
	var edits []edit
	var names []string

	decls := f.FuncDecls()
	for i, d := range f.Functions {
		if !inspect.Eligible(d) {
			continue
		}
		fn := decls[i]

		pos := f.Fset.Position(fn.Pos())
		lineStart := pos.Offset - (pos.Column - 1)
		if lineStart < 0 || lineStart > len(f.Src) {
			return nil, nil, fmt.Errorf("function %s: position out of range", d.QualifiedName())
		}

		indent := string(f.Src[lineStart:pos.Offset])
		if !isBlank(indent) {
			// Something other than whitespace precedes the func
			// keyword on its line; insert flush left.
			indent = ""
			lineStart = pos.Offset
		}

		edits = append(edits, edit{
			offset: lineStart,
			text:   marker.Line(indent),
			guard:  indent + "func",
		})
		names = append(names, d.QualifiedName())
	}
	return edits, names, nil
}

// apply splices the insertions into src, working back to front so
// earlier offsets stay valid.
func apply(src []byte, edits []edit) ([]byte, error) {
	sorted := append([]edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].offset > sorted[j].offset
	})

	out := append([]byte(nil), src...)
	for _, e := range sorted {
		if e.offset < 0 || e.offset > len(out) {
			return nil, fmt.Errorf("edit offset %d out of range", e.offset)
		}
		if !hasPrefixAt(out, e.offset, e.guard) {
			return nil, fmt.Errorf("source changed under edit at offset %d", e.offset)
		}
		suffix := append([]byte(nil), out[e.offset:]...)
		out = append(append(out[:e.offset], []byte(e.text)...), suffix...)
	}
	return out, nil
}

func hasPrefixAt(src []byte, offset int, prefix string) bool {
	if offset+len(prefix) > len(src) {
		return false
	}
	return string(src[offset:offset+len(prefix)]) == prefix
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
