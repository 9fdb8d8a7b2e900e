// Package scan walks a Go source tree and aggregates instrumentation
// statistics. The walk is single-threaded and deterministic: files are
// visited in lexical order, and the first parse failure aborts the
// whole scan with no partial result.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"flowtrace/internal/filter"
	"flowtrace/internal/inspect"
)

// ErrPathNotFound reports a missing scan root.
var ErrPathNotFound = errors.New("path not found")

// Stats aggregates tree-wide counters. Aggregation is pure summation;
// no per-file breakdown is retained.
type Stats struct {
	TotalFiles              int `json:"total_files"`
	TotalFunctions          int `json:"total_functions"`
	InstrumentableFunctions int `json:"instrumentable_functions"`
	InstrumentedFunctions   int `json:"instrumented_functions"`
	TotalLines              int `json:"total_lines"`
	AsyncFunctions          int `json:"async_functions"`
	SyncFunctions           int `json:"sync_functions"`
	PublicFunctions         int `json:"public_functions"`
	PrivateFunctions        int `json:"private_functions"`
}

// Coverage returns the instrumented share of all functions in percent.
func (s Stats) Coverage() float64 {
	if s.TotalFunctions == 0 {
		return 0
	}
	return float64(s.InstrumentedFunctions) / float64(s.TotalFunctions) * 100
}

// Observe folds one parsed file into the counters.
func (s *Stats) Observe(f *inspect.File) {
	s.TotalFiles++
	s.TotalLines += f.Lines
	for _, fn := range f.Functions {
		s.TotalFunctions++
		if fn.Marked {
			s.InstrumentedFunctions++
		}
		if inspect.Eligible(fn) {
			s.InstrumentableFunctions++
		}
		if fn.LaunchesGo {
			s.AsyncFunctions++
		} else {
			s.SyncFunctions++
		}
		if fn.Exported {
			s.PublicFunctions++
		} else {
			s.PrivateFunctions++
		}
	}
}

// Scanner configures a tree scan.
type Scanner struct {
	// Filter restricts walked files; nil applies the default include.
	Filter *filter.Set

	// OnFile, when set, observes every accepted file path before it is
	// parsed. Used for progress reporting; it must not modify files.
	OnFile func(path string)
}

// New builds a scanner with the given filter.
func New(set *filter.Set) *Scanner {
	return &Scanner{Filter: set}
}

// Files lists the source files a scan of root would visit, in walk
// order. A root naming a single file is returned as-is, bypassing the
// filter. The walk only stats directory entries, so callers can use it
// for cheap freshness checks without parsing anything.
func Files(root string, set *filter.Set) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !set.Match(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Scan aggregates statistics for the file or tree rooted at root.
func (sc *Scanner) Scan(root string) (Stats, error) {
	files, err := Files(root, sc.Filter)
	if err != nil {
		return Stats{}, err
	}
	return sc.ScanFiles(files)
}

// ScanFiles aggregates statistics over an explicit file list, as
// produced by Files. The first parse failure aborts the whole scan
// with no partial result.
func (sc *Scanner) ScanFiles(paths []string) (Stats, error) {
	var stats Stats
	for _, path := range paths {
		f, err := sc.parseOne(path)
		if err != nil {
			return Stats{}, err
		}
		stats.Observe(f)
	}
	return stats, nil
}

func (sc *Scanner) parseOne(path string) (*inspect.File, error) {
	if sc.OnFile != nil {
		sc.OnFile(path)
	}
	return inspect.ParseFile(path)
}

// skipDir prunes vendored trees, fixtures and hidden directories.
func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
