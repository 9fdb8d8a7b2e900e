// Package prof drives the profilers behind the CLI's --cpu-profile and
// --mem-profile flags.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Session owns the profilers of one command invocation. A nil or
// already-ended session is inert, so commands can thread it
// unconditionally.
type Session struct {
	cpu      *os.File
	heapPath string
	ended    bool
}

// Begin starts CPU profiling into cpuPath and schedules a heap snapshot
// for End. An empty path switches the corresponding profiler off.
func Begin(cpuPath, heapPath string) (*Session, error) {
	s := &Session{heapPath: heapPath}
	if cpuPath == "" {
		return s, nil
	}
	f, err := os.Create(cpuPath)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	s.cpu = f
	return s, nil
}

// End stops the CPU profiler and writes the heap snapshot. Only the
// first call does anything.
func (s *Session) End() error {
	if s == nil || s.ended {
		return nil
	}
	s.ended = true

	if s.cpu != nil {
		pprof.StopCPUProfile()
		if err := s.cpu.Close(); err != nil {
			return fmt.Errorf("close cpu profile: %w", err)
		}
		s.cpu = nil
	}

	if s.heapPath == "" {
		return nil
	}
	f, err := os.Create(s.heapPath)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	// Collect first so the snapshot reflects live objects only.
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write heap profile: %w", err)
	}
	return f.Close()
}
