package flowtrace

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink appends event lines to a writer, optionally mirroring each line
// to a second writer. It is safe for concurrent use: lines are written
// whole, in arrival order.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	mirror io.Writer
}

// NewSink wraps the given writers. mirror may be nil.
func NewSink(w, mirror io.Writer) *Sink {
	return &Sink{w: w, mirror: mirror}
}

// OpenSink opens the configured event log in append mode and wires the
// stderr mirror when Console is set.
func OpenSink(cfg Config) (*Sink, error) {
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	var mirror io.Writer
	if cfg.Console {
		mirror = os.Stderr
	}
	return NewSink(f, mirror), nil
}

// Write appends one event line.
func (s *Sink) Write(ev Event) {
	line := encodeLine(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Best-effort writes. Tracing must never break the host program,
	// so write errors are swallowed.
	_, _ = s.w.Write(line)
	if s.mirror != nil {
		_, _ = s.mirror.Write(line)
	}
}

// Flush forces buffered data out when the underlying writer supports it.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch w := s.w.(type) {
	case *os.File:
		return w.Sync()
	case interface{ Flush() error }:
		return w.Flush()
	}
	return nil
}

// Close flushes and closes the underlying writer if it is a closer.
func (s *Sink) Close() error {
	flushErr := s.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()
	if closer, ok := s.w.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return flushErr
}
