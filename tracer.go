package flowtrace

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrAlreadyStarted is returned by Start when a process tracer is
// already running. The running tracer keeps its original configuration.
var ErrAlreadyStarted = errors.New("flowtrace: tracer already started")

// Tracer owns an event sink and records call events. A Tracer is safe
// for concurrent use.
type Tracer struct {
	cfg  Config
	sink *Sink
}

// New opens the configured sink and returns a running tracer.
func New(cfg Config) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sink, err := OpenSink(cfg)
	if err != nil {
		return nil, err
	}
	return &Tracer{cfg: cfg, sink: sink}, nil
}

// NewWithSink wires a tracer to an existing sink. Used by tests and
// callers that manage the output themselves.
func NewWithSink(cfg Config, sink *Sink) *Tracer {
	return &Tracer{cfg: cfg, sink: sink}
}

// Log records one event. Logging on a nil tracer is a no-op.
func (t *Tracer) Log(ev Event) {
	if t == nil || t.sink == nil {
		return
	}
	t.sink.Write(ev)
}

// Flush forces pending data to the log.
func (t *Tracer) Flush() error {
	if t == nil || t.sink == nil {
		return nil
	}
	return t.sink.Flush()
}

// Close flushes and releases the sink.
func (t *Tracer) Close() error {
	if t == nil || t.sink == nil {
		return nil
	}
	return t.sink.Close()
}

// Enabled reports whether events reach a sink.
func (t *Tracer) Enabled() bool {
	return t != nil && t.sink != nil
}

// Config returns a copy of the tracer configuration.
func (t *Tracer) Config() Config {
	if t == nil {
		return Config{}
	}
	return t.cfg
}

// The process default. All access goes through Start, Stop, Default
// and LogEvent; there is no other path to it.
var (
	defaultMu sync.Mutex
	std       atomic.Pointer[Tracer]
)

// Start installs the process default tracer. A second Start returns
// ErrAlreadyStarted and leaves the running tracer untouched.
func Start(cfg Config) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if std.Load() != nil {
		return ErrAlreadyStarted
	}
	t, err := New(cfg)
	if err != nil {
		return err
	}
	std.Store(t)
	return nil
}

// Stop flushes, closes and clears the process default. Stopping when
// nothing is running is a no-op.
func Stop() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	t := std.Swap(nil)
	if t == nil {
		return nil
	}
	return t.Close()
}

// Active reports whether a process default tracer is running.
func Active() bool {
	return std.Load() != nil
}

// Default returns the process default tracer, or nil when not started.
func Default() *Tracer {
	return std.Load()
}

// LogEvent records an event on the process default. Events logged
// before Start or after Stop are silently discarded.
func LogEvent(ev Event) {
	std.Load().Log(ev)
}

// maxArgLen returns the snapshot bound of the process default tracer,
// or the stock bound when none is running.
func maxArgLen() int {
	if t := std.Load(); t != nil {
		return t.cfg.MaxArgLength
	}
	return DefaultMaxArgLength
}
