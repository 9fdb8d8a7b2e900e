package flowtrace

import (
	"fmt"
	"time"
)

// Span traces a manually delimited region with the same event
// vocabulary as wrapped calls. A Span is not safe for concurrent use.
type Span struct {
	module   string
	function string
	started  time.Time
	tags     map[string]string
	failed   bool
	message  string
	done     bool
}

// StartSpan emits an Enter event and returns the open span.
func StartSpan(module, function string) *Span {
	LogEvent(NewEnter(module, function, nil))
	return &Span{
		module:   module,
		function: function,
		started:  time.Now(),
	}
}

// Set records a tag. Tags are rendered into the Exit result snapshot;
// values are truncated at recording time.
func (s *Span) Set(key string, value any) {
	if s == nil || s.done {
		return
	}
	if s.tags == nil {
		s.tags = make(map[string]string)
	}
	s.tags[key] = snapshotValue(value, maxArgLen())
}

// Fail marks the span failed. The terminal event becomes an Exception
// carrying the error text. A nil error is ignored.
func (s *Span) Fail(err error) {
	if err == nil {
		return
	}
	s.FailMessage(err.Error())
}

// FailMessage marks the span failed with an explicit message.
func (s *Span) FailMessage(msg string) {
	if s == nil || s.done {
		return
	}
	s.failed = true
	s.message = msg
}

// DurationMicros reports the time elapsed since the span started, in
// microseconds. Usable at any point of the span's life.
func (s *Span) DurationMicros() int64 {
	if s == nil {
		return 0
	}
	return time.Since(s.started).Microseconds()
}

// End emits the terminal event: Exception when the span was marked
// failed, otherwise Exit with a snapshot of the tag map (or the
// no-value marker when no tags were set). Only the first End or Close
// emits; later calls are no-ops.
func (s *Span) End() {
	if s == nil || s.done {
		return
	}
	s.finish()
}

// Close is the deferred companion of StartSpan:
//
//	span := flowtrace.StartSpan("pkg", "op")
//	defer span.Close()
//
// When the span already ended, Close does nothing. When the goroutine
// is unwinding from a panic, Close suppresses the terminal event and
// re-raises, leaving the fault to whatever wrapper owns it. Close must
// be deferred directly for the panic detection to work.
func (s *Span) Close() {
	if s == nil || s.done {
		return
	}
	if r := recover(); r != nil {
		s.done = true
		panic(r)
	}
	s.finish()
}

func (s *Span) finish() {
	s.done = true
	elapsed := time.Since(s.started)
	if s.failed {
		LogEvent(NewException(s.module, s.function, s.message, elapsed))
		return
	}
	result := noValue
	if len(s.tags) > 0 {
		// fmt sorts map keys, so the snapshot is deterministic.
		result = truncate(fmt.Sprintf("%v", s.tags), maxArgLen())
	}
	LogEvent(NewExit(s.module, s.function, strptr(result), elapsed))
}
