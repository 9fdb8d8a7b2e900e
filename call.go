package flowtrace

import (
	"fmt"
	"time"
)

// CallContext tracks one wrapped invocation from entry to its terminal
// event. Exactly one terminal event is emitted per context; later
// terminal calls are no-ops. Generated instrumentation drives it as:
//
//	__ft_ctx := flowtrace.Enter("pkg", "Fn", flowtrace.Args{{Name: "a", Value: a}})
//	defer func() { __ft_ctx.Finish(ret0, err) }()
//	defer __ft_ctx.Recover()
//
// The Recover defer is registered last so it runs first while a panic
// unwinds; the Finish defer then finds the context terminated and does
// nothing.
type CallContext struct {
	module   string
	function string
	started  time.Time
	done     bool
}

// Enter emits the Enter event and opens a call context. Argument
// values are snapshotted now, not when the call returns.
func Enter(module, function string, args Args) *CallContext {
	var argp *string
	if snap := args.snapshot(maxArgLen()); snap != "" {
		argp = &snap
	}
	LogEvent(NewEnter(module, function, argp))
	return &CallContext{module: module, function: function, started: time.Now()}
}

// Exit emits the Exit terminal with a snapshot of result.
func (c *CallContext) Exit(result any) {
	if c == nil || c.done {
		return
	}
	c.done = true
	snap := snapshotValue(result, maxArgLen())
	LogEvent(NewExit(c.module, c.function, strptr(snap), time.Since(c.started)))
}

// ExitVoid emits the Exit terminal with the no-value marker.
func (c *CallContext) ExitVoid() {
	if c == nil || c.done {
		return
	}
	c.done = true
	LogEvent(NewExit(c.module, c.function, strptr(noValue), time.Since(c.started)))
}

// Fail emits the Exception terminal with the error text. A nil error
// is ignored.
func (c *CallContext) Fail(err error) {
	if err == nil {
		return
	}
	c.FailMessage(err.Error())
}

// FailMessage emits the Exception terminal with an explicit message.
func (c *CallContext) FailMessage(msg string) {
	if c == nil || c.done {
		return
	}
	c.done = true
	LogEvent(NewException(c.module, c.function, msg, time.Since(c.started)))
}

// Finish branches on the trailing error: a non-nil error emits
// Exception, otherwise Exit with a snapshot of result. An untyped nil
// result emits the no-value marker. Used by generated code.
func (c *CallContext) Finish(result any, err error) {
	if err != nil {
		c.Fail(err)
		return
	}
	if result == nil {
		c.ExitVoid()
		return
	}
	c.Exit(result)
}

// Recover terminates the context with an Exception built from the
// in-flight panic and re-raises the identical value. Must be deferred
// directly:
//
//	defer __ft_ctx.Recover()
//
// Without a panic it does nothing.
func (c *CallContext) Recover() {
	r := recover()
	if r == nil {
		return
	}
	c.FailMessage(panicMessage(r))
	panic(r)
}

// panicMessage renders a recovered panic value.
func panicMessage(r any) string {
	var s string
	switch v := r.(type) {
	case error:
		s = v.Error()
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return "unknown panic"
	}
	return s
}

// Call runs fn under tracing. The Exit event carries the no-value
// marker.
func Call(module, function string, args Args, fn func()) {
	c := Enter(module, function, args)
	defer c.Recover()
	fn()
	c.ExitVoid()
}

// Call1 runs fn under tracing and records a snapshot of its result.
func Call1[T any](module, function string, args Args, fn func() T) T {
	c := Enter(module, function, args)
	defer c.Recover()
	v := fn()
	c.Exit(v)
	return v
}

// Do runs fn under tracing: a non-nil error emits Exception, success
// emits Exit with the no-value marker.
func Do(module, function string, args Args, fn func() error) error {
	c := Enter(module, function, args)
	defer c.Recover()
	if err := fn(); err != nil {
		c.Fail(err)
		return err
	}
	c.ExitVoid()
	return nil
}

// CallErr runs fn under tracing: a non-nil error emits Exception
// (never Exit), success emits Exit with a snapshot of the value.
func CallErr[T any](module, function string, args Args, fn func() (T, error)) (T, error) {
	c := Enter(module, function, args)
	defer c.Recover()
	v, err := fn()
	if err != nil {
		c.Fail(err)
		return v, err
	}
	c.Exit(v)
	return v, err
}
