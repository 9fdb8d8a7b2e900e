// Package flowtrace records function call events as JSON lines.
//
// The agent half of the flowtrace toolkit: instrumented programs link
// against this package, and every wrapped call appends Enter, Exit or
// Exception events to the configured log file.
//
// # Lifecycle
//
// A process default tracer is installed once and torn down once:
//
//	if err := flowtrace.Start(flowtrace.DefaultConfig()); err != nil {
//		log.Fatal(err)
//	}
//	defer flowtrace.Stop()
//
// Events recorded while no default is running are silently discarded,
// so libraries can carry instrumentation unconditionally.
//
// # Wrapping calls
//
// Call helpers wrap a callable and emit the full event pair:
//
//	n, err := flowtrace.CallErr("payments", "Charge",
//		flowtrace.Args{{Name: "amount", Value: amount}},
//		func() (int, error) { return charge(amount) })
//
// A non-nil error emits Exception instead of Exit; a panic emits
// Exception and is re-raised unchanged.
//
// # Spans
//
// Spans trace regions that don't map to a single callable:
//
//	span := flowtrace.StartSpan("payments", "reconcile")
//	defer span.Close()
//	span.Set("batch", batchID)
//
// # Generated instrumentation
//
// The flowtrace command rewrites marked functions to drive a
// CallContext directly; see the Enter, Finish and Recover methods.
package flowtrace
