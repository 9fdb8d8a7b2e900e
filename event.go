package flowtrace

import (
	"encoding/json"
	"time"
)

// Kind represents the type of call event.
type Kind uint8

const (
	// KindEnter marks a function invocation.
	KindEnter Kind = iota + 1 // function entered
	// KindExit marks a normal return.
	KindExit // function returned
	// KindException marks a failure leaving the function.
	KindException // error or panic left the function
)

// String returns the wire representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindEnter:
		return "ENTER"
	case KindExit:
		return "EXIT"
	case KindException:
		return "EXCEPTION"
	default:
		return "UNKNOWN"
	}
}

// Event is a single call record. Exactly one of Args, Result and
// Exception is populated, matching the kind: Enter may carry Args,
// Exit carries Result, Exception carries Exception. DurationMicros is
// set only on Exit and Exception events.
type Event struct {
	Kind           Kind
	Timestamp      int64 // microseconds since the Unix epoch
	Module         string
	Function       string
	Args           *string
	Result         *string
	Exception      *string
	DurationMicros *int64
	Thread         string // "goroutine-<id>"
}

// NewEnter builds an Enter event. args is nil when the function takes
// no arguments worth recording.
func NewEnter(module, function string, args *string) Event {
	return Event{
		Kind:      KindEnter,
		Timestamp: time.Now().UnixMicro(),
		Module:    module,
		Function:  function,
		Args:      args,
		Thread:    threadLabel(),
	}
}

// NewExit builds an Exit event. result is nil when the call produced
// nothing to record; elapsed is the monotonic time since entry.
func NewExit(module, function string, result *string, elapsed time.Duration) Event {
	micros := elapsed.Microseconds()
	return Event{
		Kind:           KindExit,
		Timestamp:      time.Now().UnixMicro(),
		Module:         module,
		Function:       function,
		Result:         result,
		DurationMicros: &micros,
		Thread:         threadLabel(),
	}
}

// NewException builds an Exception event carrying the failure message.
func NewException(module, function, message string, elapsed time.Duration) Event {
	micros := elapsed.Microseconds()
	return Event{
		Kind:           KindException,
		Timestamp:      time.Now().UnixMicro(),
		Module:         module,
		Function:       function,
		Exception:      &message,
		DurationMicros: &micros,
		Thread:         threadLabel(),
	}
}

// encodeLine renders an event as one JSON line, newline-terminated.
// Absent optional fields are omitted from the object entirely.
func encodeLine(ev Event) []byte {
	type jsonEvent struct {
		Event          string  `json:"event"`
		Timestamp      int64   `json:"timestamp"`
		Class          string  `json:"class"`
		Method         string  `json:"method"`
		Args           *string `json:"args,omitempty"`
		Result         *string `json:"result,omitempty"`
		Exception      *string `json:"exception,omitempty"`
		DurationMillis *int64  `json:"durationMillis,omitempty"`
		DurationMicros *int64  `json:"durationMicros,omitempty"`
		Thread         string  `json:"thread"`
	}

	j := jsonEvent{
		Event:          ev.Kind.String(),
		Timestamp:      ev.Timestamp,
		Class:          ev.Module,
		Method:         ev.Function,
		Args:           ev.Args,
		Result:         ev.Result,
		Exception:      ev.Exception,
		DurationMicros: ev.DurationMicros,
		Thread:         ev.Thread,
	}
	if ev.DurationMicros != nil {
		millis := *ev.DurationMicros / 1000
		j.DurationMillis = &millis
	}

	data, _ := json.Marshal(j)
	data = append(data, '\n')
	return data
}

func strptr(s string) *string { return &s }
