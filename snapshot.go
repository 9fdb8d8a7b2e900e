package flowtrace

import (
	"fmt"
	"strings"
)

// noValue is the result marker for calls that produce nothing.
const noValue = "()"

// Arg is one named argument captured at function entry.
type Arg struct {
	Name  string
	Value any
}

// Args is an ordered argument list. Snapshot order follows declaration
// order, unlike a map.
type Args []Arg

// snapshot renders the list as "{a=1, b=x}" with each value truncated
// to limit. An empty list renders as the empty string.
func (a Args) snapshot(limit int) string {
	if len(a) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, arg := range a {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.Name)
		sb.WriteByte('=')
		sb.WriteString(snapshotValue(arg.Value, limit))
	}
	sb.WriteByte('}')
	return sb.String()
}

// snapshotValue renders one value, truncated to limit.
func snapshotValue(v any, limit int) string {
	return truncate(fmt.Sprintf("%v", v), limit)
}

// truncate cuts s at limit bytes and appends "...". A non-positive
// limit disables the bound.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
