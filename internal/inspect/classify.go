package inspect

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Eligible reports whether the function may receive the instrumentation
// marker. Pure: equal descriptors always classify equally.
func Eligible(d FunctionDescriptor) bool {
	return Reason(d) == ""
}

// Reason names the first rule disqualifying the function, or returns
// the empty string when the function is eligible.
func Reason(d FunctionDescriptor) string {
	switch {
	case d.Marked:
		return "already marked"
	case d.TestFile || isTestName(d.Name):
		return "test function"
	case d.BodyStmts == 0:
		return "empty body"
	case d.Receiver == "" && (d.Name == "main" || d.Name == "init"):
		return "entrypoint"
	case d.Generated:
		return "generated file"
	}
	return ""
}

// isTestName matches the prefixes the go test runner recognizes, plus
// the underscore style ports from other languages carry over.
func isTestName(name string) bool {
	for _, prefix := range []string{"Test", "Benchmark", "Fuzz", "Example"} {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if rest == "" {
			return true
		}
		// The runner only treats TestXxx as a test when the next rune
		// is not lower case, so Testify stays a regular function.
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLower(r) {
			return true
		}
	}
	return strings.HasPrefix(name, "test_")
}
