// Package marker recognizes and renders the flowtrace instrumentation
// directive. The directive is a standalone comment line placed
// immediately above a function declaration:
//
//	//flowtrace:trace
//	func Transfer(from, to string, amount int) error { ... }
//
// Like other Go build directives it carries no space after the
// slashes, so gofmt leaves it untouched.
package marker

import (
	"go/ast"
	"strings"
)

// Directive is the exact marker text, without a trailing newline.
const Directive = "//flowtrace:trace"

// IsLine reports whether a single comment line is the marker.
// Trailing text after the directive is tolerated so variants like
// "//flowtrace:trace -- added 2024" still count as marked.
func IsLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == Directive {
		return true
	}
	return strings.HasPrefix(trimmed, Directive+" ")
}

// Has reports whether the doc group carries the marker.
func Has(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if IsLine(c.Text) {
			return true
		}
	}
	return false
}

// Line renders the directive with the given indentation, newline
// terminated, ready for insertion above a declaration.
func Line(indent string) string {
	return indent + Directive + "\n"
}
