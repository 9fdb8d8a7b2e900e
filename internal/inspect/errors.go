package inspect

import (
	"fmt"
	"go/scanner"
)

// ParseError reports the syntax error that aborted processing a file.
// A file that fails to parse contributes nothing: callers abort instead
// of working with partial declarations.
type ParseError struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// newParseError extracts the first position from a go/parser error.
func newParseError(path string, err error) error {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		first := list[0]
		return &ParseError{
			Path: path,
			Line: first.Pos.Line,
			Col:  first.Pos.Column,
			Msg:  first.Msg,
		}
	}
	return &ParseError{Path: path, Msg: err.Error()}
}
