package main

import (
	"fmt"
	"os"
	"strings"
)

// uiChoice is the parsed --ui flag: the progress TUI forced on, forced
// off, or following the terminal.
type uiChoice uint8

const (
	uiAuto uiChoice = iota
	uiOn
	uiOff
)

// parseUIChoice maps the --ui flag value onto a choice. Unknown values
// are usage errors.
func parseUIChoice(value string) (uiChoice, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiAuto, nil
	case "on":
		return uiOn, nil
	case "off":
		return uiOff, nil
	}
	return uiAuto, &usageError{err: fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)}
}

// active reports whether the TUI should run. Auto follows stdout.
func (c uiChoice) active() bool {
	switch c {
	case uiOn:
		return true
	case uiOff:
		return false
	}
	return isTerminal(os.Stdout)
}
