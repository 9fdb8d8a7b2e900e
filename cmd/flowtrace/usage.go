package main

import (
	"github.com/spf13/cobra"
)

// usageError marks failures caused by how the command was invoked
// rather than by the work itself. main exits with code 2 for these.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// exactArgs behaves like cobra.ExactArgs but reports the mismatch as a
// usage error.
func exactArgs(n int) cobra.PositionalArgs {
	inner := cobra.ExactArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := inner(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// maximumArgs behaves like cobra.MaximumNArgs but reports the mismatch
// as a usage error.
func maximumArgs(n int) cobra.PositionalArgs {
	inner := cobra.MaximumNArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := inner(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
