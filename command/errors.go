package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSubprocess is wrapped by every unresolved command failure
	ErrSubprocess = errors.New("subprocess error")

	// ErrUnknownTemplate is returned when calling a name the surface does not declare
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrNoProcedure is returned when executing a command built without a procedure
	ErrNoProcedure = errors.New("no procedure")
)

// UnhandledError reports a command failure no handler resolved
type UnhandledError struct {
	Runner     string
	Command    string
	ReturnCode int
	Stderr     string
}

// Error returns the rendered command followed by the error text
func (e *UnhandledError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, strings.TrimRight(e.Stderr, "\n"))
}

// Unwrap allows errors.Is(err, ErrSubprocess)
func (e *UnhandledError) Unwrap() error {
	return ErrSubprocess
}
