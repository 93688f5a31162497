package engine

import (
	"errors"
	"fmt"

	"github.com/panbanda/lexscope/pkg/lexer"
	"github.com/panbanda/lexscope/pkg/models"
)

var (
	// ErrInvalidNesting reports a construct opened where it may not appear,
	// such as a function outside a class. It abandons the current file only.
	ErrInvalidNesting = errors.New("invalid nesting")

	// ErrEmptyStack reports a scope pop with nothing open.
	ErrEmptyStack = errors.New("scope stack is empty")

	// ErrInvalidConstruct reports a kind that cannot open a scope.
	ErrInvalidConstruct = errors.New("invalid construct")
)

// NestingError describes a malformed-nesting violation.
type NestingError struct {
	Kind   models.Kind
	Name   string
	Tokens lexer.Window
	Reason string
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("%s %q: %s: %s", e.Kind, e.Name, e.Reason, e.Tokens)
}

func (e *NestingError) Unwrap() error { return ErrInvalidNesting }

// InvariantError is an engine defect. It is not expected for any input and
// aborts the run.
type InvariantError struct {
	Op   string
	Kind models.Kind
	Err  error
}

func (e *InvariantError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err may be handled by abandoning the
// current file and continuing with the next one.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	var ie *InvariantError
	return !errors.As(err, &ie)
}
