// Package apperr defines the error type used for sentinel errors
// throughout respite.
package apperr

import "fmt"

// Error is a formatted-message application error. The Message may contain
// printf verbs which are filled in through Fmt.
type Error struct {
	Message string
	args    []any
}

func (e *Error) Error() string {
	if len(e.args) == 0 {
		return e.Message
	}

	return fmt.Sprintf(e.Message, e.args...)
}

// Fmt returns a copy of the error with its message verbs filled in.
// The copy unwraps to the original so errors.Is still matches.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: e.Message,
		args:    args,
	}
}

func (e *Error) Unwrap() error {
	if len(e.args) == 0 {
		return nil
	}

	return &Error{Message: e.Message}
}

// Is matches errors that share the same message template.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Message == e.Message
}
