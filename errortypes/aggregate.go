package errortypes

import (
	"fmt"
	"strings"
)

// AggregateErrors groups every problem found while validating one document,
// so a config load can report all of them at once.
type AggregateErrors struct {
	Message string
	Errors  []error
}

func NewAggregateErrors(msg string, errs []error) AggregateErrors {
	return AggregateErrors{
		Message: msg,
		Errors:  errs,
	}
}

// Error lists the errors one per line, numbered from 1. An empty aggregate is "".
func (e AggregateErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	var b strings.Builder
	if len(e.Errors) == 1 {
		fmt.Fprintf(&b, "%s (1 error):\n", e.Message)
	} else {
		fmt.Fprintf(&b, "%s (%d errors):\n", e.Message, len(e.Errors))
	}
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d: %v\n", i+1, err)
	}
	return b.String()
}

// Unwrap exposes the aggregated errors to errors.Is and errors.As.
func (e AggregateErrors) Unwrap() []error {
	return e.Errors
}
