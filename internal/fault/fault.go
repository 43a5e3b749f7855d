// Package fault defines the error classes every core operation reports.
// Callers classify with errors.Is against the four sentinels; the HTTP
// layer maps them to status codes.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input, detected before any
	// write is attempted.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced record, transaction, vendor or bank
	// account that does not exist in the organization's scope.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a status or quantity precondition that no longer
	// held at commit time, including lost optimistic-concurrency races.
	// Retrying is the caller's responsibility.
	ErrConflict = errors.New("state conflict")

	// ErrBusinessRule marks an operation the current state forbids, such as
	// editing a sale record or overpaying a transaction.
	ErrBusinessRule = errors.New("business rule violation")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrValidation, args)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrNotFound, args)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrConflict, args)...)
}

func BusinessRulef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrBusinessRule, args)...)
}

func prepend(err error, args []any) []any {
	out := make([]any, 0, len(args)+1)
	out = append(out, err)

	return append(out, args...)
}
