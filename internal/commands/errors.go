package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to wrapped command errors so hosts can branch on the
// failure class without string matching.
const (
	CodeValidationFailed = "COMMAND_VALIDATION_FAILED"
	CodeCanceled         = "COMMAND_CONTEXT_CANCELED"
	CodeTimedOut         = "COMMAND_CONTEXT_TIMEOUT"
	CodeContextFailed    = "COMMAND_CONTEXT_ERROR"
	CodeExecutionFailed  = "COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	return normalize(err, goerrors.CategoryValidation, "command validation failed", CodeValidationFailed)
}

func wrapExecuteError(err error) error {
	return normalize(err, goerrors.CategoryCommand, "command execution failed", CodeExecutionFailed)
}

func wrapContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return normalize(err, goerrors.CategoryCommand, "command execution cancelled", CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return normalize(err, goerrors.CategoryCommand, "command execution deadline exceeded", CodeTimedOut)
	default:
		return normalize(err, goerrors.CategoryCommand, "command context error", CodeContextFailed)
	}
}

// normalize wraps err once. Errors already wrapped upstream keep their
// original category and text code.
func normalize(err error, category goerrors.Category, msg, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, msg).WithTextCode(code)
}
