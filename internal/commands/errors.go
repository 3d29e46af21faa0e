package commands

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// tagError wraps err with a category and text code unless it already carries
// go-errors metadata from a lower layer.
func tagError(err error, category goerrors.Category, msg, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, msg).WithTextCode(code)
}

// WrapValidationError tags message validation failures.
func WrapValidationError(err error) error {
	return tagError(err, goerrors.CategoryValidation, "command validation failed", commandValidationCode)
}

// WrapContextError tags context cancellation and deadline errors.
func WrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return tagError(err, goerrors.CategoryCommand, "command execution cancelled", commandContextCanceled)
	case context.DeadlineExceeded:
		return tagError(err, goerrors.CategoryCommand, "command execution deadline exceeded", commandContextTimeout)
	default:
		return tagError(err, goerrors.CategoryCommand, "command context error", commandContextErrorCode)
	}
}

// WrapExecuteError tags failures returned by the wrapped command function.
func WrapExecuteError(err error) error {
	return tagError(err, goerrors.CategoryCommand, "command execution failed", commandExecuteFailed)
}
