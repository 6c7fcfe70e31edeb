package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes recorded on wrapped command failures.
const (
	codeMessageRejected = "COMMAND_MESSAGE_REJECTED"
	codeRunCancelled    = "COMMAND_RUN_CANCELLED"
	codeRunTimedOut     = "COMMAND_RUN_TIMED_OUT"
	codeRunInterrupted  = "COMMAND_RUN_INTERRUPTED"
	codeRunFailed       = "COMMAND_RUN_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message failed validation").
		WithTextCode(codeMessageRejected)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	message, code := "command run interrupted", codeRunInterrupted
	switch {
	case errors.Is(err, context.Canceled):
		message, code = "command run cancelled", codeRunCancelled
	case errors.Is(err, context.DeadlineExceeded):
		message, code = "command run timed out", codeRunTimedOut
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command run failed").
		WithTextCode(codeRunFailed)
}
