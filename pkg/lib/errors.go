package lib

import (
	"errors"

	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource with the same name already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
	// ErrPermissionDenied is returned when the operator can't act on the resource.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnknownCommand is returned when the command is not available for the callback.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMustJoinOperation is returned when the operator has no current operation.
	ErrMustJoinOperation = errors.New("must be part of a current operation")
	// ErrOperationComplete is returned when tasking a complete operation.
	ErrOperationComplete = errors.New("operation is complete")
	// ErrTransformFailure is returned when a transform step fails.
	ErrTransformFailure = errors.New("transform failure")
)

var sentinels = []struct{ internal, public error }{
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
	{model.ErrPermissionDenied, ErrPermissionDenied},
	{model.ErrUnknownCommand, ErrUnknownCommand},
	{model.ErrMustJoinOperation, ErrMustJoinOperation},
	{model.ErrOperationComplete, ErrOperationComplete},
	{model.ErrTransformFailure, ErrTransformFailure},
}

// IssueError is an issuance failure, it carries the command and params being
// issued (after any transform that already ran) so they can be fixed and retried.
type IssueError struct {
	Command string
	Params  string
	Err     error
}

func (e *IssueError) Error() string { return e.Err.Error() }
func (e *IssueError) Unwrap() error { return e.Err }

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var ierr *issue.Error
	if errors.As(err, &ierr) {
		return &IssueError{Command: ierr.Cmd, Params: ierr.Params, Err: mapSentinel(ierr.Err)}
	}
	return mapSentinel(err)
}

func mapSentinel(err error) error {
	for _, s := range sentinels {
		if errors.Is(err, s.internal) {
			return &mappedError{original: err, sentinel: s.public}
		}
	}
	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
