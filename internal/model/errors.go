package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrPermissionDenied is returned when the identity is not a member of the operation
	// that owns the resource, or lacks admin rights.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnknownCommand is returned when a command can't be resolved for a callback.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMustJoinOperation is returned when the operator has no current operation.
	ErrMustJoinOperation = errors.New("must be part of a current operation")
	// ErrOperationComplete is returned when tasking an operation marked as complete.
	ErrOperationComplete = errors.New("operation is complete")
	// ErrTransformFailure is returned when a transform chain step fails.
	ErrTransformFailure = errors.New("transform failure")
	// ErrFilePrep is returned when file staging for a task fails.
	ErrFilePrep = errors.New("file preparation failure")
	// ErrDerivation is returned when attack or artifact derivation for a task fails.
	ErrDerivation = errors.New("derivation failure")
	// ErrStreamFatal is returned when a notification stream can't continue.
	ErrStreamFatal = errors.New("stream fatal")
)

// TransformError is the error returned by a failed transform chain step.
type TransformError struct {
	Chain string // "command" or "load".
	Step  string // Transform name.
	Index int    // Position in the executed chain, 0 based.
	Order int    // Configured order of the step.
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s transform %q (step %d, order %d) failed: %s", e.Chain, e.Step, e.Index, e.Order, e.Err)
}

func (e *TransformError) Unwrap() []error { return []error{ErrTransformFailure, e.Err} }

// DerivationError is returned when derivation fails after the task has already been persisted.
type DerivationError struct {
	TaskID int64
	Err    error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("task %d derivation failed: %s", e.TaskID, e.Err)
}

func (e *DerivationError) Unwrap() []error { return []error{ErrDerivation, e.Err} }
