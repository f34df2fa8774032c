package model

import (
	"fmt"
	"time"
)

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	// TaskStatusSubmitted is a task waiting for its callback to pick it up.
	TaskStatusSubmitted TaskStatus = "submitted"
	// TaskStatusProcessing is a task claimed by its callback.
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusProcessed is a finished (or cleared) task.
	TaskStatusProcessed TaskStatus = "processed"
)

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusSubmitted:  {TaskStatusProcessing, TaskStatusProcessed},
	TaskStatusProcessing: {TaskStatusProcessed},
}

// CanTransitionTo returns true if the status can move to the target one.
func (s TaskStatus) CanTransitionTo(to TaskStatus) bool {
	for _, t := range taskTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Task is a command instance issued to a callback.
type Task struct {
	ID int64
	// CommandID is nil for built-in pseudo commands.
	CommandID      *int64
	Params         string
	OriginalParams string
	Status         TaskStatus
	Timestamp      time.Time
	CallbackID     int64
	OperatorID     int64
	// Comment fields are the only mutable ones once a task is processed.
	Comment           string
	CommentOperatorID *int64

	// Resolved.
	Command         string
	OperatorName    string
	CommentOperator string
	OperationID     int64
}

// Validate validates the task before creation.
func (t Task) Validate() error {
	if t.CallbackID == 0 {
		return fmt.Errorf("callback is required: %w", ErrNotValid)
	}
	if t.OperatorID == 0 {
		return fmt.Errorf("operator is required: %w", ErrNotValid)
	}
	switch t.Status {
	case TaskStatusSubmitted, TaskStatusProcessing, TaskStatusProcessed:
	default:
		return fmt.Errorf("status %q is invalid: %w", t.Status, ErrNotValid)
	}
	return nil
}

// Response is agent output for a task, append only.
type Response struct {
	ID        int64
	Response  string
	Timestamp time.Time
	TaskID    int64
}

// TaskQuery filters task listings. Zero values don't filter.
type TaskQuery struct {
	ID          int64
	CallbackID  int64
	OperationID int64
	Statuses    []TaskStatus
	// NotStatus excludes tasks in this status.
	NotStatus TaskStatus
	// Search matches params or original params as a substring.
	Search string
	// Commented only returns tasks with a comment.
	Commented bool
	// CommentSearch matches the comment as a substring.
	CommentSearch string
	// Newest orders by most recent first, default is oldest first.
	Newest bool
	Limit  int
}
