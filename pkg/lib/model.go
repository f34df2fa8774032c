package lib

import (
	"strconv"
	"time"

	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/transform"
)

// TaskStatus represents the lifecycle state of a task.
//
//	submitted -> processing -> processed
//
// Cleared tasks go from submitted to processed directly.
type TaskStatus string

const (
	// TaskStatusSubmitted is a task waiting for its callback.
	TaskStatusSubmitted TaskStatus = "submitted"
	// TaskStatusProcessing is a task claimed by its callback.
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusProcessed is a finished or cleared task.
	TaskStatusProcessed TaskStatus = "processed"
)

// Task is a command issued to a callback.
type Task struct {
	ID         int64
	CallbackID int64
	// Command is empty for built-in pseudo commands like tasks and clear.
	Command        string
	Params         string
	OriginalParams string
	Status         TaskStatus
	Operator       string
	Comment        string
	// CommentOperator is who set the comment, empty without comment.
	CommentOperator string
	Timestamp       time.Time
}

// Response is an output an agent posted for a task.
type Response struct {
	ID        int64
	TaskID    int64
	Response  string
	Timestamp time.Time
}

// TaskWithResponses is a task with every response it got, oldest first.
type TaskWithResponses struct {
	Task      Task
	Responses []Response
}

// IssueTaskOpts are the options to issue a task.
type IssueTaskOpts struct {
	// Operator is the username of the operator issuing the task.
	Operator   string
	CallbackID int64
	Command    string
	Params     string
	// Toggles turns configured command transforms on or off by order. Missing
	// orders are on.
	Toggles map[int]bool
	// Attachments are file contents keyed by the params key they are uploaded for.
	Attachments map[string]Attachment
}

// Attachment is a file uploaded with a task.
type Attachment struct {
	Filename string
	Data     []byte
}

// TestResult is the outcome of a test issuance.
type TestResult struct {
	Command string
	Params  string
	Steps   []TransformStep
}

// TransformStep is the output of a command transform, the first step is the
// initial params.
type TransformStep struct {
	Order int
	Name  string
	// Label is "<order> - <name>".
	Label string
	Value any
}

// ListTasksOpts are the options to list tasks.
type ListTasksOpts struct {
	Operator string
	// CallbackID scopes the list to a callback, otherwise the operator current
	// operation is listed.
	CallbackID    int64
	NotCompleted  bool
	Search        string
	Commented     bool
	CommentSearch string
}

// ClearSelector selects the tasks to clear.
type ClearSelector string

const (
	// ClearAll clears every submitted task of the callback.
	ClearAll ClearSelector = "all"
	// ClearLast clears the last submitted task of the callback.
	ClearLast ClearSelector = ""
)

// ClearTaskID selects a single task to clear.
func ClearTaskID(id int64) ClearSelector {
	return ClearSelector(strconv.FormatInt(id, 10))
}

// AgentMessage is what an agent receives on a next task poll.
type AgentMessage struct {
	// Task is nil when the callback has nothing pending.
	Task *Task
	// Body is the raw message, encrypted when the callback has a cipher configured.
	Body      []byte
	Encrypted bool
}

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:              t.ID,
		CallbackID:      t.CallbackID,
		Command:         t.Command,
		Params:          t.Params,
		OriginalParams:  t.OriginalParams,
		Status:          TaskStatus(t.Status),
		Operator:        t.OperatorName,
		Comment:         t.Comment,
		CommentOperator: t.CommentOperator,
		Timestamp:       t.Timestamp,
	}
}

func fromInternalTaskList(ts []model.Task) []Task {
	result := make([]Task, len(ts))
	for i, t := range ts {
		result[i] = fromInternalTask(t)
	}
	return result
}

func fromInternalResponse(r model.Response) Response {
	return Response{ID: r.ID, TaskID: r.TaskID, Response: r.Response, Timestamp: r.Timestamp}
}

func fromInternalTrace(trace transform.Trace) []TransformStep {
	steps := make([]TransformStep, len(trace))
	for i, s := range trace {
		steps[i] = TransformStep{Order: s.Order, Name: s.Name, Label: s.Label(), Value: s.Value}
	}
	return steps
}
