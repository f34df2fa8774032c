package lib

import (
	"context"

	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/app/tasks"
)

func (c *Client) runIssue(ctx context.Context, opts IssueTaskOpts, test bool) (*issue.Result, error) {
	id, err := c.identity(ctx, opts.Operator)
	if err != nil {
		return nil, err
	}

	var attachments map[string]issue.Attachment
	if len(opts.Attachments) > 0 {
		attachments = make(map[string]issue.Attachment, len(opts.Attachments))
		for k, a := range opts.Attachments {
			attachments[k] = issue.Attachment{Filename: a.Filename, Data: a.Data}
		}
	}

	res, err := c.issue.Run(ctx, issue.Request{
		Identity:    id,
		CallbackID:  opts.CallbackID,
		Command:     opts.Command,
		Params:      opts.Params,
		Toggles:     opts.Toggles,
		Attachments: attachments,
		Test:        test,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// IssueTask runs the command transforms and creates the task.
//
// Failures are [*IssueError] values. Returns [ErrUnknownCommand] if the callback
// payload type doesn't have the command or [ErrPermissionDenied] if the operator
// is not a member of the callback operation.
func (c *Client) IssueTask(ctx context.Context, opts IssueTaskOpts) (*Task, error) {
	res, err := c.runIssue(ctx, opts, false)
	if err != nil {
		return nil, err
	}
	t := fromInternalTask(*res.Task)
	return &t, nil
}

// TestTask runs the command transforms like [Client.IssueTask] without creating
// the task.
func (c *Client) TestTask(ctx context.Context, opts IssueTaskOpts) (*TestResult, error) {
	res, err := c.runIssue(ctx, opts, true)
	if err != nil {
		return nil, err
	}
	return &TestResult{Command: res.Command, Params: res.Params, Steps: fromInternalTrace(res.Trace)}, nil
}

// ClearTasks removes submitted tasks of a callback before its agent picks them
// and returns them as they were.
func (c *Client) ClearTasks(ctx context.Context, operator string, callbackID int64, selector ClearSelector) ([]Task, error) {
	id, err := c.identity(ctx, operator)
	if err != nil {
		return nil, err
	}

	cleared, err := c.clear.Run(ctx, clear.Request{Identity: id, CallbackID: callbackID, Selector: string(selector)})
	if err != nil {
		return nil, mapError(err)
	}
	return fromInternalTaskList(cleared), nil
}

// ListTasks returns the tasks matching the options, oldest first.
func (c *Client) ListTasks(ctx context.Context, opts ListTasksOpts) ([]Task, error) {
	id, err := c.identity(ctx, opts.Operator)
	if err != nil {
		return nil, err
	}

	ts, err := c.tasks.List(ctx, tasks.ListRequest{
		Identity:      id,
		CallbackID:    opts.CallbackID,
		NotCompleted:  opts.NotCompleted,
		Search:        opts.Search,
		Commented:     opts.Commented,
		CommentSearch: opts.CommentSearch,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return fromInternalTaskList(ts), nil
}

// GetTask returns a task with its responses.
func (c *Client) GetTask(ctx context.Context, operator string, taskID int64) (*TaskWithResponses, error) {
	id, err := c.identity(ctx, operator)
	if err != nil {
		return nil, err
	}

	res, err := c.tasks.Get(ctx, tasks.GetRequest{Identity: id, TaskID: taskID})
	if err != nil {
		return nil, mapError(err)
	}

	out := &TaskWithResponses{Task: fromInternalTask(res.Task), Responses: make([]Response, 0, len(res.Responses))}
	for _, r := range res.Responses {
		out.Responses = append(out.Responses, fromInternalResponse(r))
	}
	return out, nil
}

// CommentTask sets the comment of a task, an empty comment removes it.
func (c *Client) CommentTask(ctx context.Context, operator string, taskID int64, comment string) (*Task, error) {
	id, err := c.identity(ctx, operator)
	if err != nil {
		return nil, err
	}

	t, err := c.tasks.Comment(ctx, tasks.CommentRequest{Identity: id, TaskID: taskID, Comment: comment})
	if err != nil {
		return nil, mapError(err)
	}
	out := fromInternalTask(*t)
	return &out, nil
}
