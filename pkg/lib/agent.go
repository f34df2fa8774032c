package lib

import (
	"context"

	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/app/respond"
)

// NextTask checks in a callback and claims its oldest submitted task.
//
// Returns [ErrNotFound] if the callback does not exist or its operation is complete.
func (c *Client) NextTask(ctx context.Context, callbackID int64) (*AgentMessage, error) {
	res, err := c.nextTask.Run(ctx, nexttask.Request{CallbackID: callbackID})
	if err != nil {
		return nil, mapError(err)
	}

	msg := &AgentMessage{Body: res.Body, Encrypted: res.Encrypted}
	if res.Task != nil {
		t := fromInternalTask(*res.Task)
		msg.Task = &t
	}
	return msg, nil
}

// Respond stores an agent response and marks the task processed.
func (c *Client) Respond(ctx context.Context, taskID int64, response string) (*Response, error) {
	r, err := c.respond.Run(ctx, respond.Request{TaskID: taskID, Response: response})
	if err != nil {
		return nil, mapError(err)
	}
	out := fromInternalResponse(*r)
	return &out, nil
}
