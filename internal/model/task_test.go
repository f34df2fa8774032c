package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/opsdesk/internal/model"
)

func TestTaskStatusCanTransitionTo(t *testing.T) {
	tests := map[string]struct {
		from model.TaskStatus
		to   model.TaskStatus
		exp  bool
	}{
		"Submitted tasks can be claimed":       {from: model.TaskStatusSubmitted, to: model.TaskStatusProcessing, exp: true},
		"Submitted tasks can be cleared":       {from: model.TaskStatusSubmitted, to: model.TaskStatusProcessed, exp: true},
		"Processing tasks can finish":          {from: model.TaskStatusProcessing, to: model.TaskStatusProcessed, exp: true},
		"Processing tasks can't go back":       {from: model.TaskStatusProcessing, to: model.TaskStatusSubmitted},
		"Processed tasks are final":            {from: model.TaskStatusProcessed, to: model.TaskStatusProcessing},
		"Unknown statuses can't transition":    {from: "lost", to: model.TaskStatusProcessed},
		"Tasks can't transition to themselves": {from: model.TaskStatusSubmitted, to: model.TaskStatusSubmitted},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.from.CanTransitionTo(test.to))
		})
	}
}

func TestTaskValidate(t *testing.T) {
	tests := map[string]struct {
		task   model.Task
		expErr bool
	}{
		"A valid task should not fail": {
			task: model.Task{CallbackID: 1, OperatorID: 1, Status: model.TaskStatusSubmitted},
		},

		"Missing callback should fail": {
			task:   model.Task{OperatorID: 1, Status: model.TaskStatusSubmitted},
			expErr: true,
		},

		"Missing operator should fail": {
			task:   model.Task{CallbackID: 1, Status: model.TaskStatusSubmitted},
			expErr: true,
		},

		"Unknown status should fail": {
			task:   model.Task{CallbackID: 1, OperatorID: 1, Status: "done"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.task.Validate()
			if test.expErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
