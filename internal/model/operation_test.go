package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/opsdesk/internal/model"
)

func TestIdentityMemberOf(t *testing.T) {
	id := model.Identity{Username: "alice", Operations: []string{"red", "blue"}}

	assert.True(t, id.MemberOf("red"))
	assert.True(t, id.MemberOf("blue"))
	assert.False(t, id.MemberOf("green"))
	assert.False(t, model.Identity{}.MemberOf(""))
}

func TestOperationValidate(t *testing.T) {
	tests := map[string]struct {
		operation model.Operation
		expErr    bool
	}{
		"A valid operation should not fail": {operation: model.Operation{Name: "red", AdminID: 1}},
		"Missing name should fail":          {operation: model.Operation{AdminID: 1}, expErr: true},
		"Missing admin should fail":         {operation: model.Operation{Name: "red"}, expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.operation.Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
