package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/opsdesk/internal/model"
)

func TestTransformValidate(t *testing.T) {
	tests := map[string]struct {
		transform model.Transform
		expErr    bool
	}{
		"A valid load transform should not fail": {
			transform: model.Transform{Name: "concat", Order: 1, Phase: model.TransformPhaseLoad},
		},
		"A valid create transform should not fail": {
			transform: model.Transform{Name: "rename", Order: 2, Phase: model.TransformPhaseCreate},
		},
		"Missing name should fail": {
			transform: model.Transform{Order: 1, Phase: model.TransformPhaseLoad},
			expErr:    true,
		},
		"Order zero should fail": {
			transform: model.Transform{Name: "concat", Phase: model.TransformPhaseLoad},
			expErr:    true,
		},
		"Unknown phase should fail": {
			transform: model.Transform{Name: "concat", Order: 1, Phase: "build"},
			expErr:    true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.transform.Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandParameterValidate(t *testing.T) {
	assert.NoError(t, model.CommandParameter{Name: "path", Type: model.ParameterTypeString}.Validate())
	assert.ErrorIs(t, model.CommandParameter{Name: "path", Type: "Blob"}.Validate(), model.ErrNotValid)
	assert.ErrorIs(t, model.CommandParameter{Type: model.ParameterTypeFile}.Validate(), model.ErrNotValid)
}
