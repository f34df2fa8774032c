package model

import (
	"fmt"
	"time"
)

// CommandTransform is a step of the command chain for a command in an operation.
type CommandTransform struct {
	ID          int64
	CommandID   int64
	OperationID int64
	OperatorID  int64
	Name        string
	Order       int
	Parameter   string
	Active      bool
	Timestamp   time.Time
}

// Validate validates the command transform.
func (c CommandTransform) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if c.Order < 1 {
		return fmt.Errorf("order must be greater than 0: %w", ErrNotValid)
	}
	return nil
}

// TransformPhase is the payload type phase a Transform belongs to.
type TransformPhase string

const (
	TransformPhaseLoad   TransformPhase = "load"
	TransformPhaseCreate TransformPhase = "create"
)

// Transform is a step of a payload type phase chain.
type Transform struct {
	ID            int64
	PayloadTypeID int64
	Phase         TransformPhase
	OperatorID    int64
	Name          string
	Order         int
	Parameter     string
	Active        bool
	Timestamp     time.Time
}

// Validate validates the transform.
func (t Transform) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if t.Order < 1 {
		return fmt.Errorf("order must be greater than 0: %w", ErrNotValid)
	}
	if t.Phase != TransformPhaseLoad && t.Phase != TransformPhaseCreate {
		return fmt.Errorf("phase %q is invalid: %w", t.Phase, ErrNotValid)
	}
	return nil
}
