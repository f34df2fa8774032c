package model

import (
	"fmt"
	"time"
)

// Operator is a human user of the server.
type Operator struct {
	ID                 int64
	Username           string
	Admin              bool
	Active             bool
	CurrentOperationID *int64
	CreationTime       time.Time
	LastLogin          *time.Time
}

// Validate validates the operator.
func (o Operator) Validate() error {
	if o.Username == "" {
		return fmt.Errorf("username is required: %w", ErrNotValid)
	}
	return nil
}

// Operation is an isolated workspace that scopes callbacks, tasks and everything derived from them.
type Operation struct {
	ID       int64
	Name     string
	AdminID  int64
	Complete bool
	AESPSK   string
}

// Validate validates the operation.
func (o Operation) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if o.AdminID == 0 {
		return fmt.Errorf("admin is required: %w", ErrNotValid)
	}
	return nil
}

// Identity is the authenticated operator making a request.
type Identity struct {
	OperatorID         int64
	Username           string
	Admin              bool
	CurrentOperation   string
	CurrentOperationID int64
	// Operations are the names of the operations the operator is a member of.
	Operations []string
}

// MemberOf returns true if the identity belongs to the named operation.
func (i Identity) MemberOf(operation string) bool {
	for _, op := range i.Operations {
		if op == operation {
			return true
		}
	}
	return false
}
