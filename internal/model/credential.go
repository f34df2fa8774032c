package model

import "time"

// Credential is unique by (User, Domain, Credential, OperationID).
type Credential struct {
	ID          int64
	Type        string
	TaskID      *int64
	User        string
	Domain      string
	Credential  string
	OperationID int64
	OperatorID  int64
	Description string
	Timestamp   time.Time
}
