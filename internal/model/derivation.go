package model

import "time"

// Attack is a MITRE ATT&CK technique.
type Attack struct {
	ID     int64
	TNum   string
	Name   string
	OS     string
	Tactic string
}

// AttackCommand maps a technique to a command.
type AttackCommand struct {
	ID        int64
	AttackID  int64
	CommandID int64
}

// AttackTask is the per task instance of an AttackCommand mapping.
type AttackTask struct {
	ID       int64
	AttackID int64
	TaskID   int64

	// Resolved.
	TNum string
	Name string
}

// Artifact is a kind of forensic trace, e.g. "Process Create".
type Artifact struct {
	ID          int64
	Name        string
	Description string
}

// ArtifactTemplate renders the forensic trace a command leaves.
type ArtifactTemplate struct {
	ID         int64
	CommandID  int64
	ArtifactID int64
	// CommandParameterID optionally binds the template to a single parameter value.
	CommandParameterID *int64
	ArtifactString     string
	ReplaceString      string

	// Resolved.
	ParameterName string
}

// TaskArtifact is a rendered ArtifactTemplate for a task.
type TaskArtifact struct {
	ID                 int64
	TaskID             int64
	ArtifactTemplateID int64
	ArtifactInstance   string
	Timestamp          time.Time
}
