package model

import (
	"fmt"
	"time"
)

// PayloadType is an agent flavour, commands are defined per payload type.
type PayloadType struct {
	ID            int64
	Name          string
	OperatorID    int64
	FileExtension string
	Wrapper       bool
	CreationTime  time.Time
}

// C2Profile is a transport profile agents talk over.
type C2Profile struct {
	ID           int64
	Name         string
	Description  string
	OperatorID   int64
	CreationTime time.Time
}

// PayloadTypeC2Profile says a payload type can talk over a C2 profile.
type PayloadTypeC2Profile struct {
	ID              int64
	PayloadTypeID   int64
	PayloadTypeName string
	C2ProfileID     int64
	C2ProfileName   string
	CreationTime    time.Time
}

// Command is a capability of a payload type, unique by (Cmd, PayloadTypeID).
type Command struct {
	ID              int64
	Cmd             string
	PayloadTypeID   int64
	PayloadTypeName string
	Description     string
	HelpCmd         string
	NeedsAdmin      bool
	// Version increases on every change so agents that cached the command can detect staleness.
	Version      int
	IsExit       bool
	OperatorID   int64
	CreationTime time.Time
}

// Validate validates the command.
func (c Command) Validate() error {
	if c.Cmd == "" {
		return fmt.Errorf("cmd is required: %w", ErrNotValid)
	}
	if c.PayloadTypeID == 0 {
		return fmt.Errorf("payload type is required: %w", ErrNotValid)
	}
	return nil
}

// ParameterType is the type of a command parameter.
type ParameterType string

const (
	ParameterTypeString         ParameterType = "String"
	ParameterTypeBoolean        ParameterType = "Boolean"
	ParameterTypeNumber         ParameterType = "Number"
	ParameterTypeArray          ParameterType = "Array"
	ParameterTypeChoice         ParameterType = "Choice"
	ParameterTypeChoiceMultiple ParameterType = "ChoiceMultiple"
	ParameterTypeCredential     ParameterType = "Credential"
	ParameterTypeFile           ParameterType = "File"
)

var validParameterTypes = map[ParameterType]bool{
	ParameterTypeString:         true,
	ParameterTypeBoolean:        true,
	ParameterTypeNumber:         true,
	ParameterTypeArray:          true,
	ParameterTypeChoice:         true,
	ParameterTypeChoiceMultiple: true,
	ParameterTypeCredential:     true,
	ParameterTypeFile:           true,
}

// CommandParameter is one entry of a command's parameter schema.
type CommandParameter struct {
	ID        int64
	CommandID int64
	Name      string
	Type      ParameterType
	Hint      string
	Choices   string
	Required  bool
}

// Validate validates the parameter.
func (p CommandParameter) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if !validParameterTypes[p.Type] {
		return fmt.Errorf("parameter type %q is invalid: %w", p.Type, ErrNotValid)
	}
	return nil
}
