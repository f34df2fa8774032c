package model

import (
	"time"
)

// EncryptionTypeAES256 is the only agent traffic cipher supported.
const EncryptionTypeAES256 = "AES256"

// Payload is a built agent artifact.
type Payload struct {
	ID              int64
	UUID            string
	Tag             string
	OperatorID      int64
	PayloadTypeID   int64
	PayloadTypeName string
	C2ProfileID     int64
	OperationID     int64
	Location        string
	Deleted         bool
	CreationTime    time.Time
}

// Callback is a live agent session polling for tasks.
type Callback struct {
	ID               int64
	InitCallback     time.Time
	LastCheckin      time.Time
	User             string
	Host             string
	PID              int
	IP               string
	Description      string
	OperatorID       int64
	Active           bool
	ParentCallbackID *int64
	IntegrityLevel   int
	PayloadID        int64
	OperationID      int64
	EncryptionType   string
	EncryptionKey    string
	DecryptionKey    string

	// Resolved from the payload and operation.
	PayloadUUID     string
	PayloadTypeID   int64
	PayloadTypeName string
	C2ProfileName   string
	OperationName   string
	OperatorName    string
}

// LoadedCommand tracks which command version is loaded into a callback.
type LoadedCommand struct {
	ID         int64
	CommandID  int64
	CallbackID int64
	OperatorID int64
	Version    int
	Timestamp  time.Time

	// Resolved.
	Cmd string
}
