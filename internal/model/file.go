package model

import "time"

// FileMeta tracks a file transfer and where its bytes live on disk.
type FileMeta struct {
	ID             int64
	TotalChunks    int
	ChunksReceived int
	Complete       bool
	Path           string
	TaskID         *int64
	OperatorID     int64
	OperationID    int64
	Timestamp      time.Time
	// Deleted is a tombstone, the row is kept for audit.
	Deleted bool
}

// FileMetaQuery filters file listings. Zero values don't filter.
type FileMetaQuery struct {
	TaskID         int64
	OperationID    int64
	IncludeDeleted bool
}
