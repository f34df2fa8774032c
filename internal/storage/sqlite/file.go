package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

const fileMetaQuery = `
	SELECT f.id, f.total_chunks, f.chunks_received, f.complete, f.path, f.task_id,
		f.operator_id, f.operation_id, f.timestamp, f.deleted
	FROM file_metas f`

// CreateFileMeta creates a file meta and sets its ID.
func (r *Repository) CreateFileMeta(ctx context.Context, f *model.FileMeta) error {
	if f.Path == "" {
		return fmt.Errorf("path is required: %w", model.ErrNotValid)
	}
	if f.OperationID == 0 {
		return fmt.Errorf("operation is required: %w", model.ErrNotValid)
	}
	f.Timestamp = nowIfZero(f.Timestamp)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO file_metas (total_chunks, chunks_received, complete, path, task_id, operator_id, operation_id, timestamp, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.TotalChunks, f.ChunksReceived, f.Complete, f.Path, nullInt64(f.TaskID),
		f.OperatorID, f.OperationID, f.Timestamp.Unix(), f.Deleted,
	)
	if err != nil {
		return fmt.Errorf("could not insert file meta: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get file meta id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableFileMeta, f.ID, nil)
	return nil
}

// GetFileMeta retrieves a file meta by ID.
func (r *Repository) GetFileMeta(ctx context.Context, id int64) (*model.FileMeta, error) {
	f, err := scanFileMeta(r.db.QueryRowContext(ctx, fileMetaQuery+` WHERE f.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file meta %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query file meta: %w", err)
	}
	return &f, nil
}

// ListFileMeta returns the file metas matching the query.
func (r *Repository) ListFileMeta(ctx context.Context, q model.FileMetaQuery) ([]model.FileMeta, error) {
	var conds []string
	var args []any
	if q.TaskID != 0 {
		conds = append(conds, "f.task_id = ?")
		args = append(args, q.TaskID)
	}
	if q.OperationID != 0 {
		conds = append(conds, "f.operation_id = ?")
		args = append(args, q.OperationID)
	}
	if !q.IncludeDeleted {
		conds = append(conds, "f.deleted = 0")
	}

	rows, err := r.db.QueryContext(ctx, fileMetaQuery+" "+where(conds)+" ORDER BY f.id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("could not query file metas: %w", err)
	}
	defer rows.Close()

	var fs []model.FileMeta
	for rows.Next() {
		f, err := scanFileMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		fs = append(fs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return fs, nil
}

// UpdateFileMeta updates a file meta.
func (r *Repository) UpdateFileMeta(ctx context.Context, f model.FileMeta) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE file_metas
		SET total_chunks = ?, chunks_received = ?, complete = ?, path = ?, task_id = ?, deleted = ?
		WHERE id = ?`,
		f.TotalChunks, f.ChunksReceived, f.Complete, f.Path, nullInt64(f.TaskID), f.Deleted, f.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update file meta: %w", err)
	}
	if err := checkAffected(res, "file meta", f.ID); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableFileMeta, f.ID, nil)
	return nil
}

// DeleteFileMeta removes a file meta row. It doesn't touch the file on disk.
func (r *Repository) DeleteFileMeta(ctx context.Context, id int64) error {
	old, err := r.GetFileMeta(ctx, id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM file_metas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete file meta: %w", err)
	}
	if err := checkAffected(res, "file meta", id); err != nil {
		return err
	}

	r.publish(changefeed.OpDelete, changefeed.TableFileMeta, id, *old)
	return nil
}

// CountFileMetaByPath counts the non deleted file metas stored at path.
func (r *Repository) CountFileMetaByPath(ctx context.Context, path string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_metas WHERE path = ? AND deleted = 0`, path).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("could not count file metas: %w", err)
	}
	return n, nil
}

func scanFileMeta(s scanner) (model.FileMeta, error) {
	var f model.FileMeta
	var taskID sql.NullInt64
	var ts int64
	err := s.Scan(&f.ID, &f.TotalChunks, &f.ChunksReceived, &f.Complete, &f.Path, &taskID,
		&f.OperatorID, &f.OperationID, &ts, &f.Deleted)
	if err != nil {
		return model.FileMeta{}, err
	}
	f.TaskID = ptrInt64(taskID)
	f.Timestamp = timeFromUnix(ts)
	return f, nil
}
