package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

const credentialQuery = `
	SELECT id, type, task_id, user, domain, credential, operation_id, operator_id, description, timestamp
	FROM credentials`

// CreateCredential creates a credential and sets its ID.
func (r *Repository) CreateCredential(ctx context.Context, c *model.Credential) error {
	if c.User == "" || c.Credential == "" {
		return fmt.Errorf("user and credential are required: %w", model.ErrNotValid)
	}
	c.Timestamp = nowIfZero(c.Timestamp)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (type, task_id, user, domain, credential, operation_id, operator_id, description, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Type, nullInt64(c.TaskID), c.User, c.Domain, c.Credential, c.OperationID, c.OperatorID, c.Description, c.Timestamp.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("credential for %s\\%s: %w", c.Domain, c.User, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert credential: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get credential id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableCredential, c.ID, nil)
	return nil
}

// GetCredential retrieves a credential by ID.
func (r *Repository) GetCredential(ctx context.Context, id int64) (*model.Credential, error) {
	c, err := scanCredential(r.db.QueryRowContext(ctx, credentialQuery+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query credential: %w", err)
	}
	return &c, nil
}

// ListCredentials returns the credentials of an operation.
func (r *Repository) ListCredentials(ctx context.Context, operationID int64) ([]model.Credential, error) {
	rows, err := r.db.QueryContext(ctx, credentialQuery+` WHERE operation_id = ? ORDER BY id ASC`, operationID)
	if err != nil {
		return nil, fmt.Errorf("could not query credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return creds, nil
}

func scanCredential(s scanner) (model.Credential, error) {
	var c model.Credential
	var taskID sql.NullInt64
	var ts int64
	err := s.Scan(&c.ID, &c.Type, &taskID, &c.User, &c.Domain, &c.Credential, &c.OperationID, &c.OperatorID, &c.Description, &ts)
	if err != nil {
		return model.Credential{}, err
	}
	c.TaskID = ptrInt64(taskID)
	c.Timestamp = timeFromUnix(ts)
	return c, nil
}
