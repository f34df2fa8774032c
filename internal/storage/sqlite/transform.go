package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

const commandTransformQuery = `
	SELECT id, command_id, operation_id, operator_id, name, "order", parameter, active, timestamp
	FROM command_transforms`

// CreateCommandTransform creates a command transform and sets its ID.
func (r *Repository) CreateCommandTransform(ctx context.Context, c *model.CommandTransform) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Timestamp = nowIfZero(c.Timestamp)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO command_transforms (command_id, operation_id, operator_id, name, "order", parameter, active, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CommandID, c.OperationID, c.OperatorID, c.Name, c.Order, c.Parameter, c.Active, c.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert command transform: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get command transform id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableCommandTransform, c.ID, nil)
	return nil
}

// GetCommandTransform retrieves a command transform by ID.
func (r *Repository) GetCommandTransform(ctx context.Context, id int64) (*model.CommandTransform, error) {
	c, err := scanCommandTransform(r.db.QueryRowContext(ctx, commandTransformQuery+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("command transform %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query command transform: %w", err)
	}
	return &c, nil
}

// UpdateCommandTransform updates a command transform.
func (r *Repository) UpdateCommandTransform(ctx context.Context, c model.CommandTransform) error {
	if err := c.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE command_transforms SET name = ?, "order" = ?, parameter = ?, active = ? WHERE id = ?`,
		c.Name, c.Order, c.Parameter, c.Active, c.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update command transform: %w", err)
	}
	if err := checkAffected(res, "command transform", c.ID); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableCommandTransform, c.ID, nil)
	return nil
}

// DeleteCommandTransform deletes a command transform.
func (r *Repository) DeleteCommandTransform(ctx context.Context, id int64) error {
	old, err := r.GetCommandTransform(ctx, id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM command_transforms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete command transform: %w", err)
	}
	if err := checkAffected(res, "command transform", id); err != nil {
		return err
	}

	r.publish(changefeed.OpDelete, changefeed.TableCommandTransform, id, *old)
	return nil
}

// ListCommandTransforms returns the command chain of a command in an operation.
func (r *Repository) ListCommandTransforms(ctx context.Context, commandID, operationID int64, onlyActive bool) ([]model.CommandTransform, error) {
	conds := []string{"command_id = ?", "operation_id = ?"}
	args := []any{commandID, operationID}
	if onlyActive {
		conds = append(conds, "active = 1")
	}

	rows, err := r.db.QueryContext(ctx, commandTransformQuery+" "+where(conds)+` ORDER BY "order" ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query command transforms: %w", err)
	}
	defer rows.Close()

	var cts []model.CommandTransform
	for rows.Next() {
		c, err := scanCommandTransform(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		cts = append(cts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cts, nil
}

func scanCommandTransform(s scanner) (model.CommandTransform, error) {
	var c model.CommandTransform
	var ts int64
	err := s.Scan(&c.ID, &c.CommandID, &c.OperationID, &c.OperatorID, &c.Name, &c.Order, &c.Parameter, &c.Active, &ts)
	if err != nil {
		return model.CommandTransform{}, err
	}
	c.Timestamp = timeFromUnix(ts)
	return c, nil
}

// CreateTransform creates a payload type phase transform and sets its ID.
func (r *Repository) CreateTransform(ctx context.Context, t *model.Transform) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Timestamp = nowIfZero(t.Timestamp)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transforms (payload_type_id, phase, operator_id, name, "order", parameter, active, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PayloadTypeID, t.Phase, t.OperatorID, t.Name, t.Order, t.Parameter, t.Active, t.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert transform: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get transform id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableTransform, t.ID, nil)
	return nil
}

// ListTransforms returns the chain of a payload type phase.
func (r *Repository) ListTransforms(ctx context.Context, payloadTypeID int64, phase model.TransformPhase, onlyActive bool) ([]model.Transform, error) {
	conds := []string{"payload_type_id = ?", "phase = ?"}
	args := []any{payloadTypeID, phase}
	if onlyActive {
		conds = append(conds, "active = 1")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payload_type_id, phase, operator_id, name, "order", parameter, active, timestamp
		FROM transforms `+where(conds)+` ORDER BY "order" ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query transforms: %w", err)
	}
	defer rows.Close()

	var ts []model.Transform
	for rows.Next() {
		var t model.Transform
		var timestamp int64
		err := rows.Scan(&t.ID, &t.PayloadTypeID, &t.Phase, &t.OperatorID, &t.Name, &t.Order, &t.Parameter, &t.Active, &timestamp)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		t.Timestamp = timeFromUnix(timestamp)
		ts = append(ts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ts, nil
}
