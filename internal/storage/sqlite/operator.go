package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

const operatorColumns = `id, username, admin, active, current_operation_id, creation_time, last_login`

// CreateOperator creates a new operator and sets its ID.
func (r *Repository) CreateOperator(ctx context.Context, o *model.Operator) error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.CreationTime = nowIfZero(o.CreationTime)

	var lastLogin sql.NullInt64
	if o.LastLogin != nil {
		lastLogin = sql.NullInt64{Int64: o.LastLogin.Unix(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO operators (username, admin, active, current_operation_id, creation_time, last_login) VALUES (?, ?, ?, ?, ?, ?)`,
		o.Username, o.Admin, o.Active, nullInt64(o.CurrentOperationID), o.CreationTime.Unix(), lastLogin,
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("operator %q: %w", o.Username, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert operator: %w", err)
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get operator id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableOperator, o.ID, nil)
	return nil
}

// GetOperator retrieves an operator by ID.
func (r *Repository) GetOperator(ctx context.Context, id int64) (*model.Operator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id = ?`, id)
	o, err := scanOperator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operator %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query operator: %w", err)
	}
	return &o, nil
}

// GetOperatorByUsername retrieves an operator by username.
func (r *Repository) GetOperatorByUsername(ctx context.Context, username string) (*model.Operator, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE username = ?`, username)
	o, err := scanOperator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operator %q: %w", username, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query operator: %w", err)
	}
	return &o, nil
}

// UpdateOperator updates the mutable fields of an operator.
func (r *Repository) UpdateOperator(ctx context.Context, o model.Operator) error {
	var lastLogin sql.NullInt64
	if o.LastLogin != nil {
		lastLogin = sql.NullInt64{Int64: o.LastLogin.Unix(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE operators SET admin = ?, active = ?, current_operation_id = ?, last_login = ? WHERE id = ?`,
		o.Admin, o.Active, nullInt64(o.CurrentOperationID), lastLogin, o.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update operator: %w", err)
	}
	if err := checkAffected(res, "operator", o.ID); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableOperator, o.ID, nil)
	return nil
}

// ListOperators returns every operator ordered by ID.
func (r *Repository) ListOperators(ctx context.Context) ([]model.Operator, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+operatorColumns+` FROM operators ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query operators: %w", err)
	}
	defer rows.Close()

	var ops []model.Operator
	for rows.Next() {
		o, err := scanOperator(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ops = append(ops, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ops, nil
}

func scanOperator(s scanner) (model.Operator, error) {
	var o model.Operator
	var currentOp, lastLogin sql.NullInt64
	var creationTime int64
	err := s.Scan(&o.ID, &o.Username, &o.Admin, &o.Active, &currentOp, &creationTime, &lastLogin)
	if err != nil {
		return model.Operator{}, err
	}
	o.CurrentOperationID = ptrInt64(currentOp)
	o.CreationTime = timeFromUnix(creationTime)
	if lastLogin.Valid {
		t := timeFromUnix(lastLogin.Int64)
		o.LastLogin = &t
	}
	return o, nil
}

const operationColumns = `id, name, admin_id, complete, aes_psk`

// CreateOperation creates a new operation and sets its ID.
func (r *Repository) CreateOperation(ctx context.Context, o *model.Operation) error {
	if err := o.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO operations (name, admin_id, complete, aes_psk) VALUES (?, ?, ?, ?)`,
		o.Name, o.AdminID, o.Complete, o.AESPSK,
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("operation %q: %w", o.Name, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert operation: %w", err)
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get operation id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableOperation, o.ID, nil)
	return nil
}

// GetOperation retrieves an operation by ID.
func (r *Repository) GetOperation(ctx context.Context, id int64) (*model.Operation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = ?`, id)
	o, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operation %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query operation: %w", err)
	}
	return &o, nil
}

// GetOperationByName retrieves an operation by name.
func (r *Repository) GetOperationByName(ctx context.Context, name string) (*model.Operation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+operationColumns+` FROM operations WHERE name = ?`, name)
	o, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operation %q: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query operation: %w", err)
	}
	return &o, nil
}

// UpdateOperation updates an operation.
func (r *Repository) UpdateOperation(ctx context.Context, o model.Operation) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE operations SET name = ?, admin_id = ?, complete = ?, aes_psk = ? WHERE id = ?`,
		o.Name, o.AdminID, o.Complete, o.AESPSK, o.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update operation: %w", err)
	}
	if err := checkAffected(res, "operation", o.ID); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableOperation, o.ID, nil)
	return nil
}

// AddOperatorToOperation makes the operator a member of the operation. Idempotent.
func (r *Repository) AddOperatorToOperation(ctx context.Context, operatorID, operationID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operator_operations (operator_id, operation_id) VALUES (?, ?)
		 ON CONFLICT (operator_id, operation_id) DO NOTHING`,
		operatorID, operationID,
	)
	if err != nil {
		return fmt.Errorf("could not add operator to operation: %w", err)
	}
	return nil
}

// ListOperatorOperations returns the operations the operator is a member of.
func (r *Repository) ListOperatorOperations(ctx context.Context, operatorID int64) ([]model.Operation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.admin_id, o.complete, o.aes_psk
		FROM operations o
		JOIN operator_operations oo ON oo.operation_id = o.id
		WHERE oo.operator_id = ?
		ORDER BY o.id ASC`, operatorID)
	if err != nil {
		return nil, fmt.Errorf("could not query operations: %w", err)
	}
	defer rows.Close()

	var ops []model.Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ops = append(ops, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ops, nil
}

func scanOperation(s scanner) (model.Operation, error) {
	var o model.Operation
	err := s.Scan(&o.ID, &o.Name, &o.AdminID, &o.Complete, &o.AESPSK)
	return o, err
}
