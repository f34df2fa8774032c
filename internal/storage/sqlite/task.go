package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

const taskQuery = `
	SELECT t.id, t.command_id, COALESCE(cm.cmd, ''), t.params, t.original_params, t.status, t.timestamp,
		t.callback_id, t.operator_id, op.username, t.comment, t.comment_operator_id,
		COALESCE(cop.username, ''), cb.operation_id
	FROM tasks t
	LEFT JOIN commands cm ON cm.id = t.command_id
	JOIN operators op ON op.id = t.operator_id
	LEFT JOIN operators cop ON cop.id = t.comment_operator_id
	JOIN callbacks cb ON cb.id = t.callback_id`

// CreateTask creates a task and sets its ID.
func (r *Repository) CreateTask(ctx context.Context, t *model.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Timestamp = nowIfZero(t.Timestamp)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (command_id, params, original_params, status, timestamp, callback_id, operator_id, comment, comment_operator_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(t.CommandID), t.Params, t.OriginalParams, t.Status, t.Timestamp.Unix(),
		t.CallbackID, t.OperatorID, t.Comment, nullInt64(t.CommentOperatorID),
	)
	if err != nil {
		return fmt.Errorf("could not insert task: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get task id: %w", err)
	}

	r.logger.Debugf("Created task %d for callback %d", t.ID, t.CallbackID)
	r.publish(changefeed.OpInsert, changefeed.TableTask, t.ID, nil)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, taskQuery+` WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the tasks matching the query.
func (r *Repository) ListTasks(ctx context.Context, q model.TaskQuery) ([]model.Task, error) {
	var conds []string
	var args []any
	if q.ID != 0 {
		conds = append(conds, "t.id = ?")
		args = append(args, q.ID)
	}
	if q.CallbackID != 0 {
		conds = append(conds, "t.callback_id = ?")
		args = append(args, q.CallbackID)
	}
	if q.OperationID != 0 {
		conds = append(conds, "cb.operation_id = ?")
		args = append(args, q.OperationID)
	}
	if len(q.Statuses) > 0 {
		placeholders := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			placeholders = append(placeholders, "?")
			args = append(args, s)
		}
		conds = append(conds, "t.status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if q.NotStatus != "" {
		conds = append(conds, "t.status != ?")
		args = append(args, q.NotStatus)
	}
	if q.Search != "" {
		conds = append(conds, "(t.params LIKE ? OR t.original_params LIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	if q.Commented {
		conds = append(conds, "t.comment != ''")
	}
	if q.CommentSearch != "" {
		conds = append(conds, "t.comment LIKE ?")
		args = append(args, "%"+q.CommentSearch+"%")
	}

	order := " ORDER BY t.timestamp ASC, t.id ASC"
	if q.Newest {
		order = " ORDER BY t.timestamp DESC, t.id DESC"
	}
	limit := ""
	if q.Limit > 0 {
		limit = " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, taskQuery+" "+where(conds)+order+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// UpdateTaskStatus moves a task from one status to another using the current status as
// precondition, so only one writer can win a transition.
func (r *Repository) UpdateTaskStatus(ctx context.Context, id int64, from, to model.TaskStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("task status %q can't transition to %q: %w", from, to, model.ErrNotValid)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("could not update task status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get rows affected: %w", err)
	}

	if rows == 0 {
		// Missing task or another writer already moved it.
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("could not query task: %w", err)
		}
		if exists == 0 {
			return false, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
		}
		return false, nil
	}

	r.logger.Debugf("Task %d status %s -> %s", id, from, to)
	r.publish(changefeed.OpUpdate, changefeed.TableTask, id, nil)
	return true, nil
}

// UpdateTaskComment sets the comment of a task, an empty comment removes it.
func (r *Repository) UpdateTaskComment(ctx context.Context, id int64, comment string, operatorID *int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET comment = ?, comment_operator_id = ? WHERE id = ?`,
		comment, nullInt64(operatorID), id,
	)
	if err != nil {
		return fmt.Errorf("could not update task comment: %w", err)
	}
	if err := checkAffected(res, "task", id); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableTask, id, nil)
	return nil
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var commandID, commentOperatorID sql.NullInt64
	var ts int64
	err := s.Scan(
		&t.ID, &commandID, &t.Command, &t.Params, &t.OriginalParams, &t.Status, &ts,
		&t.CallbackID, &t.OperatorID, &t.OperatorName, &t.Comment, &commentOperatorID,
		&t.CommentOperator, &t.OperationID,
	)
	if err != nil {
		return model.Task{}, err
	}
	t.CommandID = ptrInt64(commandID)
	t.CommentOperatorID = ptrInt64(commentOperatorID)
	t.Timestamp = timeFromUnix(ts)
	return t, nil
}

// CreateResponse appends a response to a task and sets its ID.
func (r *Repository) CreateResponse(ctx context.Context, resp *model.Response) error {
	if resp.TaskID == 0 {
		return fmt.Errorf("task is required: %w", model.ErrNotValid)
	}
	resp.Timestamp = nowIfZero(resp.Timestamp)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO responses (response, timestamp, task_id) VALUES (?, ?, ?)`,
		resp.Response, resp.Timestamp.Unix(), resp.TaskID,
	)
	if err != nil {
		return fmt.Errorf("could not insert response: %w", err)
	}
	resp.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get response id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableResponse, resp.ID, nil)
	return nil
}

const responseQuery = `SELECT r.id, r.response, r.timestamp, r.task_id FROM responses r`

// GetResponse retrieves a response by ID.
func (r *Repository) GetResponse(ctx context.Context, id int64) (*model.Response, error) {
	resp, err := scanResponse(r.db.QueryRowContext(ctx, responseQuery+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("response %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query response: %w", err)
	}
	return &resp, nil
}

// ListResponses returns the responses of a task in arrival order.
func (r *Repository) ListResponses(ctx context.Context, taskID int64) ([]model.Response, error) {
	return r.listResponses(ctx, responseQuery+` WHERE r.task_id = ? ORDER BY r.id ASC`, taskID)
}

// ListOperationResponses returns every response of an operation in arrival order, 0
// returns the responses of every operation.
func (r *Repository) ListOperationResponses(ctx context.Context, operationID int64) ([]model.Response, error) {
	if operationID == 0 {
		return r.listResponses(ctx, responseQuery+` ORDER BY r.id ASC`)
	}
	return r.listResponses(ctx, responseQuery+`
		JOIN tasks t ON t.id = r.task_id
		JOIN callbacks cb ON cb.id = t.callback_id
		WHERE cb.operation_id = ?
		ORDER BY r.id ASC`, operationID)
}

func (r *Repository) listResponses(ctx context.Context, query string, args ...any) ([]model.Response, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query responses: %w", err)
	}
	defer rows.Close()

	var resps []model.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		resps = append(resps, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return resps, nil
}

func scanResponse(s scanner) (model.Response, error) {
	var resp model.Response
	var ts int64
	if err := s.Scan(&resp.ID, &resp.Response, &ts, &resp.TaskID); err != nil {
		return model.Response{}, err
	}
	resp.Timestamp = timeFromUnix(ts)
	return resp, nil
}
