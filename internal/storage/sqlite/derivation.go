package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

// CreateAttack creates an ATT&CK technique and sets its ID.
func (r *Repository) CreateAttack(ctx context.Context, a *model.Attack) error {
	if a.TNum == "" {
		return fmt.Errorf("technique number is required: %w", model.ErrNotValid)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attacks (t_num, name, os, tactic) VALUES (?, ?, ?, ?)`,
		a.TNum, a.Name, a.OS, a.Tactic,
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("attack %q: %w", a.TNum, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert attack: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get attack id: %w", err)
	}
	return nil
}

// GetAttackByTNum retrieves a technique by its number, e.g. T1059.
func (r *Repository) GetAttackByTNum(ctx context.Context, tnum string) (*model.Attack, error) {
	var a model.Attack
	err := r.db.QueryRowContext(ctx, `SELECT id, t_num, name, os, tactic FROM attacks WHERE t_num = ?`, tnum).
		Scan(&a.ID, &a.TNum, &a.Name, &a.OS, &a.Tactic)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("attack %q: %w", tnum, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query attack: %w", err)
	}
	return &a, nil
}

// CreateAttackCommand maps a technique to a command and sets its ID.
func (r *Repository) CreateAttackCommand(ctx context.Context, a *model.AttackCommand) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attack_commands (attack_id, command_id) VALUES (?, ?)`, a.AttackID, a.CommandID,
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("attack %d on command %d: %w", a.AttackID, a.CommandID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert attack command: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get attack command id: %w", err)
	}
	return nil
}

// ListAttackCommands returns the techniques mapped to a command.
func (r *Repository) ListAttackCommands(ctx context.Context, commandID int64) ([]model.AttackCommand, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, attack_id, command_id FROM attack_commands WHERE command_id = ? ORDER BY id ASC`, commandID)
	if err != nil {
		return nil, fmt.Errorf("could not query attack commands: %w", err)
	}
	defer rows.Close()

	var acs []model.AttackCommand
	for rows.Next() {
		var a model.AttackCommand
		if err := rows.Scan(&a.ID, &a.AttackID, &a.CommandID); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		acs = append(acs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return acs, nil
}

const attackTaskQuery = `
	SELECT at.id, at.attack_id, at.task_id, a.t_num, a.name
	FROM attack_tasks at
	JOIN attacks a ON a.id = at.attack_id`

// GetOrCreateAttackTask returns the technique instance for a task, creating it if missing.
// The returned bool is true when it was created.
func (r *Repository) GetOrCreateAttackTask(ctx context.Context, attackID, taskID int64) (*model.AttackTask, bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attack_tasks (attack_id, task_id) VALUES (?, ?) ON CONFLICT (attack_id, task_id) DO NOTHING`,
		attackID, taskID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("could not insert attack task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("could not get rows affected: %w", err)
	}
	created := n > 0

	var at model.AttackTask
	err = r.db.QueryRowContext(ctx, attackTaskQuery+` WHERE at.attack_id = ? AND at.task_id = ?`, attackID, taskID).
		Scan(&at.ID, &at.AttackID, &at.TaskID, &at.TNum, &at.Name)
	if err != nil {
		return nil, false, fmt.Errorf("could not query attack task: %w", err)
	}

	if created {
		r.publish(changefeed.OpInsert, changefeed.TableAttackTask, at.ID, nil)
	}
	return &at, created, nil
}

// ListAttackTasks returns the technique instances of a task.
func (r *Repository) ListAttackTasks(ctx context.Context, taskID int64) ([]model.AttackTask, error) {
	rows, err := r.db.QueryContext(ctx, attackTaskQuery+` WHERE at.task_id = ? ORDER BY at.id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not query attack tasks: %w", err)
	}
	defer rows.Close()

	var ats []model.AttackTask
	for rows.Next() {
		var at model.AttackTask
		if err := rows.Scan(&at.ID, &at.AttackID, &at.TaskID, &at.TNum, &at.Name); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ats = append(ats, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ats, nil
}

// DeleteAttackTask deletes a technique instance.
func (r *Repository) DeleteAttackTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attack_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete attack task: %w", err)
	}
	if err := checkAffected(res, "attack task", id); err != nil {
		return err
	}

	r.publish(changefeed.OpDelete, changefeed.TableAttackTask, id, nil)
	return nil
}

// CreateArtifact creates an artifact kind and sets its ID.
func (r *Repository) CreateArtifact(ctx context.Context, a *model.Artifact) error {
	if a.Name == "" {
		return fmt.Errorf("name is required: %w", model.ErrNotValid)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO artifacts (name, description) VALUES (?, ?)`, a.Name, a.Description)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("artifact %q: %w", a.Name, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert artifact: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get artifact id: %w", err)
	}
	return nil
}

// GetArtifactByName retrieves an artifact kind by name.
func (r *Repository) GetArtifactByName(ctx context.Context, name string) (*model.Artifact, error) {
	var a model.Artifact
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description FROM artifacts WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &a.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artifact %q: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query artifact: %w", err)
	}
	return &a, nil
}

// CreateArtifactTemplate creates an artifact template and sets its ID.
func (r *Repository) CreateArtifactTemplate(ctx context.Context, a *model.ArtifactTemplate) error {
	if a.CommandID == 0 || a.ArtifactID == 0 {
		return fmt.Errorf("command and artifact are required: %w", model.ErrNotValid)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO artifact_templates (command_id, command_parameter_id, artifact_id, artifact_string, replace_string)
		VALUES (?, ?, ?, ?, ?)`,
		a.CommandID, nullInt64(a.CommandParameterID), a.ArtifactID, a.ArtifactString, a.ReplaceString,
	)
	if err != nil {
		return fmt.Errorf("could not insert artifact template: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get artifact template id: %w", err)
	}
	return nil
}

// ListArtifactTemplates returns the artifact templates of a command.
func (r *Repository) ListArtifactTemplates(ctx context.Context, commandID int64) ([]model.ArtifactTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT at.id, at.command_id, at.artifact_id, at.command_parameter_id, at.artifact_string,
			at.replace_string, COALESCE(cp.name, '')
		FROM artifact_templates at
		LEFT JOIN command_parameters cp ON cp.id = at.command_parameter_id
		WHERE at.command_id = ?
		ORDER BY at.id ASC`, commandID)
	if err != nil {
		return nil, fmt.Errorf("could not query artifact templates: %w", err)
	}
	defer rows.Close()

	var ats []model.ArtifactTemplate
	for rows.Next() {
		var at model.ArtifactTemplate
		var paramID sql.NullInt64
		err := rows.Scan(&at.ID, &at.CommandID, &at.ArtifactID, &paramID, &at.ArtifactString, &at.ReplaceString, &at.ParameterName)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		at.CommandParameterID = ptrInt64(paramID)
		ats = append(ats, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ats, nil
}

// CreateTaskArtifact creates a rendered artifact for a task and sets its ID.
func (r *Repository) CreateTaskArtifact(ctx context.Context, a *model.TaskArtifact) error {
	a.Timestamp = nowIfZero(a.Timestamp)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task_artifacts (task_id, artifact_template_id, artifact_instance, timestamp)
		VALUES (?, ?, ?, ?)`,
		a.TaskID, a.ArtifactTemplateID, a.ArtifactInstance, a.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert task artifact: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get task artifact id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableTaskArtifact, a.ID, nil)
	return nil
}

// ListTaskArtifacts returns the rendered artifacts of a task.
func (r *Repository) ListTaskArtifacts(ctx context.Context, taskID int64) ([]model.TaskArtifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, artifact_template_id, artifact_instance, timestamp
		FROM task_artifacts
		WHERE task_id = ?
		ORDER BY id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not query task artifacts: %w", err)
	}
	defer rows.Close()

	var tas []model.TaskArtifact
	for rows.Next() {
		var ta model.TaskArtifact
		var ts int64
		if err := rows.Scan(&ta.ID, &ta.TaskID, &ta.ArtifactTemplateID, &ta.ArtifactInstance, &ts); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ta.Timestamp = time.Unix(ts, 0).UTC()
		tas = append(tas, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tas, nil
}

// DeleteTaskArtifact deletes a rendered artifact.
func (r *Repository) DeleteTaskArtifact(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task_artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete task artifact: %w", err)
	}
	if err := checkAffected(res, "task artifact", id); err != nil {
		return err
	}

	r.publish(changefeed.OpDelete, changefeed.TableTaskArtifact, id, nil)
	return nil
}
