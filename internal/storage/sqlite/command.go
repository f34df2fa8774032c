package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

// CreatePayloadType creates a payload type and sets its ID.
func (r *Repository) CreatePayloadType(ctx context.Context, p *model.PayloadType) error {
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", model.ErrNotValid)
	}
	p.CreationTime = nowIfZero(p.CreationTime)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payload_types (name, operator_id, file_extension, wrapper, creation_time) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.OperatorID, p.FileExtension, p.Wrapper, p.CreationTime.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("payload type %q: %w", p.Name, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert payload type: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get payload type id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TablePayloadType, p.ID, nil)
	return nil
}

const payloadTypeQuery = `SELECT id, name, operator_id, file_extension, wrapper, creation_time FROM payload_types`

// GetPayloadType retrieves a payload type by ID.
func (r *Repository) GetPayloadType(ctx context.Context, id int64) (*model.PayloadType, error) {
	p, err := scanPayloadType(r.db.QueryRowContext(ctx, payloadTypeQuery+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payload type %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query payload type: %w", err)
	}
	return &p, nil
}

// GetPayloadTypeByName retrieves a payload type by name.
func (r *Repository) GetPayloadTypeByName(ctx context.Context, name string) (*model.PayloadType, error) {
	p, err := scanPayloadType(r.db.QueryRowContext(ctx, payloadTypeQuery+` WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payload type %q: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query payload type: %w", err)
	}
	return &p, nil
}

func scanPayloadType(s scanner) (model.PayloadType, error) {
	var p model.PayloadType
	var creationTime int64
	if err := s.Scan(&p.ID, &p.Name, &p.OperatorID, &p.FileExtension, &p.Wrapper, &creationTime); err != nil {
		return model.PayloadType{}, err
	}
	p.CreationTime = timeFromUnix(creationTime)
	return p, nil
}

// CreateC2Profile creates a C2 profile and sets its ID.
func (r *Repository) CreateC2Profile(ctx context.Context, c *model.C2Profile) error {
	if c.Name == "" {
		return fmt.Errorf("name is required: %w", model.ErrNotValid)
	}
	c.CreationTime = nowIfZero(c.CreationTime)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO c2_profiles (name, description, operator_id, creation_time) VALUES (?, ?, ?, ?)`,
		c.Name, c.Description, c.OperatorID, c.CreationTime.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("c2 profile %q: %w", c.Name, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert c2 profile: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get c2 profile id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableC2Profile, c.ID, nil)
	return nil
}

// GetC2ProfileByName retrieves a C2 profile by name.
func (r *Repository) GetC2ProfileByName(ctx context.Context, name string) (*model.C2Profile, error) {
	c, err := scanC2Profile(r.db.QueryRowContext(ctx, c2ProfileQuery+` WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("c2 profile %q: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query c2 profile: %w", err)
	}
	return &c, nil
}

const commandQuery = `
	SELECT c.id, c.cmd, c.payload_type_id, pt.name, c.description, c.help_cmd,
		c.needs_admin, c.version, c.is_exit, c.operator_id, c.creation_time
	FROM commands c
	JOIN payload_types pt ON pt.id = c.payload_type_id`

// CreateCommand creates a command and sets its ID.
func (r *Repository) CreateCommand(ctx context.Context, c *model.Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Version < 1 {
		c.Version = 1
	}
	c.CreationTime = nowIfZero(c.CreationTime)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO commands (cmd, payload_type_id, description, help_cmd, needs_admin, version, is_exit, operator_id, creation_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Cmd, c.PayloadTypeID, c.Description, c.HelpCmd, c.NeedsAdmin, c.Version, c.IsExit, c.OperatorID, c.CreationTime.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("command %q for payload type %d: %w", c.Cmd, c.PayloadTypeID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert command: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get command id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableCommand, c.ID, nil)
	return nil
}

// GetCommand retrieves a command by ID.
func (r *Repository) GetCommand(ctx context.Context, id int64) (*model.Command, error) {
	c, err := scanCommand(r.db.QueryRowContext(ctx, commandQuery+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("command %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query command: %w", err)
	}
	return &c, nil
}

// GetCommandByName retrieves a command by its name for a payload type.
func (r *Repository) GetCommandByName(ctx context.Context, cmd string, payloadTypeID int64) (*model.Command, error) {
	c, err := scanCommand(r.db.QueryRowContext(ctx, commandQuery+` WHERE c.cmd = ? AND c.payload_type_id = ?`, cmd, payloadTypeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("command %q for payload type %d: %w", cmd, payloadTypeID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query command: %w", err)
	}
	return &c, nil
}

// ListCommands returns the commands of a payload type, all of them if payloadTypeID is 0.
func (r *Repository) ListCommands(ctx context.Context, payloadTypeID int64) ([]model.Command, error) {
	var conds []string
	var args []any
	if payloadTypeID != 0 {
		conds = append(conds, "c.payload_type_id = ?")
		args = append(args, payloadTypeID)
	}

	rows, err := r.db.QueryContext(ctx, commandQuery+" "+where(conds)+" ORDER BY c.cmd ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("could not query commands: %w", err)
	}
	defer rows.Close()

	var cmds []model.Command
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		cmds = append(cmds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cmds, nil
}

// UpdateCommand updates a command and bumps its version.
func (r *Repository) UpdateCommand(ctx context.Context, c model.Command) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE commands
		SET description = ?, help_cmd = ?, needs_admin = ?, is_exit = ?, version = version + 1
		WHERE id = ?`,
		c.Description, c.HelpCmd, c.NeedsAdmin, c.IsExit, c.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update command: %w", err)
	}
	if err := checkAffected(res, "command", c.ID); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableCommand, c.ID, nil)
	return nil
}

// DeleteCommand deletes a command.
func (r *Repository) DeleteCommand(ctx context.Context, id int64) error {
	old, err := r.GetCommand(ctx, id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM commands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete command: %w", err)
	}
	if err := checkAffected(res, "command", id); err != nil {
		return err
	}

	r.publish(changefeed.OpDelete, changefeed.TableCommand, id, *old)
	return nil
}

func scanCommand(s scanner) (model.Command, error) {
	var c model.Command
	var creationTime int64
	err := s.Scan(&c.ID, &c.Cmd, &c.PayloadTypeID, &c.PayloadTypeName, &c.Description, &c.HelpCmd,
		&c.NeedsAdmin, &c.Version, &c.IsExit, &c.OperatorID, &creationTime)
	if err != nil {
		return model.Command{}, err
	}
	c.CreationTime = timeFromUnix(creationTime)
	return c, nil
}

// CreateCommandParameter creates a command parameter and sets its ID.
func (r *Repository) CreateCommandParameter(ctx context.Context, p *model.CommandParameter) error {
	if err := p.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO command_parameters (command_id, name, type, hint, choices, required) VALUES (?, ?, ?, ?, ?, ?)`,
		p.CommandID, p.Name, p.Type, p.Hint, p.Choices, p.Required,
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("parameter %q of command %d: %w", p.Name, p.CommandID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert command parameter: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get command parameter id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableCommandParameter, p.ID, nil)
	return nil
}

const commandParameterQuery = `SELECT id, command_id, name, type, hint, choices, required FROM command_parameters`

// GetCommandParameter retrieves a command parameter by ID.
func (r *Repository) GetCommandParameter(ctx context.Context, id int64) (*model.CommandParameter, error) {
	var p model.CommandParameter
	err := r.db.QueryRowContext(ctx, commandParameterQuery+` WHERE id = ?`, id).
		Scan(&p.ID, &p.CommandID, &p.Name, &p.Type, &p.Hint, &p.Choices, &p.Required)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("command parameter %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query command parameter: %w", err)
	}
	return &p, nil
}

// ListCommandParameters returns the parameter schema of a command.
func (r *Repository) ListCommandParameters(ctx context.Context, commandID int64) ([]model.CommandParameter, error) {
	rows, err := r.db.QueryContext(ctx, commandParameterQuery+` WHERE command_id = ? ORDER BY id ASC`, commandID)
	if err != nil {
		return nil, fmt.Errorf("could not query command parameters: %w", err)
	}
	defer rows.Close()

	var params []model.CommandParameter
	for rows.Next() {
		var p model.CommandParameter
		if err := rows.Scan(&p.ID, &p.CommandID, &p.Name, &p.Type, &p.Hint, &p.Choices, &p.Required); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return params, nil
}

// DeleteCommandParameter deletes a command parameter.
func (r *Repository) DeleteCommandParameter(ctx context.Context, id int64) error {
	var old model.CommandParameter
	err := r.db.QueryRowContext(ctx, commandParameterQuery+` WHERE id = ?`, id).
		Scan(&old.ID, &old.CommandID, &old.Name, &old.Type, &old.Hint, &old.Choices, &old.Required)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("command parameter %d: %w", id, model.ErrNotFound)
		}
		return fmt.Errorf("could not query command parameter: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM command_parameters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete command parameter: %w", err)
	}
	if err := checkAffected(res, "command parameter", id); err != nil {
		return err
	}

	r.publish(changefeed.OpDelete, changefeed.TableCommandParameter, id, old)
	return nil
}
