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

const payloadQuery = `
	SELECT p.id, p.uuid, p.tag, p.operator_id, p.payload_type_id, pt.name, p.c2_profile_id,
		p.operation_id, p.location, p.deleted, p.creation_time
	FROM payloads p
	JOIN payload_types pt ON pt.id = p.payload_type_id`

// CreatePayload creates a payload and sets its ID.
func (r *Repository) CreatePayload(ctx context.Context, p *model.Payload) error {
	if p.UUID == "" {
		return fmt.Errorf("uuid is required: %w", model.ErrNotValid)
	}
	p.CreationTime = nowIfZero(p.CreationTime)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payloads (uuid, tag, operator_id, payload_type_id, c2_profile_id, operation_id, location, deleted, creation_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UUID, p.Tag, p.OperatorID, p.PayloadTypeID, p.C2ProfileID, p.OperationID, p.Location, p.Deleted, p.CreationTime.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("payload %q: %w", p.UUID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert payload: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get payload id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TablePayload, p.ID, nil)
	return nil
}

// GetPayload retrieves a payload by ID.
func (r *Repository) GetPayload(ctx context.Context, id int64) (*model.Payload, error) {
	p, err := scanPayload(r.db.QueryRowContext(ctx, payloadQuery+` WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payload %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query payload: %w", err)
	}
	return &p, nil
}

// GetPayloadByUUID retrieves a payload by UUID.
func (r *Repository) GetPayloadByUUID(ctx context.Context, uuid string) (*model.Payload, error) {
	p, err := scanPayload(r.db.QueryRowContext(ctx, payloadQuery+` WHERE p.uuid = ?`, uuid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payload %q: %w", uuid, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query payload: %w", err)
	}
	return &p, nil
}

// ListPayloads returns the payloads of an operation, every operation when operationID is 0.
func (r *Repository) ListPayloads(ctx context.Context, operationID int64, includeDeleted bool) ([]model.Payload, error) {
	var conds []string
	var args []any
	if operationID != 0 {
		conds = append(conds, "p.operation_id = ?")
		args = append(args, operationID)
	}
	if !includeDeleted {
		conds = append(conds, "p.deleted = 0")
	}

	rows, err := r.db.QueryContext(ctx, payloadQuery+" "+where(conds)+" ORDER BY p.id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("could not query payloads: %w", err)
	}
	defer rows.Close()

	var payloads []model.Payload
	for rows.Next() {
		p, err := scanPayload(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return payloads, nil
}

// CountPayloadsByLocation counts the non deleted payloads stored at path.
func (r *Repository) CountPayloadsByLocation(ctx context.Context, path string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payloads WHERE location = ? AND deleted = 0`, path).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("could not count payloads: %w", err)
	}
	return n, nil
}

func scanPayload(s scanner) (model.Payload, error) {
	var p model.Payload
	var creationTime int64
	err := s.Scan(&p.ID, &p.UUID, &p.Tag, &p.OperatorID, &p.PayloadTypeID, &p.PayloadTypeName, &p.C2ProfileID,
		&p.OperationID, &p.Location, &p.Deleted, &creationTime)
	if err != nil {
		return model.Payload{}, err
	}
	p.CreationTime = timeFromUnix(creationTime)
	return p, nil
}

const callbackQuery = `
	SELECT c.id, c.init_callback, c.last_checkin, c.user, c.host, c.pid, c.ip, c.description,
		c.operator_id, c.active, c.parent_callback_id, c.integrity_level, c.payload_id, c.operation_id,
		c.encryption_type, c.encryption_key, c.decryption_key,
		p.uuid, p.payload_type_id, pt.name, c2.name, o.name, op.username
	FROM callbacks c
	JOIN payloads p ON p.id = c.payload_id
	JOIN payload_types pt ON pt.id = p.payload_type_id
	JOIN c2_profiles c2 ON c2.id = p.c2_profile_id
	JOIN operations o ON o.id = c.operation_id
	JOIN operators op ON op.id = c.operator_id`

// CreateCallback creates a callback and sets its ID.
func (r *Repository) CreateCallback(ctx context.Context, c *model.Callback) error {
	if c.PayloadID == 0 || c.OperationID == 0 {
		return fmt.Errorf("payload and operation are required: %w", model.ErrNotValid)
	}
	c.InitCallback = nowIfZero(c.InitCallback)
	if c.LastCheckin.IsZero() {
		c.LastCheckin = c.InitCallback
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO callbacks (
			init_callback, last_checkin, user, host, pid, ip, description, operator_id, active,
			parent_callback_id, integrity_level, payload_id, operation_id,
			encryption_type, encryption_key, decryption_key
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.InitCallback.Unix(), c.LastCheckin.Unix(), c.User, c.Host, c.PID, c.IP, c.Description, c.OperatorID, c.Active,
		nullInt64(c.ParentCallbackID), c.IntegrityLevel, c.PayloadID, c.OperationID,
		c.EncryptionType, c.EncryptionKey, c.DecryptionKey,
	)
	if err != nil {
		return fmt.Errorf("could not insert callback: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get callback id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableCallback, c.ID, nil)
	return nil
}

// GetCallback retrieves a callback by ID.
func (r *Repository) GetCallback(ctx context.Context, id int64) (*model.Callback, error) {
	c, err := scanCallback(r.db.QueryRowContext(ctx, callbackQuery+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("callback %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query callback: %w", err)
	}
	return &c, nil
}

// ListCallbacks returns the callbacks of an operation ordered by ID.
func (r *Repository) ListCallbacks(ctx context.Context, operationID int64) ([]model.Callback, error) {
	rows, err := r.db.QueryContext(ctx, callbackQuery+` WHERE c.operation_id = ? ORDER BY c.id ASC`, operationID)
	if err != nil {
		return nil, fmt.Errorf("could not query callbacks: %w", err)
	}
	defer rows.Close()

	var cbs []model.Callback
	for rows.Next() {
		c, err := scanCallback(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		cbs = append(cbs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cbs, nil
}

// UpdateCallback updates the mutable fields of a callback.
func (r *Repository) UpdateCallback(ctx context.Context, c model.Callback) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE callbacks
		SET last_checkin = ?, active = ?, description = ?, integrity_level = ?,
			encryption_type = ?, encryption_key = ?, decryption_key = ?
		WHERE id = ?`,
		c.LastCheckin.Unix(), c.Active, c.Description, c.IntegrityLevel,
		c.EncryptionType, c.EncryptionKey, c.DecryptionKey, c.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update callback: %w", err)
	}
	if err := checkAffected(res, "callback", c.ID); err != nil {
		return err
	}

	r.publish(changefeed.OpUpdate, changefeed.TableCallback, c.ID, nil)
	return nil
}

func scanCallback(s scanner) (model.Callback, error) {
	var c model.Callback
	var initCallback, lastCheckin int64
	var parent sql.NullInt64
	err := s.Scan(
		&c.ID, &initCallback, &lastCheckin, &c.User, &c.Host, &c.PID, &c.IP, &c.Description,
		&c.OperatorID, &c.Active, &parent, &c.IntegrityLevel, &c.PayloadID, &c.OperationID,
		&c.EncryptionType, &c.EncryptionKey, &c.DecryptionKey,
		&c.PayloadUUID, &c.PayloadTypeID, &c.PayloadTypeName, &c.C2ProfileName, &c.OperationName, &c.OperatorName,
	)
	if err != nil {
		return model.Callback{}, err
	}
	c.InitCallback = timeFromUnix(initCallback)
	c.LastCheckin = timeFromUnix(lastCheckin)
	c.ParentCallbackID = ptrInt64(parent)
	return c, nil
}

// UpsertLoadedCommand registers a command version as loaded in a callback, updating
// the version if it was already loaded.
func (r *Repository) UpsertLoadedCommand(ctx context.Context, l *model.LoadedCommand) error {
	l.Timestamp = nowIfZero(l.Timestamp)

	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM loaded_commands WHERE command_id = ? AND callback_id = ?`, l.CommandID, l.CallbackID,
	).Scan(&id)
	switch {
	case err == nil:
		_, err := r.db.ExecContext(ctx,
			`UPDATE loaded_commands SET version = ?, operator_id = ?, timestamp = ? WHERE id = ?`,
			l.Version, l.OperatorID, l.Timestamp.Unix(), id,
		)
		if err != nil {
			return fmt.Errorf("could not update loaded command: %w", err)
		}
		l.ID = id
		r.publish(changefeed.OpUpdate, changefeed.TableLoadedCommand, id, nil)
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("could not query loaded command: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO loaded_commands (command_id, callback_id, operator_id, version, timestamp) VALUES (?, ?, ?, ?, ?)`,
		l.CommandID, l.CallbackID, l.OperatorID, l.Version, l.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert loaded command: %w", err)
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get loaded command id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TableLoadedCommand, l.ID, nil)
	return nil
}

// ListLoadedCommands returns the commands loaded in a callback.
func (r *Repository) ListLoadedCommands(ctx context.Context, callbackID int64) ([]model.LoadedCommand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.command_id, l.callback_id, l.operator_id, l.version, l.timestamp, c.cmd
		FROM loaded_commands l
		JOIN commands c ON c.id = l.command_id
		WHERE l.callback_id = ?
		ORDER BY c.cmd ASC`, callbackID)
	if err != nil {
		return nil, fmt.Errorf("could not query loaded commands: %w", err)
	}
	defer rows.Close()

	var lcs []model.LoadedCommand
	for rows.Next() {
		var l model.LoadedCommand
		var ts int64
		if err := rows.Scan(&l.ID, &l.CommandID, &l.CallbackID, &l.OperatorID, &l.Version, &ts, &l.Cmd); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		l.Timestamp = time.Unix(ts, 0).UTC()
		lcs = append(lcs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lcs, nil
}
