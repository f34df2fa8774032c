package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

// ListPayloadTypes returns every payload type ordered by ID.
func (r *Repository) ListPayloadTypes(ctx context.Context) ([]model.PayloadType, error) {
	rows, err := r.db.QueryContext(ctx, payloadTypeQuery+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query payload types: %w", err)
	}
	defer rows.Close()

	var pts []model.PayloadType
	for rows.Next() {
		p, err := scanPayloadType(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return pts, nil
}

const c2ProfileQuery = `SELECT id, name, description, operator_id, creation_time FROM c2_profiles`

// GetC2Profile retrieves a C2 profile by ID.
func (r *Repository) GetC2Profile(ctx context.Context, id int64) (*model.C2Profile, error) {
	c, err := scanC2Profile(r.db.QueryRowContext(ctx, c2ProfileQuery+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("c2 profile %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query c2 profile: %w", err)
	}
	return &c, nil
}

// ListC2Profiles returns every C2 profile ordered by ID.
func (r *Repository) ListC2Profiles(ctx context.Context) ([]model.C2Profile, error) {
	rows, err := r.db.QueryContext(ctx, c2ProfileQuery+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query c2 profiles: %w", err)
	}
	defer rows.Close()

	var cs []model.C2Profile
	for rows.Next() {
		c, err := scanC2Profile(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		cs = append(cs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cs, nil
}

func scanC2Profile(s scanner) (model.C2Profile, error) {
	var c model.C2Profile
	var creationTime int64
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.OperatorID, &creationTime); err != nil {
		return model.C2Profile{}, err
	}
	c.CreationTime = timeFromUnix(creationTime)
	return c, nil
}

// CreatePayloadTypeC2Profile links a payload type with a C2 profile and sets its ID.
func (r *Repository) CreatePayloadTypeC2Profile(ctx context.Context, p *model.PayloadTypeC2Profile) error {
	if p.PayloadTypeID == 0 || p.C2ProfileID == 0 {
		return fmt.Errorf("payload type and c2 profile are required: %w", model.ErrNotValid)
	}
	p.CreationTime = nowIfZero(p.CreationTime)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payload_type_c2_profiles (payload_type_id, c2_profile_id, creation_time) VALUES (?, ?, ?)`,
		p.PayloadTypeID, p.C2ProfileID, p.CreationTime.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("payload type %d c2 profile %d: %w", p.PayloadTypeID, p.C2ProfileID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert payload type c2 profile: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get payload type c2 profile id: %w", err)
	}

	r.publish(changefeed.OpInsert, changefeed.TablePayloadTypeC2Profile, p.ID, nil)
	return nil
}

const payloadTypeC2ProfileQuery = `
	SELECT ptc.id, ptc.payload_type_id, pt.name, ptc.c2_profile_id, c.name, ptc.creation_time
	FROM payload_type_c2_profiles ptc
	JOIN payload_types pt ON pt.id = ptc.payload_type_id
	JOIN c2_profiles c ON c.id = ptc.c2_profile_id`

// GetPayloadTypeC2Profile retrieves a payload type C2 profile link by ID.
func (r *Repository) GetPayloadTypeC2Profile(ctx context.Context, id int64) (*model.PayloadTypeC2Profile, error) {
	p, err := scanPayloadTypeC2Profile(r.db.QueryRowContext(ctx, payloadTypeC2ProfileQuery+` WHERE ptc.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payload type c2 profile %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query payload type c2 profile: %w", err)
	}
	return &p, nil
}

// ListPayloadTypeC2Profiles returns every payload type C2 profile link ordered by ID.
func (r *Repository) ListPayloadTypeC2Profiles(ctx context.Context) ([]model.PayloadTypeC2Profile, error) {
	rows, err := r.db.QueryContext(ctx, payloadTypeC2ProfileQuery+` ORDER BY ptc.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query payload type c2 profiles: %w", err)
	}
	defer rows.Close()

	var ps []model.PayloadTypeC2Profile
	for rows.Next() {
		p, err := scanPayloadTypeC2Profile(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ps, nil
}

func scanPayloadTypeC2Profile(s scanner) (model.PayloadTypeC2Profile, error) {
	var p model.PayloadTypeC2Profile
	var creationTime int64
	if err := s.Scan(&p.ID, &p.PayloadTypeID, &p.PayloadTypeName, &p.C2ProfileID, &p.C2ProfileName, &creationTime); err != nil {
		return model.PayloadTypeC2Profile{}, err
	}
	p.CreationTime = timeFromUnix(creationTime)
	return p, nil
}
