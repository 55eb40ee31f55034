package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/digipraman/loantrack/internal/store/core"
)

const deviceCols = `id, user_id, fingerprint, last_seen, trust_score, metadata, created_at`

func scanDevice(row pgx.Row) (*core.Device, error) {
	var d core.Device
	err := row.Scan(&d.ID, &d.UserID, &d.Fingerprint,
		&d.LastSeen, &d.TrustScore, &d.Metadata, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) CreateDevice(ctx context.Context, d *core.Device) error {
	const q = `
INSERT INTO devices (id, user_id, fingerprint, last_seen, trust_score, metadata)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q, d.UserID, d.Fingerprint, d.LastSeen, d.TrustScore, d.Metadata).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetDevice(ctx context.Context, id string) (*core.Device, error) {
	const q = `SELECT ` + deviceCols + ` FROM devices WHERE id = $1`
	return scanDevice(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetDeviceByFingerprint(ctx context.Context, fp string) (*core.Device, error) {
	const q = `SELECT ` + deviceCols + ` FROM devices WHERE fingerprint = $1`
	return scanDevice(s.pool.QueryRow(ctx, q, fp))
}

func (s *Store) ListDevicesByUser(ctx context.Context, userID string, p core.Page) ([]core.Device, error) {
	q := `SELECT ` + deviceCols + ` FROM devices WHERE user_id = $1` + listOrder
	clause, args := pageClause([]any{userID}, p)
	rows, err := s.pool.Query(ctx, q+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDevice(ctx context.Context, id string, patch core.DevicePatch) (*core.Device, error) {
	updates := map[string]any{}
	if patch.Fingerprint != nil {
		updates["fingerprint"] = *patch.Fingerprint
	}
	if patch.LastSeen != nil {
		updates["last_seen"] = *patch.LastSeen
	}
	if patch.TrustScore != nil {
		updates["trust_score"] = *patch.TrustScore
	}
	if patch.Metadata != nil {
		updates["metadata"] = *patch.Metadata
	}
	if len(updates) == 0 {
		return s.GetDevice(ctx, id)
	}

	set, args := setClause(updates, 2)
	q := `UPDATE devices SET ` + set + ` WHERE id = $1 RETURNING ` + deviceCols
	d, err := scanDevice(s.pool.QueryRow(ctx, q, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, mapWriteErr(err)
	}
	return d, nil
}

func (s *Store) DeleteDevice(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
