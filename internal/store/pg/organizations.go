package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/digipraman/loantrack/internal/store/core"
)

func (s *Store) CreateOrganization(ctx context.Context, o *core.Organization) error {
	if o.Config == nil {
		o.Config = map[string]any{}
	}
	const q = `
INSERT INTO organizations (id, name, type, config)
VALUES (gen_random_uuid(), $1, $2, $3)
RETURNING id, created_at`
	if err := s.pool.QueryRow(ctx, q, o.Name, o.Type, o.Config).Scan(&o.ID, &o.CreatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*core.Organization, error) {
	const q = `
SELECT id, name, type, config, created_at
FROM organizations
WHERE id = $1`
	var o core.Organization
	err := s.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.Name, &o.Type, &o.Config, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrganizations(ctx context.Context, p core.Page) ([]core.Organization, error) {
	q := `SELECT id, name, type, config, created_at FROM organizations` + listOrder
	clause, args := pageClause(nil, p)
	rows, err := s.pool.Query(ctx, q+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Organization{}
	for rows.Next() {
		var o core.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Type, &o.Config, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) UpdateOrganization(ctx context.Context, id string, patch core.OrganizationPatch) (*core.Organization, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.Config != nil {
		updates["config"] = *patch.Config
	}
	if len(updates) == 0 {
		return s.GetOrganization(ctx, id)
	}

	set, args := setClause(updates, 2)
	q := `UPDATE organizations SET ` + set + ` WHERE id = $1
RETURNING id, name, type, config, created_at`
	var o core.Organization
	err := s.pool.QueryRow(ctx, q, append([]any{id}, args...)...).
		Scan(&o.ID, &o.Name, &o.Type, &o.Config, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, mapWriteErr(err)
	}
	return &o, nil
}

// DeleteOrganization refuses while schemes or users still reference the row
// (FK RESTRICT); that surfaces as core.ErrConflict.
func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
