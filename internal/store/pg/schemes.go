package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/digipraman/loantrack/internal/store/core"
)

const schemeCols = `id, org_id, code, name, evidence_template, default_thresholds, locale_options, created_at`

func scanScheme(row pgx.Row) (*core.Scheme, error) {
	var sc core.Scheme
	err := row.Scan(&sc.ID, &sc.OrgID, &sc.Code, &sc.Name,
		&sc.EvidenceTemplate, &sc.DefaultThresholds, &sc.LocaleOptions, &sc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &sc, nil
}

func (s *Store) CreateScheme(ctx context.Context, sc *core.Scheme) error {
	const q = `
INSERT INTO schemes (id, org_id, code, name, evidence_template, default_thresholds, locale_options)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q, sc.OrgID, sc.Code, sc.Name,
		sc.EvidenceTemplate, sc.DefaultThresholds, sc.LocaleOptions).
		Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetScheme(ctx context.Context, id string) (*core.Scheme, error) {
	const q = `SELECT ` + schemeCols + ` FROM schemes WHERE id = $1`
	return scanScheme(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetSchemeByCode(ctx context.Context, code string) (*core.Scheme, error) {
	const q = `SELECT ` + schemeCols + ` FROM schemes WHERE code = $1`
	return scanScheme(s.pool.QueryRow(ctx, q, code))
}

func (s *Store) ListSchemes(ctx context.Context, f core.SchemeFilter) ([]core.Scheme, error) {
	q := `SELECT ` + schemeCols + ` FROM schemes`
	var args []any
	if f.OrgID != nil {
		q += ` WHERE org_id = $1`
		args = append(args, *f.OrgID)
	}
	q += listOrder
	clause, args := pageClause(args, f.Page)
	rows, err := s.pool.Query(ctx, q+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Scheme{}
	for rows.Next() {
		sc, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

func (s *Store) UpdateScheme(ctx context.Context, id string, patch core.SchemePatch) (*core.Scheme, error) {
	updates := map[string]any{}
	if patch.Code != nil {
		updates["code"] = *patch.Code
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.EvidenceTemplate != nil {
		updates["evidence_template"] = *patch.EvidenceTemplate
	}
	if patch.DefaultThresholds != nil {
		updates["default_thresholds"] = *patch.DefaultThresholds
	}
	if patch.LocaleOptions != nil {
		updates["locale_options"] = *patch.LocaleOptions
	}
	if len(updates) == 0 {
		return s.GetScheme(ctx, id)
	}

	set, args := setClause(updates, 2)
	q := `UPDATE schemes SET ` + set + ` WHERE id = $1 RETURNING ` + schemeCols
	sc, err := scanScheme(s.pool.QueryRow(ctx, q, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, mapWriteErr(err)
	}
	return sc, nil
}

func (s *Store) DeleteScheme(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM schemes WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
