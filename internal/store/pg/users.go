package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/digipraman/loantrack/internal/store/core"
)

const userCols = `id, org_id, role, name, mobile, email, locale, status, created_at`

func scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.OrgID, &u.Role, &u.Name, &u.Mobile,
		&u.Email, &u.Locale, &u.Status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if u.Locale == "" {
		u.Locale = "en"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	const q = `
INSERT INTO users (id, org_id, role, name, mobile, email, locale, status)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q, u.OrgID, u.Role, u.Name, u.Mobile, u.Email, u.Locale, u.Status).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetUserByMobile(ctx context.Context, mobile string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE mobile = $1`
	return scanUser(s.pool.QueryRow(ctx, q, mobile))
}

func (s *Store) ListUsers(ctx context.Context, f core.UserFilter) ([]core.User, error) {
	q := `SELECT ` + userCols + ` FROM users`
	var args []any
	var conds []string
	if f.OrgID != nil {
		args = append(args, *f.OrgID)
		conds = append(conds, fmt.Sprintf("org_id = $%d", len(args)))
	}
	if f.Role != nil {
		args = append(args, *f.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += listOrder
	clause, args := pageClause(args, f.Page)
	rows, err := s.pool.Query(ctx, q+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch core.UserPatch) (*core.User, error) {
	updates := map[string]any{}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Mobile != nil {
		updates["mobile"] = *patch.Mobile
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Locale != nil {
		updates["locale"] = *patch.Locale
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return s.GetUser(ctx, id)
	}

	set, args := setClause(updates, 2)
	q := `UPDATE users SET ` + set + ` WHERE id = $1 RETURNING ` + userCols
	u, err := scanUser(s.pool.QueryRow(ctx, q, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, mapWriteErr(err)
	}
	return u, nil
}

// DeleteUser cascades to the user's devices (FK CASCADE).
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
