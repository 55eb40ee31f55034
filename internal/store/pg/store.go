// Package pg implements core.Repository on Postgres via pgxpool.
//
// The store is the authority for every uniqueness and referential rule:
// SQLSTATE 23505 surfaces as core.ErrConflict, 23503 as either a missing
// parent (insert/update) or a restricted delete, 23514 as core.ErrInvalid.
package pg

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digipraman/loantrack/internal/observability/logger"
	"github.com/digipraman/loantrack/internal/store/core"
	migrations "github.com/digipraman/loantrack/migrations/postgres"
)

type Store struct{ pool *pgxpool.Pool }

// Tuning holds the pool knobs exposed through config. MaxIdleConns maps to
// pgxpool MinConns.
type Tuning struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, t Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if t.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(t.MaxOpenConns)
	}
	if t.MaxIdleConns > 0 {
		pcfg.MinConns = int32(t.MaxIdleConns)
	}
	if t.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(t.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 5
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Non-blocking startup: the service comes up even if the DB is
	// temporarily down; /health/db reports the truth.
	log := logger.Named("pg")
	if err := pool.Ping(ctx); err != nil {
		log.Warn("startup ping failed", logger.Err(err))
	} else {
		log.Info("pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool exposes the underlying pool for metrics collectors.
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats returns a snapshot of the pool state (nil before init).
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// Close closes the pool (idempotent).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Postgres error codes relevant to the data model.
const (
	codeUniqueViolation = "23505"
	codeFKViolation     = "23503"
	codeCheckViolation  = "23514"
)

// mapWriteErr translates errors from inserts/updates: unique → Conflict,
// FK → missing parent (NotFound), CHECK → Invalid.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, core.ErrConflict)
		case codeFKViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, core.ErrNotFound)
		case codeCheckViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, core.ErrInvalid)
		}
	}
	return err
}

// mapDeleteErr translates errors from deletes: an FK violation here means
// dependents still reference the row (restrict-on-delete).
func mapDeleteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeFKViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, core.ErrConflict)
	}
	return err
}

const listOrder = " ORDER BY created_at ASC, id ASC"

// pageClause appends OFFSET/LIMIT placeholders. Limit <= 0 means unbounded,
// matching the memory store's paging.
func pageClause(args []any, p core.Page) (string, []any) {
	if p.Limit <= 0 {
		args = append(args, p.Skip)
		return fmt.Sprintf(" OFFSET $%d", len(args)), args
	}
	args = append(args, p.Skip, p.Limit)
	return fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)-1, len(args)), args
}

// setClause builds "col = $n" fragments from a patch expressed as a column→value
// map, in sorted column order for determinism. startIdx is the first placeholder.
func setClause(updates map[string]any, startIdx int) (string, []any) {
	cols := make([]string, 0, len(updates))
	for c := range updates {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		parts = append(parts, fmt.Sprintf("%s = $%d", c, startIdx+i))
		args = append(args, updates[c])
	}
	return strings.Join(parts, ", "), args
}

// RunMigrations applies the embedded *_up.sql files in name order.
func (s *Store) RunMigrations(ctx context.Context) error {
	return s.runMigrations(ctx, "_up.sql", false)
}

// RunMigrationsDown applies the embedded *_down.sql files in reverse order.
func (s *Store) RunMigrationsDown(ctx context.Context) error {
	return s.runMigrations(ctx, "_down.sql", true)
}

func (s *Store) runMigrations(ctx context.Context, suffix string, reverse bool) error {
	entries, err := migrations.FS.ReadDir(migrations.Dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			files = append(files, migrations.Dir+"/"+e.Name())
		}
	}
	sort.Strings(files)
	if reverse {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	for _, f := range files {
		b, err := migrations.FS.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return nil
}
