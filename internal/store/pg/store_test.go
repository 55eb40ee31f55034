package pg

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/digipraman/loantrack/internal/store/core"
)

func TestMapWriteErr(t *testing.T) {
	cases := []struct {
		name       string
		code       string
		constraint string
		want       error
	}{
		{"unique violation", "23505", "schemes_code_key", core.ErrConflict},
		{"fk violation", "23503", "users_org_id_fkey", core.ErrNotFound},
		{"check violation", "23514", "devices_trust_score_check", core.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := mapWriteErr(&pgconn.PgError{Code: tc.code, ConstraintName: tc.constraint})
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if !strings.Contains(err.Error(), tc.constraint) {
				t.Fatalf("constraint name lost: %v", err)
			}
		})
	}
}

func TestMapWriteErrPassthrough(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	if got := mapWriteErr(plain); got != plain {
		t.Fatalf("non-pg error rewritten: %v", got)
	}
	// Unrelated SQLSTATE stays as-is.
	var other error = &pgconn.PgError{Code: "57014"}
	if got := mapWriteErr(other); got != other {
		t.Fatalf("unrelated pg error rewritten: %v", got)
	}
}

func TestMapDeleteErr(t *testing.T) {
	err := mapDeleteErr(&pgconn.PgError{Code: "23503", ConstraintName: "schemes_org_id_fkey"})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("fk on delete: got %v, want ErrConflict", err)
	}

	plain := fmt.Errorf("boom")
	if got := mapDeleteErr(plain); got != plain {
		t.Fatalf("non-pg error rewritten: %v", got)
	}
}

func TestPageClause(t *testing.T) {
	clause, args := pageClause([]any{"org-1"}, core.Page{Skip: 20, Limit: 10})
	if clause != " OFFSET $2 LIMIT $3" {
		t.Fatalf("clause: %q", clause)
	}
	if len(args) != 3 || args[1] != 20 || args[2] != 10 {
		t.Fatalf("args: %v", args)
	}

	// Zero limit means no LIMIT clause at all, not LIMIT 0.
	clause, args = pageClause([]any{"user-1"}, core.Page{})
	if clause != " OFFSET $2" {
		t.Fatalf("unbounded clause: %q", clause)
	}
	if len(args) != 2 || args[1] != 0 {
		t.Fatalf("unbounded args: %v", args)
	}
}

func TestSetClause(t *testing.T) {
	clause, args := setClause(map[string]any{"name": "x", "code": "y"}, 2)
	// Columns sort alphabetically so generated SQL is stable.
	if clause != "code = $2, name = $3" {
		t.Fatalf("clause: %q", clause)
	}
	if len(args) != 2 || args[0] != "y" || args[1] != "x" {
		t.Fatalf("args: %v", args)
	}
}
