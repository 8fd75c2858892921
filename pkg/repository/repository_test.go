package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/emalfdraw/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapErrorNil(t *testing.T) {
	got := repository.MapError(nil, errNotFound, errDuplicate)
	if got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapErrorNotFound(t *testing.T) {
	got := repository.MapError(sql.ErrNoRows, errNotFound, errDuplicate)
	if !errors.Is(got, errNotFound) {
		t.Errorf("MapError(ErrNoRows) = %v, want %v", got, errNotFound)
	}
}

func TestMapErrorDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if !errors.Is(got, errDuplicate) {
		t.Errorf("MapError(PgError 23505) = %v, want %v", got, errDuplicate)
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	original := errors.New("some other error")
	got := repository.MapError(original, errNotFound, errDuplicate)
	if got != original {
		t.Errorf("MapError(other) = %v, want %v", got, original)
	}
}

func TestMapErrorPgNonDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if got != pgErr {
		t.Errorf("MapError(PgError 23503) should pass through, got %v", got)
	}
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func scanName(s repository.Scanner) (string, error) {
	var name string
	err := s.Scan(&name)
	return name, err
}

func TestMapErrorSQLiteDuplicate(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "cat"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := db.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "cat")
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !repository.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if got := repository.MapError(err, errNotFound, errDuplicate); !errors.Is(got, errDuplicate) {
		t.Errorf("MapError(sqlite unique) = %v, want %v", got, errDuplicate)
	}
}

func TestExecCountIgnoredConflict(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	q := "INSERT INTO items (name) VALUES (?) ON CONFLICT DO NOTHING"

	n, err := repository.ExecCount(ctx, db, q, "cat")
	if err != nil || n != 1 {
		t.Fatalf("first insert: n=%d err=%v", n, err)
	}

	n, err = repository.ExecCount(ctx, db, q, "cat")
	if err != nil || n != 0 {
		t.Errorf("conflicting insert: n=%d err=%v, want 0 rows", n, err)
	}
}

func TestWithTxRollback(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	failure := errors.New("abort")

	_, err := repository.WithTx(ctx, db, func(tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "dragon"); err != nil {
			return 0, err
		}
		return 0, failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("WithTx error = %v, want %v", err, failure)
	}

	names, err := repository.QueryMany(ctx, db, "SELECT name FROM items", nil, scanName)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("rolled back rows visible: %v", names)
	}
}

func TestQueryOneNoRows(t *testing.T) {
	db := openSQLite(t)

	_, err := repository.QueryOne(context.Background(), db, "SELECT name FROM items LIMIT 1", nil, scanName)
	if got := repository.MapError(err, errNotFound, errDuplicate); !errors.Is(got, errNotFound) {
		t.Errorf("MapError(empty QueryOne) = %v, want %v", got, errNotFound)
	}
}

func TestIsConnectionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"conn done", sql.ErrConnDone, true},
		{"connect error", &pgconn.ConnectError{Config: &pgconn.Config{}}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.IsConnectionFailure(tt.err); got != tt.want {
				t.Errorf("IsConnectionFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
