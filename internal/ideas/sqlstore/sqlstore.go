// Package sqlstore implements ideas.Store over database/sql for PostgreSQL
// and SQLite. Uniqueness is enforced by a UNIQUE constraint on the folded
// text key, so a conflicting insert fails inside the engine.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/pkg/repository"
)

// Dialect selects placeholder syntax and timestamp encoding.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

const columns = "id, text, created_at, user_submitted"

var (
	countSQL  = "SELECT COUNT(*) FROM ideas"
	insertSQL = `
		INSERT INTO ideas (id, text, text_key, created_at, user_submitted)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + columns
	insertIgnoreSQL = `
		INSERT INTO ideas (id, text, text_key, created_at, user_submitted)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`
	listSQL   = "SELECT " + columns + " FROM ideas ORDER BY created_at DESC, seq DESC"
	sampleSQL = "SELECT " + columns + " FROM ideas ORDER BY random() LIMIT 1"
)

// Store is a SQL-backed ideas.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// New creates a Store over db using the given dialect.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) (*Store, error) {
	switch dialect {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("unsupported dialect: %q", dialect)
	}

	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger.With("system", "sqlstore", "dialect", string(dialect)),
	}, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, s.mapError(fmt.Errorf("count ideas: %w", err))
	}
	return n, nil
}

func (s *Store) Insert(ctx context.Context, idea ideas.Idea) (ideas.Idea, error) {
	q := s.rebind(insertSQL)
	args := s.args(idea)

	stored, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (ideas.Idea, error) {
		return repository.QueryOne(ctx, tx, q, args, s.scan)
	})
	if err != nil {
		return ideas.Idea{}, s.mapError(err)
	}

	return stored, nil
}

func (s *Store) InsertMany(ctx context.Context, batch []ideas.Idea) (int, error) {
	q := s.rebind(insertIgnoreSQL)

	inserted, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int, error) {
		total := 0
		for _, idea := range batch {
			n, err := repository.ExecCount(ctx, tx, q, s.args(idea)...)
			if err != nil {
				return 0, fmt.Errorf("insert %q: %w", idea.Text, err)
			}
			total += n
		}
		return total, nil
	})
	if err != nil {
		return 0, s.mapError(err)
	}

	if skipped := len(batch) - inserted; skipped > 0 {
		s.logger.Info("skipped ideas already stored", "count", skipped)
	}
	return inserted, nil
}

func (s *Store) ListByRecency(ctx context.Context) ([]ideas.Idea, error) {
	list, err := repository.QueryMany(ctx, s.db, listSQL, nil, s.scan)
	if err != nil {
		return nil, s.mapError(fmt.Errorf("list ideas: %w", err))
	}
	return list, nil
}

func (s *Store) SampleOne(ctx context.Context) (ideas.Idea, error) {
	idea, err := repository.QueryOne(ctx, s.db, sampleSQL, nil, s.scan)
	if err != nil {
		return ideas.Idea{}, s.mapError(err)
	}
	return idea, nil
}

func (s *Store) args(idea ideas.Idea) []any {
	var created any = idea.CreatedAt
	if s.dialect == SQLite {
		created = idea.CreatedAt.UnixMicro()
	}

	return []any{
		idea.ID,
		idea.Text,
		ideas.Key(idea.Text),
		created,
		idea.UserSubmitted,
	}
}

func (s *Store) scan(sc repository.Scanner) (ideas.Idea, error) {
	var idea ideas.Idea

	if s.dialect == SQLite {
		var micros int64
		err := sc.Scan(&idea.ID, &idea.Text, &micros, &idea.UserSubmitted)
		idea.CreatedAt = time.UnixMicro(micros).UTC()
		return idea, err
	}

	err := sc.Scan(&idea.ID, &idea.Text, &idea.CreatedAt, &idea.UserSubmitted)
	idea.CreatedAt = idea.CreatedAt.UTC()
	return idea, err
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}

	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) mapError(err error) error {
	err = repository.MapError(err, ideas.ErrEmpty, ideas.ErrConflict)
	if repository.IsConnectionFailure(err) {
		return fmt.Errorf("%w: %w", ideas.ErrUnavailable, err)
	}
	return err
}
