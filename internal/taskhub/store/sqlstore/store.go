// Package sqlstore implements store.Store on database/sql. The sqlite and
// postgres drivers open the connection, supply a Dialect and run their own
// migrations; the queries are shared.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
)

// DBTX is the subset of database/sql used by the repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name string

	// NumberedParams rewrites "?" placeholders to $1, $2, ...
	NumberedParams bool

	// IsUniqueViolation recognises the driver's unique/primary key error.
	IsUniqueViolation func(error) bool

	// Migrate brings the schema up to date.
	Migrate func(ctx context.Context, db *sql.DB) error
}

// rebind rewrites "?" placeholders for dialects with numbered parameters.
// Queries in this package never contain a literal "?".
func (d *Dialect) rebind(query string) string {
	if !d.NumberedParams || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
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

// Store is the database/sql backed store.Store.
type Store struct {
	db *sql.DB
	d  *Dialect
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: &d}
}

// DB exposes the underlying pool, for drivers and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations(ctx context.Context) error {
	if s.d.Migrate == nil {
		return nil
	}
	if err := s.d.Migrate(ctx, s.db); err != nil {
		return fmt.Errorf("%s: apply migrations: %w", s.d.Name, err)
	}
	return nil
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, d: s.d}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) q() querier { return querier{db: s.db, d: s.d} }

func (s *Store) Users() store.Users                           { return &usersRepo{s.q()} }
func (s *Store) VerificationTokens() store.VerificationTokens { return &verificationTokensRepo{s.q()} }
func (s *Store) BackupCodes() store.BackupCodes               { return &backupCodesRepo{s.q()} }
func (s *Store) MFASessions() store.MFASessions               { return &mfaSessionsRepo{s.q()} }
func (s *Store) Workspaces() store.Workspaces                 { return &workspacesRepo{s.q()} }
func (s *Store) Projects() store.Projects                     { return &projectsRepo{s.q()} }
func (s *Store) Tasks() store.Tasks                           { return &tasksRepo{s.q()} }

// querier binds a DBTX to a dialect and maps driver errors to store errors.
type querier struct {
	db DBTX
	d  *Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.d.rebind(query), args...)
	return res, q.mapErr(err)
}

// execOne is exec for statements that must touch a row; zero rows affected
// yields store.ErrNotFound.
func (q querier) execOne(ctx context.Context, query string, args ...any) error {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.d.rebind(query), args...)
	return rows, q.mapErr(err)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.rebind(query), args...)
}

func (q querier) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case q.d.IsUniqueViolation != nil && q.d.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	default:
		return err
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows with scan. Rows are always fully read and closed
// before returning so the caller may issue the next query on the same
// connection.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
