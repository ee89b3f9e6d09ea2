package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
)

type txStore struct {
	tx *sql.Tx
	d  *Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the pool stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations(ctx context.Context) error { return nil }

func (t *txStore) q() querier { return querier{db: t.tx, d: t.d} }

func (t *txStore) Users() store.Users                           { return &usersRepo{t.q()} }
func (t *txStore) VerificationTokens() store.VerificationTokens { return &verificationTokensRepo{t.q()} }
func (t *txStore) BackupCodes() store.BackupCodes               { return &backupCodesRepo{t.q()} }
func (t *txStore) MFASessions() store.MFASessions               { return &mfaSessionsRepo{t.q()} }
func (t *txStore) Workspaces() store.Workspaces                 { return &workspacesRepo{t.q()} }
func (t *txStore) Projects() store.Projects                     { return &projectsRepo{t.q()} }
func (t *txStore) Tasks() store.Tasks                           { return &tasksRepo{t.q()} }
