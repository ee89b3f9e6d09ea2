package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store/sqlstore"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*sqlstore.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlstore.New(db, Dialect), mock
}

var userCols = []string{
	"id", "name", "email", "password_hash", "profile_picture", "is_email_verified",
	"last_login", "mfa_enabled_at", "mfa_secret", "created_at", "updated_at",
}

func TestGetUserByEmail_NumberedParams(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^SELECT .+ FROM users WHERE email = \$1$`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "ana", "ana@example.com", "hash", "", true, nil, nil, nil, now, now))

	u, err := s.Users().GetUserByEmail(context.Background(), " ANA@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.True(t, u.IsEmailVerified)
	require.Nil(t, u.LastLogin)
	require.Nil(t, u.MFASecret)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Users().GetUserByID(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec(`(?s)INSERT INTO users .+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11\)`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := s.Users().CreateUser(context.Background(), domain.User{
		ID: "u1", Name: "ana", Email: "ana@example.com", CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestMarkEmailVerified_NoRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE users SET is_email_verified = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(true, sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Users().MarkEmailVerified(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteExpiredVerificationTokens(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM verification_tokens WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.VerificationTokens().DeleteExpiredVerificationTokens(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
			WithArgs("new", sqlmock.AnyArg(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM verification_tokens WHERE id = \$1`).
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithTx(context.Background(), func(tx store.Tx) error {
			if err := tx.Users().UpdatePasswordHash(context.Background(), "u1", "new"); err != nil {
				return err
			}
			return tx.VerificationTokens().DeleteVerificationToken(context.Background(), "t1")
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
			WillReturnError(errors.New("db down"))
		mock.ExpectRollback()

		err := s.WithTx(context.Background(), func(tx store.Tx) error {
			return tx.Users().UpdatePasswordHash(context.Background(), "u1", "new")
		})
		require.EqualError(t, err, "db down")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplyMigrations(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	t.Run("success", func(t *testing.T) {
		s, _ := newMockStore(t)
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			if dir != "." {
				return errors.New("unexpected dir")
			}
			return nil
		}
		require.NoError(t, s.ApplyMigrations(context.Background()))
	})

	t.Run("error is wrapped", func(t *testing.T) {
		s, _ := newMockStore(t)
		boom := errors.New("boom")
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			return boom
		}
		err := s.ApplyMigrations(context.Background())
		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "postgres: apply migrations")
	})
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("23505")))
}
