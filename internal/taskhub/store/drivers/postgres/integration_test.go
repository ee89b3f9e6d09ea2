package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store/drivers/postgres"
	"github.com/aussiebroadwan/taskhub/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) store.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("taskhub"),
		tcpostgres.WithUsername("taskhub"),
		tcpostgres.WithPassword("taskhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(ctx))
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	u := domain.User{
		ID: idx.New().String(), Name: "ana", Email: "Ana@Example.com",
		PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := u
	dup.ID = idx.New().String()
	dup.Name = "ana2"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	tok := domain.VerificationToken{
		ID: idx.New().String(), UserID: u.ID, Purpose: domain.PurposeEmailVerification,
		TokenHash: "fp", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
	}
	require.NoError(t, s.VerificationTokens().CreateVerificationToken(ctx, tok))
	require.NoError(t, s.VerificationTokens().DeleteExpiredUserTokens(ctx, u.ID, domain.PurposeEmailVerification, now))
	_, err = s.VerificationTokens().GetVerificationToken(ctx, u.ID, domain.PurposeEmailVerification, "fp")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		ws := domain.Workspace{
			ID: idx.New().String(), Name: "Acme", Color: "blue",
			OwnerID: u.ID, CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.Workspaces().CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		return tx.Workspaces().AddWorkspaceMember(ctx, domain.WorkspaceMember{
			WorkspaceID: ws.ID, UserID: u.ID, Role: domain.WorkspaceRoleOwner, JoinedAt: now,
		})
	})
	require.NoError(t, err)

	list, err := s.Workspaces().ListWorkspacesForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Acme", list[0].Name)
}
