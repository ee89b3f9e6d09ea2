package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskhub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(context.Background()))
	// Second run is a no-op.
	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func newUser(t *testing.T, s store.Store, name, email string) domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	u := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: "$argon2id$stub",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := newUser(t, s, "ana", "  Ana@Example.COM ")

	t.Run("lookup is case insensitive", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "ANA@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "ana@example.com", got.Email)
		require.False(t, got.IsEmailVerified)
		require.Nil(t, got.LastLogin)
		require.False(t, got.MFAEnabled())
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		dup.Name = "ana2"
		dup.Email = "ana@EXAMPLE.com"
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		dup.Email = "other@example.com"
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Users().MarkEmailVerified(ctx, "missing"), store.ErrNotFound)
	})

	t.Run("updates", func(t *testing.T) {
		at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, s.Users().MarkEmailVerified(ctx, u.ID))
		require.NoError(t, s.Users().UpdateLastLogin(ctx, u.ID, at))
		require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "$argon2id$new"))
		require.NoError(t, s.Users().UpdateProfilePicture(ctx, u.ID, "avatars/x.png"))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.IsEmailVerified)
		require.NotNil(t, got.LastLogin)
		require.True(t, at.Equal(*got.LastLogin))
		require.Equal(t, "$argon2id$new", got.PasswordHash)
		require.Equal(t, "avatars/x.png", got.ProfilePicture)
	})

	t.Run("mfa", func(t *testing.T) {
		require.NoError(t, s.Users().UpdateMFASecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.MFASecret)
		require.False(t, got.MFAEnabled())

		require.NoError(t, s.Users().EnableMFA(ctx, u.ID, time.Now()))
		got, err = s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.MFAEnabled())

		require.NoError(t, s.Users().DisableMFA(ctx, u.ID))
		got, err = s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.MFAEnabled())
		require.Nil(t, got.MFASecret)
	})
}

func TestVerificationTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := newUser(t, s, "ben", "ben@example.com")
	repo := s.VerificationTokens()

	now := time.Now().UTC().Truncate(time.Second)
	mk := func(hash string, created, expires time.Time) domain.VerificationToken {
		tok := domain.VerificationToken{
			ID:        idx.NewAt(created).String(),
			UserID:    u.ID,
			Purpose:   domain.PurposePasswordReset,
			TokenHash: hash,
			ExpiresAt: expires,
			CreatedAt: created,
		}
		require.NoError(t, repo.CreateVerificationToken(ctx, tok))
		return tok
	}

	old := mk("expired", now.Add(-time.Hour), now.Add(-45*time.Minute))
	live := mk("live", now, now.Add(15*time.Minute))

	t.Run("get by fingerprint", func(t *testing.T) {
		got, err := repo.GetVerificationToken(ctx, u.ID, domain.PurposePasswordReset, "live")
		require.NoError(t, err)
		require.Equal(t, live.ID, got.ID)
		require.True(t, got.ActiveAt(now))

		_, err = repo.GetVerificationToken(ctx, u.ID, domain.PurposeEmailVerification, "live")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		list, err := repo.ListVerificationTokens(ctx, u.ID, domain.PurposePasswordReset)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, live.ID, list[0].ID)
		require.Equal(t, old.ID, list[1].ID)
	})

	t.Run("delete expired for user", func(t *testing.T) {
		require.NoError(t, repo.DeleteExpiredUserTokens(ctx, u.ID, domain.PurposePasswordReset, now))
		list, err := repo.ListVerificationTokens(ctx, u.ID, domain.PurposePasswordReset)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, live.ID, list[0].ID)
	})

	t.Run("housekeeping", func(t *testing.T) {
		n, err := repo.DeleteExpiredVerificationTokens(ctx, now.Add(time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		require.ErrorIs(t, repo.DeleteVerificationToken(ctx, live.ID), store.ErrNotFound)
	})
}

func TestBackupCodes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := newUser(t, s, "cat", "cat@example.com")
	repo := s.BackupCodes()

	require.NoError(t, repo.CreateBackupCode(ctx, u.ID, "h1"))
	require.NoError(t, repo.CreateBackupCode(ctx, u.ID, "h2"))

	ok, err := repo.VerifyBackupCode(ctx, u.ID, "h1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.VerifyBackupCode(ctx, u.ID, "nope")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.DeleteBackupCode(ctx, u.ID, "h1"))
	n, err := repo.CountUserBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, repo.DeleteAllBackupCodes(ctx, u.ID))
	n, err = repo.CountUserBackupCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMFASessions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := newUser(t, s, "fay", "fay@example.com")
	repo := s.MFASessions()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.CreateMFASession(ctx, domain.MFASession{ID: "fp-1", UserID: u.ID, ExpiresAt: now.Add(time.Minute), CreatedAt: now}))
	require.NoError(t, repo.CreateMFASession(ctx, domain.MFASession{ID: "fp-2", UserID: u.ID, ExpiresAt: now.Add(-time.Minute), CreatedAt: now}))

	got, err := repo.GetMFASession(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.Zero(t, got.Attempts)
	require.True(t, got.ExpiresAt.Equal(now.Add(time.Minute)))

	n, err := repo.IncrementMFASessionAttempts(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = repo.IncrementMFASessionAttempts(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	_, err = repo.IncrementMFASessionAttempts(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	deleted, err := repo.DeleteExpiredMFASessions(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	require.NoError(t, repo.DeleteMFASession(ctx, "fp-1"))
	require.ErrorIs(t, repo.DeleteMFASession(ctx, "fp-1"), store.ErrNotFound)
	_, err = repo.GetMFASession(ctx, "fp-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWorkspacesProjectsTasks(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := newUser(t, s, "dora", "dora@example.com")
	member := newUser(t, s, "eli", "eli@example.com")
	now := time.Now().UTC().Truncate(time.Second)

	ws := domain.Workspace{
		ID: idx.New().String(), Name: "Acme", Color: "#ff0000",
		OwnerID: owner.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Workspaces().CreateWorkspace(ctx, ws))
	require.NoError(t, s.Workspaces().AddWorkspaceMember(ctx, domain.WorkspaceMember{
		WorkspaceID: ws.ID, UserID: owner.ID, Role: domain.WorkspaceRoleOwner, JoinedAt: now,
	}))
	require.NoError(t, s.Workspaces().AddWorkspaceMember(ctx, domain.WorkspaceMember{
		WorkspaceID: ws.ID, UserID: member.ID, Role: domain.WorkspaceRoleMember, JoinedAt: now.Add(time.Second),
	}))

	t.Run("duplicate member", func(t *testing.T) {
		err := s.Workspaces().AddWorkspaceMember(ctx, domain.WorkspaceMember{
			WorkspaceID: ws.ID, UserID: member.ID, Role: domain.WorkspaceRoleViewer, JoinedAt: now,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("members joined with users", func(t *testing.T) {
		members, err := s.Workspaces().ListWorkspaceMembers(ctx, ws.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		require.Equal(t, "dora", members[0].Name)
		require.Equal(t, "eli@example.com", members[1].Email)

		require.NoError(t, s.Workspaces().UpdateWorkspaceMemberRole(ctx, ws.ID, member.ID, domain.WorkspaceRoleAdmin))
		m, err := s.Workspaces().GetWorkspaceMember(ctx, ws.ID, member.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WorkspaceRoleAdmin, m.Role)
	})

	t.Run("list for user", func(t *testing.T) {
		list, err := s.Workspaces().ListWorkspacesForUser(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, ws.ID, list[0].ID)
	})

	due := now.Add(48 * time.Hour)
	p := domain.Project{
		ID: idx.New().String(), WorkspaceID: ws.ID, Title: "Launch",
		Status: domain.ProjectPlanning, DueDate: &due, Tags: []string{"q3", "web"},
		CreatedBy: owner.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Projects().CreateProject(ctx, p))
	require.NoError(t, s.Projects().AddProjectMember(ctx, domain.ProjectMember{
		ProjectID: p.ID, UserID: owner.ID, Role: domain.ProjectRoleManager, JoinedAt: now,
	}))

	t.Run("project roundtrip", func(t *testing.T) {
		got, err := s.Projects().GetProjectByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"q3", "web"}, got.Tags)
		require.Nil(t, got.StartDate)
		require.NotNil(t, got.DueDate)
		require.True(t, due.Equal(*got.DueDate))

		require.NoError(t, s.Projects().UpdateProjectProgress(ctx, p.ID, 50, domain.ProjectInProgress))
		got, err = s.Projects().GetProjectByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, 50, got.Progress)
		require.Equal(t, domain.ProjectInProgress, got.Status)

		members, err := s.Projects().ListProjectMembers(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)

		_, err = s.Projects().GetProjectMember(ctx, p.ID, member.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("tasks", func(t *testing.T) {
		first := domain.Task{
			ID: idx.NewAt(now).String(), ProjectID: p.ID, Title: "Design",
			Status: domain.TaskToDo, Priority: domain.PriorityHigh,
			Assignees: []string{owner.ID, member.ID}, CreatedBy: owner.ID,
			CreatedAt: now, UpdatedAt: now,
		}
		second := domain.Task{
			ID: idx.NewAt(now.Add(time.Second)).String(), ProjectID: p.ID, Title: "Build",
			Status: domain.TaskToDo, Priority: domain.PriorityLow,
			CreatedBy: owner.ID, CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second),
		}
		require.NoError(t, s.Tasks().CreateTask(ctx, first))
		require.NoError(t, s.Tasks().CreateTask(ctx, second))

		list, err := s.Tasks().ListTasksByProject(ctx, p.ID, false)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, second.ID, list[0].ID)
		require.Empty(t, list[0].Assignees)
		require.ElementsMatch(t, []string{owner.ID, member.ID}, list[1].Assignees)

		require.NoError(t, s.Tasks().UpdateTaskStatus(ctx, first.ID, domain.TaskDone))
		require.NoError(t, s.Tasks().ArchiveTask(ctx, second.ID))

		list, err = s.Tasks().ListTasksByProject(ctx, p.ID, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, domain.TaskDone, list[0].Status)

		list, err = s.Tasks().ListTasksByProject(ctx, p.ID, true)
		require.NoError(t, err)
		require.Len(t, list, 2)

		got, err := s.Tasks().GetTaskByID(ctx, second.ID)
		require.NoError(t, err)
		require.True(t, got.IsArchived)

		require.ErrorIs(t, s.Tasks().ArchiveTask(ctx, "missing"), store.ErrNotFound)
	})

	t.Run("remove member", func(t *testing.T) {
		require.NoError(t, s.Projects().AddProjectMember(ctx, domain.ProjectMember{
			ProjectID: p.ID, UserID: member.ID, Role: domain.ProjectRoleContributor, JoinedAt: now,
		}))

		require.NoError(t, s.Workspaces().RemoveWorkspaceMember(ctx, ws.ID, member.ID))
		require.ErrorIs(t, s.Workspaces().RemoveWorkspaceMember(ctx, ws.ID, member.ID), store.ErrNotFound)

		n, err := s.Projects().RemoveWorkspaceProjectMemberships(ctx, ws.ID, member.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		_, err = s.Projects().GetProjectMember(ctx, p.ID, member.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		n, err = s.Projects().RemoveWorkspaceProjectMemberships(ctx, "other", owner.ID)
		require.NoError(t, err)
		require.Zero(t, n)
		_, err = s.Projects().GetProjectMember(ctx, p.ID, owner.ID)
		require.NoError(t, err)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := newUser(t, s, "fay", "fay@example.com")

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Users().MarkEmailVerified(ctx, u.ID))
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.IsEmailVerified)
	})

	t.Run("commit", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().MarkEmailVerified(ctx, u.ID)
		})
		require.NoError(t, err)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.IsEmailVerified)
	})

	t.Run("no nesting", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}
