package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkspace(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.seedUser(t, "owner", true)

	t.Run("validates input", func(t *testing.T) {
		_, err := e.spaces.CreateWorkspace(ctx, owner.ID, CreateWorkspaceInput{Name: "ab", Color: "#fff"})
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = e.spaces.CreateWorkspace(ctx, owner.ID, CreateWorkspaceInput{Name: "Design", Color: "#f"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("creator is the owner", func(t *testing.T) {
		ws, err := e.spaces.CreateWorkspace(ctx, owner.ID, CreateWorkspaceInput{Name: " Design ", Color: "#ff8800"})
		require.NoError(t, err)
		require.Equal(t, "Design", ws.Name)
		require.Equal(t, owner.ID, ws.OwnerID)
		require.Len(t, ws.Members, 1)
		require.Equal(t, domain.WorkspaceRoleOwner, ws.Members[0].Role)
		require.Equal(t, "owner@example.com", ws.Members[0].Email)
	})

	t.Run("listed newest first", func(t *testing.T) {
		e.clock.Advance(time.Minute)
		second, err := e.spaces.CreateWorkspace(ctx, owner.ID, CreateWorkspaceInput{Name: "Backend", Color: "#0088ff"})
		require.NoError(t, err)

		list, err := e.spaces.ListWorkspaces(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, second.ID, list[0].ID)

		stranger := e.seedUser(t, "stranger", true)
		list, err = e.spaces.ListWorkspaces(ctx, stranger.ID)
		require.NoError(t, err)
		require.NotNil(t, list)
		require.Empty(t, list)
	})
}

func TestWorkspaceMembership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.seedUser(t, "owner", true)
	admin := e.seedUser(t, "admin", true)
	member := e.seedUser(t, "member", true)
	unverified := e.seedUser(t, "pending", false)
	outsider := e.seedUser(t, "outsider", true)

	ws, err := e.spaces.CreateWorkspace(ctx, owner.ID, CreateWorkspaceInput{Name: "Design", Color: "#ff8800"})
	require.NoError(t, err)

	t.Run("owner adds by email", func(t *testing.T) {
		m, err := e.spaces.AddMember(ctx, owner.ID, ws.ID, "ADMIN@example.com", domain.WorkspaceRoleAdmin)
		require.NoError(t, err)
		require.Equal(t, admin.ID, m.UserID)

		_, err = e.spaces.AddMember(ctx, admin.ID, ws.ID, member.Email, domain.WorkspaceRoleMember)
		require.NoError(t, err)

		got, err := e.spaces.GetWorkspace(ctx, member.ID, ws.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 3)
	})

	t.Run("add rejections", func(t *testing.T) {
		_, err := e.spaces.AddMember(ctx, owner.ID, ws.ID, member.Email, domain.WorkspaceRoleViewer)
		require.ErrorIs(t, err, ErrMemberExists)

		_, err = e.spaces.AddMember(ctx, owner.ID, ws.ID, outsider.Email, domain.WorkspaceRoleOwner)
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = e.spaces.AddMember(ctx, owner.ID, ws.ID, unverified.Email, domain.WorkspaceRoleMember)
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = e.spaces.AddMember(ctx, owner.ID, ws.ID, "ghost@example.com", domain.WorkspaceRoleMember)
		require.ErrorIs(t, err, ErrUserNotFound)

		_, err = e.spaces.AddMember(ctx, member.ID, ws.ID, outsider.Email, domain.WorkspaceRoleMember)
		require.ErrorIs(t, err, ErrInsufficientRole)

		_, err = e.spaces.AddMember(ctx, outsider.ID, ws.ID, outsider.Email, domain.WorkspaceRoleMember)
		require.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("access is member gated", func(t *testing.T) {
		_, err := e.spaces.GetWorkspace(ctx, outsider.ID, ws.ID)
		require.ErrorIs(t, err, ErrNotMember)

		_, err = e.spaces.GetWorkspace(ctx, owner.ID, "missing")
		require.ErrorIs(t, err, ErrWorkspaceNotFound)
	})

	t.Run("roles", func(t *testing.T) {
		require.NoError(t, e.spaces.UpdateMemberRole(ctx, admin.ID, ws.ID, member.ID, domain.WorkspaceRoleViewer))
		m, err := e.store.Workspaces().GetWorkspaceMember(ctx, ws.ID, member.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WorkspaceRoleViewer, m.Role)

		require.ErrorIs(t, e.spaces.UpdateMemberRole(ctx, admin.ID, ws.ID, owner.ID, domain.WorkspaceRoleMember), ErrInsufficientRole)
		require.ErrorIs(t, e.spaces.UpdateMemberRole(ctx, owner.ID, ws.ID, admin.ID, domain.WorkspaceRoleOwner), ErrInvalidInput)
		require.ErrorIs(t, e.spaces.UpdateMemberRole(ctx, member.ID, ws.ID, admin.ID, domain.WorkspaceRoleViewer), ErrInsufficientRole)
		require.ErrorIs(t, e.spaces.UpdateMemberRole(ctx, owner.ID, ws.ID, outsider.ID, domain.WorkspaceRoleViewer), ErrMemberNotFound)
	})

	t.Run("removal", func(t *testing.T) {
		require.ErrorIs(t, e.spaces.RemoveMember(ctx, member.ID, ws.ID, admin.ID), ErrInsufficientRole)
		require.ErrorIs(t, e.spaces.RemoveMember(ctx, admin.ID, ws.ID, owner.ID), ErrInsufficientRole)
		require.ErrorIs(t, e.spaces.RemoveMember(ctx, owner.ID, ws.ID, owner.ID), ErrInsufficientRole)
		require.ErrorIs(t, e.spaces.RemoveMember(ctx, owner.ID, ws.ID, outsider.ID), ErrMemberNotFound)

		// Anyone may leave.
		require.NoError(t, e.spaces.RemoveMember(ctx, member.ID, ws.ID, member.ID))
		require.NoError(t, e.spaces.RemoveMember(ctx, owner.ID, ws.ID, admin.ID))

		got, err := e.spaces.GetWorkspace(ctx, owner.ID, ws.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
	})
}
