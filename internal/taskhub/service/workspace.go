package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/idx"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
)

// WorkspaceService manages workspaces and their membership.
type WorkspaceService struct {
	Store store.Store
	Now   func() time.Time
}

type CreateWorkspaceInput struct {
	Name        string
	Description string
	Color       string
}

// WorkspaceDetail is a workspace with its member list.
type WorkspaceDetail struct {
	domain.Workspace
	Members []domain.WorkspaceMember
}

func (s *WorkspaceService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateWorkspace creates a workspace owned by ownerID.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, ownerID string, in CreateWorkspaceInput) (WorkspaceDetail, error) {
	name := strings.TrimSpace(in.Name)
	color := strings.TrimSpace(in.Color)
	if utf8.RuneCountInString(name) < 3 {
		return WorkspaceDetail{}, invalidInput("name must be at least 3 characters")
	}
	if utf8.RuneCountInString(color) < 3 {
		return WorkspaceDetail{}, invalidInput("color must be at least 3 characters")
	}

	now := s.now()
	ws := domain.Workspace{
		ID:          idx.NewAt(now).String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := domain.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      ownerID,
		Role:        domain.WorkspaceRoleOwner,
		JoinedAt:    now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workspaces().CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		return tx.Workspaces().AddWorkspaceMember(ctx, owner)
	})
	if err != nil {
		return WorkspaceDetail{}, err
	}

	slogx.FromContext(ctx).Info("workspace created", slog.String("workspace_id", ws.ID))
	return s.detail(ctx, ws)
}

// ListWorkspaces returns the workspaces userID belongs to, newest first.
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error) {
	list, err := s.Store.Workspaces().ListWorkspacesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Workspace{}
	}
	return list, nil
}

// GetWorkspace returns a workspace the caller is a member of.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, userID, workspaceID string) (WorkspaceDetail, error) {
	ws, _, err := s.membership(ctx, workspaceID, userID)
	if err != nil {
		return WorkspaceDetail{}, err
	}
	return s.detail(ctx, ws)
}

// AddMember adds the verified user with email to the workspace. Only owners
// and admins may add members, and nobody can be added as owner.
func (s *WorkspaceService) AddMember(
	ctx context.Context,
	actorID, workspaceID, email string,
	role domain.WorkspaceRole,
) (domain.WorkspaceMember, error) {
	if !role.Valid() || role == domain.WorkspaceRoleOwner {
		return domain.WorkspaceMember{}, invalidInput("role must be admin, member or viewer")
	}
	if _, err := s.manager(ctx, workspaceID, actorID); err != nil {
		return domain.WorkspaceMember{}, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.WorkspaceMember{}, ErrUserNotFound
		}
		return domain.WorkspaceMember{}, err
	}
	if !user.IsEmailVerified {
		return domain.WorkspaceMember{}, invalidInput("user has not verified their email")
	}

	m := domain.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
		JoinedAt:    s.now(),
		Name:        user.Name,
		Email:       user.Email,
	}
	if err := s.Store.Workspaces().AddWorkspaceMember(ctx, m); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.WorkspaceMember{}, ErrMemberExists
		}
		return domain.WorkspaceMember{}, err
	}

	slogx.FromContext(ctx).Info("workspace member added",
		slog.String("workspace_id", workspaceID),
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
	)
	return m, nil
}

// UpdateMemberRole changes a member's role. The owner's role is fixed.
func (s *WorkspaceService) UpdateMemberRole(
	ctx context.Context,
	actorID, workspaceID, userID string,
	role domain.WorkspaceRole,
) error {
	if !role.Valid() || role == domain.WorkspaceRoleOwner {
		return invalidInput("role must be admin, member or viewer")
	}
	if _, err := s.manager(ctx, workspaceID, actorID); err != nil {
		return err
	}

	target, err := s.member(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if target.Role == domain.WorkspaceRoleOwner {
		return ErrInsufficientRole
	}
	return s.Store.Workspaces().UpdateWorkspaceMemberRole(ctx, workspaceID, userID, role)
}

// RemoveMember removes userID from the workspace. Owners and admins may
// remove anyone but the owner; any other member may only remove themselves.
func (s *WorkspaceService) RemoveMember(ctx context.Context, actorID, workspaceID, userID string) error {
	_, actor, err := s.membership(ctx, workspaceID, actorID)
	if err != nil {
		return err
	}
	if actorID != userID && !actor.Role.CanManageMembers() {
		return ErrInsufficientRole
	}

	target, err := s.member(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if target.Role == domain.WorkspaceRoleOwner {
		return ErrInsufficientRole
	}

	var dropped int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workspaces().RemoveWorkspaceMember(ctx, workspaceID, userID); err != nil {
			return err
		}
		n, err := tx.Projects().RemoveWorkspaceProjectMemberships(ctx, workspaceID, userID)
		dropped = n
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("workspace member removed",
		slog.String("workspace_id", workspaceID),
		slog.String("user_id", userID),
		slog.Int64("project_memberships", dropped),
	)
	return nil
}

// membership loads the workspace and userID's membership in it.
func (s *WorkspaceService) membership(ctx context.Context, workspaceID, userID string) (domain.Workspace, domain.WorkspaceMember, error) {
	return workspaceMembership(ctx, s.Store, workspaceID, userID)
}

func (s *WorkspaceService) manager(ctx context.Context, workspaceID, userID string) (domain.WorkspaceMember, error) {
	_, m, err := s.membership(ctx, workspaceID, userID)
	if err != nil {
		return domain.WorkspaceMember{}, err
	}
	if !m.Role.CanManageMembers() {
		return domain.WorkspaceMember{}, ErrInsufficientRole
	}
	return m, nil
}

func (s *WorkspaceService) member(ctx context.Context, workspaceID, userID string) (domain.WorkspaceMember, error) {
	m, err := s.Store.Workspaces().GetWorkspaceMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.WorkspaceMember{}, ErrMemberNotFound
		}
		return domain.WorkspaceMember{}, err
	}
	return m, nil
}

func (s *WorkspaceService) detail(ctx context.Context, ws domain.Workspace) (WorkspaceDetail, error) {
	members, err := s.Store.Workspaces().ListWorkspaceMembers(ctx, ws.ID)
	if err != nil {
		return WorkspaceDetail{}, err
	}
	return WorkspaceDetail{Workspace: ws, Members: members}, nil
}

func workspaceMembership(
	ctx context.Context,
	st store.Store,
	workspaceID, userID string,
) (domain.Workspace, domain.WorkspaceMember, error) {
	ws, err := st.Workspaces().GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Workspace{}, domain.WorkspaceMember{}, ErrWorkspaceNotFound
		}
		return domain.Workspace{}, domain.WorkspaceMember{}, err
	}

	m, err := st.Workspaces().GetWorkspaceMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Workspace{}, domain.WorkspaceMember{}, ErrNotMember
		}
		return domain.Workspace{}, domain.WorkspaceMember{}, err
	}
	return ws, m, nil
}
