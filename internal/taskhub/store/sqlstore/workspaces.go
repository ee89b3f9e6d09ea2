package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

type workspacesRepo struct {
	q querier
}

const workspaceColumns = `w.id, w.name, w.description, w.color, w.owner_id, w.created_at, w.updated_at`

func scanWorkspace(s scanner) (domain.Workspace, error) {
	var w domain.Workspace
	if err := s.Scan(&w.ID, &w.Name, &w.Description, &w.Color, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return domain.Workspace{}, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}

func (r *workspacesRepo) CreateWorkspace(ctx context.Context, w domain.Workspace) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO workspaces (id, name, description, color, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Description, w.Color, w.OwnerID, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	return err
}

func (r *workspacesRepo) GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error) {
	row := r.q.queryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = ?`, id)
	w, err := scanWorkspace(row)
	return w, r.q.mapErr(err)
}

func (r *workspacesRepo) ListWorkspacesForUser(ctx context.Context, userID string) ([]domain.Workspace, error) {
	rows, err := r.q.query(ctx, `
		SELECT `+workspaceColumns+`
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.created_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWorkspace)
}

func (r *workspacesRepo) AddWorkspaceMember(ctx context.Context, m domain.WorkspaceMember) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		m.WorkspaceID, m.UserID, string(m.Role), m.JoinedAt.UTC())
	return err
}

func (r *workspacesRepo) GetWorkspaceMember(ctx context.Context, workspaceID, userID string) (domain.WorkspaceMember, error) {
	m := domain.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID}
	err := r.q.queryRow(ctx, `
		SELECT role, joined_at FROM workspace_members
		WHERE workspace_id = ? AND user_id = ?`,
		workspaceID, userID).Scan(&m.Role, &m.JoinedAt)
	if err != nil {
		return domain.WorkspaceMember{}, r.q.mapErr(err)
	}
	m.JoinedAt = m.JoinedAt.UTC()
	return m, nil
}

func (r *workspacesRepo) ListWorkspaceMembers(ctx context.Context, workspaceID string) ([]domain.WorkspaceMember, error) {
	rows, err := r.q.query(ctx, `
		SELECT m.workspace_id, m.user_id, m.role, m.joined_at, u.name, u.email
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ?
		ORDER BY m.joined_at ASC, m.user_id ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (domain.WorkspaceMember, error) {
		var m domain.WorkspaceMember
		if err := s.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt, &m.Name, &m.Email); err != nil {
			return domain.WorkspaceMember{}, err
		}
		m.JoinedAt = m.JoinedAt.UTC()
		return m, nil
	})
}

func (r *workspacesRepo) UpdateWorkspaceMemberRole(
	ctx context.Context,
	workspaceID, userID string,
	role domain.WorkspaceRole,
) error {
	return r.q.execOne(ctx, `
		UPDATE workspace_members SET role = ?
		WHERE workspace_id = ? AND user_id = ?`,
		string(role), workspaceID, userID)
}

func (r *workspacesRepo) RemoveWorkspaceMember(ctx context.Context, workspaceID, userID string) error {
	return r.q.execOne(ctx,
		`DELETE FROM workspace_members WHERE workspace_id = ? AND user_id = ?`,
		workspaceID, userID)
}
