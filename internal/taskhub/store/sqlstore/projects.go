package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

type projectsRepo struct {
	q querier
}

const projectColumns = `id, workspace_id, title, description, status, start_date, due_date,
	progress, tags, created_by, created_at, updated_at`

func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		start, due sql.NullTime
		tags       string
	)
	err := s.Scan(
		&p.ID, &p.WorkspaceID, &p.Title, &p.Description, &p.Status, &start, &due,
		&p.Progress, &tags, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Project{}, err
	}
	p.StartDate = timePtr(start)
	p.DueDate = timePtr(due)
	p.Tags = splitTags(tags)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO projects (id, workspace_id, title, description, status, start_date, due_date,
			progress, tags, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.WorkspaceID, p.Title, p.Description, string(p.Status),
		nullTime(p.StartDate), nullTime(p.DueDate), p.Progress, joinTags(p.Tags),
		p.CreatedBy, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	return err
}

func (r *projectsRepo) GetProjectByID(ctx context.Context, id string) (domain.Project, error) {
	row := r.q.queryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	return p, r.q.mapErr(err)
}

func (r *projectsRepo) ListProjectsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Project, error) {
	rows, err := r.q.query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE workspace_id = ?
		ORDER BY created_at DESC, id DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProject)
}

func (r *projectsRepo) AddProjectMember(ctx context.Context, m domain.ProjectMember) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		m.ProjectID, m.UserID, string(m.Role), m.JoinedAt.UTC())
	return err
}

func (r *projectsRepo) GetProjectMember(ctx context.Context, projectID, userID string) (domain.ProjectMember, error) {
	m := domain.ProjectMember{ProjectID: projectID, UserID: userID}
	err := r.q.queryRow(ctx, `
		SELECT role, joined_at FROM project_members
		WHERE project_id = ? AND user_id = ?`,
		projectID, userID).Scan(&m.Role, &m.JoinedAt)
	if err != nil {
		return domain.ProjectMember{}, r.q.mapErr(err)
	}
	m.JoinedAt = m.JoinedAt.UTC()
	return m, nil
}

func (r *projectsRepo) ListProjectMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	rows, err := r.q.query(ctx, `
		SELECT project_id, user_id, role, joined_at FROM project_members
		WHERE project_id = ?
		ORDER BY joined_at ASC, user_id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (domain.ProjectMember, error) {
		var m domain.ProjectMember
		if err := s.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return domain.ProjectMember{}, err
		}
		m.JoinedAt = m.JoinedAt.UTC()
		return m, nil
	})
}

func (r *projectsRepo) RemoveWorkspaceProjectMemberships(ctx context.Context, workspaceID, userID string) (int64, error) {
	res, err := r.q.exec(ctx, `
		DELETE FROM project_members
		WHERE user_id = ?
		  AND project_id IN (SELECT id FROM projects WHERE workspace_id = ?)`,
		userID, workspaceID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *projectsRepo) UpdateProjectProgress(
	ctx context.Context,
	projectID string,
	progress int,
	status domain.ProjectStatus,
) error {
	return r.q.execOne(ctx, `
		UPDATE projects SET progress = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		progress, string(status), now(), projectID)
}
