package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/idx"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
)

// ProjectService manages projects and their tasks. Access is gated on
// workspace membership for creation and project membership afterwards.
type ProjectService struct {
	Store store.Store
	Now   func() time.Time
}

type CreateProjectInput struct {
	Title       string
	Description string
	Status      domain.ProjectStatus
	StartDate   *time.Time
	DueDate     *time.Time
	Tags        string // comma separated
	Members     []ProjectMemberInput
}

// ProjectMemberInput names an extra project member. Role defaults to
// contributor.
type ProjectMemberInput struct {
	UserID string
	Role   domain.ProjectRole
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	Assignees   []string
}

// ProjectDetail is a project with its member list.
type ProjectDetail struct {
	domain.Project
	Members []domain.ProjectMember
}

func (s *ProjectService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateProject creates a project in workspaceID. The creator becomes its
// manager and every extra member must already belong to the workspace.
func (s *ProjectService) CreateProject(
	ctx context.Context,
	actorID, workspaceID string,
	in CreateProjectInput,
) (ProjectDetail, error) {
	title := strings.TrimSpace(in.Title)
	if utf8.RuneCountInString(title) < 3 {
		return ProjectDetail{}, invalidInput("title must be at least 3 characters")
	}
	status := in.Status
	if status == "" {
		status = domain.ProjectPlanning
	}
	if !status.Valid() {
		return ProjectDetail{}, invalidInput("unknown project status %q", status)
	}
	if in.StartDate != nil && in.DueDate != nil && in.DueDate.Before(*in.StartDate) {
		return ProjectDetail{}, invalidInput("due date is before start date")
	}

	_, actor, err := workspaceMembership(ctx, s.Store, workspaceID, actorID)
	if err != nil {
		return ProjectDetail{}, err
	}
	if !actor.Role.CanWrite() {
		return ProjectDetail{}, ErrInsufficientRole
	}

	now := s.now()
	p := domain.Project{
		ID:          idx.NewAt(now).String(),
		WorkspaceID: workspaceID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		StartDate:   utcPtr(in.StartDate),
		DueDate:     utcPtr(in.DueDate),
		Tags:        domain.ParseTags(in.Tags),
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	members := []domain.ProjectMember{{
		ProjectID: p.ID,
		UserID:    actorID,
		Role:      domain.ProjectRoleManager,
		JoinedAt:  now,
	}}
	for _, pm := range in.Members {
		role := pm.Role
		if role == "" {
			role = domain.ProjectRoleContributor
		}
		if !role.Valid() {
			return ProjectDetail{}, invalidInput("unknown project role %q", role)
		}
		if pm.UserID == actorID || slices.ContainsFunc(members, func(m domain.ProjectMember) bool { return m.UserID == pm.UserID }) {
			continue
		}
		members = append(members, domain.ProjectMember{
			ProjectID: p.ID,
			UserID:    pm.UserID,
			Role:      role,
			JoinedAt:  now,
		})
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, m := range members[1:] {
			if _, err := tx.Workspaces().GetWorkspaceMember(ctx, workspaceID, m.UserID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return invalidInput("user %s is not a member of the workspace", m.UserID)
				}
				return err
			}
		}
		if err := tx.Projects().CreateProject(ctx, p); err != nil {
			return err
		}
		for _, m := range members {
			if err := tx.Projects().AddProjectMember(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ProjectDetail{}, err
	}

	slogx.FromContext(ctx).Info("project created",
		slog.String("project_id", p.ID),
		slog.String("workspace_id", workspaceID),
	)
	return ProjectDetail{Project: p, Members: members}, nil
}

// ListProjects returns the workspace's projects, newest first.
func (s *ProjectService) ListProjects(ctx context.Context, actorID, workspaceID string) ([]domain.Project, error) {
	if _, _, err := workspaceMembership(ctx, s.Store, workspaceID, actorID); err != nil {
		return nil, err
	}
	list, err := s.Store.Projects().ListProjectsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Project{}
	}
	return list, nil
}

func (s *ProjectService) GetProject(ctx context.Context, actorID, projectID string) (ProjectDetail, error) {
	p, _, err := s.projectMember(ctx, projectID, actorID)
	if err != nil {
		return ProjectDetail{}, err
	}
	members, err := s.Store.Projects().ListProjectMembers(ctx, projectID)
	if err != nil {
		return ProjectDetail{}, err
	}
	return ProjectDetail{Project: p, Members: members}, nil
}

// GetProjectTasks returns the project's live tasks, newest first, and brings
// the stored progress and status in line with them.
func (s *ProjectService) GetProjectTasks(ctx context.Context, actorID, projectID string) ([]domain.Task, domain.Project, error) {
	p, _, err := s.projectMember(ctx, projectID, actorID)
	if err != nil {
		return nil, domain.Project{}, err
	}

	tasks, err := s.Store.Tasks().ListTasksByProject(ctx, projectID, false)
	if err != nil {
		return nil, domain.Project{}, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	p, err = s.refreshProgress(ctx, s.Store, p, tasks)
	if err != nil {
		return nil, domain.Project{}, err
	}
	return tasks, p, nil
}

// CreateTask adds a task to the project. Assignees must be project members.
func (s *ProjectService) CreateTask(ctx context.Context, actorID, projectID string, in CreateTaskInput) (domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Task{}, invalidInput("title is required")
	}
	status := in.Status
	if status == "" {
		status = domain.TaskToDo
	}
	if !status.Valid() {
		return domain.Task{}, invalidInput("unknown task status %q", status)
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, invalidInput("unknown task priority %q", priority)
	}

	p, _, err := s.projectWriter(ctx, projectID, actorID)
	if err != nil {
		return domain.Task{}, err
	}

	now := s.now()
	t := domain.Task{
		ID:          idx.NewAt(now).String(),
		ProjectID:   projectID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     utcPtr(in.DueDate),
		Assignees:   dedupe(in.Assignees),
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, uid := range t.Assignees {
			if _, err := tx.Projects().GetProjectMember(ctx, projectID, uid); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return invalidInput("assignee %s is not a member of the project", uid)
				}
				return err
			}
		}
		if err := tx.Tasks().CreateTask(ctx, t); err != nil {
			return err
		}
		return s.refreshFromStore(ctx, tx, p)
	})
	if err != nil {
		return domain.Task{}, err
	}

	slogx.FromContext(ctx).Info("task created",
		slog.String("task_id", t.ID),
		slog.String("project_id", projectID),
	)
	return t, nil
}

// UpdateTaskStatus moves a task to status and returns the updated task.
func (s *ProjectService) UpdateTaskStatus(
	ctx context.Context,
	actorID, taskID string,
	status domain.TaskStatus,
) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, invalidInput("unknown task status %q", status)
	}

	t, p, err := s.taskForWriter(ctx, taskID, actorID)
	if err != nil {
		return domain.Task{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tasks().UpdateTaskStatus(ctx, taskID, status); err != nil {
			return err
		}
		return s.refreshFromStore(ctx, tx, p)
	})
	if err != nil {
		return domain.Task{}, err
	}

	t, err = s.Store.Tasks().GetTaskByID(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// ArchiveTask hides a task from the project's task list and progress.
func (s *ProjectService) ArchiveTask(ctx context.Context, actorID, taskID string) error {
	_, p, err := s.taskForWriter(ctx, taskID, actorID)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tasks().ArchiveTask(ctx, taskID); err != nil {
			return err
		}
		return s.refreshFromStore(ctx, tx, p)
	})
}

func (s *ProjectService) taskForWriter(ctx context.Context, taskID, actorID string) (domain.Task, domain.Project, error) {
	t, err := s.Store.Tasks().GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, domain.Project{}, ErrTaskNotFound
		}
		return domain.Task{}, domain.Project{}, err
	}
	p, _, err := s.projectWriter(ctx, t.ProjectID, actorID)
	if err != nil {
		return domain.Task{}, domain.Project{}, err
	}
	return t, p, nil
}

func (s *ProjectService) projectWriter(ctx context.Context, projectID, userID string) (domain.Project, domain.ProjectMember, error) {
	p, m, err := s.projectMember(ctx, projectID, userID)
	if err != nil {
		return domain.Project{}, domain.ProjectMember{}, err
	}
	if m.Role == domain.ProjectRoleViewer {
		return domain.Project{}, domain.ProjectMember{}, ErrInsufficientRole
	}
	return p, m, nil
}

func (s *ProjectService) projectMember(ctx context.Context, projectID, userID string) (domain.Project, domain.ProjectMember, error) {
	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, domain.ProjectMember{}, ErrProjectNotFound
		}
		return domain.Project{}, domain.ProjectMember{}, err
	}

	m, err := s.Store.Projects().GetProjectMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, domain.ProjectMember{}, ErrNotMember
		}
		return domain.Project{}, domain.ProjectMember{}, err
	}

	// Project access never outlives workspace membership.
	if _, _, err := workspaceMembership(ctx, s.Store, p.WorkspaceID, userID); err != nil {
		if errors.Is(err, ErrWorkspaceNotFound) {
			return domain.Project{}, domain.ProjectMember{}, ErrProjectNotFound
		}
		return domain.Project{}, domain.ProjectMember{}, err
	}
	return p, m, nil
}

func (s *ProjectService) refreshFromStore(ctx context.Context, st store.Store, p domain.Project) error {
	tasks, err := st.Tasks().ListTasksByProject(ctx, p.ID, false)
	if err != nil {
		return err
	}
	_, err = s.refreshProgress(ctx, st, p, tasks)
	return err
}

// refreshProgress persists the computed progress only when it differs.
func (s *ProjectService) refreshProgress(
	ctx context.Context,
	st store.Store,
	p domain.Project,
	tasks []domain.Task,
) (domain.Project, error) {
	progress, status := domain.ComputeProgress(p, tasks)
	if progress == p.Progress && status == p.Status {
		return p, nil
	}
	if err := st.Projects().UpdateProjectProgress(ctx, p.ID, progress, status); err != nil {
		return domain.Project{}, err
	}
	p.Progress, p.Status = progress, status
	return p, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
