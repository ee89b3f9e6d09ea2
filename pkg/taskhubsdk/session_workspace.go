package taskhubsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (s *Session) CreateWorkspace(ctx context.Context, req CreateWorkspaceRequest) (*Workspace, error) {
	var out Workspace
	if err := s.call(ctx, http.MethodPost, "/workspaces", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWorkspaces returns the workspaces the caller belongs to, newest first.
func (s *Session) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var out []Workspace
	if err := s.call(ctx, http.MethodGet, "/workspaces", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) GetWorkspace(ctx context.Context, workspaceID string) (*Workspace, error) {
	var out Workspace
	if err := s.call(ctx, http.MethodGet, "/workspaces/"+url.PathEscape(workspaceID), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AddWorkspaceMember(ctx context.Context, workspaceID string, req AddMemberRequest) (*WorkspaceMember, error) {
	var out WorkspaceMember
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/members"
	if err := s.call(ctx, http.MethodPost, path, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateWorkspaceMemberRole(ctx context.Context, workspaceID, userID, role string) error {
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/members/" + url.PathEscape(userID)
	return s.call(ctx, http.MethodPatch, path, UpdateMemberRoleRequest{Role: role}, nil, http.StatusNoContent)
}

func (s *Session) RemoveWorkspaceMember(ctx context.Context, workspaceID, userID string) error {
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/members/" + url.PathEscape(userID)
	return s.call(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}

func (s *Session) CreateProject(ctx context.Context, workspaceID string, req CreateProjectRequest) (*Project, error) {
	var out Project
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/projects"
	if err := s.call(ctx, http.MethodPost, path, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListProjects(ctx context.Context, workspaceID string) ([]Project, error) {
	var out []Project
	path := "/workspaces/" + url.PathEscape(workspaceID) + "/projects"
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var out Project
	if err := s.call(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjectTasks returns the project with refreshed progress and its
// non-archived tasks, newest first.
func (s *Session) ListProjectTasks(ctx context.Context, projectID string) (*ProjectTasksResponse, error) {
	var out ProjectTasksResponse
	path := "/projects/" + url.PathEscape(projectID) + "/tasks"
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateTask(ctx context.Context, projectID string, req CreateTaskRequest) (*Task, error) {
	var out Task
	path := "/projects/" + url.PathEscape(projectID) + "/tasks"
	if err := s.call(ctx, http.MethodPost, path, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateTaskStatus(ctx context.Context, taskID, status string) (*Task, error) {
	var out Task
	path := "/tasks/" + url.PathEscape(taskID) + "/status"
	if err := s.call(ctx, http.MethodPatch, path, UpdateTaskStatusRequest{Status: status}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ArchiveTask(ctx context.Context, taskID string) error {
	return s.call(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/archive", nil, nil, http.StatusNoContent)
}
