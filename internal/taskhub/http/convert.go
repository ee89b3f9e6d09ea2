package http

import (
	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

func toUser(u domain.User) *taskhubsdk.User {
	return &taskhubsdk.User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfilePicture:  u.ProfilePicture,
		IsEmailVerified: u.IsEmailVerified,
		MFAEnabled:      u.MFAEnabled(),
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func toWorkspace(w domain.Workspace, members []domain.WorkspaceMember) taskhubsdk.Workspace {
	out := taskhubsdk.Workspace{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Color:       w.Color,
		OwnerID:     w.OwnerID,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for _, m := range members {
		out.Members = append(out.Members, toWorkspaceMember(m))
	}
	return out
}

func toWorkspaceMember(m domain.WorkspaceMember) taskhubsdk.WorkspaceMember {
	return taskhubsdk.WorkspaceMember{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func toProject(p domain.Project, members []domain.ProjectMember) taskhubsdk.Project {
	out := taskhubsdk.Project{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		Progress:    p.Progress,
		Tags:        p.Tags,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	for _, m := range members {
		out.Members = append(out.Members, taskhubsdk.ProjectMember{
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return out
}

func toProjectDetail(p service.ProjectDetail) taskhubsdk.Project {
	return toProject(p.Project, p.Members)
}

func toTask(t domain.Task) taskhubsdk.Task {
	assignees := t.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return taskhubsdk.Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Assignees:   assignees,
		IsArchived:  t.IsArchived,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
