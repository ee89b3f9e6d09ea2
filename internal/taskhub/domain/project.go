package domain

import (
	"math"
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectOnHold     ProjectStatus = "On Hold"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type ProjectRole string

const (
	ProjectRoleManager     ProjectRole = "manager"
	ProjectRoleContributor ProjectRole = "contributor"
	ProjectRoleViewer      ProjectRole = "viewer"
)

func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleManager, ProjectRoleContributor, ProjectRoleViewer:
		return true
	}
	return false
}

type Project struct {
	ID          string
	WorkspaceID string
	Title       string
	Description string
	Status      ProjectStatus
	StartDate   *time.Time
	DueDate     *time.Time
	Progress    int // 0..100
	Tags        []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
	JoinedAt  time.Time
}

// ParseTags splits a comma separated list, trimming blanks and duplicates.
func ParseTags(s string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ComputeProgress derives progress and status from the project's tasks.
// With no tasks the project keeps its current values.
func ComputeProgress(current Project, tasks []Task) (progress int, status ProjectStatus) {
	if len(tasks) == 0 {
		return current.Progress, current.Status
	}

	done := 0
	for _, t := range tasks {
		if t.Status == TaskDone {
			done++
		}
	}

	progress = int(math.Round(float64(done) / float64(len(tasks)) * 100))
	switch {
	case done == len(tasks):
		status = ProjectCompleted
	case done > 0:
		status = ProjectInProgress
	default:
		status = ProjectPlanning
	}
	return progress, status
}
