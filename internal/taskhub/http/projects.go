package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

// ProjectHandler serves projects and their tasks.
type ProjectHandler struct {
	ProjectService *service.ProjectService
}

// HandleCreate handles POST /workspaces/{workspaceId}/projects
//
//	@Summary		Create a project
//	@Description	Workspace viewers cannot create projects. The creator becomes the project manager.
//	@Tags			Projects
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			workspaceId	path		string							true	"Workspace ID"
//	@Param			request		body		taskhubsdk.CreateProjectRequest	true	"Project"
//	@Success		201			{object}	taskhubsdk.Project
//	@Failure		400			{object}	httpx.ErrorBody
//	@Failure		403			{object}	httpx.ErrorBody
//	@Failure		404			{object}	httpx.ErrorBody
//	@Router			/workspaces/{workspaceId}/projects [post].
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.CreateProjectRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	for _, m := range req.Members {
		in.Members = append(in.Members, service.ProjectMemberInput{
			UserID: m.UserID,
			Role:   domain.ProjectRole(m.Role),
		})
	}

	p, err := h.ProjectService.CreateProject(r.Context(), uid, r.PathValue("workspaceId"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProjectDetail(p))
}

// HandleList handles GET /workspaces/{workspaceId}/projects
//
//	@Summary	List a workspace's projects
//	@Tags		Projects
//	@Security	BearerAuth
//	@Produce	json
//	@Param		workspaceId	path	string	true	"Workspace ID"
//	@Success	200			{array}	taskhubsdk.Project
//	@Failure	403			{object}	httpx.ErrorBody
//	@Router		/workspaces/{workspaceId}/projects [get].
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	list, err := h.ProjectService.ListProjects(r.Context(), uid, r.PathValue("workspaceId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]taskhubsdk.Project, 0, len(list))
	for _, p := range list {
		out = append(out, toProject(p, nil))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /projects/{projectId}
//
//	@Summary	Get a project with its members
//	@Tags		Projects
//	@Security	BearerAuth
//	@Produce	json
//	@Param		projectId	path		string	true	"Project ID"
//	@Success	200			{object}	taskhubsdk.Project
//	@Failure	403			{object}	httpx.ErrorBody
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/projects/{projectId} [get].
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	p, err := h.ProjectService.GetProject(r.Context(), uid, r.PathValue("projectId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProjectDetail(p))
}

// HandleListTasks handles GET /projects/{projectId}/tasks
//
//	@Summary		List a project's tasks
//	@Description	Archived tasks are omitted. The project's progress is recomputed first.
//	@Tags			Projects
//	@Security		BearerAuth
//	@Produce		json
//	@Param			projectId	path		string	true	"Project ID"
//	@Success		200			{object}	taskhubsdk.ProjectTasksResponse
//	@Failure		403			{object}	httpx.ErrorBody
//	@Failure		404			{object}	httpx.ErrorBody
//	@Router			/projects/{projectId}/tasks [get].
func (h *ProjectHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	tasks, p, err := h.ProjectService.GetProjectTasks(r.Context(), uid, r.PathValue("projectId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := taskhubsdk.ProjectTasksResponse{
		Project: toProject(p, nil),
		Tasks:   make([]taskhubsdk.Task, 0, len(tasks)),
	}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toTask(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreateTask handles POST /projects/{projectId}/tasks
//
//	@Summary	Create a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		projectId	path		string						true	"Project ID"
//	@Param		request		body		taskhubsdk.CreateTaskRequest	true	"Task"
//	@Success	201			{object}	taskhubsdk.Task
//	@Failure	400			{object}	httpx.ErrorBody
//	@Failure	403			{object}	httpx.ErrorBody
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/projects/{projectId}/tasks [post].
func (h *ProjectHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.CreateTaskRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.ProjectService.CreateTask(r.Context(), uid, r.PathValue("projectId"), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Assignees:   req.Assignees,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTask(t))
}

// HandleUpdateTaskStatus handles PATCH /tasks/{taskId}/status
//
//	@Summary	Move a task to another status
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		taskId	path		string								true	"Task ID"
//	@Param		request	body		taskhubsdk.UpdateTaskStatusRequest	true	"Status"
//	@Success	200		{object}	taskhubsdk.Task
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	403		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/tasks/{taskId}/status [patch].
func (h *ProjectHandler) HandleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.UpdateTaskStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.ProjectService.UpdateTaskStatus(r.Context(), uid, r.PathValue("taskId"), domain.TaskStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTask(t))
}

// HandleArchiveTask handles POST /tasks/{taskId}/archive
//
//	@Summary	Archive a task
//	@Tags		Tasks
//	@Security	BearerAuth
//	@Param		taskId	path	string	true	"Task ID"
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/tasks/{taskId}/archive [post].
func (h *ProjectHandler) HandleArchiveTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.ProjectService.ArchiveTask(r.Context(), uid, r.PathValue("taskId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
