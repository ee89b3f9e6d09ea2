package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

type WorkspaceHandler struct {
	WorkspaceService *service.WorkspaceService
}

// HandleCreate handles POST /workspaces
//
//	@Summary		Create a workspace
//	@Description	The caller becomes its owner.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.CreateWorkspaceRequest	true	"Workspace"
//	@Success		201		{object}	taskhubsdk.Workspace
//	@Failure		400		{object}	httpx.ErrorBody
//	@Router			/workspaces [post].
func (h *WorkspaceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.CreateWorkspaceRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ws, err := h.WorkspaceService.CreateWorkspace(r.Context(), uid, service.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toWorkspace(ws.Workspace, ws.Members))
}

// HandleList handles GET /workspaces
//
//	@Summary	List the caller's workspaces
//	@Tags		Workspaces
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	taskhubsdk.Workspace
//	@Router		/workspaces [get].
func (h *WorkspaceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	list, err := h.WorkspaceService.ListWorkspaces(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]taskhubsdk.Workspace, 0, len(list))
	for _, ws := range list {
		out = append(out, toWorkspace(ws, nil))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /workspaces/{workspaceId}
//
//	@Summary	Get a workspace with its members
//	@Tags		Workspaces
//	@Security	BearerAuth
//	@Produce	json
//	@Param		workspaceId	path		string	true	"Workspace ID"
//	@Success	200			{object}	taskhubsdk.Workspace
//	@Failure	403			{object}	httpx.ErrorBody	"Not a member"
//	@Failure	404			{object}	httpx.ErrorBody
//	@Router		/workspaces/{workspaceId} [get].
func (h *WorkspaceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	ws, err := h.WorkspaceService.GetWorkspace(r.Context(), uid, r.PathValue("workspaceId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWorkspace(ws.Workspace, ws.Members))
}

// HandleAddMember handles POST /workspaces/{workspaceId}/members
//
//	@Summary		Add a member
//	@Description	Owner or admin only. The user is looked up by email and must be verified.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			workspaceId	path		string						true	"Workspace ID"
//	@Param			request		body		taskhubsdk.AddMemberRequest	true	"Member"
//	@Success		201			{object}	taskhubsdk.WorkspaceMember
//	@Failure		403			{object}	httpx.ErrorBody
//	@Failure		404			{object}	httpx.ErrorBody
//	@Failure		409			{object}	httpx.ErrorBody	"Already a member"
//	@Router			/workspaces/{workspaceId}/members [post].
func (h *WorkspaceHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.AddMemberRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.WorkspaceService.AddMember(r.Context(), uid, r.PathValue("workspaceId"),
		req.Email, domain.WorkspaceRole(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toWorkspaceMember(m))
}

// HandleUpdateMember handles PATCH /workspaces/{workspaceId}/members/{userId}
//
//	@Summary	Change a member's role
//	@Tags		Workspaces
//	@Security	BearerAuth
//	@Accept		json
//	@Param		workspaceId	path	string								true	"Workspace ID"
//	@Param		userId		path	string								true	"User ID"
//	@Param		request		body	taskhubsdk.UpdateMemberRoleRequest	true	"Role"
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/workspaces/{workspaceId}/members/{userId} [patch].
func (h *WorkspaceHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.UpdateMemberRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.WorkspaceService.UpdateMemberRole(r.Context(), uid,
		r.PathValue("workspaceId"), r.PathValue("userId"), domain.WorkspaceRole(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveMember handles DELETE /workspaces/{workspaceId}/members/{userId}
//
//	@Summary		Remove a member
//	@Description	Owners and admins may remove anyone but the owner. Others may only leave.
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Param			workspaceId	path	string	true	"Workspace ID"
//	@Param			userId		path	string	true	"User ID"
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorBody
//	@Failure		404	{object}	httpx.ErrorBody
//	@Router			/workspaces/{workspaceId}/members/{userId} [delete].
func (h *WorkspaceHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	err := h.WorkspaceService.RemoveMember(r.Context(), uid, r.PathValue("workspaceId"), r.PathValue("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
