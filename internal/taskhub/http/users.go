package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

type UserHandler struct {
	AuthService   *service.AuthService
	AvatarService *service.AvatarService
}

// HandleMe handles GET /users/me
//
//	@Summary	Current user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	taskhubsdk.User
//	@Failure	401	{object}	httpx.ErrorBody
//	@Router		/users/me [get].
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.AuthService.Me(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// HandleAvatar handles POST /users/me/avatar
//
//	@Summary		Presign an avatar upload
//	@Description	Returns a short-lived URL the client PUTs the image to. The user's
//	@Description	profile picture is set to the returned key.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.AvatarUploadRequest	true	"Image content type"
//	@Success		200		{object}	taskhubsdk.AvatarUploadResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		501		{object}	httpx.ErrorBody	"Object storage not configured"
//	@Router			/users/me/avatar [post].
func (h *UserHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if !h.AvatarService.Enabled() {
		writeError(w, r, service.ErrStorageDisabled)
		return
	}

	var req taskhubsdk.AvatarUploadRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	up, err := h.AvatarService.PresignUpload(r.Context(), uid, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, taskhubsdk.AvatarUploadResponse{
		UploadURL: up.UploadURL,
		Key:       up.Key,
		ExpiresAt: up.ExpiresAt,
	})
}
