package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

// MFAHandler serves TOTP enrollment and backup code management for the
// signed-in user.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /mfa/totp/enroll
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a secret and otpauth URL. MFA stays off until a code is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	taskhubsdk.TOTPEnrollResponse
//	@Failure		409	{object}	httpx.ErrorBody	"Already enabled"
//	@Router			/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	e, err := h.MFAService.EnrollTOTP(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, taskhubsdk.TOTPEnrollResponse{
		Secret:  e.Secret,
		QRCode:  e.QRCode,
		Issuer:  e.Issuer,
		Account: e.Account,
	})
}

// HandleVerify handles POST /mfa/totp/verify
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Enables MFA and returns backup codes. They are shown once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.TOTPCodeRequest	true	"Current code"
//	@Success		200		{object}	taskhubsdk.BackupCodesResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Wrong code"
//	@Failure		409		{object}	httpx.ErrorBody	"Not enrolled or already enabled"
//	@Router			/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, func(uid, code string) {
		codes, err := h.MFAService.VerifyTOTP(r.Context(), uid, code)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, taskhubsdk.BackupCodesResponse{Codes: codes})
	})
}

// HandleRegenerateBackupCodes handles POST /mfa/backup-codes
//
//	@Summary	Regenerate backup codes
//	@Tags		MFA
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		taskhubsdk.TOTPCodeRequest	true	"Current TOTP code"
//	@Success	200		{object}	taskhubsdk.BackupCodesResponse
//	@Failure	401		{object}	httpx.ErrorBody
//	@Failure	409		{object}	httpx.ErrorBody	"MFA not enabled"
//	@Router		/mfa/backup-codes [post].
func (h *MFAHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, func(uid, code string) {
		codes, err := h.MFAService.RegenerateBackupCodes(r.Context(), uid, code)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, taskhubsdk.BackupCodesResponse{Codes: codes})
	})
}

// HandleRemove handles DELETE /mfa/totp
//
//	@Summary	Disable MFA
//	@Tags		MFA
//	@Security	BearerAuth
//	@Accept		json
//	@Param		request	body	taskhubsdk.TOTPCodeRequest	true	"TOTP or backup code"
//	@Success	204
//	@Failure	401	{object}	httpx.ErrorBody
//	@Failure	409	{object}	httpx.ErrorBody	"MFA not enabled"
//	@Router		/mfa/totp [delete].
func (h *MFAHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, func(uid, code string) {
		if err := h.MFAService.RemoveMFA(r.Context(), uid, code); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *MFAHandler) withCode(w http.ResponseWriter, r *http.Request, fn func(uid, code string)) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req taskhubsdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fn(uid, req.Code)
}
