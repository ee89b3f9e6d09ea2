package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

// AuthHandler serves the unauthenticated account flows.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister handles POST /auth/register
//
//	@Summary		Register an account
//	@Description	Creates an unverified account and emails a verification link.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.RegisterRequest	true	"Name, email and password"
//	@Success		201		{object}	taskhubsdk.MessageResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed, disposable domain or duplicate user"
//	@Failure		403		{object}	httpx.ErrorBody	"Blocked by risk check"
//	@Failure		502		{object}	httpx.ErrorBody	"Verification email could not be sent"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req taskhubsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IP:       httpx.IPKeyExtractor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, taskhubsdk.MessageResponse{
		Message: "Registration successful, check your email to verify your account",
	})
}

// HandleLogin handles POST /auth/login
//
//	@Summary		Log in
//	@Description	Returns a session token. Users with two-factor enabled get an MFA challenge token
//	@Description	instead. Unverified users whose link has expired get a new one (201).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	taskhubsdk.LoginResponse	"Session or MFA challenge"
//	@Success		201		{object}	taskhubsdk.LoginResponse	"Verification email resent"
//	@Failure		401		{object}	httpx.ErrorBody				"Invalid email or password"
//	@Failure		403		{object}	httpx.ErrorBody				"Email not verified"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req taskhubsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown accounts look the same as a wrong password.
		if errors.Is(err, service.ErrUserNotFound) {
			taskhubsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		writeError(w, r, err)
		return
	}

	writeLoginResult(w, res)
}

// HandleLoginMFA handles POST /auth/login/mfa
//
//	@Summary		Complete a two-factor login
//	@Description	Exchanges the MFA challenge token and a TOTP or backup code for a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.MFALoginRequest	true	"Challenge token and code"
//	@Success		200		{object}	taskhubsdk.LoginResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or expired challenge, or wrong code"
//	@Failure		429		{object}	httpx.ErrorBody	"Too many wrong codes for this challenge"
//	@Router			/auth/login/mfa [post].
func (h *AuthHandler) HandleLoginMFA(w http.ResponseWriter, r *http.Request) {
	var req taskhubsdk.MFALoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.AuthService.CompleteMFALogin(r.Context(), req.MFAToken, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			taskhubsdk.ErrInvalidToken.WriteError(w)
			return
		}
		writeError(w, r, err)
		return
	}

	writeLoginResult(w, res)
}

func writeLoginResult(w http.ResponseWriter, res service.LoginResult) {
	switch res.Outcome {
	case service.LoginVerificationResent:
		httpx.WriteJSON(w, http.StatusCreated, taskhubsdk.LoginResponse{
			Message: "Your verification link expired, a new one has been sent",
		})
	case service.LoginMFARequired:
		httpx.WriteJSON(w, http.StatusOK, taskhubsdk.LoginResponse{
			MFARequired: true,
			MFAToken:    res.MFAToken,
		})
	default:
		exp := res.ExpiresAt
		httpx.WriteJSON(w, http.StatusOK, taskhubsdk.LoginResponse{
			Token:     res.Token,
			ExpiresAt: &exp,
			User:      toUser(res.User),
		})
	}
}

// HandleVerifyEmail handles POST /auth/verify-email
//
//	@Summary		Verify an email address
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.VerifyEmailRequest	true	"Token from the email link"
//	@Success		200		{object}	taskhubsdk.MessageResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or expired token"
//	@Failure		409		{object}	httpx.ErrorBody	"Already verified"
//	@Router			/auth/verify-email [post].
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req taskhubsdk.VerifyEmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.AuthService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, taskhubsdk.MessageResponse{Message: "Email verified"})
}

// HandleResetPasswordRequest handles POST /auth/reset-password-request
//
//	@Summary		Request a password reset link
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.PasswordResetRequest	true	"Account email"
//	@Success		200		{object}	taskhubsdk.MessageResponse
//	@Failure		403		{object}	httpx.ErrorBody	"Email not verified"
//	@Failure		404		{object}	httpx.ErrorBody	"Unknown email"
//	@Failure		409		{object}	httpx.ErrorBody	"A reset link is still live"
//	@Failure		502		{object}	httpx.ErrorBody	"Reset email could not be sent"
//	@Router			/auth/reset-password-request [post].
func (h *AuthHandler) HandleResetPasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req taskhubsdk.PasswordResetRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, taskhubsdk.MessageResponse{Message: "Password reset link sent"})
}

// HandleResetPassword handles POST /auth/reset-password
//
//	@Summary		Reset a password
//	@Description	Mismatched passwords are rejected before the token is looked at.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		taskhubsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	taskhubsdk.MessageResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed or passwords do not match"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or expired token"
//	@Router			/auth/reset-password [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req taskhubsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		taskhubsdk.ErrPasswordMismatch.WriteError(w)
		return
	}

	err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, taskhubsdk.MessageResponse{Message: "Password has been reset"})
}
