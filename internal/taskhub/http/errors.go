package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

// toAPIError maps decode and service errors onto the public error taxonomy.
// Anything unrecognised is an internal error.
func toAPIError(err error) *taskhubsdk.APIError {
	var verr *httpx.ValidationError
	switch {
	case errors.As(err, &verr):
		return taskhubsdk.ErrValidation.WithMessage(verr.Error())
	case errors.Is(err, httpx.ErrMalformedBody):
		return taskhubsdk.ErrInvalidRequest

	// Validation
	case errors.Is(err, service.ErrPasswordMismatch):
		return taskhubsdk.ErrPasswordMismatch
	case errors.Is(err, service.ErrInvalidEmailDomain):
		return taskhubsdk.ErrInvalidEmailDomain
	case errors.Is(err, service.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		return taskhubsdk.ErrValidation.WithMessage(msg)
	case errors.Is(err, service.ErrDuplicateUser):
		return taskhubsdk.ErrDuplicateUser

	// Conflict
	case errors.Is(err, service.ErrAlreadyVerified):
		return taskhubsdk.ErrAlreadyVerified
	case errors.Is(err, service.ErrResetAlreadyRequested):
		return taskhubsdk.ErrResetAlreadyRequested
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		return taskhubsdk.ErrMFAAlreadyEnabled
	case errors.Is(err, service.ErrMFANotEnabled), errors.Is(err, service.ErrMFANotEnrolled):
		return taskhubsdk.ErrMFANotEnabled
	case errors.Is(err, service.ErrMemberExists):
		return taskhubsdk.ErrMemberExists

	// Unauthorized. Expired wraps invalid, so it goes first.
	case errors.Is(err, service.ErrTokenExpired):
		return taskhubsdk.ErrTokenExpired
	case errors.Is(err, service.ErrTokenInvalid):
		return taskhubsdk.ErrInvalidToken
	case errors.Is(err, service.ErrIncorrectCredentials):
		return taskhubsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrInvalidTOTPCode):
		return taskhubsdk.ErrInvalidMFACode
	case errors.Is(err, service.ErrTooManyAttempts):
		return taskhubsdk.ErrTooManyAttempts

	// Forbidden
	case errors.Is(err, service.ErrEmailNotVerified):
		return taskhubsdk.ErrEmailNotVerified
	case errors.Is(err, service.ErrRiskCheckDenied):
		return taskhubsdk.ErrRiskCheckDenied
	case errors.Is(err, service.ErrNotMember), errors.Is(err, service.ErrInsufficientRole):
		return taskhubsdk.ErrForbidden

	// NotFound
	case errors.Is(err, service.ErrUserNotFound):
		return taskhubsdk.ErrNotFound.WithMessage("User not found")
	case errors.Is(err, service.ErrWorkspaceNotFound):
		return taskhubsdk.ErrNotFound.WithMessage("Workspace not found")
	case errors.Is(err, service.ErrProjectNotFound):
		return taskhubsdk.ErrNotFound.WithMessage("Project not found")
	case errors.Is(err, service.ErrTaskNotFound):
		return taskhubsdk.ErrNotFound.WithMessage("Task not found")
	case errors.Is(err, service.ErrMemberNotFound):
		return taskhubsdk.ErrNotFound.WithMessage("Member not found")

	case errors.Is(err, service.ErrEmailSendFailed):
		return taskhubsdk.ErrEmailSendFailed
	case errors.Is(err, service.ErrStorageDisabled):
		return taskhubsdk.ErrNotImplemented
	}
	return taskhubsdk.ErrServerError
}

// writeError logs internal failures with the request logger and writes the
// mapped error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
	}
	apiErr.WriteError(w)
}

// userID returns the caller injected by the authn middleware, writing 401
// when it is missing.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		taskhubsdk.ErrUnauthorized.WriteError(w)
	}
	return id, ok
}
