package taskhubsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/taskhub/pkg/httpx"
)

// Error codes carried in the "error" field of every error body.
const (
	CodeInvalidRequest        = "invalid_request"
	CodeValidation            = "validation_error"
	CodePasswordMismatch      = "password_mismatch"
	CodeInvalidEmailDomain    = "invalid_email_domain"
	CodeDuplicateUser         = "duplicate_user"
	CodeAlreadyVerified       = "already_verified"
	CodeResetAlreadyRequested = "reset_already_requested"
	CodeMFAAlreadyEnabled     = "mfa_already_enabled"
	CodeMFANotEnabled         = "mfa_not_enabled"
	CodeMemberExists          = "member_exists"
	CodeUnauthorized          = "unauthorized"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeInvalidToken          = "invalid_token"
	CodeTokenExpired          = "token_expired"
	CodeInvalidMFACode        = "invalid_mfa_code"
	CodeTooManyAttempts       = "too_many_attempts"
	CodeEmailNotVerified      = "email_not_verified"
	CodeRiskCheckDenied       = "risk_check_denied"
	CodeForbidden             = "forbidden"
	CodeNotFound              = "not_found"
	CodeEmailSendFailed       = "email_send_failed"
	CodeNotImplemented        = "not_implemented"
	CodeServerError           = "server_error"
)

// APIError is an error response. The server writes it; the client returns
// it for any unexpected status.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// WriteError writes e as the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Message)
}

// WithMessage returns a copy of e with a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Is matches on status and code so callers can errors.Is against the
// predefined values below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

var (
	ErrInvalidRequest        = &APIError{http.StatusBadRequest, CodeInvalidRequest, "The request body is malformed"}
	ErrValidation            = &APIError{http.StatusBadRequest, CodeValidation, "The request failed validation"}
	ErrPasswordMismatch      = &APIError{http.StatusBadRequest, CodePasswordMismatch, "Passwords do not match"}
	ErrInvalidEmailDomain    = &APIError{http.StatusBadRequest, CodeInvalidEmailDomain, "Email domain is not allowed"}
	ErrDuplicateUser         = &APIError{http.StatusBadRequest, CodeDuplicateUser, "An account with this email or name already exists"}
	ErrAlreadyVerified       = &APIError{http.StatusConflict, CodeAlreadyVerified, "Email is already verified"}
	ErrResetAlreadyRequested = &APIError{http.StatusConflict, CodeResetAlreadyRequested, "A password reset was already requested, check your inbox"}
	ErrMFAAlreadyEnabled     = &APIError{http.StatusConflict, CodeMFAAlreadyEnabled, "Two-factor authentication is already enabled"}
	ErrMFANotEnabled         = &APIError{http.StatusConflict, CodeMFANotEnabled, "Two-factor authentication is not enabled"}
	ErrMemberExists          = &APIError{http.StatusConflict, CodeMemberExists, "User is already a member"}
	ErrUnauthorized          = &APIError{http.StatusUnauthorized, CodeUnauthorized, "Authentication required"}
	ErrInvalidCredentials    = &APIError{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"}
	ErrInvalidToken          = &APIError{http.StatusUnauthorized, CodeInvalidToken, "The token is invalid"}
	ErrTokenExpired          = &APIError{http.StatusUnauthorized, CodeTokenExpired, "The token has expired"}
	ErrInvalidMFACode        = &APIError{http.StatusUnauthorized, CodeInvalidMFACode, "Invalid verification code"}
	ErrTooManyAttempts       = &APIError{http.StatusTooManyRequests, CodeTooManyAttempts, "Too many attempts, please log in again"}
	ErrEmailNotVerified      = &APIError{http.StatusForbidden, CodeEmailNotVerified, "Email not verified, please check your inbox"}
	ErrRiskCheckDenied       = &APIError{http.StatusForbidden, CodeRiskCheckDenied, "Request blocked, please try again later"}
	ErrForbidden             = &APIError{http.StatusForbidden, CodeForbidden, "You do not have access to this resource"}
	ErrNotFound              = &APIError{http.StatusNotFound, CodeNotFound, "Resource not found"}
	ErrEmailSendFailed       = &APIError{http.StatusBadGateway, CodeEmailSendFailed, "Failed to send email"}
	ErrNotImplemented        = &APIError{http.StatusNotImplemented, CodeNotImplemented, "This feature is not configured"}
	ErrServerError           = &APIError{http.StatusInternalServerError, CodeServerError, "Internal server error"}
)

// parseErrorResponse builds an *APIError from a non-success response body.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var eb httpx.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Code: eb.Error, Message: eb.Message}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       CodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
