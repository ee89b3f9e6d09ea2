package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUser         = errors.New("user already exists")
	ErrInvalidEmailDomain    = errors.New("email domain is not allowed")
	ErrRiskCheckDenied       = errors.New("request denied by risk check")
	ErrEmailSendFailed       = errors.New("failed to send email")
	ErrTokenInvalid          = errors.New("invalid token")
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrTokenInvalid)
	ErrUserNotFound          = errors.New("user not found")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrIncorrectCredentials  = errors.New("incorrect credentials")
	ErrResetAlreadyRequested = errors.New("password reset already requested")
	ErrPasswordMismatch      = errors.New("passwords do not match")

	ErrInvalidTOTPCode   = errors.New("invalid MFA code")
	ErrMFANotEnrolled    = errors.New("MFA not enrolled")
	ErrMFANotEnabled     = errors.New("MFA not enabled for this user")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this user")
	ErrTooManyAttempts   = errors.New("too many MFA attempts")

	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrNotMember         = errors.New("not a member")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrMemberExists      = errors.New("already a member")
	ErrInvalidInput      = errors.New("invalid input")

	ErrStorageDisabled = errors.New("object storage not configured")
)

// invalidInput wraps ErrInvalidInput with a message safe to show to clients.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
