package taskhubsdk

import (
	"context"
	"net/http"
)

// Session sends a session token with every request. It holds no mutable
// state and is safe for concurrent use.
type Session struct {
	client *Client
	token  string
}

// Token returns the bearer token of the session.
func (s *Session) Token() string { return s.token }

func (s *Session) call(ctx context.Context, method, path string, body, target any, expected int) error {
	return s.client.call(ctx, method, path, s.token, body, target, expected)
}

func (s *Session) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.call(ctx, http.MethodGet, "/users/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// PresignAvatarUpload returns a URL the caller can PUT the image to.
func (s *Session) PresignAvatarUpload(ctx context.Context, contentType string) (*AvatarUploadResponse, error) {
	var out AvatarUploadResponse
	if err := s.call(ctx, http.MethodPost, "/users/me/avatar", AvatarUploadRequest{ContentType: contentType}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := s.call(ctx, http.MethodPost, "/mfa/totp/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP enables two-factor login and returns the one-time backup codes.
func (s *Session) VerifyTOTP(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := s.call(ctx, http.MethodPost, "/mfa/totp/verify", TOTPCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RegenerateBackupCodes(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := s.call(ctx, http.MethodPost, "/mfa/backup-codes", TOTPCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RemoveTOTP(ctx context.Context, code string) error {
	return s.call(ctx, http.MethodDelete, "/mfa/totp", TOTPCodeRequest{Code: code}, nil, http.StatusNoContent)
}
