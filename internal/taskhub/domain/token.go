package domain

import "time"

// TokenPurpose restricts which flow may consume a signed token.
type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "email-verification"
	PurposePasswordReset     TokenPurpose = "reset-password"
	PurposeLogin             TokenPurpose = "login"
	PurposeMFAChallenge      TokenPurpose = "mfa-challenge"
)

func (p TokenPurpose) Valid() bool {
	switch p {
	case PurposeEmailVerification, PurposePasswordReset, PurposeLogin, PurposeMFAChallenge:
		return true
	}
	return false
}

// TokenClaims is the part every decoded token shares.
type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

func (c TokenClaims) Claims() TokenClaims { return c }

// TokenPayload is a decoded signed token. The concrete type is one of
// EmailVerification, PasswordReset, Login or MFAChallenge; switch on it
// rather than on the purpose string.
type TokenPayload interface {
	Purpose() TokenPurpose
	Claims() TokenClaims
}

type EmailVerification struct{ TokenClaims }

type PasswordReset struct{ TokenClaims }

type Login struct{ TokenClaims }

type MFAChallenge struct{ TokenClaims }

func (EmailVerification) Purpose() TokenPurpose { return PurposeEmailVerification }
func (PasswordReset) Purpose() TokenPurpose     { return PurposePasswordReset }
func (Login) Purpose() TokenPurpose             { return PurposeLogin }
func (MFAChallenge) Purpose() TokenPurpose      { return PurposeMFAChallenge }

// NewTokenPayload builds the variant for purpose. ok is false for an
// unknown purpose.
func NewTokenPayload(purpose TokenPurpose, c TokenClaims) (TokenPayload, bool) {
	switch purpose {
	case PurposeEmailVerification:
		return EmailVerification{c}, true
	case PurposePasswordReset:
		return PasswordReset{c}, true
	case PurposeLogin:
		return Login{c}, true
	case PurposeMFAChallenge:
		return MFAChallenge{c}, true
	}
	return nil, false
}

// VerificationToken is the persisted, revocable copy of an email-verification
// or password-reset token. Only the fingerprint of the signed string is kept.
type VerificationToken struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	TokenHash string // base64url SHA-256 of the signed token
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the row has not yet expired at now.
func (t VerificationToken) ActiveAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
