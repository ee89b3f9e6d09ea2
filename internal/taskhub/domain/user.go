package domain

import (
	"strings"
	"time"
)

type User struct {
	ID              string
	Name            string
	Email           string // lower-cased, trimmed
	PasswordHash    string // argon2id PHC string
	ProfilePicture  string // object storage key, empty when unset
	IsEmailVerified bool
	LastLogin       *time.Time
	MFAEnabledAt    *time.Time // set once TOTP has been verified
	MFASecret       *string    // base32 TOTP secret, present from enrollment
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u User) MFAEnabled() bool {
	return u.MFAEnabledAt != nil
}

// Sanitized returns a copy without credential material.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.MFASecret = nil
	return u
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last "@", lower-cased.
func EmailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
