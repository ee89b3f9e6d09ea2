package domain

import "time"

// TOTPEnrollment is what a user needs to add TaskHub to an authenticator app.
type TOTPEnrollment struct {
	Secret  string // base32
	QRCode  string // otpauth:// URL
	Issuer  string
	Account string
}

// MFASession tracks a pending two-factor login. ID is the fingerprint of the
// challenge token handed to the client; the row is deleted once a session is
// issued or too many codes were wrong.
type MFASession struct {
	ID        string
	UserID    string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}
