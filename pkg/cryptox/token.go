package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strings"
)

// Random token sizes in bytes, before encoding.
const (
	TokenSize128 = 16
	TokenSize256 = 32
)

// GenerateToken returns size random bytes as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the SHA-256 of token as base64url (43 chars). Tokens are
// stored and looked up by fingerprint, never in the clear.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

var backupEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateBackupCode returns a 10 character recovery code split in two
// groups (e.g. "K7QX2-MB4RT") so it can be typed from a printout.
func GenerateBackupCode() (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	s := backupEncoding.EncodeToString(buf)[:10]
	return s[:5] + "-" + s[5:], nil
}

// NormalizeBackupCode upper-cases a user supplied code and strips spaces and
// dashes so "k7qx2 mb4rt" matches "K7QX2-MB4RT".
func NormalizeBackupCode(code string) string {
	code = strings.ToUpper(code)
	code = strings.NewReplacer("-", "", " ", "").Replace(code)
	if len(code) != 10 {
		return code
	}
	return code[:5] + "-" + code[5:]
}
