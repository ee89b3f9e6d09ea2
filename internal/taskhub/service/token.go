package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/pkg/jwtx"
)

// Default token lifetimes.
const (
	DefaultVerifyTTL  = time.Hour
	DefaultResetTTL   = 15 * time.Minute
	DefaultSessionTTL = 7 * 24 * time.Hour
	DefaultMFATTL     = 5 * time.Minute
)

// MaxMFAAttempts is how many wrong codes one MFA challenge tolerates.
const MaxMFAAttempts = 5

// TokenService issues and validates purpose tagged signed tokens.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	Now      func() time.Time
}

// NewTokenService returns an HS256 token service. The secret must be at
// least jwtx.MinSecretLength bytes.
func NewTokenService(secret []byte, issuer string) (*TokenService, error) {
	h, err := jwtx.NewHS256(secret, issuer)
	if err != nil {
		return nil, err
	}
	return &TokenService{Signer: h, Verifier: h, Issuer: issuer, Now: time.Now}, nil
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue signs a token for userID valid for ttl and returns it with its expiry.
func (s *TokenService) Issue(userID string, purpose domain.TokenPurpose, ttl time.Duration) (string, time.Time, error) {
	if !purpose.Valid() {
		return "", time.Time{}, fmt.Errorf("token: unknown purpose %q", purpose)
	}

	claims := jwtx.NewClaims(userID, string(purpose), s.Issuer, ttl, s.now())
	tok, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return tok, claims.Expiry(), nil
}

// Validate verifies token and decodes it into its payload variant. Any
// signature, structure or purpose problem yields ErrTokenInvalid. A token
// past its expiry yields ErrTokenExpired together with the decoded payload,
// so callers can revoke whatever the token refers to.
func (s *TokenService) Validate(token string) (domain.TokenPayload, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	payload, ok := domain.NewTokenPayload(domain.TokenPurpose(claims.Purpose), domain.TokenClaims{
		UserID:    claims.Subject,
		ExpiresAt: claims.Expiry(),
	})
	if !ok {
		return nil, ErrTokenInvalid
	}

	if err := claims.ValidateExpiryAt(s.now()); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return payload, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return payload, nil
}
