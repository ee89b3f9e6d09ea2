package service

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	clk := newClock()
	ts, err := NewTokenService([]byte(strings.Repeat("s", 32)), "taskhub")
	require.NoError(t, err)
	ts.Now = clk.Now

	t.Run("round trip decodes the variant", func(t *testing.T) {
		tok, exp, err := ts.Issue("user-1", domain.PurposePasswordReset, 15*time.Minute)
		require.NoError(t, err)
		require.WithinDuration(t, clk.Now().Add(15*time.Minute), exp, 0)

		payload, err := ts.Validate(tok)
		require.NoError(t, err)
		reset, ok := payload.(domain.PasswordReset)
		require.True(t, ok)
		require.Equal(t, "user-1", reset.UserID)
	})

	t.Run("expired keeps the payload", func(t *testing.T) {
		tok, _, err := ts.Issue("user-1", domain.PurposeEmailVerification, time.Minute)
		require.NoError(t, err)

		later := *ts
		later.Now = func() time.Time { return clk.Now().Add(time.Minute) }

		payload, err := later.Validate(tok)
		require.ErrorIs(t, err, ErrTokenExpired)
		require.ErrorIs(t, err, ErrTokenInvalid)
		require.NotNil(t, payload)
		require.Equal(t, "user-1", payload.Claims().UserID)
	})

	t.Run("not yet valid", func(t *testing.T) {
		tok, _, err := ts.Issue("user-1", domain.PurposeLogin, time.Hour)
		require.NoError(t, err)

		earlier := *ts
		earlier.Now = func() time.Time { return clk.Now().Add(-time.Minute) }

		_, err = earlier.Validate(tok)
		require.ErrorIs(t, err, ErrTokenInvalid)
		require.NotErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := NewTokenService([]byte(strings.Repeat("o", 32)), "taskhub")
		require.NoError(t, err)
		tok, _, err := other.Issue("user-1", domain.PurposeLogin, time.Hour)
		require.NoError(t, err)

		_, err = ts.Validate(tok)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unknown purpose", func(t *testing.T) {
		_, _, err := ts.Issue("user-1", "session", time.Hour)
		require.Error(t, err)

		h, err := jwtx.NewHS256([]byte(strings.Repeat("s", 32)), "taskhub")
		require.NoError(t, err)
		tok, err := h.Sign(jwtx.NewClaims("user-1", "session", "", time.Hour, clk.Now()))
		require.NoError(t, err)

		_, err = ts.Validate(tok)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("weak secret", func(t *testing.T) {
		_, err := NewTokenService([]byte("short"), "taskhub")
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})
}
