package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/taskhub/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := jwtx.NewClaims("user-1", "login", "taskhub", time.Hour, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "login", c.Purpose)
	require.Equal(t, "taskhub", c.Issuer)
	require.Equal(t, now.Add(time.Hour), c.Expiry())
	require.NotEmpty(t, c.ID)

	other := jwtx.NewClaims("user-1", "login", "taskhub", time.Hour, now)
	require.NotEqual(t, c.ID, other.ID)
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "taskhub"}}

	require.NoError(t, c.ValidateIssuer("taskhub"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
}

func TestValidateExpiryAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		c := jwtx.NewClaims("u", "login", "", time.Minute, now)
		require.NoError(t, c.ValidateExpiryAt(now))
		require.NoError(t, c.ValidateExpiryAt(now.Add(59*time.Second)))
	})

	t.Run("expired at exp", func(t *testing.T) {
		c := jwtx.NewClaims("u", "login", "", time.Minute, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(time.Minute)), jwtx.ErrExpired)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(time.Hour)), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewClaims("u", "login", "", time.Hour, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(-time.Second)), jwtx.ErrNotYetValid)
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		c := &jwtx.Claims{}
		require.NoError(t, c.ValidateExpiryAt(now))
		require.True(t, c.Expiry().IsZero())
	})
}
