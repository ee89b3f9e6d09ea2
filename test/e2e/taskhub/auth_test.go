package taskhub_test

import (
	"testing"

	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetAndMFA(t *testing.T) {
	h := setupTaskHub(t, options{})
	ctx := t.Context()
	sess := h.createUser(t, "ana")

	_, err := h.client.RequestPasswordReset(ctx, emailOf("ana"))
	require.NoError(t, err)
	_, err = h.client.ResetPassword(ctx, taskhubsdk.ResetPasswordRequest{
		Token:           h.lastToken(t, emailOf("ana")),
		NewPassword:     "another-password",
		ConfirmPassword: "another-password",
	})
	require.NoError(t, err)

	_, err = h.client.Login(ctx, emailOf("ana"), testPassword)
	require.ErrorIs(t, err, taskhubsdk.ErrInvalidCredentials)

	enroll, err := sess.EnrollTOTP(ctx)
	require.NoError(t, err)
	codes, err := sess.VerifyTOTP(ctx, generateTOTP(t, enroll.Secret))
	require.NoError(t, err)
	require.Len(t, codes.Codes, 10)

	res, err := h.client.Login(ctx, emailOf("ana"), "another-password")
	require.NoError(t, err)
	require.True(t, res.MFARequired)

	done, err := h.client.CompleteMFALogin(ctx, res.MFAToken, generateTOTP(t, enroll.Secret))
	require.NoError(t, err)
	require.True(t, done.User.MFAEnabled)
}

func TestRegistrationRiskCheck(t *testing.T) {
	h := setupTaskHub(t, options{riskMaxAttempts: 2})
	ctx := t.Context()

	for _, name := range []string{"one", "two"} {
		_, err := h.client.Register(ctx, taskhubsdk.RegisterRequest{Name: name, Email: emailOf(name), Password: testPassword})
		require.NoError(t, err)
	}

	_, err := h.client.Register(ctx, taskhubsdk.RegisterRequest{Name: "three", Email: emailOf("three"), Password: testPassword})
	require.ErrorIs(t, err, taskhubsdk.ErrRiskCheckDenied)
	require.Empty(t, h.outbox.To(emailOf("three")))
}

func TestHealth(t *testing.T) {
	h := setupTaskHub(t, options{})
	ctx := t.Context()

	live, err := h.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := h.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])
	require.Equal(t, "ok", ready.Checks["redis"])
}
