package taskhubsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
	"github.com/stretchr/testify/require"
)

func TestLogin_Outcomes(t *testing.T) {
	var status int
	var body any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api-v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	client := taskhubsdk.NewClient(srv.URL + "/")
	ctx := context.Background()

	t.Run("session", func(t *testing.T) {
		status, body = http.StatusOK, map[string]any{"token": "tok", "user": map[string]any{"id": "u1", "email": "ana@x.com"}}
		res, err := client.Login(ctx, "ana@x.com", "password123")
		require.NoError(t, err)
		require.Equal(t, "tok", res.Token)
		require.Equal(t, "u1", res.User.ID)
		require.False(t, res.VerificationResent)
	})

	t.Run("verification resent", func(t *testing.T) {
		status, body = http.StatusCreated, map[string]any{"message": "check your inbox"}
		res, err := client.Login(ctx, "ana@x.com", "password123")
		require.NoError(t, err)
		require.True(t, res.VerificationResent)
		require.Empty(t, res.Token)
	})

	t.Run("error", func(t *testing.T) {
		status, body = http.StatusForbidden, map[string]any{"error": "email_not_verified", "message": "check inbox"}
		_, err := client.Login(ctx, "ana@x.com", "password123")

		var apiErr *taskhubsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, taskhubsdk.CodeEmailNotVerified, apiErr.Code)
		require.ErrorIs(t, err, taskhubsdk.ErrEmailNotVerified)
	})

	t.Run("non-json error", func(t *testing.T) {
		status, body = http.StatusBadGateway, nil
		_, err := client.Login(ctx, "ana@x.com", "password123")

		var apiErr *taskhubsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.Equal(t, taskhubsdk.CodeServerError, apiErr.Code)
	})
}

func TestSession_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			taskhubsdk.ErrUnauthorized.WriteError(w)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := taskhubsdk.NewClient(srv.URL)
	require.NoError(t, client.NewSession("tok").ArchiveTask(context.Background(), "t1"))

	err := client.NewSession("other").ArchiveTask(context.Background(), "t1")
	require.True(t, errors.Is(err, taskhubsdk.ErrUnauthorized))
}

func TestAPIError_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	taskhubsdk.ErrResetAlreadyRequested.WithMessage("slow down").WriteError(rec)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"reset_already_requested","message":"slow down"}`, rec.Body.String())
	require.Equal(t, "A password reset was already requested, check your inbox", taskhubsdk.ErrResetAlreadyRequested.Message)
}
