package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerificationEmail(t *testing.T) {
	subject, body, err := VerificationEmail("https://app.example.com/", "Ana <b>", "a.b.c")
	require.NoError(t, err)
	require.Equal(t, SubjectVerifyEmail, subject)
	require.Contains(t, body, `href="https://app.example.com/verify-email?token=a.b.c"`)
	require.Contains(t, body, "Ana &lt;b&gt;")
}

func TestResetPasswordEmail(t *testing.T) {
	_, body, err := ResetPasswordEmail("http://localhost:5173", "Ana", "tok")
	require.NoError(t, err)
	require.Contains(t, body, "http://localhost:5173/reset-password?token=tok")
}

func TestSMTPGateway(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		var g *SMTPGateway
		require.ErrorIs(t, g.Send(context.Background(), "a@x.com", "s", "b"), ErrNotConfigured)
		require.ErrorIs(t, (&SMTPGateway{}).Send(context.Background(), "a@x.com", "s", "b"), ErrNotConfigured)
	})

	t.Run("sends html", func(t *testing.T) {
		g := NewSMTPGateway("smtp.example.com", 0, "user", "pass", "TaskHub <no-reply@example.com>")
		var gotAddr string
		var gotMsg []byte
		g.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr = addr
			gotMsg = msg
			require.NotNil(t, a)
			require.Equal(t, []string{"ana@x.com"}, to)
			return nil
		}

		require.NoError(t, g.Send(context.Background(), "ana@x.com", "Hello", "<p>hi</p>"))
		require.Equal(t, "smtp.example.com:587", gotAddr)
		require.Contains(t, string(gotMsg), "Content-Type: text/html; charset=utf-8\r\n")
		require.True(t, strings.HasSuffix(string(gotMsg), "<p>hi</p>\r\n"))
	})

	t.Run("transport error", func(t *testing.T) {
		g := NewSMTPGateway("smtp.example.com", 2525, "", "", "no-reply@example.com")
		g.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		}
		err := g.Send(context.Background(), "ana@x.com", "s", "b")
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("cancelled context", func(t *testing.T) {
		g := NewSMTPGateway("smtp.example.com", 25, "", "", "no-reply@example.com")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, g.Send(ctx, "ana@x.com", "s", "b"), context.Canceled)
	})
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("from@x.com", "to@x.com", "Héllo", "<p/>", time.Unix(0, 0).UTC()))
	require.Contains(t, msg, "Subject: =?utf-8?q?H=C3=A9llo?=\r\n")
	require.Contains(t, msg, "MIME-Version: 1.0\r\n")
}

func TestOutbox(t *testing.T) {
	var o Outbox
	require.NoError(t, o.Send(context.Background(), "a@x.com", "one", "1"))
	require.NoError(t, o.Send(context.Background(), "b@x.com", "two", "2"))
	require.Len(t, o.Messages(), 2)
	require.Len(t, o.To("a@x.com"), 1)

	o.Err = errors.New("down")
	require.Error(t, o.Send(context.Background(), "a@x.com", "three", "3"))
	require.Len(t, o.Messages(), 2)

	o.Reset()
	require.Empty(t, o.Messages())
}

func TestLogGateway(t *testing.T) {
	require.NoError(t, LogGateway{}.Send(context.Background(), "a@x.com", "s", "secret-link"))
}
