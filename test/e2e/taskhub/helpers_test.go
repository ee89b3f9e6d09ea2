package taskhub_test

import (
	"context"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/app"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/mail"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the fully wired application against real Postgres
 * and Redis containers. Outgoing email is captured so the tests can follow
 * verification and reset links.
 */

const (
	testPassword = "password123"
	jwtSecret    = "e2e-secret-e2e-secret-e2e-secret"
)

func TestMain(m *testing.M) {
	// Every request comes from 127.0.0.1.
	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	httpx.ModerateLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

	os.Exit(m.Run())
}

type harness struct {
	client *taskhubsdk.Client
	outbox *mail.Outbox
}

type options struct {
	riskMaxAttempts int
}

// setupTaskHub starts Postgres and Redis, wires the application against
// them and serves it on a local listener.
func setupTaskHub(t *testing.T, opts options) *harness {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed e2e test in short mode")
	}
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("taskhub"),
		tcpostgres.WithUsername("taskhub"),
		tcpostgres.WithPassword("taskhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rd, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rd) })

	redisAddr, err := rd.Endpoint(ctx, "")
	require.NoError(t, err)

	if opts.riskMaxAttempts == 0 {
		opts.riskMaxAttempts = 100
	}

	outbox := &mail.Outbox{}
	application, err := app.New(app.Config{
		Env:                  "test",
		LogLevel:             "warn",
		LogFormat:            "json",
		AppURL:               "https://taskhub.test",
		ShutdownGracePeriod:  5 * time.Second,
		HousekeepingInterval: time.Hour,
		JWTSecret:            jwtSecret,
		JWTIssuer:            "taskhub",
		DatabaseDriver:       "postgres",
		DatabaseURL:          dsn,
		PepperFile:           t.TempDir() + "/pepper",
		MailDriver:           "log",
		RedisAddr:            redisAddr,
		RiskMaxAttempts:      opts.riskMaxAttempts,
		RiskWindow:           time.Hour,
	}, app.WithMailer(outbox))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return &harness{client: taskhubsdk.NewClient(srv.URL), outbox: outbox}
}

var linkToken = regexp.MustCompile(`token=([A-Za-z0-9._\-]+)`)

// lastToken extracts the token from the newest email sent to addr.
func (h *harness) lastToken(t *testing.T, addr string) string {
	t.Helper()

	msgs := h.outbox.To(addr)
	require.NotEmpty(t, msgs, "no email sent to %s", addr)
	m := linkToken.FindStringSubmatch(msgs[len(msgs)-1].HTMLBody)
	require.Len(t, m, 2, "no token link in email to %s", addr)
	return m[1]
}

// createUser registers and verifies name@example.com and logs in.
func (h *harness) createUser(t *testing.T, name string) *taskhubsdk.Session {
	t.Helper()
	ctx := t.Context()
	email := name + "@example.com"

	_, err := h.client.Register(ctx, taskhubsdk.RegisterRequest{Name: name, Email: email, Password: testPassword})
	require.NoError(t, err)
	_, err = h.client.VerifyEmail(ctx, h.lastToken(t, email))
	require.NoError(t, err)

	res, err := h.client.Login(ctx, email, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	return h.client.NewSession(res.Token)
}

func generateTOTP(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func emailOf(name string) string { return strings.ToLower(name) + "@example.com" }
