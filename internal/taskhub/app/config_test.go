package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_DRIVER", "MAIL_DRIVER", "CORS_ORIGINS", "RISK_WINDOW", "JWT_ISSUER"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "log", cfg.MailDriver)
	require.Equal(t, "taskhub", cfg.JWTIssuer)
	require.Equal(t, time.Hour, cfg.RiskWindow)
	require.Empty(t, cfg.CORSOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RISK_WINDOW", "15")
	t.Setenv("HOUSEKEEPING_INTERVAL", "90s")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "soon")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 15*time.Minute, cfg.RiskWindow)
	require.Equal(t, 90*time.Second, cfg.HousekeepingInterval)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		JWTSecret:      strings.Repeat("x", 32),
		DatabaseDriver: "sqlite",
		MailDriver:     "log",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = "postgres" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"smtp without host", func(c *Config) { c.MailDriver = "smtp" }, "SMTP_HOST"},
		{"unknown mail driver", func(c *Config) { c.MailDriver = "pigeon" }, "MAIL_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		JWTSecret:            strings.Repeat("x", 32),
		JWTIssuer:            "taskhub",
		DatabaseDriver:       "sqlite",
		DatabaseFile:         dir + "/taskhub.db",
		PepperFile:           dir + "/pepper",
		MailDriver:           "log",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, application.Handler())
	require.False(t, application.avatarService.Enabled())
	require.NoError(t, application.Close())
}
