package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "JWT_SECRET", "TOKEN_TTL", "JWT_ISSUER",
	"DB_DRIVER", "DB_DSN", "DB_MAX_CONNS", "DB_QUEUE_DEPTH", "DB_TIMEOUT",
	"ALLOWED_ORIGINS", "TRUST_PROXY_HEADERS", "SWAGGER_ENABLED",
	"SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL",
	"RATELIMIT_LOGIN_REQUESTS", "RATELIMIT_LOGIN_WINDOW",
	"RATELIMIT_REGISTER_REQUESTS", "RATELIMIT_REGISTER_WINDOW",
	"RATELIMIT_GENERAL_REQUESTS", "RATELIMIT_GENERAL_WINDOW",
}

// clearEnv blanks every variable LoadConfig reads. Blank counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig("", nil)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	require.Equal(t, 8001, cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Empty(t, cfg.Issuer)
	require.Equal(t, DriverSQLite, cfg.DBDriver)
	require.Equal(t, "auth.db", cfg.DBDSN)
	require.Equal(t, 5, cfg.DBMaxConns)
	require.Equal(t, 64, cfg.DBQueueDepth)
	require.Equal(t, 5*time.Second, cfg.DBTimeout)
	require.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	require.False(t, cfg.TrustProxyHeaders)
	require.False(t, cfg.SwaggerEnabled)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, ratelimit.DefaultPolicies(), cfg.RateLimits)
}

func TestLoadConfigEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_DSN", "postgres://auth@localhost/auth")
	t.Setenv("DB_TIMEOUT", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://tasks.example.com, https://admin.example.com")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("SWAGGER_ENABLED", "1")
	t.Setenv("RATELIMIT_LOGIN_REQUESTS", "10")
	t.Setenv("RATELIMIT_LOGIN_WINDOW", "5m")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, DriverPostgres, cfg.DBDriver)
	require.Equal(t, "postgres://auth@localhost/auth", cfg.DBDSN)
	require.Equal(t, 2*time.Second, cfg.DBTimeout)
	require.Equal(t, []string{"https://tasks.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	require.True(t, cfg.TrustProxyHeaders)
	require.True(t, cfg.SwaggerEnabled)
	require.Equal(t, ratelimit.Policy{Requests: 10, Window: 5 * time.Minute}, cfg.RateLimits[ratelimit.ActionLogin])
	require.Equal(t, ratelimit.RegisterPolicy, cfg.RateLimits[ratelimit.ActionRegister])
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearEnv(t)

	path := writeConfigFile(t, `
port: 7000
log:
  level: debug
jwt:
  secret: from-file
db:
  dsn: /var/lib/auth/file.db
  max_conns: 8
ratelimit:
  register:
    requests: 10
    window: 30m
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)

		require.Equal(t, 7000, cfg.Port)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, "json", cfg.LogFormat)
		require.Equal(t, "from-file", cfg.JWTSecret)
		require.Equal(t, "/var/lib/auth/file.db", cfg.DBDSN)
		require.Equal(t, 8, cfg.DBMaxConns)
		require.Equal(t, ratelimit.Policy{Requests: 10, Window: 30 * time.Minute}, cfg.RateLimits[ratelimit.ActionRegister])
		require.Equal(t, ratelimit.LoginPolicy, cfg.RateLimits[ratelimit.ActionLogin])
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("PORT", "7100")
		t.Setenv("RATELIMIT_REGISTER_REQUESTS", "4")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)

		require.Equal(t, 7100, cfg.Port)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, 4, cfg.RateLimits[ratelimit.ActionRegister].Requests)
		require.Equal(t, 30*time.Minute, cfg.RateLimits[ratelimit.ActionRegister].Window)
	})

	t.Run("set flags over env", func(t *testing.T) {
		t.Setenv("PORT", "7100")
		t.Setenv("LOG_FORMAT", "text")

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(fs)
		require.NoError(t, fs.Parse([]string{"--port", "7200", "--db-timeout", "750ms", "--swagger"}))

		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)

		require.Equal(t, 7200, cfg.Port)
		require.Equal(t, 750*time.Millisecond, cfg.DBTimeout)
		require.True(t, cfg.SwaggerEnabled)

		// Unset flags keep their defaults out of the way.
		require.Equal(t, "text", cfg.LogFormat)
		require.Equal(t, "/var/lib/auth/file.db", cfg.DBDSN)
	})
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("", nil)
			require.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")

		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
	})
}
