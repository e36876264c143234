package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrMissingSecret is returned when no JWT signing secret is configured.
var ErrMissingSecret = errors.New("JWT_SECRET is required")

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8001)

	JWTSecret string        // Required: HS256 signing secret shared with other services
	TokenTTL  time.Duration // Token lifetime (default: 24h)
	Issuer    string        // Optional: iss claim, empty leaves it out

	DBDriver     string        // sqlite or postgres (default: sqlite)
	DBDSN        string        // File path or DSN for sqlite, connection URL for postgres (default: auth.db)
	DBMaxConns   int           // Concurrent store queries (default: 5)
	DBQueueDepth int           // Callers allowed to wait for a query slot (default: 64)
	DBTimeout    time.Duration // Per query deadline including the wait (default: 5s)

	AllowedOrigins    []string // CORS allow-list
	TrustProxyHeaders bool     // Key rate limits on X-Forwarded-For / X-Real-IP (default: false)
	RateLimits        ratelimit.Policies

	SwaggerEnabled       bool          // Serve /swagger/ (default: false)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Limiter sweep interval (default: 1m)
}

// Config keys, shared by the YAML file and the flag set.
const (
	keyEnv                  = "env"
	keyLogLevel             = "log.level"
	keyLogFormat            = "log.format"
	keyPort                 = "port"
	keyJWTSecret            = "jwt.secret"
	keyTokenTTL             = "jwt.ttl"
	keyIssuer               = "jwt.issuer"
	keyDBDriver             = "db.driver"
	keyDBDSN                = "db.dsn"
	keyDBMaxConns           = "db.max_conns"
	keyDBQueueDepth         = "db.queue_depth"
	keyDBTimeout            = "db.timeout"
	keyAllowedOrigins       = "cors.allowed_origins"
	keyTrustProxyHeaders    = "trust_proxy_headers"
	keyRateLimit            = "ratelimit"
	keySwaggerEnabled       = "swagger.enabled"
	keyShutdownGracePeriod  = "shutdown_grace_period"
	keyHousekeepingInterval = "housekeeping_interval"
)

var defaults = map[string]any{
	keyEnv:                  "dev",
	keyLogLevel:             "info",
	keyLogFormat:            "json",
	keyPort:                 8001,
	keyTokenTTL:             24 * time.Hour,
	keyDBDriver:             DriverSQLite,
	keyDBDSN:                "auth.db",
	keyDBMaxConns:           5,
	keyDBQueueDepth:         64,
	keyDBTimeout:            5 * time.Second,
	keyAllowedOrigins:       []string{"http://localhost:5173", "http://localhost:3000"},
	keyTrustProxyHeaders:    false,
	keySwaggerEnabled:       false,
	keyShutdownGracePeriod:  10 * time.Second,
	keyHousekeepingInterval: time.Minute,
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"env":                   keyEnv,
	"log-level":             keyLogLevel,
	"log-format":            keyLogFormat,
	"port":                  keyPort,
	"token-ttl":             keyTokenTTL,
	"db-driver":             keyDBDriver,
	"db-dsn":                keyDBDSN,
	"db-max-conns":          keyDBMaxConns,
	"db-queue-depth":        keyDBQueueDepth,
	"db-timeout":            keyDBTimeout,
	"allowed-origins":       keyAllowedOrigins,
	"trust-proxy-headers":   keyTrustProxyHeaders,
	"swagger":               keySwaggerEnabled,
	"shutdown-grace-period": keyShutdownGracePeriod,
}

// RegisterFlags adds the overridable settings to fs. Only flags the user
// sets take effect, unset flags never mask the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("env", "dev", "environment name (dev, staging, prod)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text)")
	fs.Int("port", 8001, "HTTP listen port")
	fs.Duration("token-ttl", 24*time.Hour, "issued token lifetime")
	fs.String("db-driver", DriverSQLite, "user store driver (sqlite, postgres)")
	fs.String("db-dsn", "auth.db", "sqlite file or postgres connection URL")
	fs.Int("db-max-conns", 5, "concurrent store queries")
	fs.Int("db-queue-depth", 64, "callers allowed to wait for a store slot")
	fs.Duration("db-timeout", 5*time.Second, "per query deadline")
	fs.StringSlice("allowed-origins", nil, "CORS allowed origins")
	fs.Bool("trust-proxy-headers", false, "key rate limits on proxy headers")
	fs.Bool("swagger", false, "serve Swagger UI at /swagger/")
	fs.Duration("shutdown-grace-period", 10*time.Second, "graceful shutdown timeout")
}

// LoadConfig resolves the configuration once: defaults, then the optional
// YAML file at path, then environment variables, then flags explicitly set
// on fs. fs may be nil.
func LoadConfig(path string, fs *pflag.FlagSet) (Config, error) {
	cfg, err := load(path, fs)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStoreConfig is LoadConfig for commands that only touch the store, it
// does not insist on a signing secret.
func LoadStoreConfig(path string, fs *pflag.FlagSet) (Config, error) {
	cfg, err := load(path, fs)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validateStore(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(path string, fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return Config{}, fmt.Errorf("config: default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := loadEnv(k); err != nil {
		return Config{}, err
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("config: load flags: %w", err)
		}
	}

	cfg := Config{
		Env:                  k.String(keyEnv),
		LogLevel:             k.String(keyLogLevel),
		LogFormat:            k.String(keyLogFormat),
		Port:                 k.Int(keyPort),
		JWTSecret:            k.String(keyJWTSecret),
		TokenTTL:             k.Duration(keyTokenTTL),
		Issuer:               k.String(keyIssuer),
		DBDriver:             strings.ToLower(k.String(keyDBDriver)),
		DBDSN:                k.String(keyDBDSN),
		DBMaxConns:           k.Int(keyDBMaxConns),
		DBQueueDepth:         k.Int(keyDBQueueDepth),
		DBTimeout:            k.Duration(keyDBTimeout),
		AllowedOrigins:       k.Strings(keyAllowedOrigins),
		TrustProxyHeaders:    k.Bool(keyTrustProxyHeaders),
		SwaggerEnabled:       k.Bool(keySwaggerEnabled),
		ShutdownGracePeriod:  k.Duration(keyShutdownGracePeriod),
		HousekeepingInterval: k.Duration(keyHousekeepingInterval),
	}

	// File policies first, RATELIMIT_* variables on top.
	policies := ratelimit.DefaultPolicies()
	if k.Exists(keyRateLimit) {
		if err := k.Unmarshal(keyRateLimit, &policies); err != nil {
			return Config{}, fmt.Errorf("config: ratelimit: %w", err)
		}
	}
	cfg.RateLimits = ratelimit.PoliciesFromEnv(policies)

	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive")
	}
	if err := c.RateLimits.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) validateStore() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown db driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("config: db dsn is required")
	}
	return nil
}

// loadEnv layers the recognised environment variables over k.
func loadEnv(k *koanf.Koanf) error {
	env := map[string]any{
		keyEnv:                  getEnvOrDefault("ENV", k.String(keyEnv)),
		keyLogLevel:             getEnvOrDefault("LOG_LEVEL", k.String(keyLogLevel)),
		keyLogFormat:            getEnvOrDefault("LOG_FORMAT", k.String(keyLogFormat)),
		keyPort:                 getEnvIntOrDefault("PORT", k.Int(keyPort)),
		keyJWTSecret:            getEnvOrDefault("JWT_SECRET", k.String(keyJWTSecret)),
		keyTokenTTL:             getEnvDurationOrDefault("TOKEN_TTL", k.Duration(keyTokenTTL)),
		keyIssuer:               getEnvOrDefault("JWT_ISSUER", k.String(keyIssuer)),
		keyDBDriver:             getEnvOrDefault("DB_DRIVER", k.String(keyDBDriver)),
		keyDBDSN:                getEnvOrDefault("DB_DSN", k.String(keyDBDSN)),
		keyDBMaxConns:           getEnvIntOrDefault("DB_MAX_CONNS", k.Int(keyDBMaxConns)),
		keyDBQueueDepth:         getEnvIntOrDefault("DB_QUEUE_DEPTH", k.Int(keyDBQueueDepth)),
		keyDBTimeout:            getEnvDurationOrDefault("DB_TIMEOUT", k.Duration(keyDBTimeout)),
		keyAllowedOrigins:       getEnvListOrDefault("ALLOWED_ORIGINS", k.Strings(keyAllowedOrigins)),
		keyTrustProxyHeaders:    getEnvBoolOrDefault("TRUST_PROXY_HEADERS", k.Bool(keyTrustProxyHeaders)),
		keySwaggerEnabled:       getEnvBoolOrDefault("SWAGGER_ENABLED", k.Bool(keySwaggerEnabled)),
		keyShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", k.Duration(keyShutdownGracePeriod)),
		keyHousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", k.Duration(keyHousekeepingInterval)),
	}

	for key, val := range env {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("config: env %s: %w", key, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
