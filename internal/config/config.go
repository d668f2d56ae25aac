package config

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const developmentSessionSecret = "invoice-dev-session-secret-change-me"

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	AppVersion         string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	SessionLockTTL    time.Duration
	CookieSecure      bool
	CookieSameSite    http.SameSite

	ExportRateLimit  int
	ExportRateWindow time.Duration
	IdempotencyTTL   time.Duration

	BodyLimitBytes         int64
	SecurityHeadersEnabled bool
	HSTSMaxAge             int
	CSRFEnabled            bool

	Breaker BreakerConfig
	Obs     ObsConfig

	HealthStoreTimeout time.Duration
	ShutdownTimeout    time.Duration
}

// BreakerConfig tunes the circuit breaker in front of the Redis session store.
type BreakerConfig struct {
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
}

// ObsConfig groups logging, metrics, tracing and profiling switches.
type ObsConfig struct {
	LogFormat string
	LogLevel  string

	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string

	TracingEnabled  bool
	TracingExporter string
	OTLPEndpoint    string
	OTLPHeaders     string
	SamplingRatio   float64

	PprofEnabled bool
	PprofUser    string
	PprofPass    string
}

// Load reads configuration from environment variables and an optional .env
// file. Malformed values are reported together rather than silently replaced
// by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	r := &reader{k: k}

	cfg := &Config{
		AppEnv:             r.str("APP_ENV", "development"),
		AppVersion:         r.str("APP_VERSION", ""),
		Port:               r.str("PORT", "8080"),
		RedisURL:           r.str("REDIS_URL", ""),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS"),

		SessionSecret:     r.str("SESSION_SECRET", ""),
		SessionTTL:        r.duration("SESSION_TTL", 12*time.Hour),
		SessionCookieName: r.str("SESSION_COOKIE_NAME", "invoice_session"),
		SessionLockTTL:    r.millis("SESSION_LOCK_TTL_MS", 5000),
		CookieSecure:      r.boolean("COOKIE_SECURE", false),
		CookieSameSite:    r.sameSite("COOKIE_SAMESITE"),

		ExportRateLimit:  r.integer("EXPORT_RATE_LIMIT", 10),
		ExportRateWindow: r.duration("EXPORT_RATE_WINDOW", time.Minute),
		IdempotencyTTL:   r.duration("IDEMPOTENCY_TTL", 10*time.Minute),

		BodyLimitBytes:         int64(r.integer("BODY_LIMIT_BYTES", 64<<10)),
		SecurityHeadersEnabled: r.boolean("SECURITY_HEADERS_ENABLED", true),
		HSTSMaxAge:             r.integer("SECURITY_HSTS_MAX_AGE", 15552000),
		CSRFEnabled:            r.boolean("CSRF_ENABLED", true),

		Breaker: BreakerConfig{
			MinRequests:  r.integer("STORE_BREAKER_MIN_REQUESTS", 10),
			FailureRatio: r.float("STORE_BREAKER_FAILURE_RATIO", 0.5),
			OpenFor:      r.millis("STORE_BREAKER_OPEN_MS", 15000),
		},

		HealthStoreTimeout: r.millis("HEALTH_READY_STORE_TIMEOUT_MS", 300),
		ShutdownTimeout:    r.millis("SHUTDOWN_TIMEOUT_MS", 10000),
	}
	cfg.Obs = ObsConfig{
		LogFormat:        r.str("OBS_LOG_FORMAT", "json"),
		LogLevel:         r.str("OBS_LOG_LEVEL", "info"),
		MetricsEnabled:   r.boolean("OBS_ENABLE_PROMETHEUS", true),
		MetricsNamespace: r.str("OBS_METRICS_NAMESPACE", "invoice"),
		MetricsBuckets:   r.str("OBS_METRICS_BUCKETS_MS", ""),
		TracingEnabled:   r.boolean("OBS_ENABLE_TRACING", true),
		TracingExporter:  r.str("OBS_TRACING_EXPORTER", "otlp"),
		OTLPEndpoint:     r.str("OBS_OTLP_ENDPOINT", ""),
		OTLPHeaders:      r.str("OBS_OTLP_HEADERS", ""),
		SamplingRatio:    r.float("OBS_TRACING_SAMPLING_RATIO", 1),
		PprofEnabled:     r.boolean("OBS_ENABLE_PPROF", cfg.IsDevelopment()),
		PprofUser:        r.str("SECURE_PPROF_BASIC_AUTH_USER", ""),
		PprofPass:        r.str("SECURE_PPROF_BASIC_AUTH_PASS", ""),
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("SESSION_SECRET is required")
		}
		cfg.SessionSecret = developmentSessionSecret
	}
	if len(cfg.SessionSecret) < 16 {
		return nil, errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be positive")
	}
	if cfg.CookieSameSite == http.SameSiteNoneMode && slices.Contains(cfg.AllowedOrigins(), "*") {
		// credentialed CORS echoes the caller's origin, so "*" would let any
		// site read the invoice with the user's cookie
		return nil, errors.New("CORS_ALLOWED_ORIGINS must list explicit origins when COOKIE_SAMESITE=none")
	}
	return cfg, nil
}

// AllowedOrigins returns the CORS allowlist, defaulting to any origin.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return c.CORSAllowedOrigins
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// reader looks keys up in koanf. Blank values count as unset and parse
// failures are collected in errs.
type reader struct {
	k    *koanf.Koanf
	errs []error
}

func (r *reader) raw(key string) (string, bool) {
	v := strings.TrimSpace(r.k.String(key))
	return v, v != ""
}

func (r *reader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (r *reader) str(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) list(key string) []string {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) integer(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *reader) boolean(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	r.fail(key, v, errors.New("not a boolean"))
	return def
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *reader) millis(key string, def int) time.Duration {
	return time.Duration(r.integer(key, def)) * time.Millisecond
}

func (r *reader) sameSite(key string) http.SameSite {
	v, _ := r.raw(key)
	switch strings.ToLower(v) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	}
	r.fail(key, v, errors.New("want lax, strict or none"))
	return http.SameSiteLaxMode
}
