// Package config loads service configuration from defaults, an optional YAML
// file and environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config holds all configuration for the application.
type Config struct {
	Environment    Environment    `yaml:"environment"`
	LogLevel       string         `yaml:"log_level"`
	Server         Server         `yaml:"server"`
	Supabase       Supabase       `yaml:"supabase"`
	Auth           Auth           `yaml:"auth"`
	CORS           CORS           `yaml:"cors"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker"`
	Observability  Observability  `yaml:"observability"`
	Events         Events         `yaml:"events"`
	Idempotency    Idempotency    `yaml:"idempotency"`
	AWS            AWS            `yaml:"aws"`

	// FilePath is the YAML file this config was read from, if any.
	FilePath string `yaml:"-"`
}

// Server configures the HTTP listener.
type Server struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// Supabase points at the managed backend.
type Supabase struct {
	URL            string        `yaml:"url"`
	AnonKey        string        `yaml:"anon_key"`
	ServiceRoleKey string        `yaml:"service_role_key"`
	JWTSecret      string        `yaml:"jwt_secret"`
	Schema         string        `yaml:"schema"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Auth configures the session gate.
type Auth struct {
	SessionCookie  string   `yaml:"session_cookie"`
	CookieSecure   bool     `yaml:"cookie_secure"`
	ProtectedPaths []string `yaml:"protected_paths"`
	AuthPages      []string `yaml:"auth_pages"`
	LoginPath      string   `yaml:"login_path"`
	HomePath       string   `yaml:"home_path"`
}

// CORS lists the origins allowed to call the API from a browser.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CircuitBreaker tunes the breaker around backend calls.
type CircuitBreaker struct {
	Enabled      bool          `yaml:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio"`
}

// Observability toggles metrics and tracing.
type Observability struct {
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	ServiceName   string `yaml:"service_name"`
}

// Events selects where lifecycle events go. An empty bus name logs them instead.
type Events struct {
	BusName string `yaml:"bus_name"`
	Source  string `yaml:"source"`
}

// Idempotency configures replay of create requests. An empty table keeps keys in memory.
type Idempotency struct {
	Table string        `yaml:"table"`
	TTL   time.Duration `yaml:"ttl"`
}

// AWS holds the region used by the AWS SDK clients.
type AWS struct {
	Region string `yaml:"region"`
}

// Default returns the configuration used before any file or environment overrides.
func Default() *Config {
	return &Config{
		Environment: Development,
		LogLevel:    "info",
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Supabase: Supabase{
			Schema:  "public",
			Timeout: 10 * time.Second,
		},
		Auth: Auth{
			SessionCookie:  "sb-access-token",
			ProtectedPaths: []string{"/ideas", "/api/ideas", "/api/idea-topics"},
			AuthPages:      []string{"/auth/login", "/auth/signup"},
			LoginPath:      "/auth/login",
			HomePath:       "/ideas",
		},
		CORS: CORS{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     60 * time.Second,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
		Observability: Observability{
			EnableMetrics: true,
			ServiceName:   "ideas-backend",
		},
		Events: Events{
			Source: "ideas.backend",
		},
		Idempotency: Idempotency{
			TTL: 24 * time.Hour,
		},
		AWS: AWS{
			Region: "us-east-1",
		},
	}
}

// Load loads configuration from CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom loads configuration from the given YAML file (may be empty) and the environment.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.FilePath = path
	}

	cfg.loadEnvironmentVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadEnvironmentVariables() {
	c.Environment = Environment(getEnv("ENVIRONMENT", string(c.Environment)))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Server.Address = getEnv("SERVER_ADDRESS", c.Server.Address)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_ADDRESS") == "" {
		c.Server.Address = ":" + port
	}
	c.Server.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.Server.RequestTimeout)

	c.Supabase.URL = strings.TrimRight(getEnv("SUPABASE_URL", c.Supabase.URL), "/")
	c.Supabase.AnonKey = getEnv("SUPABASE_ANON_KEY", c.Supabase.AnonKey)
	c.Supabase.ServiceRoleKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", c.Supabase.ServiceRoleKey)
	c.Supabase.JWTSecret = getEnv("SUPABASE_JWT_SECRET", c.Supabase.JWTSecret)
	c.Supabase.Schema = getEnv("SUPABASE_SCHEMA", c.Supabase.Schema)
	c.Supabase.Timeout = getEnvDuration("SUPABASE_TIMEOUT", c.Supabase.Timeout)

	c.Auth.SessionCookie = getEnv("SESSION_COOKIE_NAME", c.Auth.SessionCookie)
	c.Auth.CookieSecure = getEnvBool("SESSION_COOKIE_SECURE", c.Auth.CookieSecure)
	c.Auth.ProtectedPaths = getEnvList("PROTECTED_PATHS", c.Auth.ProtectedPaths)

	c.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)

	c.CircuitBreaker.Enabled = getEnvBool("ENABLE_CIRCUIT_BREAKER", c.CircuitBreaker.Enabled)
	c.CircuitBreaker.Timeout = getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", c.CircuitBreaker.Timeout)
	c.CircuitBreaker.FailureRatio = getEnvFloat("CIRCUIT_BREAKER_FAILURE_RATIO", c.CircuitBreaker.FailureRatio)

	c.Observability.EnableMetrics = getEnvBool("ENABLE_METRICS", c.Observability.EnableMetrics)
	c.Observability.EnableTracing = getEnvBool("ENABLE_TRACING", c.Observability.EnableTracing)
	c.Observability.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Observability.OTLPEndpoint)
	c.Observability.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Observability.ServiceName)

	c.Events.BusName = getEnv("EVENT_BUS_NAME", c.Events.BusName)
	c.Events.Source = getEnv("EVENT_SOURCE", c.Events.Source)

	c.Idempotency.Table = getEnv("IDEMPOTENCY_TABLE", c.Idempotency.Table)
	c.Idempotency.TTL = getEnvDuration("IDEMPOTENCY_TTL", c.Idempotency.TTL)

	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Supabase.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.CircuitBreaker.Enabled && (c.CircuitBreaker.FailureRatio <= 0 || c.CircuitBreaker.FailureRatio > 1) {
		errs = append(errs, errors.New("circuit breaker failure ratio must be in (0, 1]"))
	}
	if c.Observability.EnableTracing && c.Observability.OTLPEndpoint == "" {
		errs = append(errs, errors.New("OTEL_EXPORTER_OTLP_ENDPOINT is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
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
