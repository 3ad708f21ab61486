package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/jub0bs/cors"
)

// Config holds the dashboard server settings, loaded from environment variables
type Config struct {
	Environment    string        `env:"ENVIRONMENT,default=dev"`
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           int           `env:"PORT,default=3000"`
	LogLevel       string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	APIBaseURL     string        `env:"API_BASE_URL,default=http://localhost:5000/api"`
	APITimeout     time.Duration `env:"API_TIMEOUT,default=30s"`
	ErrorMode      string        `env:"ERROR_MODE,default=lenient"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS,separator=|"`
	RateLimitRPS   int32         `env:"RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int32         `env:"RATE_LIMIT_BURST,default=10"`
}

// ErrorMode controls what happens when dashboard data cannot be fetched.
//
// lenient: failures are logged and zeroed statistics/empty lists are displayed.
// strict: the first failure is returned to the caller.
type ErrorMode string

const (
	ErrorModeLenient ErrorMode = "lenient"
	ErrorModeStrict  ErrorMode = "strict"
)

const (
	LoginScreen = "/auth/login"

	DefaultAPITimeout     = 30 * time.Second
	ServerShutdownTimeout = 10 * time.Second
	MaxFormRequestSize    = 64 * 1024
	CORSMaxAgeInSeconds   = 86400
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}

var validErrorModes = map[ErrorMode]bool{
	ErrorModeLenient: true,
	ErrorModeStrict:  true,
}

// NewConfig loads environment variables and returns a validated Config
func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	cfg.ErrorMode = strings.ToLower(strings.TrimSpace(cfg.ErrorMode))

	if len(cfg.AllowedOrigins) == 0 && cfg.Environment != "prod" {
		cfg.AllowedOrigins = []string{fmt.Sprintf("http://localhost:%d", cfg.Port)}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set in the environment take precedence.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Mode returns the configured error mode
func (c *Config) Mode() ErrorMode {
	return ErrorMode(c.ErrorMode)
}

func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

func validateConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.APITimeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %v", cfg.APITimeout)
	}

	if err := ValidateAPIBaseURL(cfg.APIBaseURL); err != nil {
		return err
	}

	if !validErrorModes[ErrorMode(cfg.ErrorMode)] {
		return fmt.Errorf("invalid error mode '%s'. Valid modes: lenient, strict", cfg.ErrorMode)
	}

	if cfg.Environment == "prod" {
		if len(cfg.AllowedOrigins) == 0 {
			return fmt.Errorf("ALLOWED_ORIGINS is required in %s environment", cfg.Environment)
		}
		if !strings.HasPrefix(cfg.APIBaseURL, "https://") {
			return fmt.Errorf("API_BASE_URL must use https in %s environment", cfg.Environment)
		}
	}

	return nil
}

// ValidateAPIBaseURL checks the backend base URL is an absolute http(s) URL
func ValidateAPIBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("API_BASE_URL must include a host")
	}
	return nil
}

// NewCORSMiddleware creates the CORS middleware used by the /ui-api endpoints
func NewCORSMiddleware(cfg *Config) (*cors.Middleware, error) {
	origins := make([]string, len(cfg.AllowedOrigins))
	for i, origin := range cfg.AllowedOrigins {
		origins[i] = strings.TrimSpace(origin)
	}

	corsConfig := cors.Config{
		Origins: origins,
		Methods: []string{
			http.MethodGet,
			http.MethodOptions,
		},
		RequestHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
		},
		Credentialed:    true,
		MaxAgeInSeconds: CORSMaxAgeInSeconds,
	}

	m, err := cors.NewMiddleware(corsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create CORS middleware: %w", err)
	}
	return m, nil
}
