package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Environment:    "dev",
		Host:           "0.0.0.0",
		Port:           3000,
		LogLevel:       "debug",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		APIBaseURL:     "http://localhost:5000/api",
		APITimeout:     30 * time.Second,
		ErrorMode:      "lenient",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "qa" },
			wantErr: "invalid environment",
		},
		{
			name:    "port out of range",
			modify:  func(c *Config) { c.Port = 70000 },
			wantErr: "port must be between",
		},
		{
			name:    "zero API timeout",
			modify:  func(c *Config) { c.APITimeout = 0 },
			wantErr: "API timeout must be positive",
		},
		{
			name:    "empty API base URL",
			modify:  func(c *Config) { c.APIBaseURL = "" },
			wantErr: "API_BASE_URL cannot be empty",
		},
		{
			name:    "relative API base URL",
			modify:  func(c *Config) { c.APIBaseURL = "/api" },
			wantErr: "must use http or https",
		},
		{
			name:    "unknown error mode",
			modify:  func(c *Config) { c.ErrorMode = "silent" },
			wantErr: "invalid error mode",
		},
		{
			name: "prod requires https backend",
			modify: func(c *Config) {
				c.Environment = "prod"
				c.APIBaseURL = "http://cca.example.org/api"
			},
			wantErr: "must use https",
		},
		{
			name: "prod requires allowed origins",
			modify: func(c *Config) {
				c.Environment = "prod"
				c.APIBaseURL = "https://cca.example.org/api"
				c.AllowedOrigins = nil
			},
			wantErr: "ALLOWED_ORIGINS is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("PORT", "8081")
	t.Setenv("API_BASE_URL", "https://cca.example.org/api")
	t.Setenv("ERROR_MODE", "STRICT")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.org|https://b.example.org")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}

	if cfg.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Port)
	}
	if cfg.Mode() != ErrorModeStrict {
		t.Errorf("expected strict error mode, got %q", cfg.Mode())
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("expected default API timeout of 30s, got %v", cfg.APITimeout)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected no error for missing file, got %v", err)
		}
	})

	t.Run("variables are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("CCADASH_DOTENV_TEST=loaded\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Unsetenv("CCADASH_DOTENV_TEST") })

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		if got := os.Getenv("CCADASH_DOTENV_TEST"); got != "loaded" {
			t.Errorf("expected variable to be loaded, got %q", got)
		}
	})
}
