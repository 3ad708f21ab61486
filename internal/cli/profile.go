package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/session"
)

const (
	envPrefix     = "CCADASH_"
	configFileEnv = envPrefix + "CONFIG"
)

// Profile holds the CLI settings
type Profile struct {
	APIBaseURL  string        `koanf:"api_base_url"`
	APITimeout  time.Duration `koanf:"api_timeout"`
	SessionFile string        `koanf:"session_file"`
	ErrorMode   string        `koanf:"error_mode"`
	// Color is auto, always or never
	Color string `koanf:"color"`
}

func defaultProfile() Profile {
	return Profile{
		APIBaseURL: "http://localhost:5000/api",
		APITimeout: config.DefaultAPITimeout,
		ErrorMode:  string(config.ErrorModeLenient),
		Color:      "auto",
	}
}

// LoadProfile builds a Profile by layering defaults, the optional YAML file and CCADASH_* environment variables.
// path overrides CCADASH_CONFIG when set.
func LoadProfile(path string) (*Profile, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(configFileEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	// CCADASH_API_BASE_URL -> api_base_url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("could not load environment: %w", err)
	}

	p := defaultProfile()
	if err := k.UnmarshalWithConf("", &p, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	if p.SessionFile == "" {
		sessionFile, err := session.DefaultFilePath()
		if err != nil {
			return nil, err
		}
		p.SessionFile = sessionFile
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	p.ErrorMode = strings.ToLower(strings.TrimSpace(p.ErrorMode))
	p.Color = strings.ToLower(strings.TrimSpace(p.Color))

	if err := config.ValidateAPIBaseURL(p.APIBaseURL); err != nil {
		return fmt.Errorf("api_base_url: %w", err)
	}
	if p.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %s", p.APITimeout)
	}
	switch config.ErrorMode(p.ErrorMode) {
	case config.ErrorModeLenient, config.ErrorModeStrict:
	default:
		return fmt.Errorf("invalid error_mode '%s'. Valid modes: lenient, strict", p.ErrorMode)
	}
	switch p.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color '%s'. Valid values: auto, always, never", p.Color)
	}
	return nil
}
