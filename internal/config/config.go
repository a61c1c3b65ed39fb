package config

import (
	"errors"
	"os"
	"strings"

	"github.com/quocvuong92/fastgpt-cli/internal/constants"
)

// Environment variable names
const (
	EnvAPIKey     = "KAGI_API_KEY"
	EnvAPIURL     = "FASTGPT_API_URL"
	EnvConfigPath = "FASTGPT_CONFIG"
)

// Defaults - re-exported from constants for convenience
const (
	DefaultAPIURL     = constants.DefaultAPIURL
	DefaultCache      = constants.DefaultCache
	DefaultReferences = constants.DefaultReferences
)

// Errors
var (
	ErrAPIKeyNotFound = errors.New("no API key found. Set one with: fastgpt --set-api-key YOUR_KEY")
	ErrConfigIO       = errors.New("config file error")
)

// Config holds the runtime configuration for one process.
// It is built once at startup and passed explicitly to the session.
type Config struct {
	APIKey string
	APIURL string

	// Request toggles
	Cache      bool
	References bool

	// Output flags
	JSON    bool
	Render  bool
	Verbose bool
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{
		APIURL:     DefaultAPIURL,
		Cache:      DefaultCache,
		References: DefaultReferences,
	}
}

// Overrides records which flags were set explicitly on the command line.
// Explicit flags take precedence over the config file.
type Overrides struct {
	Cache      bool
	References bool
}

// ApplyFileConfig applies file configuration to the main Config.
// File config has lower priority than environment variables and CLI flags.
func (c *Config) ApplyFileConfig(fc *FileConfig, explicit Overrides) {
	if fc == nil {
		return
	}

	if c.APIKey == "" && fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Cache != nil && !explicit.Cache {
		c.Cache = *fc.Cache
	}
	if fc.References != nil && !explicit.References {
		c.References = *fc.References
	}
}

// ApplyEnvOverrides applies environment variables on top of the file config
func (c *Config) ApplyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		c.APIKey = key
	}
	if url := strings.TrimSpace(os.Getenv(EnvAPIURL)); url != "" {
		c.APIURL = url
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")
}

// Validate checks that the configuration can be used to start a session
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrAPIKeyNotFound
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	return nil
}

// MaskAPIKey hides all but the first and last four characters of a key.
// Keys of eight characters or fewer are fully masked.
func MaskAPIKey(key string) string {
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return strings.Repeat("*", len(key))
}
