package config

import (
	"errors"
	"os"
	"testing"
)

// unsetEnvForTest unsets an environment variable for the test and restores it after
func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	old, existed := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if existed {
			os.Setenv(key, old)
		}
	})
}

// clearAllEnvVars clears all config-related environment variables for clean tests
func clearAllEnvVars(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvAPIKey, EnvAPIURL, EnvConfigPath} {
		unsetEnvForTest(t, env)
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
	if !cfg.Cache {
		t.Error("Cache should default to true")
	}
	if !cfg.References {
		t.Error("References should default to true")
	}
	if cfg.JSON {
		t.Error("JSON should default to false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr error
	}{
		{"valid key", "abc123", nil},
		{"empty key", "", ErrAPIKeyNotFound},
		{"whitespace key", "   ", ErrAPIKeyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.APIKey = tt.apiKey
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_RestoresEmptyURL(t *testing.T) {
	cfg := NewConfig()
	cfg.APIKey = "key"
	cfg.APIURL = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
}

func TestApplyFileConfig(t *testing.T) {
	t.Run("nil file config is a no-op", func(t *testing.T) {
		cfg := NewConfig()
		cfg.ApplyFileConfig(nil, Overrides{})
		if !cfg.Cache || !cfg.References || cfg.APIKey != "" {
			t.Errorf("config changed by nil file config: %+v", cfg)
		}
	})

	t.Run("file values apply when flags not set", func(t *testing.T) {
		cfg := NewConfig()
		cfg.ApplyFileConfig(&FileConfig{
			APIKey:     "file-key",
			APIURL:     "http://localhost:9999/fastgpt",
			Cache:      BoolPtr(false),
			References: BoolPtr(false),
		}, Overrides{})

		if cfg.APIKey != "file-key" {
			t.Errorf("APIKey = %q, want %q", cfg.APIKey, "file-key")
		}
		if cfg.APIURL != "http://localhost:9999/fastgpt" {
			t.Errorf("APIURL = %q", cfg.APIURL)
		}
		if cfg.Cache {
			t.Error("Cache should be false from file")
		}
		if cfg.References {
			t.Error("References should be false from file")
		}
	})

	t.Run("explicit flags win over file", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Cache = true
		cfg.References = true
		cfg.ApplyFileConfig(&FileConfig{
			Cache:      BoolPtr(false),
			References: BoolPtr(false),
		}, Overrides{Cache: true, References: true})

		if !cfg.Cache || !cfg.References {
			t.Errorf("explicit flags overridden: cache=%v references=%v", cfg.Cache, cfg.References)
		}
	})

	t.Run("absent booleans keep defaults", func(t *testing.T) {
		cfg := NewConfig()
		cfg.ApplyFileConfig(&FileConfig{APIKey: "k"}, Overrides{})
		if !cfg.Cache || !cfg.References {
			t.Error("absent booleans should keep default true")
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	clearAllEnvVars(t)
	t.Setenv(EnvAPIKey, "  env-key  ")
	t.Setenv(EnvAPIURL, "http://example.test/api/")

	cfg := NewConfig()
	cfg.APIKey = "file-key"
	cfg.ApplyEnvOverrides()

	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "env-key")
	}
	if cfg.APIURL != "http://example.test/api" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
}

func TestApplyEnvOverrides_NoEnv(t *testing.T) {
	clearAllEnvVars(t)

	cfg := NewConfig()
	cfg.APIKey = "file-key"
	cfg.ApplyEnvOverrides()

	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "file-key")
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"12345678", "********"},
		{"123456789", "1234...6789"},
		{"sk-abcdefghijklmnop", "sk-a...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
