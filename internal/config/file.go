package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config file names
const (
	ConfigDirName        = "fastgpt"
	ConfigFileName       = "config.toml"
	LegacyConfigFileName = "config.yaml"
)

// FileConfig represents the configuration file structure
type FileConfig struct {
	APIKey string `toml:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIURL string `toml:"api_url,omitempty" yaml:"api_url,omitempty"`

	// Pointers so that an absent key keeps the default (true)
	Cache      *bool `toml:"cache,omitempty" yaml:"cache,omitempty"`
	References *bool `toml:"references,omitempty" yaml:"references,omitempty"`
}

// Store loads and saves the config file at a fixed path
type Store struct {
	path string
}

// NewStore creates a Store for the given config.toml path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns a Store at the per-user config location.
// FASTGPT_CONFIG overrides the path.
func DefaultStore() (*Store, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return NewStore(p), nil
	}
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// DefaultConfigPath returns <UserConfigDir>/fastgpt/config.toml
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: could not determine config directory: %v", ErrConfigIO, err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, ConfigDirName, ConfigFileName), nil
}

// Path returns the path of the TOML config file
func (s *Store) Path() string {
	return s.path
}

// legacyPath is the YAML file checked when no TOML file exists
func (s *Store) legacyPath() string {
	return filepath.Join(filepath.Dir(s.path), LegacyConfigFileName)
}

// Load reads the config file. A missing file yields an empty FileConfig.
// The TOML file is preferred; config.yaml in the same directory is the fallback.
func (s *Store) Load() (*FileConfig, error) {
	if _, err := os.Stat(s.path); err == nil {
		return loadTOML(s.path)
	}
	if legacy := s.legacyPath(); fileExists(legacy) {
		return loadYAML(legacy)
	}
	return &FileConfig{}, nil
}

// Save writes the config file with owner-only permissions
func (s *Store) Save(fc *FileConfig) error {
	if fc == nil {
		fc = &FileConfig{}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("%w: failed to create config directory: %v", ErrConfigIO, err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Kagi FastGPT CLI configuration\n")
	buf.WriteString("# Generated by fastgpt - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
		return fmt.Errorf("%w: failed to encode config: %v", ErrConfigIO, err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: failed to write config file %s: %v", ErrConfigIO, s.path, err)
	}
	// Ensure permissions are correct even if the file already existed
	if err := os.Chmod(s.path, 0600); err != nil {
		return fmt.Errorf("%w: failed to set config file permissions: %v", ErrConfigIO, err)
	}
	return nil
}

// Reset clears the stored API key while keeping the other settings.
// An unreadable config file is left untouched.
func (s *Store) Reset() error {
	fc, err := s.Load()
	if err != nil {
		return err
	}
	fc.APIKey = ""
	return s.Save(fc)
}

// SetAPIKey stores a new API key while keeping the other settings
func (s *Store) SetAPIKey(key string) error {
	fc, err := s.Load()
	if err != nil {
		return err
	}
	fc.APIKey = key
	return s.Save(fc)
}

func loadTOML(path string) (*FileConfig, error) {
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %s: %v", ErrConfigIO, path, err)
	}
	return &cfg, nil
}

func loadYAML(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfigIO, path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %s: %v", ErrConfigIO, path, err)
	}
	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BoolPtr returns a pointer to b, for building FileConfig values
func BoolPtr(b bool) *bool {
	return &b
}
