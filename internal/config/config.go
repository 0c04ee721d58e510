package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iishyfishyy/llmterm/internal/provider"
)

const (
	ConfigFileName  = "config.yaml"
	CacheFileName   = "cache.json"
	HistoryFileName = "history.db"
	EnvFileName     = ".env"

	// HomeEnvVar overrides the directory holding config, cache and history.
	HomeEnvVar = "LLMTERM_HOME"

	DefaultMaxOutputTokens = 150
)

// ErrInvalid is wrapped by Load when the config file exists but cannot be
// used.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Provider        provider.Selection
	MaxOutputTokens int
}

type fileConfig struct {
	Provider        provider.Spec `yaml:"provider"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
}

// Validate checks the invariants of a configuration.
func (c *Config) Validate() error {
	if c.Provider == nil {
		return fmt.Errorf("%w: no provider selected", ErrInvalid)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: max_output_tokens must be positive, got %d", ErrInvalid, c.MaxOutputTokens)
	}
	switch p := c.Provider.(type) {
	case provider.Local:
		if p.Model == "" {
			return fmt.Errorf("%w: ollama model is empty", ErrInvalid)
		}
	case provider.Aggregator:
		if p.Model == "" {
			return fmt.Errorf("%w: openrouter model is empty", ErrInvalid)
		}
	}
	return nil
}

// GetConfigDir returns the directory the config lives in: $LLMTERM_HOME when
// set, otherwise the directory of the running executable.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnvVar); dir != "" {
		return dir, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the configuration from the install directory. It returns
// (nil, nil) when no config has been written yet.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. A missing file is not an error;
// a malformed one yields an error wrapping ErrInvalid.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	sel, err := provider.Decode(raw.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg := &Config{Provider: sel, MaxOutputTokens: raw.MaxOutputTokens}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the install directory.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile atomically replaces the config file at path.
func SaveFile(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(fileConfig{
		Provider:        provider.Encode(cfg.Provider),
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from the .env file in dir, if there is
// one. Variables already present in the environment win.
func LoadEnvFile(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
