// Package config provides configuration loading and structs for the vektor server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ModelConfig holds model identity and loading settings. ID names the model on
// the Hugging Face hub; artifacts are resolved under CacheDir unless ModelPath
// and VocabPath point at local files directly.
type ModelConfig struct {
	ID           string `yaml:"id"`
	CacheDir     string `yaml:"cache_dir"`
	ModelPath    string `yaml:"model_path"`
	VocabPath    string `yaml:"vocab_path"`
	Dimensions   int    `yaml:"dimensions"`
	MaxTokens    int    `yaml:"max_tokens"`
	AuthTokenEnv string `yaml:"auth_token_env"`
}

// AuthToken reads the hub access credential from the configured environment
// variable. Empty when unset; the token never lives in the config file.
func (m *ModelConfig) AuthToken() string {
	return os.Getenv(m.AuthTokenEnv)
}

// RuntimeConfig holds request-processing settings.
type RuntimeConfig struct {
	CacheSize    int `yaml:"cache_size"`
	MaxBatchSize int `yaml:"max_batch_size"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Model.CacheDir = expandPath(cfg.Model.CacheDir, configDir)
	if cfg.Model.ModelPath != "" {
		cfg.Model.ModelPath = expandPath(cfg.Model.ModelPath, configDir)
	}
	if cfg.Model.VocabPath != "" {
		cfg.Model.VocabPath = expandPath(cfg.Model.VocabPath, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
