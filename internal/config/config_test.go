package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
model:
  id: "intfloat/multilingual-e5-base"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Model.ID != "intfloat/multilingual-e5-base" {
		t.Errorf("unexpected model id: %q", cfg.Model.ID)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.ID != "Alibaba-NLP/gte-multilingual-base" {
		t.Errorf("default model id: %q", cfg.Model.ID)
	}
	if cfg.Model.Dimensions != 768 {
		t.Errorf("default dimensions: %d", cfg.Model.Dimensions)
	}
	if cfg.Model.MaxTokens != 512 {
		t.Errorf("default max_tokens: %d", cfg.Model.MaxTokens)
	}
	if cfg.Model.AuthTokenEnv != "HUGGINGFACE_HUB_TOKEN" {
		t.Errorf("default auth_token_env: %q", cfg.Model.AuthTokenEnv)
	}
	if cfg.Runtime.MaxBatchSize != 256 {
		t.Errorf("default max_batch_size: %d", cfg.Runtime.MaxBatchSize)
	}
	if cfg.Runtime.CacheSize != 10000 {
		t.Errorf("default cache_size: %d", cfg.Runtime.CacheSize)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
model:
  cache_dir: "./models"
  vocab_path: "./models/vocab.txt"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantCache := filepath.Join(dir, "models")
	if cfg.Model.CacheDir != wantCache {
		t.Errorf("cache_dir = %q, want %q", cfg.Model.CacheDir, wantCache)
	}
	wantVocab := filepath.Join(dir, "models", "vocab.txt")
	if cfg.Model.VocabPath != wantVocab {
		t.Errorf("vocab_path = %q, want %q", cfg.Model.VocabPath, wantVocab)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAuthToken(t *testing.T) {
	m := ModelConfig{AuthTokenEnv: "VEKTOR_TEST_TOKEN"}
	t.Setenv("VEKTOR_TEST_TOKEN", "secret")
	if got := m.AuthToken(); got != "secret" {
		t.Errorf("AuthToken = %q", got)
	}
	t.Setenv("VEKTOR_TEST_TOKEN", "")
	if got := m.AuthToken(); got != "" {
		t.Errorf("AuthToken should be empty, got %q", got)
	}
}
