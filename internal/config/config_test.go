package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: ./data/listings.db
index:
  path: ./data/index
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d, want localhost:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Index.Name != "listings" {
		t.Errorf("index name = %q, want listings", cfg.Index.Name)
	}
	if cfg.Search.SuggestionLimit != 5 {
		t.Errorf("suggestion limit = %d, want 5", cfg.Search.SuggestionLimit)
	}
	if !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database path not expanded: %q", cfg.Storage.DatabasePath)
	}
	if !filepath.IsAbs(cfg.Index.Path) {
		t.Errorf("index path not expanded: %q", cfg.Index.Path)
	}
}

func TestLoad_IndexPathStaysEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Absence of an index path must survive defaulting: it is how the
	// process knows to run fallback-only.
	if cfg.Index.Path != "" {
		t.Errorf("index path = %q, want empty", cfg.Index.Path)
	}
	if !cfg.Debug {
		t.Error("debug flag not parsed")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
