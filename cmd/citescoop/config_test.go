package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "citescoop.yaml")
	err := os.WriteFile(fn, []byte(`templates:
  - cite journal
  - cite book
ignore_invalid_ident: true
language: en
`), 0644)
	if err != nil {
		t.Fatalf("Error writing config: %v", err)
	}

	cfg, err := loadConfig(fn)
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if !cfg.IgnoreInvalidIdent {
		t.Error("Expected ignore_invalid_ident set")
	}
	if cfg.Language != "en" {
		t.Errorf("Expected language en, got %q", cfg.Language)
	}

	filter := cfg.filter()
	if filter == nil {
		t.Fatal("Expected a filter")
	}
	if !filter("cite journal") || !filter("cite book") {
		t.Error("Expected configured templates accepted")
	}
	if filter("infobox") {
		t.Error("Expected other templates rejected")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("Error loading empty config: %v", err)
	}
	if cfg.filter() != nil {
		t.Error("Expected accept-all filter by default")
	}
	if cfg.IgnoreInvalidIdent {
		t.Error("Expected strict identifier handling by default")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig("/does/not/exist.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}
