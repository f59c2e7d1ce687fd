package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWhenNoPathGiven(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SpacesPerIndentLevel != 2 {
		t.Fatalf("expected default of 2, got %d", s.SpacesPerIndentLevel)
	}
}

func TestDefaultWhenFileMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SpacesPerIndentLevel != 2 {
		t.Fatalf("expected default of 2, got %d", s.SpacesPerIndentLevel)
	}
}

func TestLoadsOverriddenValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("spacesPerIndentLevel: 4\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SpacesPerIndentLevel != 4 {
		t.Fatalf("expected 4, got %d", s.SpacesPerIndentLevel)
	}
}

func TestZeroOverrideFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("spacesPerIndentLevel: 0\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SpacesPerIndentLevel != 2 {
		t.Fatalf("expected fallback to 2, got %d", s.SpacesPerIndentLevel)
	}
}
