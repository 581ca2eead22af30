package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDocumentDefaults(t *testing.T) {
	t.Parallel()

	doc, err := LoadDocument("")
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if doc.Server.Port != "3001" {
		t.Fatalf("Port = %q, want 3001", doc.Server.Port)
	}
	if doc.Reddit.BaseURL != "https://www.reddit.com" {
		t.Fatalf("BaseURL = %q", doc.Reddit.BaseURL)
	}
	if doc.Defaults.Limit != 25 || doc.Defaults.Hours != 24 {
		t.Fatalf("Defaults = %+v, want limit=25 hours=24", doc.Defaults)
	}
}

func TestLoadDocumentMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	doc, err := LoadDocument(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if doc.Server.Port != "3001" {
		t.Fatalf("Port = %q, want default", doc.Server.Port)
	}
}

func TestLoadDocumentOverlaysFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "proxy.yaml")
	content := "server:\n  port: \"9090\"\ndefaults:\n  limit: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if doc.Server.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", doc.Server.Port)
	}
	if doc.Defaults.Limit != 50 {
		t.Fatalf("Limit = %d, want 50", doc.Defaults.Limit)
	}
	// Unset keys keep their defaults.
	if doc.Defaults.Hours != 24 {
		t.Fatalf("Hours = %v, want 24", doc.Defaults.Hours)
	}
	if doc.Reddit.BaseURL != "https://www.reddit.com" {
		t.Fatalf("BaseURL = %q, want default", doc.Reddit.BaseURL)
	}
}

func TestLoadDocumentRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t-"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadDocument(path); err == nil {
		t.Fatal("LoadDocument() error = nil, want parse failure")
	}
}
