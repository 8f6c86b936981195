package commands

import (
	"os"
	"path/filepath"
	"testing"

	"wikipen/internal/config"
)

func TestEnsureCredentialsPromptsForMissing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Confluence.BaseURI = "https://wiki.example.com"

	withAnswers(t, []interface{}{"editor", "secret"}, func() {
		if err := ensureCredentials(cfg); err != nil {
			t.Fatalf("ensureCredentials returned error: %v", err)
		}
	})

	if cfg.Confluence.Username != "editor" {
		t.Errorf("Expected prompted username 'editor', got '%s'", cfg.Confluence.Username)
	}
	if cfg.Confluence.Password != "secret" {
		t.Errorf("Expected prompted password 'secret', got '%s'", cfg.Confluence.Password)
	}
}

func TestEnsureCredentialsSkipsWhenPresent(t *testing.T) {
	cfg := &config.Config{}
	cfg.Confluence.Username = "editor"
	cfg.Confluence.Password = "secret"

	// Any prompt fails the test
	withAnswers(t, nil, func() {
		if err := ensureCredentials(cfg); err != nil {
			t.Fatalf("ensureCredentials returned error: %v", err)
		}
	})
}

func TestLoadDocumentDetectsSyntaxFromExtension(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "guide.rst")
	if err := os.WriteFile(file, []byte("Title: Guide\n\nBody.\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	doc, err := loadDocument(file, "")
	if err != nil {
		t.Fatalf("loadDocument returned error: %v", err)
	}
	if doc.Syntax != "reStructuredText" {
		t.Errorf("Expected syntax 'reStructuredText', got '%s'", doc.Syntax)
	}
	if doc.Name != "guide.rst" {
		t.Errorf("Expected name 'guide.rst', got '%s'", doc.Name)
	}
}

func TestLoadDocumentHonorsSyntaxOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.html")
	if err := os.WriteFile(file, []byte("<p>raw</p>"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	doc, err := loadDocument(file, "Markdown")
	if err != nil {
		t.Fatalf("loadDocument returned error: %v", err)
	}
	if doc.Syntax != "Markdown" {
		t.Errorf("Expected overridden syntax 'Markdown', got '%s'", doc.Syntax)
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := loadDocument(filepath.Join(t.TempDir(), "absent.md"), "")
	if err == nil {
		t.Fatal("Expected error for a missing file")
	}
}
