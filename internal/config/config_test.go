package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Table.SearchDebounce() != 400*time.Millisecond {
		t.Errorf("Expected 400ms debounce, got %v", cfg.Table.SearchDebounce())
	}
	if cfg.Validator.Timeout() != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.Validator.Timeout())
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Validator.URL = "ftp://validator"
	cfg.Validator.Burst = 0
	cfg.Table.DefaultPageSize = 15
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	for _, want := range []string{"url scheme", "burst", "default_page_size 15", "invalid log level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.toml")
	content := `
[validator]
url = "https://rpki.example.net:8443"

[table]
default_page_size = 25
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != path {
		t.Errorf("Expected path %s, got %s", path, used)
	}
	if cfg.Validator.URL != "https://rpki.example.net:8443" {
		t.Errorf("Unexpected url %q", cfg.Validator.URL)
	}
	if cfg.Table.DefaultPageSize != 25 {
		t.Errorf("Expected page size 25, got %d", cfg.Table.DefaultPageSize)
	}
	if cfg.Validator.TimeoutSeconds != 10 {
		t.Errorf("Missing keys should keep defaults, got timeout %d", cfg.Validator.TimeoutSeconds)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.toml")
	if err := os.WriteFile(path, []byte("[table]\npage_size = 10\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, _, err := Load(path, false)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *LoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "table.page_size") {
		t.Errorf("Expected unknown key in error, got %v", err)
	}
}

func TestLoad_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(t.TempDir())

	cfg, used, err := Load("", true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, XDGSubdir, DefaultConfigFileName)
	if used != want {
		t.Errorf("Expected defaults written to %s, got %q", want, used)
	}
	if cfg.Validator.URL != Default().Validator.URL {
		t.Errorf("Unexpected url %q", cfg.Validator.URL)
	}

	// The written file must load back cleanly.
	if _, _, err := Load(used, false); err != nil {
		t.Errorf("Reloading written defaults: %v", err)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if _, _, err := Load("", false); err == nil {
		t.Error("Expected error when no config exists")
	}
}

func TestEnsureDataDir(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg := Default()
	path, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	if want := filepath.Join(dataHome, XDGSubdir, "console.db"); path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}

	cfg.Database.Path = filepath.Join(t.TempDir(), "nested", "prefs.db")
	path, err = EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("Expected directory to exist: %v", err)
	}
}
