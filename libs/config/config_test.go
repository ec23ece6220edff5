package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "8081")
	got, err := Port("TEST_PORT", "8000")
	if err != nil || got != "8081" {
		t.Fatalf("expected 8081, got %q (%v)", got, err)
	}

	t.Setenv("TEST_PORT", "99999")
	if _, err := Port("TEST_PORT", "8000"); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestParse(t *testing.T) {
	var cfg struct {
		Name     string        `env:"TEST_CFG_NAME" envDefault:"site"`
		Capacity int           `env:"TEST_CFG_CAPACITY" envDefault:"2"`
		Buffer   time.Duration `env:"TEST_CFG_BUFFER" envDefault:"15m"`
	}
	t.Setenv("TEST_CFG_CAPACITY", "3")
	if err := Parse(&cfg); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Name != "site" || cfg.Capacity != 3 || cfg.Buffer != 15*time.Minute {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadDotenvSkipsMissingAndKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("DOTENV_ONLY=from-file\nDOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("DOTENV_ONLY") })

	if err := LoadDotenv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotenv failed: %v", err)
	}
	if got := os.Getenv("DOTENV_ONLY"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
	if got := os.Getenv("DOTENV_SET"); got != "from-env" {
		t.Fatalf("expected existing value to win, got %q", got)
	}
}

func TestList(t *testing.T) {
	got := List(" a@x.nl, ,b@x.nl ")
	if len(got) != 2 || got[0] != "a@x.nl" || got[1] != "b@x.nl" {
		t.Fatalf("unexpected list: %v", got)
	}
}
