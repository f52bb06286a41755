package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srs.yaml")
	data := []byte("listen: \":9090\"\nsession:\n  max_cards: 40\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want :9090", cfg.Listen)
	}
	if cfg.Session.MaxCards != 40 {
		t.Errorf("MaxCards = %d, want 40", cfg.Session.MaxCards)
	}
	// Untouched keys keep their defaults.
	if cfg.DBPath != Default().DBPath {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SRS_LISTEN", ":7070")
	t.Setenv("SRS_SESSION__MAX_NEW_CARDS", "3")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7070" {
		t.Errorf("Listen = %q, want :7070", cfg.Listen)
	}
	if cfg.Session.MaxNewCards != 3 {
		t.Errorf("MaxNewCards = %d, want 3", cfg.Session.MaxNewCards)
	}
}

func TestLoadFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srs.yaml")
	if err := os.WriteFile(path, []byte("listen: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen", ":8080", "")
	flags.Int("max-cards", 20, "")
	if err := flags.Parse([]string{"--listen", ":6060", "--max-cards", "5"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":6060" {
		t.Errorf("Listen = %q, want flag value :6060", cfg.Listen)
	}
	if cfg.Session.MaxCards != 5 {
		t.Errorf("MaxCards = %d, want 5", cfg.Session.MaxCards)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srs.yaml")
	if err := os.WriteFile(path, []byte("session:\n  max_cards: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Error("expected a validation error for max_cards: 0")
	}
}
