package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DataDir == "" {
		t.Fatal("empty data dir")
	}
	if cfg.SocketPath != filepath.Join(cfg.DataDir, "sixarmsd.sock") {
		t.Errorf("socket path = %q", cfg.SocketPath)
	}
	if cfg.GitBinary != "git" {
		t.Errorf("git binary = %q", cfg.GitBinary)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.DataDir != Default().DataDir {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"data_dir":"/srv/sixarms","git_binary":"/usr/local/bin/git","grok_model":"grok-2"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/srv/sixarms" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	// Socket path follows the overridden data dir.
	if cfg.SocketPath != "/srv/sixarms/sixarmsd.sock" {
		t.Errorf("socket path = %q", cfg.SocketPath)
	}
	if cfg.GitBinary != "/usr/local/bin/git" {
		t.Errorf("git binary = %q", cfg.GitBinary)
	}
	if cfg.GrokModel != "grok-2" {
		t.Errorf("grok model = %q", cfg.GrokModel)
	}
}

func TestLoadExplicitSocketPathWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"data_dir":"/srv/sixarms","socket_path":"/run/sixarms.sock"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SocketPath != "/run/sixarms.sock" {
		t.Errorf("socket path = %q", cfg.SocketPath)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestEnsureDataDir(t *testing.T) {
	cfg := &Config{DataDir: filepath.Join(t.TempDir(), "nested", "data")}
	if err := cfg.EnsureDataDir(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(cfg.DataDir)
	if err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}
