package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "campman")
	cfg, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, dir := range []string{cfg.BlueprintsDir(), cfg.OptionsDir(), cfg.ScriptsDir(), cfg.LogsDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "config.yaml")); err != nil {
		t.Fatalf("config.yaml missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.BlueprintsDir(), "sample.yaml")); err != nil {
		t.Fatalf("sample blueprint missing: %v", err)
	}
	if cfg.Settings.DisplayFactor != 3 {
		t.Fatalf("unexpected display factor: %d", cfg.Settings.DisplayFactor)
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "campman")
	cfg, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	custom := "version: 1\ndisplay_factor: 5\nvault: custom.db\n"
	if err := os.WriteFile(filepath.Join(root, "config.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := cfg.Init(); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if cfg.Settings.DisplayFactor != 5 {
		t.Fatalf("custom settings lost: %+v", cfg.Settings)
	}
	if got := cfg.VaultPath(); got != filepath.Join(root, "custom.db") {
		t.Fatalf("unexpected vault path: %s", got)
	}
}

func TestSettingsFallBackToDefaults(t *testing.T) {
	root := filepath.Join(t.TempDir(), "campman")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "config.yaml"), []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Settings.DisplayFactor != 3 || cfg.Settings.Vault != "vault.db" {
		t.Fatalf("defaults not applied: %+v", cfg.Settings)
	}
}
