// Package config handles the campman configuration directory. All blueprints,
// option files, scripts, logs, and the vault live under one root, by default
// <user config dir>/campman.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"

	defaultDisplayFactor = 3
)

const defaultConfigYAML = `# campman configuration
version: 1

# How many options to show per required selection while generating.
# The generator samples display_factor * required options for each field.
display_factor: 3

# File name of the vault database, relative to the campman directory.
vault: vault.db
`

const sampleBlueprintYAML = `# Sample blueprint. Each top-level key is a record kind you can generate.
townsfolk:
  race:
    - Elf
    - Orc
    - Human
  weapon:
    sources:
      - values: [Axe, Club]
        filter: "race: Orc"
      - values: [Bow, Dagger]
        filter: "race: Elf"
      - values: [Sword, Staff]
        filter: "race: Human"
  quirks:
    count: 2
    sources:
      - values: [limps, hums, squints, whispers, collects teeth, never blinks]
`

// Settings models config.yaml.
type Settings struct {
	Version       int    `yaml:"version"`
	DisplayFactor int    `yaml:"display_factor"`
	Vault         string `yaml:"vault"`
}

// Config holds the resolved directory layout plus the parsed settings.
type Config struct {
	Root     string
	Settings Settings
}

// New resolves the campman root directory and loads config.yaml from it. An
// empty root falls back to the user config directory.
func New(root string) (*Config, error) {
	if strings.TrimSpace(root) == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve user config dir: %w", err)
		}
		root = filepath.Join(base, "campman")
	}
	cfg := &Config{Root: root}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init creates the directory structure and seeds default files on first run.
//
// Structure created:
//
//	campman/
//	├── config.yaml
//	├── blueprints/   <- record kind definitions (*.yaml)
//	├── options/      <- line-oriented option files
//	├── scripts/      <- Go option scripts
//	└── logs/         <- session log
func (c *Config) Init() error {
	dirs := []string{
		c.BlueprintsDir(),
		c.OptionsDir(),
		c.ScriptsDir(),
		c.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	if err := writeIfMissing(filepath.Join(c.Root, configFileName), defaultConfigYAML); err != nil {
		return err
	}
	if err := writeIfMissing(filepath.Join(c.BlueprintsDir(), "sample.yaml"), sampleBlueprintYAML); err != nil {
		return err
	}
	return c.load()
}

func (c *Config) load() error {
	c.Settings = Settings{Version: 1, DisplayFactor: defaultDisplayFactor, Vault: "vault.db"}
	data, err := os.ReadFile(filepath.Join(c.Root, configFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", configFileName, err)
	}
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("config: decode %s: %w", configFileName, err)
	}
	if settings.DisplayFactor > 0 {
		c.Settings.DisplayFactor = settings.DisplayFactor
	}
	if strings.TrimSpace(settings.Vault) != "" {
		c.Settings.Vault = settings.Vault
	}
	if settings.Version > 0 {
		c.Settings.Version = settings.Version
	}
	return nil
}

// BlueprintsDir is where record kind definitions live.
func (c *Config) BlueprintsDir() string {
	return filepath.Join(c.Root, "blueprints")
}

// OptionsDir is where line-oriented option files live.
func (c *Config) OptionsDir() string {
	return filepath.Join(c.Root, "options")
}

// ScriptsDir is where Go option scripts live.
func (c *Config) ScriptsDir() string {
	return filepath.Join(c.Root, "scripts")
}

// LogsDir is where the session log lives.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Root, "logs")
}

// VaultPath is the location of the vault database.
func (c *Config) VaultPath() string {
	if filepath.IsAbs(c.Settings.Vault) {
		return c.Settings.Vault
	}
	return filepath.Join(c.Root, c.Settings.Vault)
}

func writeIfMissing(path, body string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
