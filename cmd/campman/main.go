// cmd/campman/main.go
//
// Entry point for the campman TUI.
//
// Flow:
// 1. Locate or create the .campman configuration directory
// 2. Load every blueprint from .campman/blueprints
// 3. Open the vault database and the log file
// 4. Parse any roster files given as arguments, then launch the TUI

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marbeck/campman/internal/blueprint"
	"github.com/marbeck/campman/internal/combat"
	"github.com/marbeck/campman/internal/config"
	"github.com/marbeck/campman/internal/logging"
	"github.com/marbeck/campman/internal/tui"
	"github.com/marbeck/campman/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "campman: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configRoot := flag.String("config", "", "configuration directory (default ~/.config/campman)")
	flag.Parse()

	cfg, err := config.New(*configRoot)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Init(); err != nil {
		return fmt.Errorf("initialize %s: %w", cfg.Root, err)
	}

	logger, err := logging.New(cfg.LogsDir())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logger.Close()

	resolver := blueprint.DirResolver{
		OptionsDir: cfg.OptionsDir(),
		ScriptsDir: cfg.ScriptsDir(),
	}
	catalog, err := blueprint.LoadDir(cfg.BlueprintsDir(), resolver)
	if err != nil {
		return fmt.Errorf("load blueprints: %w", err)
	}
	logger.Printf("loaded %d blueprint kinds from %s", catalog.Len(), cfg.BlueprintsDir())

	store, err := vault.Open(cfg.VaultPath())
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	defer store.Close()

	// Roster files on the command line drop the TUI straight into combat.
	var opts []tui.AppOption
	if roster, err := loadRosters(flag.Args()); err != nil {
		return err
	} else if len(roster) > 0 {
		logger.Printf("preloaded %d combat participants", len(roster))
		opts = append(opts, tui.WithRoster(roster))
	}

	p := tea.NewProgram(
		tui.NewApp(cfg, catalog, store, logger, opts...),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func loadRosters(paths []string) ([]combat.Participant, error) {
	var roster []combat.Participant
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read roster %s: %w", path, err)
		}
		parsed, err := combat.ParseRoster(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse roster %s: %w", path, err)
		}
		roster = append(roster, parsed...)
	}
	return roster, nil
}
