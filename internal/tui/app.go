// Package tui is the terminal interface for campman. It uses bubbletea's
// model/update/view loop: one App model routes between the main menu, the
// record generator, the combat tracker, and the vault browser.
package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marbeck/campman/internal/blueprint"
	"github.com/marbeck/campman/internal/combat"
	"github.com/marbeck/campman/internal/config"
	"github.com/marbeck/campman/internal/logging"
	"github.com/marbeck/campman/internal/vault"
)

// appState identifies which screen the App is on.
type appState int

const (
	stateMainMenu appState = iota
	stateGenerate
	stateCombat
	stateVault
)

// menuItem implements list.Item for the main menu.
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// AppOption customizes App construction.
type AppOption func(*App)

// WithRoster preloads the combat tracker with participants, typically parsed
// from roster files passed on the command line.
func WithRoster(roster []combat.Participant) AppOption {
	return func(a *App) {
		a.initialRoster = roster
	}
}

// App is the root bubbletea model.
type App struct {
	state   appState
	config  *config.Config
	logger  *logging.Logger
	catalog *blueprint.Catalog
	store   *vault.Vault

	mainMenu list.Model
	generate *generateView
	combat   *combatView
	vault    *vaultView

	initialRoster []combat.Participant

	width  int
	height int
}

// NewApp wires the root model. The vault store may be nil; the vault browser
// and record saving then show a hint instead of failing.
func NewApp(cfg *config.Config, catalog *blueprint.Catalog, store *vault.Vault, logger *logging.Logger, opts ...AppOption) *App {
	items := []list.Item{
		menuItem{title: "Generate", desc: "Build a record from a blueprint"},
		menuItem{title: "Combat", desc: "Track a fight round by round"},
		menuItem{title: "Vault", desc: "Browse saved records"},
		menuItem{title: "Exit", desc: "Quit campman"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "campman"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:    stateMainMenu,
		config:   cfg,
		logger:   logger,
		catalog:  catalog,
		store:    store,
		mainMenu: mainMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.generate = newGenerateView(app)
	app.combat = newCombatView(app, app.initialRoster)
	app.vault = newVaultView(app)
	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if len(a.initialRoster) > 0 {
		a.state = stateCombat
	}
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-4), max(0, msg.Height-4))
		a.generate.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateMainMenu:
			return a.updateMainMenu(msg)
		case stateGenerate:
			if key == "esc" && !a.generate.handleEsc() {
				a.state = stateMainMenu
				return a, nil
			}
			return a, a.generate.update(msg)
		case stateCombat:
			if key == "esc" && !a.combat.handleEsc() {
				a.state = stateMainMenu
				return a, nil
			}
			return a, a.combat.update(msg)
		case stateVault:
			if key == "esc" {
				a.state = stateMainMenu
				return a, nil
			}
			return a, a.vault.update(msg)
		}
	}
	return a, nil
}

func (a *App) updateMainMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "enter":
		item, ok := a.mainMenu.SelectedItem().(menuItem)
		if !ok {
			return a, nil
		}
		switch item.title {
		case "Generate":
			a.state = stateGenerate
			a.generate.reset()
		case "Combat":
			a.state = stateCombat
		case "Vault":
			a.state = stateVault
			a.vault.refresh()
		case "Exit":
			return a, tea.Quit
		}
		a.logger.Printf("screen: %s", item.title)
		return a, nil
	}
	var cmd tea.Cmd
	a.mainMenu, cmd = a.mainMenu.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	switch a.state {
	case stateGenerate:
		return a.generate.view()
	case stateCombat:
		return a.combat.view()
	case stateVault:
		return a.vault.view()
	default:
		return a.mainMenu.View() + "\n" + helpStyle.Render("enter: open · q: quit")
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
