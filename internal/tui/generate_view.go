package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marbeck/campman/internal/generator"
)

// genState tracks the generator screen's own little state machine: pick a
// record kind, resolve it field by field, then review the finished record.
type genState int

const (
	genPicking genState = iota
	genBuilding
	genFinished
	genError
)

type kindItem struct {
	name string
}

func (i kindItem) Title() string       { return i.name }
func (i kindItem) Description() string { return "Record kind" }
func (i kindItem) FilterValue() string { return i.name }

type generateView struct {
	app      *App
	state    genState
	kindMenu list.Model

	managers map[string]*generator.SessionManager
	session  *generator.Session

	field     generator.FieldInfo
	displayed []string
	selected  map[string]bool
	cursor    int

	record  *generator.Record
	savedID int64
	err     error

	// sample is swappable so tests can pin the displayed subset
	sample func(options []string, n int) []string
}

func newGenerateView(app *App) *generateView {
	items := []list.Item{}
	if app.catalog != nil {
		for _, kind := range app.catalog.Kinds() {
			items = append(items, kindItem{name: kind})
		}
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "What do you want to generate?"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	return &generateView{
		app:      app,
		state:    genPicking,
		kindMenu: menu,
		managers: map[string]*generator.SessionManager{},
		sample:   sampleOptions,
	}
}

func (v *generateView) setSize(width, height int) {
	v.kindMenu.SetSize(max(0, width-4), max(0, height-4))
}

// reset returns to the kind picker, abandoning any open session.
func (v *generateView) reset() {
	if v.session != nil {
		if manager, ok := v.managers[v.session.Kind]; ok {
			manager.Close(v.session.ID)
		}
		v.session = nil
	}
	v.state = genPicking
	v.record = nil
	v.savedID = 0
	v.err = nil
}

// handleEsc steps back one screen; it reports false once the picker is
// showing so the App can fall back to the main menu.
func (v *generateView) handleEsc() bool {
	if v.state == genPicking {
		return false
	}
	v.reset()
	return true
}

func (v *generateView) update(msg tea.KeyMsg) tea.Cmd {
	switch v.state {
	case genPicking:
		return v.updatePicking(msg)
	case genBuilding:
		v.updateBuilding(msg)
	case genFinished:
		v.updateFinished(msg)
	case genError:
		if msg.String() == "enter" {
			v.reset()
		}
	}
	return nil
}

func (v *generateView) updatePicking(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		item, ok := v.kindMenu.SelectedItem().(kindItem)
		if ok {
			v.startSession(item.name)
		}
		return nil
	}
	var cmd tea.Cmd
	v.kindMenu, cmd = v.kindMenu.Update(msg)
	return cmd
}

func (v *generateView) startSession(kind string) {
	manager, ok := v.managers[kind]
	if !ok {
		set, found := v.app.catalog.Kind(kind)
		if !found {
			v.fail(fmt.Errorf("unknown record kind %s", kind))
			return
		}
		var err error
		manager, err = generator.NewSessionManager(kind, set)
		if err != nil {
			v.fail(err)
			return
		}
		v.managers[kind] = manager
	}
	v.session = manager.Open()
	v.app.logger.Printf("generate: opened session %s for %s", v.session.ID, kind)
	v.advanceField()
}

// advanceField pulls the next resolvable field from the builder and rolls a
// fresh display subset for it.
func (v *generateView) advanceField() {
	info, ok := v.session.Builder.CurrentField()
	if !ok {
		// only reachable with an all-zero-count blueprint
		v.record = v.session.Builder.Progress()
		v.state = genFinished
		return
	}
	v.field = info
	v.rollDisplay()
	v.state = genBuilding
}

func (v *generateView) rollDisplay() {
	budget := v.app.config.Settings.DisplayFactor * v.field.Required
	if budget < 1 {
		budget = 1
	}
	v.displayed = v.sample(v.field.Options, budget)
	v.selected = map[string]bool{}
	v.cursor = 0
}

func (v *generateView) updateBuilding(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.displayed)-1 {
			v.cursor++
		}
	case "r":
		v.rollDisplay()
	case " ", "enter":
		if len(v.displayed) == 0 {
			return
		}
		option := v.displayed[v.cursor]
		v.selected[option] = !v.selected[option]
		if v.selectedCount() == v.field.Required {
			v.submitSelection()
		}
	}
}

func (v *generateView) selectedCount() int {
	count := 0
	for _, on := range v.selected {
		if on {
			count++
		}
	}
	return count
}

func (v *generateView) submitSelection() {
	values := make([]string, 0, v.field.Required)
	for _, option := range v.displayed {
		if v.selected[option] {
			values = append(values, option)
		}
	}
	done, err := v.session.Builder.Submit(values)
	if err != nil {
		v.fail(err)
		return
	}
	if done != nil {
		v.record = done
		v.state = genFinished
		v.app.logger.Printf("generate: session %s finished", v.session.ID)
		return
	}
	v.advanceField()
}

func (v *generateView) updateFinished(msg tea.KeyMsg) {
	switch msg.String() {
	case "s":
		if v.app.store == nil || v.record == nil || v.savedID != 0 {
			return
		}
		id, err := v.app.store.SaveRecord(context.Background(), v.session.Kind, v.record)
		if err != nil {
			v.fail(err)
			return
		}
		v.savedID = id
		v.app.logger.Printf("generate: saved record %d", id)
	case "n", "enter":
		v.reset()
	}
}

func (v *generateView) fail(err error) {
	v.err = err
	v.state = genError
	v.app.logger.Printf("generate: %v", err)
}

func (v *generateView) view() string {
	switch v.state {
	case genPicking:
		return v.kindMenu.View() + "\n" + helpStyle.Render("enter: start · esc: back")
	case genBuilding:
		return v.viewBuilding()
	case genFinished:
		return v.viewFinished()
	default:
		return errorStyle.Render("An error occurred:") + "\n\n" +
			fmt.Sprintf("%v", v.err) + "\n\n" +
			helpStyle.Render("enter: back to the picker")
	}
}

func (v *generateView) viewBuilding() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Choose %d for %s", v.field.Required, prettyFieldName(v.field.Name))))
	b.WriteString("\n\n")
	for i, option := range v.displayed {
		marker := "[ ]"
		line := option
		if v.selected[option] {
			marker = "[x]"
			line = selectedStyle.Render(option)
		}
		prefix := "  "
		if i == v.cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + marker + " " + line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: toggle · r: reroll options · esc: abandon"))
	return b.String()
}

func (v *generateView) viewFinished() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Finished record"))
	b.WriteString("\n\n")
	for _, field := range v.record.Fields() {
		values, _ := v.record.Values(field)
		b.WriteString(labelStyle.Render(prettyFieldName(field)+": ") + strings.Join(values, ", ") + "\n")
	}
	b.WriteString("\n")
	switch {
	case v.savedID != 0:
		b.WriteString(helpStyle.Render(fmt.Sprintf("saved as vault record %d · n: new record · esc: back", v.savedID)))
	case v.app.store != nil:
		b.WriteString(helpStyle.Render("s: save to vault · n: new record · esc: back"))
	default:
		b.WriteString(helpStyle.Render("vault unavailable · n: new record · esc: back"))
	}
	return b.String()
}

// prettyFieldName turns "first_name" or "first-name" into "first name".
func prettyFieldName(name string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(name)
}

// sampleOptions returns up to n options, randomly chosen but in their
// original order so the display stays stable while toggling.
func sampleOptions(options []string, n int) []string {
	if len(options) <= n {
		out := make([]string, len(options))
		copy(out, options)
		return out
	}
	picked := rand.Perm(len(options))[:n]
	sort.Ints(picked)
	out := make([]string, 0, n)
	for _, idx := range picked {
		out = append(out, options[idx])
	}
	return out
}
