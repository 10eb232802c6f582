package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marbeck/campman/internal/vault"
)

// vaultView is a read-only browser over saved records: a list on top, the
// selected record's fields below it.
type vaultView struct {
	app     *App
	records []vault.StoredRecord
	cursor  int
	err     error
}

func newVaultView(app *App) *vaultView {
	return &vaultView{app: app}
}

// refresh reloads the record list from the store. Called every time the
// screen is entered so saves from the generator show up immediately.
func (v *vaultView) refresh() {
	v.err = nil
	v.cursor = 0
	v.records = nil
	if v.app.store == nil {
		return
	}
	records, err := v.app.store.Records(context.Background(), "")
	if err != nil {
		v.err = err
		v.app.logger.Printf("vault: %v", err)
		return
	}
	v.records = records
}

func (v *vaultView) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.records)-1 {
			v.cursor++
		}
	case "r":
		v.refresh()
	}
	return nil
}

func (v *vaultView) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Vault"))
	b.WriteString("\n\n")

	switch {
	case v.app.store == nil:
		b.WriteString(helpStyle.Render("No vault is open.") + "\n")
	case v.err != nil:
		b.WriteString(errorStyle.Render(v.err.Error()) + "\n")
	case len(v.records) == 0:
		b.WriteString(helpStyle.Render("No saved records yet.") + "\n")
	default:
		for i, rec := range v.records {
			prefix := "  "
			if i == v.cursor {
				prefix = cursorStyle.Render("> ")
			}
			b.WriteString(prefix + rec.Name + labelStyle.Render(fmt.Sprintf(" [%s]", rec.Kind)) + "\n")
		}
		b.WriteString("\n")
		rec := v.records[v.cursor]
		for _, field := range rec.Fields {
			b.WriteString(labelStyle.Render(prettyFieldName(field.Name)+": ") + strings.Join(field.Values, ", ") + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: reload · esc: back"))
	return b.String()
}
