package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marbeck/campman/internal/combat"
)

// combatState identifies what the combat screen is waiting on: roster edits,
// the fight itself, or one of the single-line inputs.
type combatState int

const (
	combatRoster combatState = iota
	combatInsert
	combatFighting
	combatModifier
	combatHP
)

type combatView struct {
	app   *App
	state combatState

	st       combat.State
	fighting bool
	cursor   int

	input textinput.Model
	err   error
}

func newCombatView(app *App, roster []combat.Participant) *combatView {
	input := textinput.New()
	input.CharLimit = 80
	input.Width = 40
	return &combatView{
		app:   app,
		state: combatRoster,
		st:    combat.NewState(roster),
		input: input,
	}
}

// handleEsc steps back one layer and reports whether the view consumed the
// key. Only the roster screen lets esc fall through to the main menu.
func (v *combatView) handleEsc() bool {
	v.err = nil
	switch v.state {
	case combatInsert:
		v.state = combatRoster
		v.input.Blur()
		return true
	case combatModifier, combatHP:
		v.state = combatFighting
		v.input.Blur()
		return true
	case combatFighting:
		v.fighting = false
		v.state = combatRoster
		v.app.logger.Printf("combat: fight ended at round %d", v.st.Round)
		return true
	default:
		return false
	}
}

func (v *combatView) update(msg tea.KeyMsg) tea.Cmd {
	switch v.state {
	case combatRoster:
		v.updateRoster(msg)
	case combatFighting:
		v.updateFighting(msg)
	case combatInsert, combatModifier, combatHP:
		return v.updateInput(msg)
	}
	return nil
}

func (v *combatView) updateRoster(msg tea.KeyMsg) {
	v.err = nil
	switch msg.String() {
	case "i":
		v.openInput(combatInsert, "Grimble: 12: 15")
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.st.Participants)-1 {
			v.cursor++
		}
	case "d":
		v.st = v.st.WithoutParticipant(v.cursor)
		v.clampCursor()
	case "r":
		v.st = v.st.SortByInitiative(nil)
	case "enter":
		if len(v.st.Participants) == 0 {
			v.err = fmt.Errorf("add at least one participant first")
			return
		}
		v.st = combat.NewState(v.st.SortByInitiative(nil).Participants)
		v.fighting = true
		v.cursor = 0
		v.state = combatFighting
		v.app.logger.Printf("combat: fight started with %d participants", len(v.st.Participants))
	}
}

func (v *combatView) updateFighting(msg tea.KeyMsg) {
	v.err = nil
	switch msg.String() {
	case "n", " ":
		v.st = v.st.NextTurn()
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.st.Participants)-1 {
			v.cursor++
		}
	case "h":
		v.openInput(combatHP, "-3 or +2")
	case "m":
		v.openInput(combatModifier, "Stunned: 2")
	case "d":
		v.st = v.st.WithoutParticipant(v.cursor)
		v.clampCursor()
	}
}

func (v *combatView) openInput(state combatState, placeholder string) {
	v.state = state
	v.input.Placeholder = placeholder
	v.input.SetValue("")
	v.input.Focus()
}

func (v *combatView) updateInput(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		v.submitInput()
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *combatView) submitInput() {
	raw := strings.TrimSpace(v.input.Value())
	switch v.state {
	case combatInsert:
		p, err := combat.ParseParticipantLine(raw)
		if err != nil {
			v.err = err
			return
		}
		v.st.Participants = append(v.st.Participants, p)
		v.err = nil
		// stay in insert mode so whole parties can be typed in one go
		v.input.SetValue("")
	case combatModifier:
		spec, err := combat.ParseModifierSpec(raw)
		if err != nil {
			v.err = err
			return
		}
		v.st = v.st.AddModifier(v.cursor, spec)
		v.closeInput()
	case combatHP:
		delta, err := strconv.Atoi(raw)
		if err != nil {
			v.err = fmt.Errorf("combat: parse %q as a hit point change: %w", raw, err)
			return
		}
		v.st = v.st.UpdateParticipant(v.cursor, func(p combat.Participant) combat.Participant {
			return p.WithHP(p.HP + delta)
		})
		v.closeInput()
	}
}

func (v *combatView) closeInput() {
	v.err = nil
	v.input.Blur()
	if v.fighting {
		v.state = combatFighting
	} else {
		v.state = combatRoster
	}
}

func (v *combatView) clampCursor() {
	if v.cursor >= len(v.st.Participants) {
		v.cursor = max(0, len(v.st.Participants)-1)
	}
}

func (v *combatView) view() string {
	var b strings.Builder
	if v.fighting {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Combat, round %d", v.st.Round+1)))
	} else {
		b.WriteString(titleStyle.Render("Combat roster"))
	}
	b.WriteString("\n\n")

	if len(v.st.Participants) == 0 {
		b.WriteString(helpStyle.Render("No participants yet. Press i to add some.") + "\n")
	}
	now := v.st.Now()
	for i, p := range v.st.Participants {
		prefix := "  "
		if i == v.cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := p.String()
		if p.HasInitiative {
			line += labelStyle.Render(fmt.Sprintf(" (ini %d)", p.Initiative))
		}
		if v.fighting && i == v.st.TurnIndex {
			line = selectedStyle.Render(line + "  *")
		}
		b.WriteString(prefix + line + "\n")
		for _, mod := range p.Modifiers {
			label := mod.Name
			if remaining, ok := mod.RemainingRounds(now); ok {
				label = fmt.Sprintf("%s (%d rounds)", mod.Name, remaining)
			}
			b.WriteString("      " + labelStyle.Render(label) + "\n")
		}
	}
	b.WriteString("\n")

	switch v.state {
	case combatInsert:
		b.WriteString(labelStyle.Render("Add participant: ") + v.input.View() + "\n")
	case combatModifier:
		b.WriteString(labelStyle.Render("Add modifier: ") + v.input.View() + "\n")
	case combatHP:
		b.WriteString(labelStyle.Render("Hit point change: ") + v.input.View() + "\n")
	}
	if v.err != nil {
		b.WriteString(errorStyle.Render(v.err.Error()) + "\n")
	}

	if v.fighting {
		b.WriteString(helpStyle.Render("n: next turn · h: hit points · m: modifier · d: remove · esc: end fight"))
	} else {
		b.WriteString(helpStyle.Render("i: add · d: remove · r: roll initiative · enter: start fight · esc: back"))
	}
	return b.String()
}
