package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marbeck/campman/internal/blueprint"
	"github.com/marbeck/campman/internal/combat"
	"github.com/marbeck/campman/internal/config"
)

func testApp(t *testing.T) *App {
	t.Helper()
	defs := []blueprint.FieldDefinition{
		{
			Name:          "race",
			RequiredCount: 1,
			Sources: []blueprint.ChoiceSource{
				{Options: []string{"Orc", "Elf"}, Filter: blueprint.Unconditional{}},
			},
		},
		{
			Name:          "weapon",
			RequiredCount: 1,
			Sources: []blueprint.ChoiceSource{
				{Options: []string{"Axe", "Club"}, Filter: blueprint.FieldValueEquals{TargetField: "race", TargetValue: "Orc"}},
				{Options: []string{"Bow", "Dagger"}, Filter: blueprint.FieldValueEquals{TargetField: "race", TargetValue: "Elf"}},
			},
		},
	}
	set, err := blueprint.NewSet(defs)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	catalog := blueprint.NewCatalog()
	if err := catalog.Add("townsfolk", set); err != nil {
		t.Fatalf("Add: %v", err)
	}
	cfg := &config.Config{Settings: config.Settings{DisplayFactor: 3}}
	return NewApp(cfg, catalog, nil, nil)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeString(t *testing.T, v *combatView, s string) {
	t.Helper()
	for _, r := range s {
		v.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestGenerateViewResolvesRecord(t *testing.T) {
	app := testApp(t)
	v := app.generate

	v.startSession("townsfolk")
	if v.state != genBuilding {
		t.Fatalf("state = %v, want genBuilding", v.state)
	}
	if v.field.Name != "race" {
		t.Fatalf("first field = %q, want race", v.field.Name)
	}
	if got := strings.Join(v.displayed, ","); got != "Orc,Elf" {
		t.Fatalf("displayed = %q", got)
	}

	// cursor starts on Orc; toggling it fills the required count
	v.update(key(" "))
	if v.state != genBuilding {
		t.Fatalf("state = %v, want genBuilding for weapon", v.state)
	}
	if v.field.Name != "weapon" {
		t.Fatalf("second field = %q, want weapon", v.field.Name)
	}
	if got := strings.Join(v.displayed, ","); got != "Axe,Club" {
		t.Fatalf("weapon options = %q, want Orc's weapons", got)
	}

	v.update(key(" "))
	if v.state != genFinished {
		t.Fatalf("state = %v, want genFinished", v.state)
	}
	values, ok := v.record.Values("weapon")
	if !ok || strings.Join(values, ",") != "Axe" {
		t.Fatalf("weapon = %v, %v", values, ok)
	}
	rendered := v.view()
	if !strings.Contains(rendered, "Orc") || !strings.Contains(rendered, "Axe") {
		t.Fatalf("finished view missing values:\n%s", rendered)
	}
}

func TestGenerateViewEscStepsBack(t *testing.T) {
	app := testApp(t)
	v := app.generate

	if v.handleEsc() {
		t.Fatal("picker should let esc fall through to the menu")
	}
	v.startSession("townsfolk")
	if !v.handleEsc() {
		t.Fatal("building should consume esc")
	}
	if v.state != genPicking {
		t.Fatalf("state = %v, want genPicking", v.state)
	}
	if v.session != nil {
		t.Fatal("session should be abandoned on esc")
	}
}

func TestGenerateViewRerollKeepsOrder(t *testing.T) {
	app := testApp(t)
	v := app.generate
	v.sample = func(options []string, n int) []string {
		if len(options) < 2 {
			return options
		}
		return options[:2]
	}
	v.startSession("townsfolk")
	v.update(key("r"))
	if got := strings.Join(v.displayed, ","); got != "Orc,Elf" {
		t.Fatalf("displayed after reroll = %q", got)
	}
	if len(v.selected) != 0 {
		t.Fatal("reroll should clear the selection")
	}
}

func TestCombatViewInsertAndFight(t *testing.T) {
	app := testApp(t)
	v := app.combat

	v.update(key("i"))
	if v.state != combatInsert {
		t.Fatalf("state = %v, want combatInsert", v.state)
	}
	typeString(t, v, "Ada: 10: 15")
	v.update(key("enter"))
	if v.err != nil {
		t.Fatalf("insert: %v", v.err)
	}
	typeString(t, v, "Grim: 7: 3")
	v.update(key("enter"))
	if len(v.st.Participants) != 2 {
		t.Fatalf("roster size = %d, want 2", len(v.st.Participants))
	}

	if !v.handleEsc() {
		t.Fatal("insert should consume esc")
	}
	v.update(key("enter"))
	if !v.fighting || v.state != combatFighting {
		t.Fatalf("fight did not start: fighting=%v state=%v", v.fighting, v.state)
	}
	// both participants carried initiative, so the sort is deterministic
	if v.st.Participants[0].Name != "Ada" {
		t.Fatalf("turn order starts with %q, want Ada", v.st.Participants[0].Name)
	}

	v.update(key("n"))
	v.update(key("n"))
	if v.st.Round != 1 || v.st.TurnIndex != 0 {
		t.Fatalf("after a full round: round=%d turn=%d", v.st.Round, v.st.TurnIndex)
	}

	if !v.handleEsc() {
		t.Fatal("fighting should consume esc")
	}
	if v.fighting || v.state != combatRoster {
		t.Fatal("esc should end the fight")
	}
}

func TestCombatViewHPAndModifiers(t *testing.T) {
	app := testApp(t)
	roster := []combat.Participant{
		{Name: "Ada", HP: 10, Initiative: 15, HasInitiative: true},
	}
	v := newCombatView(app, roster)
	v.update(key("enter"))

	v.update(key("h"))
	typeString(t, v, "-4")
	v.update(key("enter"))
	if got := v.st.Participants[0].HP; got != 6 {
		t.Fatalf("HP = %d, want 6", got)
	}

	v.update(key("m"))
	typeString(t, v, "Stunned: 2")
	v.update(key("enter"))
	mods := v.st.Participants[0].Modifiers
	if len(mods) != 1 || mods[0].Name != "Stunned" {
		t.Fatalf("modifiers = %v", mods)
	}
	if !strings.Contains(v.view(), "Stunned") {
		t.Fatal("view should show the modifier")
	}
}

func TestCombatViewRejectsEmptyFight(t *testing.T) {
	app := testApp(t)
	v := app.combat
	v.update(key("enter"))
	if v.fighting {
		t.Fatal("fight should not start with an empty roster")
	}
	if v.err == nil {
		t.Fatal("expected an error message")
	}
}

func TestVaultViewWithoutStore(t *testing.T) {
	app := testApp(t)
	app.vault.refresh()
	if !strings.Contains(app.vault.view(), "No vault is open") {
		t.Fatal("vault view should explain the missing store")
	}
}

func TestAppRoutesToCombatWithRoster(t *testing.T) {
	app := testApp(t)
	roster := []combat.Participant{{Name: "Ada", HP: 10}}
	withRoster := NewApp(app.config, app.catalog, nil, nil, WithRoster(roster))
	withRoster.Init()
	if withRoster.state != stateCombat {
		t.Fatalf("state = %v, want stateCombat", withRoster.state)
	}
	if len(withRoster.combat.st.Participants) != 1 {
		t.Fatal("roster was not handed to the combat view")
	}
}
