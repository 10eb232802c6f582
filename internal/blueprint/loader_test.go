package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fakeResolver serves option pools from maps so loader tests need no disk.
type fakeResolver struct {
	files   map[string][]string
	scripts map[string][]string
}

func (r fakeResolver) ReadOptions(name string) ([]string, error) {
	opts, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("no option file %s", name)
	}
	return opts, nil
}

func (r fakeResolver) ScriptOptions(name string) ([]string, error) {
	opts, ok := r.scripts[name]
	if !ok {
		return nil, fmt.Errorf("no script %s", name)
	}
	return opts, nil
}

const townsfolkYAML = `
townsfolk:
  race:
    - Elf
    - Orc
  name: names.txt
  weapon:
    count: 1
    sources:
      - values: [Axe]
        filter: "race: Orc"
      - values: [Bow]
        filter: "race: Elf"
  quirks:
    count: 2
    sources:
      - script: quirks.go
bandit:
  weapon: [Club]
`

func TestParseCatalogYAML(t *testing.T) {
	res := fakeResolver{
		files:   map[string][]string{"names.txt": {"Ada", "Bo"}},
		scripts: map[string][]string{"quirks.go": {"limps", "hums", "squints"}},
	}
	catalog, err := ParseCatalogYAML([]byte(townsfolkYAML), res)
	if err != nil {
		t.Fatalf("ParseCatalogYAML: %v", err)
	}
	if got := catalog.Kinds(); !reflect.DeepEqual(got, []string{"townsfolk", "bandit"}) {
		t.Fatalf("unexpected kinds: %v", got)
	}
	set, ok := catalog.Kind("townsfolk")
	if !ok {
		t.Fatalf("townsfolk missing")
	}
	if got := set.Names(); !reflect.DeepEqual(got, []string{"race", "name", "weapon", "quirks"}) {
		t.Fatalf("unexpected field order: %v", got)
	}

	name, _ := set.Field("name")
	if !reflect.DeepEqual(name.Sources[0].Options, []string{"Ada", "Bo"}) {
		t.Fatalf("option file not resolved: %+v", name.Sources[0])
	}
	if name.RequiredCount != 1 {
		t.Fatalf("count should default to 1, got %d", name.RequiredCount)
	}

	weapon, _ := set.Field("weapon")
	if len(weapon.Sources) != 2 {
		t.Fatalf("expected two weapon sources: %+v", weapon.Sources)
	}
	filter, ok := weapon.Sources[0].Filter.(FieldValueEquals)
	if !ok {
		t.Fatalf("expected value filter, got %T", weapon.Sources[0].Filter)
	}
	if filter.TargetField != "race" || filter.TargetValue != "Orc" {
		t.Fatalf("unexpected filter: %+v", filter)
	}

	quirks, _ := set.Field("quirks")
	if quirks.RequiredCount != 2 {
		t.Fatalf("count = %d, want 2", quirks.RequiredCount)
	}
	if !reflect.DeepEqual(quirks.Sources[0].Options, []string{"limps", "hums", "squints"}) {
		t.Fatalf("script not resolved: %+v", quirks.Sources[0])
	}
}

func TestParseCatalogYAMLRejectsBadSources(t *testing.T) {
	res := fakeResolver{files: map[string][]string{"names.txt": {"Ada"}}}
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "values and file together",
			doc: `kind:
  field:
    sources:
      - values: [a]
        file: names.txt
`,
			want: "exactly one of",
		},
		{
			name: "filter without colon",
			doc: `kind:
  field:
    sources:
      - values: [a]
        filter: "race Orc"
`,
			want: "exactly one colon",
		},
		{
			name: "file and sources together",
			doc: `kind:
  field:
    file: names.txt
    sources:
      - values: [a]
`,
			want: "not both",
		},
		{
			name: "empty document",
			doc:  "   \n",
			want: "document is empty",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalogYAML([]byte(tc.doc), res)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestParseOptionLines(t *testing.T) {
	body := "Elf\n# a comment\nOrc # trailing note\n\n  Dwarf  \n"
	got := ParseOptionLines(body)
	want := []string{"Elf", "Orc", "Dwarf"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseOptionLines = %v, want %v", got, want)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	optionsDir := filepath.Join(dir, "options")
	if err := os.MkdirAll(optionsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(optionsDir, "names.txt"), "Ada\nBo\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "bandit:\n  weapon: [Club]\n")
	writeFile(t, filepath.Join(dir, "a.yaml"), "townsfolk:\n  name: names.txt\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	res := DirResolver{OptionsDir: optionsDir}
	catalog, err := LoadDir(dir, res)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	// files load in sorted order, so a.yaml's kind comes first
	if got := catalog.Kinds(); !reflect.DeepEqual(got, []string{"townsfolk", "bandit"}) {
		t.Fatalf("unexpected kinds: %v", got)
	}
}

func TestLoadDirMissingIsEmpty(t *testing.T) {
	catalog, err := LoadDir(filepath.Join(t.TempDir(), "nope"), DirResolver{})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if catalog.Len() != 0 {
		t.Fatalf("expected empty catalog, got %v", catalog.Kinds())
	}
}

func TestEvalOptionScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "quirks.go")
	writeFile(t, script, `package quirks

import "strings"

func Options() []string {
	raw := "limps,hums,squints"
	return strings.Split(raw, ",")
}
`)
	got, err := EvalOptionScript(script)
	if err != nil {
		t.Fatalf("EvalOptionScript: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"limps", "hums", "squints"}) {
		t.Fatalf("unexpected options: %v", got)
	}
}

func TestEvalOptionScriptRequiresOptionsFunc(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.go")
	writeFile(t, script, "package bad\n\nfunc Other() {}\n")
	if _, err := EvalOptionScript(script); err == nil {
		t.Fatalf("expected missing Options error")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
