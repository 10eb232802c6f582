package vault

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/marbeck/campman/internal/blueprint"
	"github.com/marbeck/campman/internal/generator"
)

func openTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestNodesRoundTrip(t *testing.T) {
	v := openTestVault(t)
	ctx := context.Background()

	first, err := v.InsertNode(ctx, "Goblin Camp", "location", "forest", []byte("a damp cave"))
	if err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	second, err := v.InsertNode(ctx, "Grok", "npc", "", []byte("goblin chief"))
	if err != nil {
		t.Fatalf("InsertNode: %v", err)
	}

	nodes, err := v.Nodes(ctx, Eq(FieldType, "npc"))
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != second || nodes[0].Name != "Grok" {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
	if nodes[0].Meta != "" {
		t.Fatalf("meta should round-trip as empty, got %q", nodes[0].Meta)
	}

	node, err := v.Node(ctx, first)
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if node.Meta != "forest" || string(node.Data) != "a damp cave" {
		t.Fatalf("unexpected node: %+v", node)
	}
}

func TestNodeFilters(t *testing.T) {
	v := openTestVault(t)
	ctx := context.Background()
	for _, n := range []struct{ name, typ string }{
		{"Grok", "npc"},
		{"Mira", "npc"},
		{"Goblin Camp", "location"},
	} {
		if _, err := v.InsertNode(ctx, n.name, n.typ, "", []byte("x")); err != nil {
			t.Fatalf("InsertNode: %v", err)
		}
	}

	like, err := v.Nodes(ctx, Like(FieldName, "G%"))
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(like) != 2 {
		t.Fatalf("LIKE should match Grok and Goblin Camp, got %+v", like)
	}

	combined, err := v.Nodes(ctx, Eq(FieldType, "npc").And(Ne(FieldName, "Grok")))
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(combined) != 1 || combined[0].Name != "Mira" {
		t.Fatalf("unexpected combined result: %+v", combined)
	}

	all, err := v.Nodes(ctx, Filter{})
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("empty filter should match everything, got %d", len(all))
	}
}

func TestLinks(t *testing.T) {
	v := openTestVault(t)
	ctx := context.Background()
	camp, err := v.InsertNode(ctx, "Goblin Camp", "location", "", []byte("x"))
	if err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	grok, err := v.InsertNode(ctx, "Grok", "npc", "", []byte("x"))
	if err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	if _, err := v.InsertLink(ctx, grok, camp, "lives-in", nil); err != nil {
		t.Fatalf("InsertLink: %v", err)
	}
	links, err := v.LinksFrom(ctx, grok)
	if err != nil {
		t.Fatalf("LinksFrom: %v", err)
	}
	if len(links) != 1 || links[0].Right != camp || links[0].Type != "lives-in" {
		t.Fatalf("unexpected links: %+v", links)
	}
}

func TestSaveAndListRecords(t *testing.T) {
	v := openTestVault(t)
	ctx := context.Background()

	set, err := blueprint.NewSet([]blueprint.FieldDefinition{
		{
			Name:          "name",
			RequiredCount: 1,
			Sources: []blueprint.ChoiceSource{{
				Options: []string{"Grok"},
				Filter:  blueprint.Unconditional{},
			}},
		},
		{
			Name:          "race",
			RequiredCount: 1,
			Sources: []blueprint.ChoiceSource{{
				Options: []string{"Orc"},
				Filter:  blueprint.Unconditional{},
			}},
		},
	})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	builder, err := generator.NewBuilder(set)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := builder.Submit([]string{"Grok"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	done, err := builder.Submit([]string{"Orc"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	id, err := v.SaveRecord(ctx, "townsfolk", done)
	if err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a node id")
	}

	records, err := v.Records(ctx, "townsfolk")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]
	if rec.Name != "Grok" || rec.Kind != "townsfolk" {
		t.Fatalf("unexpected record header: %+v", rec)
	}
	want := []RecordField{
		{Name: "name", Values: []string{"Grok"}},
		{Name: "race", Values: []string{"Orc"}},
	}
	if !reflect.DeepEqual(rec.Fields, want) {
		t.Fatalf("unexpected record fields: %+v", rec.Fields)
	}

	if _, err := v.Records(ctx, "bandit"); err != nil {
		t.Fatalf("Records: %v", err)
	}
}

func TestSaveRecordRejectsEmpty(t *testing.T) {
	v := openTestVault(t)
	if _, err := v.SaveRecord(context.Background(), "townsfolk", generator.NewRecord()); err == nil {
		t.Fatalf("expected error for empty record")
	}
}
