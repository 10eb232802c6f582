package generator

import (
	"github.com/marbeck/campman/internal/blueprint"
)

// Graph is the dependency relation derived from a blueprint set: field A
// depends on field B whenever some source of A filters on B. It is immutable
// once built and safe to share across builders.
type Graph struct {
	order      []string
	roots      []string
	deps       map[string][]string
	dependents map[string][]string
}

// NewGraph derives the dependency graph for a blueprint set. It fails with
// ErrNoRootFields when no field is dependency-free, and with an
// UnresolvableError when dependencies form a cycle or reference fields the
// set does not declare; either way the set can never finish a record.
func NewGraph(set *blueprint.Set) (*Graph, error) {
	g := &Graph{
		order:      set.Names(),
		deps:       map[string][]string{},
		dependents: map[string][]string{},
	}
	for _, name := range g.order {
		def, _ := set.Field(name)
		var targets []string
		seen := map[string]struct{}{}
		for _, src := range def.Sources {
			fv, ok := src.Filter.(blueprint.FieldValueEquals)
			if !ok {
				continue
			}
			if _, dup := seen[fv.TargetField]; dup {
				continue
			}
			seen[fv.TargetField] = struct{}{}
			targets = append(targets, fv.TargetField)
		}
		if len(targets) == 0 {
			g.roots = append(g.roots, name)
			continue
		}
		g.deps[name] = targets
		for _, target := range targets {
			g.dependents[target] = append(g.dependents[target], name)
		}
	}
	if len(g.roots) == 0 {
		return nil, ErrNoRootFields
	}
	if stuck := g.unresolvable(); len(stuck) > 0 {
		return nil, &UnresolvableError{Fields: stuck}
	}
	return g, nil
}

// unresolvable runs the resolution order to a fixpoint and returns the fields
// left behind, in declaration order.
func (g *Graph) unresolvable() []string {
	resolved := make(map[string]struct{}, len(g.order))
	for _, root := range g.roots {
		resolved[root] = struct{}{}
	}
	for {
		progressed := false
		for field, targets := range g.deps {
			if _, done := resolved[field]; done {
				continue
			}
			if allPresentIn(targets, resolved) {
				resolved[field] = struct{}{}
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	var stuck []string
	for _, name := range g.order {
		if _, done := resolved[name]; !done {
			stuck = append(stuck, name)
		}
	}
	return stuck
}

// Roots returns the fields without dependencies, in declaration order.
func (g *Graph) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// DependentsOf returns the fields that declare a dependency on field.
func (g *Graph) DependentsOf(field string) []string {
	deps := g.dependents[field]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// AvailableUnsetFields returns the fields the builder may resolve next: roots
// plus determined fields, minus anything the record already holds. The result
// follows blueprint declaration order so the "current" field is deterministic.
func (g *Graph) AvailableUnsetFields(rec *Record) []string {
	determined := map[string]struct{}{}
	for _, name := range g.DeterminedFields(rec) {
		determined[name] = struct{}{}
	}
	rootSet := map[string]struct{}{}
	for _, name := range g.roots {
		rootSet[name] = struct{}{}
	}
	var out []string
	for _, name := range g.order {
		if rec.Has(name) {
			continue
		}
		_, isRoot := rootSet[name]
		_, isDetermined := determined[name]
		if isRoot || isDetermined {
			out = append(out, name)
		}
	}
	return out
}

// DeterminedFields returns every non-root field whose full set of dependency
// targets is already present in the record. Presence alone counts; whether the
// committed values match a source's filter is evaluated per-source when the
// builder computes active options.
func (g *Graph) DeterminedFields(rec *Record) []string {
	var out []string
	for _, name := range g.order {
		targets, hasDeps := g.deps[name]
		if !hasDeps {
			continue
		}
		if rec.hasAll(targets) {
			out = append(out, name)
		}
	}
	return out
}

func allPresentIn(names []string, set map[string]struct{}) bool {
	for _, name := range names {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}
