package blueprint

import (
	"fmt"
	"strings"
)

// Filter gates a choice source on a value committed for another field. It is a
// closed variant: either Unconditional or FieldValueEquals, nothing else.
type Filter interface {
	filter()
}

// Unconditional marks a source that is always active.
type Unconditional struct{}

func (Unconditional) filter() {}

// FieldValueEquals activates a source only when TargetField has already been
// resolved and its committed values contain TargetValue.
type FieldValueEquals struct {
	TargetField string
	TargetValue string
}

func (FieldValueEquals) filter() {}

// ChoiceSource is one pool of candidate option strings, optionally gated by a
// filter on another field's committed value.
type ChoiceSource struct {
	Options []string
	Filter  Filter
}

// FieldDefinition describes one output field of a record kind: how many
// distinct values must be selected and where the candidates come from.
type FieldDefinition struct {
	Name          string
	RequiredCount int
	Sources       []ChoiceSource
}

// Validate checks the invariants the generator relies on.
func (def FieldDefinition) Validate() error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("blueprint: field name is required")
	}
	if def.RequiredCount < 0 {
		return fmt.Errorf("blueprint: field %s: count must not be negative, got %d", def.Name, def.RequiredCount)
	}
	if len(def.Sources) == 0 {
		return fmt.Errorf("blueprint: field %s: at least one source is required", def.Name)
	}
	for idx, src := range def.Sources {
		if src.Filter == nil {
			return fmt.Errorf("blueprint: field %s: source[%d] has no filter variant", def.Name, idx)
		}
		if fv, ok := src.Filter.(FieldValueEquals); ok {
			if strings.TrimSpace(fv.TargetField) == "" || strings.TrimSpace(fv.TargetValue) == "" {
				return fmt.Errorf("blueprint: field %s: source[%d] filter needs a target field and value", def.Name, idx)
			}
		}
	}
	return nil
}

// Set is an ordered collection of field definitions for one record kind.
// Field order follows the blueprint document so the generator can break ties
// between simultaneously available fields deterministically.
type Set struct {
	fields map[string]FieldDefinition
	order  []string
}

// NewSet builds a Set from definitions in declaration order. Duplicate field
// names and invalid definitions are rejected.
func NewSet(defs []FieldDefinition) (*Set, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("blueprint: a record kind needs at least one field")
	}
	set := &Set{
		fields: make(map[string]FieldDefinition, len(defs)),
		order:  make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := set.fields[def.Name]; exists {
			return nil, fmt.Errorf("blueprint: duplicate field %s", def.Name)
		}
		set.fields[def.Name] = def
		set.order = append(set.order, def.Name)
	}
	return set, nil
}

// Field returns the definition for name.
func (s *Set) Field(name string) (FieldDefinition, bool) {
	def, ok := s.fields[name]
	return def, ok
}

// Names returns the field names in declaration order.
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports the number of fields in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Catalog groups record kinds (each a Set) loaded from blueprint files,
// keeping the kinds in document order for stable menus.
type Catalog struct {
	kinds map[string]*Set
	order []string
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{kinds: map[string]*Set{}}
}

// Add registers a record kind. Duplicate kinds are rejected so two blueprint
// files cannot silently shadow each other.
func (c *Catalog) Add(kind string, set *Set) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return fmt.Errorf("blueprint: record kind name is required")
	}
	if set == nil || set.Len() == 0 {
		return fmt.Errorf("blueprint: record kind %s has no fields", kind)
	}
	if _, exists := c.kinds[kind]; exists {
		return fmt.Errorf("blueprint: duplicate record kind %s", kind)
	}
	c.kinds[kind] = set
	c.order = append(c.order, kind)
	return nil
}

// Kind returns the field set for a record kind.
func (c *Catalog) Kind(name string) (*Set, bool) {
	set, ok := c.kinds[name]
	return set, ok
}

// Kinds returns the record kind names in document order.
func (c *Catalog) Kinds() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len reports the number of record kinds.
func (c *Catalog) Len() int {
	return len(c.order)
}
