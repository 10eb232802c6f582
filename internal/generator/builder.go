package generator

import (
	"github.com/marbeck/campman/internal/blueprint"
)

// FieldInfo describes the field the builder resolves next: its name, the
// options currently active given earlier commitments, and how many distinct
// values a submission must carry.
type FieldInfo struct {
	Name     string
	Options  []string
	Required int
}

// Builder is the stateful resolution engine for one generation session. It
// owns the record under construction and shares the immutable blueprint set
// and graph. A builder must not be mutated concurrently; each session gets
// its own.
type Builder struct {
	set    *blueprint.Set
	graph  *Graph
	record *Record
}

// NewBuilder creates a builder for a blueprint set, deriving the dependency
// graph. Graph construction errors propagate.
func NewBuilder(set *blueprint.Set) (*Builder, error) {
	graph, err := NewGraph(set)
	if err != nil {
		return nil, err
	}
	return NewBuilderWithGraph(set, graph), nil
}

// NewBuilderWithGraph creates a builder around an already-built graph so
// concurrent sessions can share one graph per blueprint set.
func NewBuilderWithGraph(set *blueprint.Set, graph *Graph) *Builder {
	return &Builder{set: set, graph: graph, record: NewRecord()}
}

// CurrentField returns the next field to resolve along with its active
// options, or ok=false once every field has been committed. Among several
// simultaneously available fields the one declared first wins.
func (b *Builder) CurrentField() (FieldInfo, bool) {
	available := b.graph.AvailableUnsetFields(b.record)
	if len(available) == 0 {
		return FieldInfo{}, false
	}
	name := available[0]
	def, _ := b.set.Field(name)
	return FieldInfo{
		Name:     name,
		Options:  b.activeOptions(def),
		Required: def.RequiredCount,
	}, true
}

// activeOptions unions the option pools of every active source, preserving
// source order and dropping duplicate labels. A filtered source whose target
// field is absent from the record is simply inactive.
func (b *Builder) activeOptions(def blueprint.FieldDefinition) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, src := range def.Sources {
		switch filter := src.Filter.(type) {
		case blueprint.Unconditional:
		case blueprint.FieldValueEquals:
			if !b.record.Contains(filter.TargetField, filter.TargetValue) {
				continue
			}
		default:
			continue
		}
		for _, opt := range src.Options {
			if _, dup := seen[opt]; dup {
				continue
			}
			seen[opt] = struct{}{}
			out = append(out, opt)
		}
	}
	return out
}

// Submit commits values for the current field. The returned record is non-nil
// exactly when the submission completed the last open field; a nil record
// with a nil error means the session continues. Validation failures leave the
// builder untouched.
func (b *Builder) Submit(values []string) (*Record, error) {
	info, ok := b.CurrentField()
	if !ok {
		return nil, ErrAlreadyComplete
	}
	if len(values) != info.Required {
		return nil, &WrongCountError{Got: len(values), Want: info.Required}
	}
	allowed := map[string]struct{}{}
	for _, opt := range info.Options {
		allowed[opt] = struct{}{}
	}
	for _, value := range values {
		if _, ok := allowed[value]; !ok {
			return nil, &InvalidValueError{Value: value, Allowed: info.Options}
		}
	}
	b.record.commit(info.Name, values)
	if b.IsComplete() {
		return b.record.Clone(), nil
	}
	return nil, nil
}

// IsComplete reports whether every field of the set has been committed.
func (b *Builder) IsComplete() bool {
	for _, name := range b.set.Names() {
		if !b.record.Has(name) {
			return false
		}
	}
	return true
}

// Progress returns a snapshot of the values committed so far.
func (b *Builder) Progress() *Record {
	return b.record.Clone()
}
