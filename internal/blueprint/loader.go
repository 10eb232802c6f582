package blueprint

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceResolver turns option-file and script references inside a blueprint
// document into concrete option pools. Loading resolves every reference
// eagerly so the generator only ever sees literal options.
type SourceResolver interface {
	// ReadOptions returns the options stored in a named option file.
	ReadOptions(name string) ([]string, error)
	// ScriptOptions evaluates a named option script and returns its output.
	ScriptOptions(name string) ([]string, error)
}

// DirResolver resolves references relative to an options and a scripts
// directory, the way blueprint files ship inside the config dot-directory.
type DirResolver struct {
	OptionsDir string
	ScriptsDir string
}

// ReadOptions loads a line-oriented option file. A `#` starts a comment and
// blank lines are skipped.
func (r DirResolver) ReadOptions(name string) ([]string, error) {
	path, err := r.resolve(r.OptionsDir, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blueprint: read options %s: %w", name, err)
	}
	return ParseOptionLines(string(data)), nil
}

// ScriptOptions evaluates an option script from the scripts directory.
func (r DirResolver) ScriptOptions(name string) ([]string, error) {
	path, err := r.resolve(r.ScriptsDir, name)
	if err != nil {
		return nil, err
	}
	return EvalOptionScript(path)
}

func (r DirResolver) resolve(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("blueprint: empty source reference")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("blueprint: %s is not a relative path", name)
	}
	return filepath.Join(dir, name), nil
}

// ParseOptionLines splits an option file body into distinct option labels.
func ParseOptionLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseCatalogYAML decodes a blueprint document into a fresh catalog.
func ParseCatalogYAML(data []byte, res SourceResolver) (*Catalog, error) {
	catalog := NewCatalog()
	if err := parseCatalogInto(catalog, data, res); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadFile parses one blueprint file into the catalog.
func LoadFile(catalog *Catalog, path string, res SourceResolver) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("blueprint: read %s: %w", path, err)
	}
	if err := parseCatalogInto(catalog, data, res); err != nil {
		return fmt.Errorf("blueprint: %s: %w", path, err)
	}
	return nil
}

// LoadDir scans a directory for *.yaml blueprint files and returns the merged
// catalog. A missing directory is treated as "no blueprints" to simplify
// first-run startup.
func LoadDir(dir string, res SourceResolver) (*Catalog, error) {
	catalog := NewCatalog()
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return catalog, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return catalog, nil
		}
		return nil, fmt.Errorf("blueprint: read %s: %w", trimmed, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		if err := LoadFile(catalog, filepath.Join(trimmed, name), res); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func parseCatalogInto(catalog *Catalog, data []byte, res SourceResolver) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("blueprint: document is empty")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("blueprint: decode document: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) != 1 {
			return fmt.Errorf("blueprint: expected a single document")
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("blueprint: document root must map record kinds to fields")
	}
	for i := 0; i < len(root.Content); i += 2 {
		kind := root.Content[i].Value
		set, err := parseFieldSet(root.Content[i+1], res)
		if err != nil {
			return fmt.Errorf("blueprint: kind %s: %w", kind, err)
		}
		if err := catalog.Add(kind, set); err != nil {
			return err
		}
	}
	return nil
}

func parseFieldSet(node *yaml.Node, res SourceResolver) (*Set, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("fields must be a mapping")
	}
	defs := make([]FieldDefinition, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		def, err := parseFieldDefinition(name, node.Content[i+1], res)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return NewSet(defs)
}

// parseFieldDefinition accepts the three field forms: a bare option-file
// reference, an inline option sequence, or a full mapping with count and
// sources.
func parseFieldDefinition(name string, node *yaml.Node, res SourceResolver) (FieldDefinition, error) {
	def := FieldDefinition{Name: name, RequiredCount: 1}
	switch node.Kind {
	case yaml.ScalarNode:
		opts, err := res.ReadOptions(node.Value)
		if err != nil {
			return FieldDefinition{}, err
		}
		def.Sources = []ChoiceSource{{Options: opts, Filter: Unconditional{}}}
	case yaml.SequenceNode:
		opts, err := scalarSequence(node)
		if err != nil {
			return FieldDefinition{}, err
		}
		def.Sources = []ChoiceSource{{Options: opts, Filter: Unconditional{}}}
	case yaml.MappingNode:
		parsed, err := parseFieldMapping(node, res)
		if err != nil {
			return FieldDefinition{}, err
		}
		def.RequiredCount = parsed.RequiredCount
		def.Sources = parsed.Sources
	default:
		return FieldDefinition{}, fmt.Errorf("unsupported field form")
	}
	if err := def.Validate(); err != nil {
		return FieldDefinition{}, err
	}
	return def, nil
}

type fieldMapping struct {
	Count   *int        `yaml:"count"`
	File    string      `yaml:"file"`
	Sources []sourceDef `yaml:"sources"`
}

type sourceDef struct {
	Values []string `yaml:"values"`
	File   string   `yaml:"file"`
	Script string   `yaml:"script"`
	Filter string   `yaml:"filter"`
}

func parseFieldMapping(node *yaml.Node, res SourceResolver) (FieldDefinition, error) {
	var raw fieldMapping
	if err := node.Decode(&raw); err != nil {
		return FieldDefinition{}, err
	}
	def := FieldDefinition{RequiredCount: 1}
	if raw.Count != nil {
		if *raw.Count < 0 {
			return FieldDefinition{}, fmt.Errorf("count must not be negative, got %d", *raw.Count)
		}
		def.RequiredCount = *raw.Count
	}
	hasFile := strings.TrimSpace(raw.File) != ""
	hasSources := len(raw.Sources) > 0
	switch {
	case hasFile && !hasSources:
		opts, err := res.ReadOptions(raw.File)
		if err != nil {
			return FieldDefinition{}, err
		}
		def.Sources = []ChoiceSource{{Options: opts, Filter: Unconditional{}}}
	case !hasFile && hasSources:
		for idx, src := range raw.Sources {
			parsed, err := parseSource(src, res)
			if err != nil {
				return FieldDefinition{}, fmt.Errorf("source[%d]: %w", idx, err)
			}
			def.Sources = append(def.Sources, parsed)
		}
	default:
		return FieldDefinition{}, fmt.Errorf("a field mapping needs either a file or a sources entry, not both")
	}
	return def, nil
}

func parseSource(raw sourceDef, res SourceResolver) (ChoiceSource, error) {
	src := ChoiceSource{Filter: Unconditional{}}
	declared := 0
	if len(raw.Values) > 0 {
		declared++
		src.Options = append(src.Options, raw.Values...)
	}
	if strings.TrimSpace(raw.File) != "" {
		declared++
		opts, err := res.ReadOptions(raw.File)
		if err != nil {
			return ChoiceSource{}, err
		}
		src.Options = opts
	}
	if strings.TrimSpace(raw.Script) != "" {
		declared++
		opts, err := res.ScriptOptions(raw.Script)
		if err != nil {
			return ChoiceSource{}, err
		}
		src.Options = opts
	}
	if declared != 1 {
		return ChoiceSource{}, fmt.Errorf("a source needs exactly one of values, file, or script")
	}
	if strings.TrimSpace(raw.Filter) != "" {
		filter, err := ParseFilter(raw.Filter)
		if err != nil {
			return ChoiceSource{}, err
		}
		src.Filter = filter
	}
	return src, nil
}

// ParseFilter parses the "target-field: target-value" filter shorthand.
func ParseFilter(spec string) (Filter, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("a filter must contain exactly one colon, got %q", spec)
	}
	field := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if field == "" || value == "" {
		return nil, fmt.Errorf("a filter needs a target field and value, got %q", spec)
	}
	return FieldValueEquals{TargetField: field, TargetValue: value}, nil
}

func scalarSequence(node *yaml.Node) ([]string, error) {
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("option lists must contain scalars only")
		}
		out = append(out, item.Value)
	}
	return out, nil
}
