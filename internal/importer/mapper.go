package importer

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

// Field is a logical import field a column can feed.
type Field string

const (
	FieldID       Field = "id"
	FieldTitle    Field = "title"
	FieldPlatform Field = "platform"
	FieldStatus   Field = "status"
	FieldMember   Field = "member"
	FieldAccount  Field = "account"
	FieldPrice    Field = "price"
	FieldAcquired Field = "acquired"
	FieldOCScore  Field = "oc"
	FieldTTB      Field = "ttb"
	FieldServices Field = "services"
)

// Fields lists every logical field in display order.
var Fields = []Field{
	FieldTitle, FieldPlatform, FieldStatus, FieldMember, FieldAccount,
	FieldPrice, FieldAcquired, FieldOCScore, FieldTTB, FieldServices, FieldID,
}

// Header names compared case-insensitively after trimming.
var synonyms = map[Field][]string{
	FieldID:       {"id"},
	FieldTitle:    {"title", "game", "name"},
	FieldPlatform: {"platform", "system"},
	FieldStatus:   {"status", "state"},
	FieldMember:   {"member", "owner", "who"},
	FieldAccount:  {"account", "store", "launcher"},
	FieldPrice:    {"price", "price_try", "price (try)"},
	FieldAcquired: {"date", "acquired", "purchased"},
	FieldOCScore:  {"oc", "openscore", "opencritic"},
	FieldTTB:      {"ttb", "howlong", "hours", "main"},
	FieldServices: {"services", "availability", "game pass", "ea play"},
}

// ParseField resolves a field name, accepting the logical name or any of its synonyms.
func ParseField(s string) (Field, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if string(f) == t || slices.Contains(synonyms[f], t) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrUnknownField, s)
}

// FieldMap assigns a header name to each mapped logical field. Unmapped fields are absent.
type FieldMap map[Field]string

// GuessFieldMap proposes a mapping from the headers present in a file.
// For each field the first header matching one of its synonyms wins.
func GuessFieldMap(headers []string) FieldMap {
	m := make(FieldMap)
	for _, f := range Fields {
		for _, h := range headers {
			if slices.Contains(synonyms[f], strings.ToLower(strings.TrimSpace(h))) {
				m[f] = h
				break
			}
		}
	}
	return m
}

// Set maps field to column. An empty column unmaps the field.
func (m FieldMap) Set(field Field, column string) error {
	if _, ok := synonyms[field]; !ok {
		return fmt.Errorf("%w: %q", shared.ErrUnknownField, field)
	}
	if column == "" {
		delete(m, field)
		return nil
	}
	m[field] = column
	return nil
}

// Column returns the header mapped to field, if any.
func (m FieldMap) Column(field Field) (string, bool) {
	c, ok := m[field]
	return c, ok && c != ""
}

// Value reads the cell mapped to field, trimmed. Unmapped fields and missing cells read as "".
func (m FieldMap) Value(r formatter.Record, field Field) string {
	c, ok := m.Column(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(r.Get(c))
}

// Validate checks that every mapped column is one of headers.
func (m FieldMap) Validate(headers []string) error {
	for _, f := range Fields {
		if c, ok := m.Column(f); ok && !slices.Contains(headers, c) {
			return fmt.Errorf("%w: %s -> %q", shared.ErrUnknownColumn, f, c)
		}
	}
	return nil
}

// Apply copies overrides onto m. Keys may be field names or synonyms.
func (m FieldMap) Apply(overrides map[string]string) error {
	for k, column := range overrides {
		f, err := ParseField(k)
		if err != nil {
			return err
		}
		if err := m.Set(f, column); err != nil {
			return err
		}
	}
	return nil
}

// String renders the mapping as "field=column" pairs in field order.
func (m FieldMap) String() string {
	var parts []string
	for _, f := range Fields {
		if c, ok := m.Column(f); ok {
			parts = append(parts, fmt.Sprintf("%s=%s", f, c))
		}
	}
	return strings.Join(parts, ", ")
}

// LoadFieldMapOverrides reads a YAML document of field: column pairs, e.g.
//
//	title: Game Name
//	member: Who owns it
//	price: ""
//
// An empty column unmaps that field. Keys may be synonyms; the result is keyed
// by field name and two keys naming one field are rejected.
func LoadFieldMapOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: mapping file %s: %v", shared.ErrInvalidInput, path, err)
	}

	overrides := make(map[string]string, len(raw))
	named := make(map[Field]string, len(raw))
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		f, err := ParseField(k)
		if err != nil {
			return nil, fmt.Errorf("mapping file %s: %w", path, err)
		}
		if prev, ok := named[f]; ok {
			return nil, fmt.Errorf("%w: mapping file %s: %q and %q both name %s", shared.ErrInvalidInput, path, prev, k, f)
		}
		named[f] = k
		overrides[string(f)] = raw[k]
	}
	return overrides, nil
}

// ParseOverrides turns "field=column" flag values into an override map keyed
// by field name. When two pairs name the same field the later one wins.
func ParseOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	for _, p := range pairs {
		field, column, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("%w: expected field=column, got %q", shared.ErrInvalidFlag, p)
		}
		f, err := ParseField(field)
		if err != nil {
			return nil, err
		}
		overrides[string(f)] = strings.TrimSpace(column)
	}
	return overrides, nil
}

// ResolveFieldMap guesses a mapping from headers, applies overrides and
// checks the result against headers.
func ResolveFieldMap(headers []string, overrides map[string]string) (FieldMap, error) {
	m := GuessFieldMap(headers)
	if err := m.Apply(overrides); err != nil {
		return nil, err
	}
	if err := m.Validate(headers); err != nil {
		return nil, err
	}
	return m, nil
}
