// Package template fills {field} placeholders in prompt templates from
// ordered field mappings.
package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {name} tokens non-greedily within a single line.
// Unbalanced braces simply produce no match for that region.
var placeholderPattern = regexp.MustCompile(`\{(.*?)\}`)

// FieldMap is an ordered mapping from field name to value. An entry may be
// present but unset, which a fill treats the same as absent.
type FieldMap struct {
	names  []string
	values map[string]string
}

// NewFieldMap creates a FieldMap with the given field order and every entry
// unset.
func NewFieldMap(names ...string) FieldMap {
	ordered := make([]string, len(names))
	copy(ordered, names)
	return FieldMap{
		names:  ordered,
		values: make(map[string]string, len(names)),
	}
}

// FromRow builds a FieldMap by zipping names against row values positionally.
// A short value list leaves the trailing fields unset; extra values beyond the
// known fields are dropped.
func FromRow(names []string, values []string) FieldMap {
	m := NewFieldMap(names...)
	for i, name := range m.names {
		if i >= len(values) {
			break
		}
		m.values[name] = values[i]
	}
	return m
}

// Set assigns a value to a field. Fields not in the original order are
// appended at the end.
func (m *FieldMap) Set(name, value string) {
	if _, known := m.values[name]; !known && !m.contains(name) {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

// Value returns the field's value and whether it has been set.
func (m FieldMap) Value(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Names returns the field order.
func (m FieldMap) Names() []string {
	return m.names
}

func (m FieldMap) contains(name string) bool {
	for _, n := range m.names {
		if n == name {
			return true
		}
	}
	return false
}

// Fill substitutes every {name} placeholder in templateText with the mapped
// value, or with a "[MISSING: name]" marker when the field is unset or
// unknown. The returned missing list holds each distinct missing field once,
// in order of first appearance in the template.
func Fill(templateText string, fields FieldMap) (string, []string) {
	matches := placeholderPattern.FindAllStringSubmatch(templateText, -1)

	filled := templateText
	var missing []string
	seen := make(map[string]bool, len(matches))

	for _, match := range matches {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		token := "{" + name + "}"
		if value, ok := fields.Value(name); ok {
			filled = strings.ReplaceAll(filled, token, value)
		} else {
			filled = strings.ReplaceAll(filled, token, "[MISSING: "+name+"]")
			missing = append(missing, name)
		}
	}

	return filled, missing
}
