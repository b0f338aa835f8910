package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// default full-text aggregate fields, always present in every mapping
const (
	DefaultSearchField       = "search"
	DefaultSpellingField     = "spelling"
	DefaultAutocompleteField = "autocomplete"
)

var ErrFieldNotFound = errors.New("field not found in mapping")

// analyzer sets of the default aggregate fields, fixed
var defaultFieldAnalyzers = map[string][]string{
	DefaultSearchField:       {AnalyzerStandard, AnalyzerWhitespace, AnalyzerShingle},
	DefaultSpellingField:     {AnalyzerStandard, AnalyzerWhitespace, AnalyzerShingle},
	DefaultAutocompleteField: {AnalyzerStandard, AnalyzerEdgeNgram},
}

// Mapping owns the fields of one document type.
// Built once per context, read-only afterwards.
type Mapping struct {
	IDField string

	fields      []*Field
	byName      map[string]*Field
	nestedPaths map[string]bool
}

func New(idField string) *Mapping {
	return &Mapping{
		IDField:     idField,
		byName:      make(map[string]*Field),
		nestedPaths: make(map[string]bool),
	}
}

func (m *Mapping) AddField(f *Field) error {
	if f.Name == "" {
		return errors.New("field name is empty")
	}
	if _, reserved := defaultFieldAnalyzers[f.Name]; reserved {
		return fmt.Errorf("field name %s is reserved for a default field", f.Name)
	}
	if _, dup := m.byName[f.Name]; dup {
		return fmt.Errorf("field %s already declared", f.Name)
	}
	// a nested path owns its name in the properties map, a scalar field
	// of the same name cannot coexist with it
	if m.nestedPaths[f.Name] {
		return fmt.Errorf("field %s collides with a nested path", f.Name)
	}
	if f.IsNested() {
		if !strings.HasPrefix(f.Name, f.NestedPath+".") {
			return fmt.Errorf("field %s is not under its nested path %s", f.Name, f.NestedPath)
		}
		if _, clash := m.byName[f.NestedPath]; clash {
			return fmt.Errorf("nested path %s collides with a declared field", f.NestedPath)
		}
		m.nestedPaths[f.NestedPath] = true
	}

	m.fields = append(m.fields, f)
	m.byName[f.Name] = f
	return nil
}

// Field looks up a real field by name, default aggregate fields excluded.
func (m *Mapping) Field(name string) (*Field, error) {
	f, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return f, nil
}

// Fields returns all declared fields in insertion order.
func (m *Mapping) Fields() []*Field {
	return m.fields
}

// WeightedSearchProperties returns the searchable properties for the given
// analyzer, formatted with their search weight for a multi_match query.
func (m *Mapping) WeightedSearchProperties(analyzer string) []string {
	props := make([]string, 0)
	for _, f := range m.fields {
		if !f.Searchable || f.Type != FieldTypeText {
			continue
		}
		prop, err := f.MappingProperty(analyzer)
		if err != nil {
			continue
		}
		weight := f.SearchWeight
		if weight <= 0 {
			weight = 1
		}
		props = append(props, fmt.Sprintf("%s^%d", prop, weight))
	}
	return props
}

// Document renders the full engine mapping document.
// Nested fields are grouped under their nested path, the default aggregate
// fields are appended last and never shadowed.
func (m *Mapping) Document() map[string]interface{} {
	properties := map[string]interface{}{}

	for _, f := range m.fields {
		if !f.IsNested() {
			properties[f.Name] = f.Property()
			continue
		}

		nested, ok := properties[f.NestedPath].(map[string]interface{})
		if !ok {
			nested = map[string]interface{}{
				"type":       string(FieldTypeNested),
				"properties": map[string]interface{}{},
			}
			properties[f.NestedPath] = nested
		}
		nested["properties"].(map[string]interface{})[f.NestedFieldName()] = f.Property()
	}

	for name, analyzers := range defaultFieldAnalyzers {
		properties[name] = defaultFieldProperty(analyzers)
	}

	return map[string]interface{}{
		"properties": properties,
	}
}

func defaultFieldProperty(analyzers []string) map[string]interface{} {
	property := map[string]interface{}{
		"type":     "text",
		"analyzer": AnalyzerStandard,
	}

	fields := map[string]interface{}{}
	for _, analyzer := range analyzers {
		if analyzer == AnalyzerStandard {
			continue
		}
		fields[analyzer] = map[string]interface{}{
			"type":     "text",
			"analyzer": analyzer,
		}
	}
	if len(fields) > 0 {
		property["fields"] = fields
	}

	return property
}
