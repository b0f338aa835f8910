package mapping

import (
	"fmt"
	"strings"
)

type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeKeyword FieldType = "keyword"
	FieldTypeInteger FieldType = "integer"
	FieldTypeDouble  FieldType = "double"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeNested  FieldType = "nested"
)

const (
	AnalyzerStandard     = "standard"
	AnalyzerWhitespace   = "whitespace"
	AnalyzerShingle      = "shingle"
	AnalyzerSortable     = "sortable"
	AnalyzerUntouched    = "untouched"
	AnalyzerReference    = "reference"
	AnalyzerEdgeNgram    = "standard_edge_ngram"
	AnalyzerAutocomplete = "autocomplete"
)

const dateFormat = "yyyy-MM-dd HH:mm:ss||yyyy-MM-dd"

// Field describes one indexed field and its analyzer capabilities.
// Fields are built once when a mapping is assembled and read-only afterwards.
type Field struct {
	Name       string
	Type       FieldType
	NestedPath string

	Searchable         bool
	Filterable         bool
	FacetEligible      bool
	Sortable           bool
	UsedInSpellcheck   bool
	UsedInAutocomplete bool

	SearchWeight int
}

func (f *Field) IsNested() bool {
	return f.NestedPath != ""
}

// NestedFieldName returns the leaf part of the field name, relative to the nested path.
func (f *Field) NestedFieldName() string {
	if !f.IsNested() {
		return f.Name
	}
	return strings.TrimPrefix(f.Name, f.NestedPath+".")
}

// Analyzers is derived deterministically from the capability flags,
// never set independently.
func (f *Field) Analyzers() []string {
	if f.Type != FieldTypeText {
		return nil
	}

	analyzers := []string{AnalyzerUntouched}
	if f.Searchable {
		analyzers = append(analyzers, AnalyzerStandard, AnalyzerWhitespace)
	}
	if f.UsedInAutocomplete {
		analyzers = append(analyzers, AnalyzerEdgeNgram)
	}
	if f.Sortable {
		analyzers = append(analyzers, AnalyzerSortable)
	}
	return analyzers
}

func (f *Field) hasAnalyzer(analyzer string) bool {
	for _, a := range f.Analyzers() {
		if a == analyzer {
			return true
		}
	}
	return false
}

// MappingProperty returns the property name to query for the given analyzer.
// The standard analyzer maps to the bare field name, any other analyzer
// to a sub-field keyed by the analyzer name.
func (f *Field) MappingProperty(analyzer string) (string, error) {
	if f.Type != FieldTypeText {
		return f.Name, nil
	}
	if analyzer == AnalyzerStandard {
		if !f.Searchable {
			return "", fmt.Errorf("field %s is not searchable", f.Name)
		}
		return f.Name, nil
	}
	if !f.hasAnalyzer(analyzer) {
		return "", fmt.Errorf("field %s has no %s analyzer", f.Name, analyzer)
	}
	return f.Name + "." + analyzer, nil
}

// UntouchedProperty is the not-analyzed variant used for filtering and faceting.
func (f *Field) UntouchedProperty() string {
	if f.Type != FieldTypeText {
		return f.Name
	}
	return f.Name + "." + AnalyzerUntouched
}

// SortableProperty is the variant used when sorting on the field.
func (f *Field) SortableProperty() string {
	if f.Type != FieldTypeText {
		return f.Name
	}
	if f.hasAnalyzer(AnalyzerSortable) {
		return f.Name + "." + AnalyzerSortable
	}
	return f.UntouchedProperty()
}

// Property renders the engine mapping fragment for the field.
func (f *Field) Property() map[string]interface{} {
	switch f.Type {
	case FieldTypeText:
		return f.textProperty()
	case FieldTypeDate:
		return map[string]interface{}{
			"type":   string(FieldTypeDate),
			"format": dateFormat,
		}
	default:
		return map[string]interface{}{
			"type": string(f.Type),
		}
	}
}

func (f *Field) textProperty() map[string]interface{} {
	property := map[string]interface{}{
		"type":     "text",
		"analyzer": AnalyzerStandard,
	}

	var copyTo []string
	if f.Searchable {
		copyTo = append(copyTo, DefaultSearchField)
	}
	if f.UsedInSpellcheck {
		copyTo = append(copyTo, DefaultSpellingField)
	}
	if f.UsedInAutocomplete {
		copyTo = append(copyTo, DefaultAutocompleteField)
	}
	if len(copyTo) > 0 {
		property["copy_to"] = copyTo
	}

	fields := map[string]interface{}{}
	for _, analyzer := range f.Analyzers() {
		if analyzer == AnalyzerStandard {
			continue
		}
		if analyzer == AnalyzerUntouched {
			fields[AnalyzerUntouched] = map[string]interface{}{
				"type": "keyword",
			}
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
