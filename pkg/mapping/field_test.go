// $ go test -v pkg/mapping/*.go

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzersDerivedFromFlags(t *testing.T) {
	f := &Field{Name: "name", Type: FieldTypeText, Searchable: true, Sortable: true}
	assert.Equal(t, []string{AnalyzerUntouched, AnalyzerStandard, AnalyzerWhitespace, AnalyzerSortable}, f.Analyzers())

	f = &Field{Name: "color", Type: FieldTypeText}
	assert.Equal(t, []string{AnalyzerUntouched}, f.Analyzers())

	// non-text fields carry no analyzers
	f = &Field{Name: "price", Type: FieldTypeDouble, Sortable: true}
	assert.Empty(t, f.Analyzers())
}

func TestMappingProperty(t *testing.T) {
	f := &Field{Name: "name", Type: FieldTypeText, Searchable: true}

	prop, err := f.MappingProperty(AnalyzerStandard)
	assert.NoError(t, err)
	assert.Equal(t, "name", prop)

	prop, err = f.MappingProperty(AnalyzerWhitespace)
	assert.NoError(t, err)
	assert.Equal(t, "name.whitespace", prop)

	_, err = f.MappingProperty(AnalyzerSortable)
	assert.Error(t, err)

	prop, err = (&Field{Name: "price", Type: FieldTypeDouble}).MappingProperty(AnalyzerStandard)
	assert.NoError(t, err)
	assert.Equal(t, "price", prop)
}

func TestUntouchedAndSortableProperty(t *testing.T) {
	f := &Field{Name: "name", Type: FieldTypeText, Searchable: true, Sortable: true}
	assert.Equal(t, "name.untouched", f.UntouchedProperty())
	assert.Equal(t, "name.sortable", f.SortableProperty())

	f = &Field{Name: "color", Type: FieldTypeText}
	assert.Equal(t, "color.untouched", f.SortableProperty())

	f = &Field{Name: "price", Type: FieldTypeDouble}
	assert.Equal(t, "price", f.UntouchedProperty())
	assert.Equal(t, "price", f.SortableProperty())
}

func TestNestedFieldName(t *testing.T) {
	f := &Field{Name: "offers.price", Type: FieldTypeDouble, NestedPath: "offers"}
	assert.True(t, f.IsNested())
	assert.Equal(t, "price", f.NestedFieldName())

	f = &Field{Name: "price", Type: FieldTypeDouble}
	assert.False(t, f.IsNested())
	assert.Equal(t, "price", f.NestedFieldName())
}

func TestTextPropertyRendering(t *testing.T) {
	f := &Field{Name: "name", Type: FieldTypeText, Searchable: true, UsedInSpellcheck: true}
	prop := f.Property()

	assert.Equal(t, "text", prop["type"])
	assert.Equal(t, AnalyzerStandard, prop["analyzer"])
	assert.Equal(t, []string{DefaultSearchField, DefaultSpellingField}, prop["copy_to"])

	fields := prop["fields"].(map[string]interface{})
	assert.Contains(t, fields, AnalyzerUntouched)
	assert.Contains(t, fields, AnalyzerWhitespace)
	assert.Equal(t, map[string]interface{}{"type": "keyword"}, fields[AnalyzerUntouched])
}

func TestDatePropertyRendering(t *testing.T) {
	f := &Field{Name: "created_at", Type: FieldTypeDate}
	prop := f.Property()
	assert.Equal(t, "date", prop["type"])
	assert.NotEmpty(t, prop["format"])
}
