package query

import (
	"fmt"
	"sort"
	"strings"

	"log/slog"

	"github.com/moonwalker/searchkit/pkg/mapping"
	"github.com/moonwalker/searchkit/pkg/parse"
)

const defaultMinimumShouldMatch = "100%"

// range filter values carry the operator as a prefix ("<=42.5")
var rangeOperators = []struct {
	op    string
	bound string
}{
	{">=", "gte"},
	{"<=", "lte"},
	{">", "gt"},
	{"<", "lt"},
}

// Builder turns runtime filter parameters into query trees, resolving
// fields against the active mapping.
type Builder struct {
	m *mapping.Mapping
}

func NewBuilder(m *mapping.Mapping) *Builder {
	return &Builder{m: m}
}

// FilterQuery builds the filter for one field. Term values are passed
// through verbatim except boolean coercion on boolean fields, range
// operators map onto numeric bounds, and nested fields get wrapped with
// a nested envelope (combined with the caller's nested filter when one
// exists for the same path).
//
// An unknown field falls back to a literal field-name filter instead of
// failing; downstream relies on literal pseudo-fields.
func (b *Builder) FilterQuery(field string, values []string, nestedFilters map[string]Node) Node {
	f, err := b.m.Field(field)
	if err != nil {
		slog.Warn("filter field not in mapping, using literal field name",
			"field", field,
		)
		return termFilter(field, values)
	}

	leaf := b.leafFilter(f, values)

	if f.IsNested() {
		inner := leaf
		if nf, ok := nestedFilters[f.NestedPath]; ok {
			inner = &Bool{Must: []Node{leaf, nf}}
		}
		return &Nested{Path: f.NestedPath, Query: inner}
	}

	return leaf
}

func (b *Builder) leafFilter(f *mapping.Field, values []string) Node {
	prop := f.UntouchedProperty()

	if f.Type == mapping.FieldTypeBoolean {
		return booleanFilter(prop, values)
	}

	if isNumeric(f.Type) && hasRangeOperator(values) {
		return rangeFilter(prop, values)
	}

	return termFilter(prop, values)
}

// BuildFilters combines per-field filters into one query node, fields in
// deterministic order. A single filter is returned unwrapped.
func (b *Builder) BuildFilters(filters map[string][]string, nestedFilters map[string]Node) Node {
	if len(filters) == 0 {
		return nil
	}

	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	nodes := make([]Node, 0, len(fields))
	for _, field := range fields {
		nodes = append(nodes, b.FilterQuery(field, filters[field], nestedFilters))
	}

	if len(nodes) == 1 {
		return nodes[0]
	}
	return &Bool{Must: nodes}
}

// MatchQuery is the free-text equality comparison on an analyzed string
// field, 100% minimum-should-match unless overridden.
func (b *Builder) MatchQuery(field string, text string, minimumShouldMatch string) (Node, error) {
	f, err := b.m.Field(field)
	if err != nil {
		return nil, err
	}
	prop, err := f.MappingProperty(mapping.AnalyzerStandard)
	if err != nil {
		return nil, err
	}
	if minimumShouldMatch == "" {
		minimumShouldMatch = defaultMinimumShouldMatch
	}

	node := Node(&Match{Field: prop, Query: text, MinimumShouldMatch: minimumShouldMatch})
	if f.IsNested() {
		node = &Nested{Path: f.NestedPath, Query: node}
	}
	return node, nil
}

// RangeQuery maps a comparison operator onto the matching range bound,
// value coerced to numeric.
func (b *Builder) RangeQuery(field string, operator string, value interface{}) (Node, error) {
	f, err := b.m.Field(field)
	if err != nil {
		return nil, err
	}

	node := &Range{Field: f.UntouchedProperty()}
	if err := node.setBound(operator, parse.ParseFloat(value)); err != nil {
		return nil, err
	}

	if f.IsNested() {
		return &Nested{Path: f.NestedPath, Query: node}, nil
	}
	return node, nil
}

func (r *Range) setBound(operator string, value interface{}) error {
	switch operator {
	case ">":
		r.Gt = value
	case ">=":
		r.Gte = value
	case "<":
		r.Lt = value
	case "<=":
		r.Lte = value
	default:
		return fmt.Errorf("unknown range operator: %s", operator)
	}
	return nil
}

func booleanFilter(prop string, values []string) Node {
	if len(values) == 1 {
		if parse.ParseBool(values[0]) {
			return &Term{Field: prop, Value: true}
		}
		// negative flag, negate the positive leaf
		return &Not{Query: &Term{Field: prop, Value: true}}
	}

	coerced := make([]interface{}, 0, len(values))
	for _, v := range values {
		coerced = append(coerced, parse.ParseBool(v))
	}
	return &Terms{Field: prop, Values: coerced}
}

func rangeFilter(prop string, values []string) Node {
	node := &Range{Field: prop}
	for _, v := range values {
		for _, candidate := range rangeOperators {
			if strings.HasPrefix(v, candidate.op) {
				bound := parse.ParseFloat(strings.TrimPrefix(v, candidate.op))
				_ = node.setBound(candidate.op, bound)
				break
			}
		}
	}
	return node
}

func termFilter(prop string, values []string) Node {
	if len(values) == 1 {
		return &Term{Field: prop, Value: values[0]}
	}
	coerced := make([]interface{}, 0, len(values))
	for _, v := range values {
		coerced = append(coerced, v)
	}
	return &Terms{Field: prop, Values: coerced}
}

func hasRangeOperator(values []string) bool {
	for _, v := range values {
		for _, candidate := range rangeOperators {
			if strings.HasPrefix(v, candidate.op) {
				return true
			}
		}
	}
	return false
}

func isNumeric(t mapping.FieldType) bool {
	return t == mapping.FieldTypeInteger || t == mapping.FieldTypeDouble
}
