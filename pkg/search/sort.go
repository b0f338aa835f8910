package search

import (
	"encoding/json"

	"log/slog"

	"github.com/moonwalker/searchkit/pkg/config"
	"github.com/moonwalker/searchkit/pkg/mapping"
	"github.com/moonwalker/searchkit/pkg/query"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	// synthetic sort keys
	ScoreField  = "_score"
	ScriptField = "_script"

	MissingFirst = "_first"
	MissingLast  = "_last"
)

// SortRequest is one runtime sort entry as given by the caller.
type SortRequest struct {
	Field        string
	Direction    string
	Missing      string
	Mode         string
	NestedFilter map[string][]string
	Script       *SortScript
}

type SortScript struct {
	Lang   string
	Source string
	Params map[string]interface{}
	Type   string
}

// SortSpec is one resolved sort entry, applied in list order.
type SortSpec struct {
	Field        string
	Direction    string
	Missing      string
	Mode         string
	NestedPath   string
	NestedFilter query.Node
	Script       *SortScript
}

func (s *SortSpec) MarshalJSON() ([]byte, error) {
	if s.Script != nil {
		scriptType := s.Script.Type
		if scriptType == "" {
			scriptType = "number"
		}
		script := map[string]interface{}{"source": s.Script.Source}
		if s.Script.Lang != "" {
			script["lang"] = s.Script.Lang
		}
		if len(s.Script.Params) > 0 {
			script["params"] = s.Script.Params
		}
		return json.Marshal(map[string]interface{}{
			ScriptField: map[string]interface{}{
				"type":   scriptType,
				"script": script,
				"order":  s.Direction,
			},
		})
	}

	if s.Field == ScoreField {
		return json.Marshal(map[string]interface{}{
			ScoreField: map[string]interface{}{"order": s.Direction},
		})
	}

	clause := map[string]interface{}{"order": s.Direction}
	if s.Missing != "" {
		clause["missing"] = s.Missing
	}
	if s.Mode != "" {
		clause["mode"] = s.Mode
	}
	if s.NestedPath != "" {
		nested := map[string]interface{}{"path": s.NestedPath}
		if s.NestedFilter != nil {
			nested["filter"] = s.NestedFilter
		}
		clause["nested"] = nested
	}
	return json.Marshal(map[string]interface{}{s.Field: clause})
}

// SortOrderBuilder resolves runtime sort entries against the configured
// sort orders and the mapping, and guarantees a total order by appending
// score and id fallbacks.
type SortOrderBuilder struct {
	cfg *config.ContainerConfig
	m   *mapping.Mapping
	qb  *query.Builder
}

func NewSortOrderBuilder(cfg *config.ContainerConfig, m *mapping.Mapping) *SortOrderBuilder {
	return &SortOrderBuilder{cfg: cfg, m: m, qb: query.NewBuilder(m)}
}

// Build resolves the caller's sort entries in order, then appends the
// fallback orders not already present by key. The fallback direction
// flips to ascending when the first explicit sort is descending, keeping
// tie-breaking monotonic relative to the primary sort under pagination.
func (b *SortOrderBuilder) Build(orders []SortRequest) []*SortSpec {
	keys := make(map[string]bool, len(orders))
	specs := make([]*SortSpec, 0, len(orders)+2)

	for _, o := range orders {
		o = b.resolveOrder(o)
		keys[o.Field] = true
		specs = append(specs, b.buildOne(o))
	}

	fallbackDirection := SortDesc
	if len(orders) > 0 && orders[0].Direction == SortDesc {
		fallbackDirection = SortAsc
	}
	for _, field := range []string{ScoreField, b.m.IDField} {
		if keys[field] {
			continue
		}
		specs = append(specs, b.buildOne(SortRequest{Field: field, Direction: fallbackDirection}))
	}

	return specs
}

// resolveOrder maps the caller's sort key through the configured sort
// orders of the context; keys without a declaration pass through as
// field names.
func (b *SortOrderBuilder) resolveOrder(o SortRequest) SortRequest {
	if b.cfg == nil {
		return o
	}
	if decl, ok := b.cfg.SortOrders[o.Field]; ok && decl.Field != "" {
		o.Field = decl.Field
	}
	return o
}

// An unknown field falls back to the caller-given key as a literal field
// name; downstream relies on literal pseudo-fields.
func (b *SortOrderBuilder) buildOne(o SortRequest) *SortSpec {
	direction := o.Direction
	if direction != SortDesc {
		direction = SortAsc
	}

	if o.Field == ScriptField || o.Script != nil {
		script := o.Script
		if script == nil {
			script = &SortScript{}
		}
		return &SortSpec{Field: ScriptField, Direction: direction, Script: script}
	}

	if o.Field == ScoreField {
		return &SortSpec{Field: ScoreField, Direction: direction}
	}

	missing := o.Missing
	if missing != MissingFirst && missing != MissingLast {
		missing = MissingLast
		if direction == SortDesc {
			missing = MissingFirst
		}
	}

	f, err := b.m.Field(o.Field)
	if err != nil {
		slog.Warn("sort field not in mapping, using literal field name",
			"field", o.Field,
		)
		return &SortSpec{Field: o.Field, Direction: direction, Missing: missing, Mode: o.Mode}
	}

	spec := &SortSpec{
		Field:     f.SortableProperty(),
		Direction: direction,
		Missing:   missing,
		Mode:      o.Mode,
	}
	if f.IsNested() {
		spec.NestedPath = f.NestedPath
		if len(o.NestedFilter) > 0 {
			filter := b.qb.BuildFilters(o.NestedFilter, nil)
			// the sort filter already runs in the nested context
			if nested, ok := filter.(*query.Nested); ok && nested.Path == f.NestedPath {
				filter = nested.Query
			}
			spec.NestedFilter = filter
		}
	}
	return spec
}
