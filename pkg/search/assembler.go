package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"log/slog"

	"github.com/moonwalker/searchkit/pkg/config"
	"github.com/moonwalker/searchkit/pkg/mapping"
	"github.com/moonwalker/searchkit/pkg/query"
	"github.com/moonwalker/searchkit/pkg/spellcheck"
)

// Params is one runtime search request against a named context.
type Params struct {
	Context   string
	Scope     string
	QueryText string

	// Filters are runtime filter values keyed by field name. Facets names
	// the requested facets; empty means every configured facet.
	Filters map[string][]string
	Facets  []string

	Sort []SortRequest
	From int
	Size int
}

type ConfigSource interface {
	Get(contextName string, scope string) (*config.ContainerConfig, error)
}

type Classifier interface {
	Classify(ctx context.Context, index string, queryText string) spellcheck.QueryType
}

// Assembler turns runtime params into a full engine request: it resolves
// the context configuration, splits runtime filters into facet filters
// (those matching a requested facet) and query filters, and builds the
// query, filter, sort and aggregation parts.
type Assembler struct {
	Configs  ConfigSource
	Mappings config.MappingSource

	// Spelling is optional; without it free text is treated as exact.
	Spelling Classifier
}

// Request is the assembled engine request.
type Request struct {
	Index string
	From  int
	Size  int

	Query        query.Node
	Filter       query.Node
	Sort         []*SortSpec
	Aggregations []*Aggregation
}

func (r *Request) MarshalJSON() ([]byte, error) {
	doc := map[string]interface{}{
		"query": r.Query,
		"from":  r.From,
		"size":  r.Size,
	}
	if r.Filter != nil {
		doc["filter"] = r.Filter
	}
	if len(r.Sort) > 0 {
		doc["sort"] = r.Sort
	}
	if len(r.Aggregations) > 0 {
		aggs := map[string]interface{}{}
		for _, a := range r.Aggregations {
			aggs[a.Name] = a
		}
		doc["aggs"] = aggs
	}
	return json.Marshal(doc)
}

// Aggregation is one facet bucket spec, nested-wrapped when the facet
// field lives under a nested path.
type Aggregation struct {
	Name       string
	Field      string
	Size       int
	NestedPath string
}

func (a *Aggregation) MarshalJSON() ([]byte, error) {
	terms := map[string]interface{}{"field": a.Field}
	if a.Size > 0 {
		terms["size"] = a.Size
	}
	spec := map[string]interface{}{"terms": terms}

	if a.NestedPath != "" {
		return json.Marshal(map[string]interface{}{
			"nested": map[string]interface{}{"path": a.NestedPath},
			"aggs":   map[string]interface{}{a.Name: spec},
		})
	}
	return json.Marshal(spec)
}

func (a *Assembler) Assemble(ctx context.Context, p Params) (*Request, error) {
	cfg, err := a.Configs.Get(p.Context, p.Scope)
	if err != nil {
		return nil, err
	}
	m, err := a.Mappings.GetMapping(cfg.Index, p.Scope)
	if err != nil {
		return nil, err
	}

	qb := query.NewBuilder(m)
	facets := requestedFacets(cfg, p.Facets)
	facetFilters, queryFilters := splitFilters(p.Filters, facets)

	queryNode := a.fulltext(ctx, cfg, m, p)
	if queryFilterNode := compileBucket(cfg, qb, cfg.QueryRef, queryFilters); queryFilterNode != nil {
		if queryNode != nil {
			queryNode = &query.Bool{Must: []query.Node{queryNode, queryFilterNode}}
		} else {
			queryNode = queryFilterNode
		}
	}
	if queryNode == nil {
		queryNode = &query.MatchAll{}
	}

	return &Request{
		Index:        cfg.Index,
		From:         p.From,
		Size:         p.Size,
		Query:        queryNode,
		Filter:       compileBucket(cfg, qb, cfg.FilterRef, facetFilters),
		Sort:         NewSortOrderBuilder(cfg, m).Build(p.Sort),
		Aggregations: buildAggregations(cfg, m, facets),
	}, nil
}

func (a *Assembler) fulltext(ctx context.Context, cfg *config.ContainerConfig, m *mapping.Mapping, p Params) query.Node {
	if p.QueryText == "" {
		return nil
	}
	queryType := spellcheck.QueryTypeExact
	if a.Spelling != nil {
		queryType = a.Spelling.Classify(ctx, cfg.Index, p.QueryText)
	}
	return FulltextQuery(m, p.QueryText, queryType)
}

func requestedFacets(cfg *config.ContainerConfig, facets []string) map[string]bool {
	requested := map[string]bool{}
	if len(facets) == 0 {
		for _, decl := range cfg.Aggregations {
			requested[decl.Field] = true
		}
		return requested
	}
	for _, field := range facets {
		if _, ok := cfg.Aggregations[config.AggregationName(field)]; ok {
			requested[field] = true
		}
	}
	return requested
}

func splitFilters(filters map[string][]string, facets map[string]bool) (facetFilters, queryFilters map[string][]string) {
	facetFilters = map[string][]string{}
	queryFilters = map[string][]string{}
	for field, values := range filters {
		if facets[field] {
			facetFilters[field] = values
		} else {
			queryFilters[field] = values
		}
	}
	return facetFilters, queryFilters
}

// compileBucket compiles one clause bucket's fragment graph, binding the
// runtime filter values to the leaf fragments. Filters no fragment
// claimed are appended directly, so runtime filters never get lost.
func compileBucket(cfg *config.ContainerConfig, qb *query.Builder, ref string, filters map[string][]string) query.Node {
	bound := map[string]bool{}

	var node query.Node
	if ref != "" {
		node = compileFragment(cfg, qb, ref, filters, bound)
	}

	leftover := map[string][]string{}
	for field, values := range filters {
		if !bound[field] {
			leftover[field] = values
		}
	}
	rest := qb.BuildFilters(leftover, nil)

	switch {
	case node == nil:
		return rest
	case rest == nil:
		return node
	default:
		return &query.Bool{Must: []query.Node{node, rest}}
	}
}

// compileFragment resolves one named fragment into a query node. Leaf
// fragments without a runtime value binding compile to nothing; bool
// fragments whose clauses all compiled to nothing collapse as well.
func compileFragment(cfg *config.ContainerConfig, qb *query.Builder, name string, filters map[string][]string, bound map[string]bool) query.Node {
	fragment, ok := cfg.Queries[name]
	if !ok {
		slog.Warn("unknown query fragment reference",
			"config", cfg.Name,
			"fragment", name,
		)
		return nil
	}

	if fragment.Type == config.FragmentTypeBool {
		node := &query.Bool{
			MinimumShouldMatch: fragment.MinimumShouldMatch,
			Boost:              fragment.Boost,
		}
		for _, ref := range fragment.Must {
			if child := compileFragment(cfg, qb, ref, filters, bound); child != nil {
				node.Must = append(node.Must, child)
			}
		}
		for _, ref := range fragment.Should {
			if child := compileFragment(cfg, qb, ref, filters, bound); child != nil {
				node.Should = append(node.Should, child)
			}
		}
		for _, ref := range fragment.MustNot {
			if child := compileFragment(cfg, qb, ref, filters, bound); child != nil {
				node.MustNot = append(node.MustNot, child)
			}
		}
		if len(node.Must)+len(node.Should)+len(node.MustNot) == 0 {
			return nil
		}
		return node
	}

	values, ok := filters[fragment.Field]
	if !ok || len(values) == 0 {
		return nil
	}
	bound[fragment.Field] = true

	if fragment.Type == config.FragmentTypeMatch {
		node, err := qb.MatchQuery(fragment.Field, strings.Join(values, " "), fragment.MinimumShouldMatch)
		if err != nil {
			slog.Warn("match fragment field not in mapping, skipping",
				"config", cfg.Name,
				"fragment", name,
				"field", fragment.Field,
			)
			return nil
		}
		return node
	}

	return qb.FilterQuery(fragment.Field, values, nil)
}

func buildAggregations(cfg *config.ContainerConfig, m *mapping.Mapping, facets map[string]bool) []*Aggregation {
	fields := make([]string, 0, len(facets))
	for field := range facets {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	aggs := make([]*Aggregation, 0, len(fields))
	for _, field := range fields {
		decl, ok := cfg.Aggregations[config.AggregationName(field)]
		if !ok {
			continue
		}

		agg := &Aggregation{Name: decl.Name, Field: field, Size: decl.Size}
		if f, err := m.Field(field); err == nil {
			agg.Field = f.UntouchedProperty()
			agg.NestedPath = f.NestedPath
		} else {
			slog.Warn("facet field not in mapping, using literal field name",
				"field", field,
			)
		}
		aggs = append(aggs, agg)
	}
	return aggs
}
