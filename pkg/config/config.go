package config

import (
	"fmt"

	"github.com/moonwalker/searchkit/pkg/mapping"
)

type FragmentType string

const (
	FragmentTypeTerm  FragmentType = "term"
	FragmentTypeTerms FragmentType = "terms"
	FragmentTypeMatch FragmentType = "match"
	FragmentTypeRange FragmentType = "range"
	FragmentTypeBool  FragmentType = "bool"
)

// clause buckets a generated filter fragment can land in
const (
	BucketQuery  = "query"
	BucketFilter = "filter"
)

// QueryFragment is one named, reusable query definition. Leaf fragments
// bind a field; bool fragments reference other fragments by name. The
// reference graph must stay acyclic.
type QueryFragment struct {
	Name               string       `yaml:"-" json:"name"`
	Type               FragmentType `yaml:"type" json:"type"`
	Field              string       `yaml:"field,omitempty" json:"field,omitempty"`
	Must               []string     `yaml:"must,omitempty" json:"must,omitempty"`
	Should             []string     `yaml:"should,omitempty" json:"should,omitempty"`
	MustNot            []string     `yaml:"must_not,omitempty" json:"must_not,omitempty"`
	MinimumShouldMatch string       `yaml:"minimum_should_match,omitempty" json:"minimum_should_match,omitempty"`
	Boost              float64      `yaml:"boost,omitempty" json:"boost,omitempty"`
}

func (f *QueryFragment) refs() []string {
	refs := make([]string, 0, len(f.Must)+len(f.Should)+len(f.MustNot))
	refs = append(refs, f.Must...)
	refs = append(refs, f.Should...)
	refs = append(refs, f.MustNot...)
	return refs
}

type AggregationDecl struct {
	Name  string `yaml:"-" json:"name"`
	Type  string `yaml:"type" json:"type"`
	Field string `yaml:"field" json:"field"`
	Size  int    `yaml:"size,omitempty" json:"size,omitempty"`
}

type SortDecl struct {
	Name  string `yaml:"-" json:"name"`
	Field string `yaml:"field" json:"field"`
}

// ContainerConfig is the resolved declarative configuration of one search
// context (context name x scope). Resolved once, then treated as read-only
// and safely shared across requests.
type ContainerConfig struct {
	Name  string `yaml:"-" json:"name"`
	Scope string `yaml:"-" json:"scope,omitempty"`
	Index string `yaml:"index" json:"index"`

	QueryRef  string `yaml:"query,omitempty" json:"query,omitempty"`
	FilterRef string `yaml:"filter,omitempty" json:"filter,omitempty"`

	Queries      map[string]*QueryFragment   `yaml:"queries,omitempty" json:"queries,omitempty"`
	Aggregations map[string]*AggregationDecl `yaml:"aggregations,omitempty" json:"aggregations,omitempty"`
	SortOrders   map[string]*SortDecl        `yaml:"sort_orders,omitempty" json:"sort_orders,omitempty"`
}

// normalize backfills entry names from their map keys, after yaml/json decode.
func (c *ContainerConfig) normalize() {
	for name, q := range c.Queries {
		q.Name = name
	}
	for name, a := range c.Aggregations {
		a.Name = name
	}
	for name, s := range c.SortOrders {
		s.Name = name
	}
}

func (c *ContainerConfig) Clone() *ContainerConfig {
	clone := &ContainerConfig{
		Name:         c.Name,
		Scope:        c.Scope,
		Index:        c.Index,
		QueryRef:     c.QueryRef,
		FilterRef:    c.FilterRef,
		Queries:      make(map[string]*QueryFragment, len(c.Queries)),
		Aggregations: make(map[string]*AggregationDecl, len(c.Aggregations)),
		SortOrders:   make(map[string]*SortDecl, len(c.SortOrders)),
	}
	for name, q := range c.Queries {
		cq := *q
		cq.Must = append([]string(nil), q.Must...)
		cq.Should = append([]string(nil), q.Should...)
		cq.MustNot = append([]string(nil), q.MustNot...)
		clone.Queries[name] = &cq
	}
	for name, a := range c.Aggregations {
		ca := *a
		clone.Aggregations[name] = &ca
	}
	for name, s := range c.SortOrders {
		cs := *s
		clone.SortOrders[name] = &cs
	}
	return clone
}

// Validate fails fast on deployment/config bugs: dangling references,
// cyclic fragment graphs and leaf fragments bound to unknown fields.
func (c *ContainerConfig) Validate(m *mapping.Mapping) error {
	for _, ref := range []string{c.QueryRef, c.FilterRef} {
		if ref == "" {
			continue
		}
		if _, ok := c.Queries[ref]; !ok {
			return fmt.Errorf("config %s: unresolvable fragment reference %s", c.Name, ref)
		}
	}

	for name, q := range c.Queries {
		if q.Type != FragmentTypeBool && q.Field != "" && m != nil {
			if _, err := m.Field(q.Field); err != nil {
				return fmt.Errorf("config %s: fragment %s: %w", c.Name, name, err)
			}
		}
		for _, ref := range q.refs() {
			if _, ok := c.Queries[ref]; !ok {
				return fmt.Errorf("config %s: fragment %s references unknown fragment %s", c.Name, name, ref)
			}
		}
	}

	return c.checkAcyclic()
}

const (
	unvisited = iota
	visiting
	visited
)

func (c *ContainerConfig) checkAcyclic() error {
	state := make(map[string]int, len(c.Queries))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("config %s: cyclic fragment reference through %s", c.Name, name)
		case visited:
			return nil
		}
		state[name] = visiting
		for _, ref := range c.Queries[name].refs() {
			if err := visit(ref); err != nil {
				return err
			}
		}
		state[name] = visited
		return nil
	}

	for name := range c.Queries {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
