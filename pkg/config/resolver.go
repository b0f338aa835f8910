package config

import (
	"encoding/json"
	"fmt"

	"github.com/moonwalker/searchkit/pkg/cache"
	"github.com/moonwalker/searchkit/pkg/mapping"
)

const (
	filterSuffix = "_filter"
	bucketSuffix = "_bucket"
)

// FilterName is the generated filter fragment name of a field.
func FilterName(field string) string {
	return field + filterSuffix
}

// AggregationName is the generated facet aggregation name of a field.
func AggregationName(field string) string {
	return field + bucketSuffix
}

// Resolve derives the runtime configuration of a context from its mapping
// and declared base config: a filter fragment per filterable field, a facet
// aggregation per facet-eligible field, a sort order per sortable field,
// all merged into the per-bucket boolean containers. The base config is
// never mutated, resolving the same inputs twice yields identical results.
func Resolve(m *mapping.Mapping, base *ContainerConfig) (*ContainerConfig, error) {
	cfg := base.Clone()
	if cfg.Queries == nil {
		cfg.Queries = map[string]*QueryFragment{}
	}
	if cfg.Aggregations == nil {
		cfg.Aggregations = map[string]*AggregationDecl{}
	}
	if cfg.SortOrders == nil {
		cfg.SortOrders = map[string]*SortDecl{}
	}

	generated := map[string][]string{}

	for _, f := range m.Fields() {
		if f.Filterable {
			name := FilterName(f.Name)
			if _, exists := cfg.Queries[name]; !exists {
				cfg.Queries[name] = &QueryFragment{
					Name:  name,
					Type:  FragmentTypeTerms,
					Field: f.Name,
				}
			}

			bucket := BucketQuery
			if f.FacetEligible {
				bucket = BucketFilter
			}
			generated[bucket] = append(generated[bucket], name)
		}

		if f.FacetEligible {
			aggName := AggregationName(f.Name)
			if _, exists := cfg.Aggregations[aggName]; !exists {
				cfg.Aggregations[aggName] = &AggregationDecl{
					Name:  aggName,
					Type:  "term",
					Field: f.Name,
				}
			}
		}

		if f.Sortable {
			if _, exists := cfg.SortOrders[f.Name]; !exists {
				cfg.SortOrders[f.Name] = &SortDecl{Name: f.Name, Field: f.Name}
			}
		}
	}

	for _, bucket := range []string{BucketQuery, BucketFilter} {
		if err := addTypeFilters(cfg, bucket, generated[bucket]); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(m); err != nil {
		return nil, err
	}
	return cfg, nil
}

// addTypeFilters merges the generated filter fragments into the boolean
// container of one clause bucket. An existing non-boolean reference is
// moved aside as the first must clause of a new boolean fragment, so
// custom configuration stays intact while becoming extensible.
func addTypeFilters(cfg *ContainerConfig, bucket string, fragments []string) error {
	if len(fragments) == 0 {
		return nil
	}

	ref := cfg.bucketRef(bucket)
	autoName := fmt.Sprintf("type_automatic_%sfiltered", bucket)

	var target *QueryFragment
	switch {
	case ref == "":
		target = &QueryFragment{Name: autoName, Type: FragmentTypeBool}
		cfg.Queries[autoName] = target
		cfg.setBucketRef(bucket, autoName)
	default:
		existing, ok := cfg.Queries[ref]
		if !ok {
			return fmt.Errorf("config %s: %s bucket references unknown fragment %s", cfg.Name, bucket, ref)
		}
		if existing.Type == FragmentTypeBool {
			target = existing
		} else {
			target = &QueryFragment{Name: autoName, Type: FragmentTypeBool, Must: []string{ref}}
			cfg.Queries[autoName] = target
			cfg.setBucketRef(bucket, autoName)
		}
	}

	for _, name := range fragments {
		if !contains(target.Must, name) {
			target.Must = append(target.Must, name)
		}
	}
	return nil
}

func (c *ContainerConfig) bucketRef(bucket string) string {
	if bucket == BucketFilter {
		return c.FilterRef
	}
	return c.QueryRef
}

func (c *ContainerConfig) setBucketRef(bucket string, ref string) {
	if bucket == BucketFilter {
		c.FilterRef = ref
	} else {
		c.QueryRef = ref
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// sources, supplied by the host application

type MappingSource interface {
	GetMapping(index string, scope string) (*mapping.Mapping, error)
}

type BaseSource interface {
	GetBaseConfig(contextName string) (*ContainerConfig, error)
}

// Resolver resolves and caches container configs per (context, scope).
// Resolution is pure, so concurrent first-resolutions racing on the same
// key are wasteful but safe.
type Resolver struct {
	Mappings MappingSource
	Base     BaseSource
	Cache    cache.Cache
}

func CacheKey(contextName string, scope string) string {
	return "config:" + contextName + ":" + scope
}

func (r *Resolver) Get(contextName string, scope string) (*ContainerConfig, error) {
	data, err := cache.GetOrCompute(r.Cache, CacheKey(contextName, scope), 0, func() ([]byte, error) {
		base, err := r.Base.GetBaseConfig(contextName)
		if err != nil {
			return nil, err
		}
		m, err := r.Mappings.GetMapping(base.Index, scope)
		if err != nil {
			return nil, err
		}
		cfg, err := Resolve(m, base)
		if err != nil {
			return nil, err
		}
		cfg.Scope = scope
		return json.Marshal(cfg)
	})
	if err != nil {
		return nil, err
	}

	cfg := &ContainerConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}
