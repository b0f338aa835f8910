package query

import (
	"encoding/json"
)

// Node is one node of an immutable engine query tree.
// Nodes serialize directly into the engine JSON DSL and are never
// mutated after construction; negation and wrapping produce new nodes.
type Node interface {
	json.Marshaler
}

type Term struct {
	Field string
	Value interface{}
	Name  string
	Boost float64
}

func (q *Term) MarshalJSON() ([]byte, error) {
	if q.Name == "" && plainBoost(q.Boost) {
		return json.Marshal(map[string]interface{}{
			"term": map[string]interface{}{q.Field: q.Value},
		})
	}
	clause := map[string]interface{}{"value": q.Value}
	decorate(clause, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{
		"term": map[string]interface{}{q.Field: clause},
	})
}

type Terms struct {
	Field  string
	Values []interface{}
	Name   string
	Boost  float64
}

func (q *Terms) MarshalJSON() ([]byte, error) {
	clause := map[string]interface{}{q.Field: q.Values}
	decorate(clause, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{"terms": clause})
}

type Match struct {
	Field              string
	Query              string
	MinimumShouldMatch string
	Name               string
	Boost              float64
}

func (q *Match) MarshalJSON() ([]byte, error) {
	clause := map[string]interface{}{"query": q.Query}
	if q.MinimumShouldMatch != "" {
		clause["minimum_should_match"] = q.MinimumShouldMatch
	}
	decorate(clause, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{
		"match": map[string]interface{}{q.Field: clause},
	})
}

type MultiMatch struct {
	Fields             []string
	Query              string
	MinimumShouldMatch string
	TieBreaker         float64
	Name               string
	Boost              float64
}

func (q *MultiMatch) MarshalJSON() ([]byte, error) {
	clause := map[string]interface{}{
		"query":  q.Query,
		"fields": q.Fields,
		"type":   "best_fields",
	}
	if q.MinimumShouldMatch != "" {
		clause["minimum_should_match"] = q.MinimumShouldMatch
	}
	if q.TieBreaker != 0 {
		clause["tie_breaker"] = q.TieBreaker
	}
	decorate(clause, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{"multi_match": clause})
}

// Range bounds are pointers so absent bounds are distinguishable from zero.
type Range struct {
	Field string
	Gt    interface{}
	Gte   interface{}
	Lt    interface{}
	Lte   interface{}
	Name  string
	Boost float64
}

func (q *Range) MarshalJSON() ([]byte, error) {
	bounds := map[string]interface{}{}
	if q.Gt != nil {
		bounds["gt"] = q.Gt
	}
	if q.Gte != nil {
		bounds["gte"] = q.Gte
	}
	if q.Lt != nil {
		bounds["lt"] = q.Lt
	}
	if q.Lte != nil {
		bounds["lte"] = q.Lte
	}
	decorate(bounds, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{
		"range": map[string]interface{}{q.Field: bounds},
	})
}

type Bool struct {
	Must               []Node
	Should             []Node
	MustNot            []Node
	MinimumShouldMatch string
	Name               string
	Boost              float64
}

func (q *Bool) MarshalJSON() ([]byte, error) {
	clause := map[string]interface{}{}
	if len(q.Must) > 0 {
		clause["must"] = q.Must
	}
	if len(q.Should) > 0 {
		clause["should"] = q.Should
	}
	if len(q.MustNot) > 0 {
		clause["must_not"] = q.MustNot
	}
	if q.MinimumShouldMatch != "" && len(q.Should) > 0 {
		clause["minimum_should_match"] = q.MinimumShouldMatch
	}
	decorate(clause, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{"bool": clause})
}

// Not wraps exactly one child; double negation is left as-is.
type Not struct {
	Query Node
}

func (q *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"bool": map[string]interface{}{
			"must_not": []Node{q.Query},
		},
	})
}

type Nested struct {
	Path      string
	Query     Node
	ScoreMode string
	Name      string
	Boost     float64
}

func (q *Nested) MarshalJSON() ([]byte, error) {
	scoreMode := q.ScoreMode
	if scoreMode == "" {
		scoreMode = "none"
	}
	clause := map[string]interface{}{
		"path":       q.Path,
		"score_mode": scoreMode,
		"query":      q.Query,
	}
	decorate(clause, q.Name, q.Boost)
	return json.Marshal(map[string]interface{}{"nested": clause})
}

type MatchAll struct{}

func (q *MatchAll) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"match_all": map[string]interface{}{},
	})
}

func plainBoost(boost float64) bool {
	return boost == 0 || boost == 1
}

func decorate(clause map[string]interface{}, name string, boost float64) {
	if name != "" {
		clause["_name"] = name
	}
	if !plainBoost(boost) {
		clause["boost"] = boost
	}
}
