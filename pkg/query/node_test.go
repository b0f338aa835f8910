// $ go test -v pkg/query/*.go

package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func marshal(t *testing.T, n Node) string {
	b, err := json.Marshal(n)
	assert.NoError(t, err)
	return string(b)
}

func TestTermMarshal(t *testing.T) {
	assert.JSONEq(t, `{"term":{"color.untouched":"red"}}`,
		marshal(t, &Term{Field: "color.untouched", Value: "red"}))

	assert.JSONEq(t, `{"term":{"color.untouched":{"value":"red","boost":2,"_name":"color_filter"}}}`,
		marshal(t, &Term{Field: "color.untouched", Value: "red", Boost: 2, Name: "color_filter"}))
}

func TestTermsMarshal(t *testing.T) {
	assert.JSONEq(t, `{"terms":{"color.untouched":["red","blue"]}}`,
		marshal(t, &Terms{Field: "color.untouched", Values: []interface{}{"red", "blue"}}))
}

func TestMatchMarshal(t *testing.T) {
	assert.JSONEq(t, `{"match":{"name":{"query":"long sleeve","minimum_should_match":"100%"}}}`,
		marshal(t, &Match{Field: "name", Query: "long sleeve", MinimumShouldMatch: "100%"}))
}

func TestRangeMarshal(t *testing.T) {
	assert.JSONEq(t, `{"range":{"price":{"gte":10,"lt":20}}}`,
		marshal(t, &Range{Field: "price", Gte: 10.0, Lt: 20.0}))
}

func TestBoolMarshal(t *testing.T) {
	n := &Bool{
		Must:    []Node{&Term{Field: "visible", Value: true}},
		MustNot: []Node{&Term{Field: "status", Value: "disabled"}},
	}
	assert.JSONEq(t, `{"bool":{
		"must":[{"term":{"visible":true}}],
		"must_not":[{"term":{"status":"disabled"}}]
	}}`, marshal(t, n))

	// minimum_should_match only emitted alongside should clauses
	n = &Bool{
		Should:             []Node{&Term{Field: "a", Value: 1}, &Term{Field: "b", Value: 2}},
		MinimumShouldMatch: "1",
	}
	assert.JSONEq(t, `{"bool":{
		"should":[{"term":{"a":1}},{"term":{"b":2}}],
		"minimum_should_match":"1"
	}}`, marshal(t, n))
}

func TestNotMarshal(t *testing.T) {
	assert.JSONEq(t, `{"bool":{"must_not":[{"term":{"in_stock":true}}]}}`,
		marshal(t, &Not{Query: &Term{Field: "in_stock", Value: true}}))

	// double negation is not simplified
	assert.JSONEq(t, `{"bool":{"must_not":[{"bool":{"must_not":[{"term":{"in_stock":true}}]}}]}}`,
		marshal(t, &Not{Query: &Not{Query: &Term{Field: "in_stock", Value: true}}}))
}

func TestNestedMarshal(t *testing.T) {
	n := &Nested{Path: "offers", Query: &Term{Field: "offers.seller_id", Value: 3}}
	assert.JSONEq(t, `{"nested":{
		"path":"offers",
		"score_mode":"none",
		"query":{"term":{"offers.seller_id":3}}
	}}`, marshal(t, n))
}

func TestMultiMatchMarshal(t *testing.T) {
	n := &MultiMatch{
		Fields:             []string{"search^1", "name^5"},
		Query:              "running shoes",
		MinimumShouldMatch: "1",
		TieBreaker:         0.3,
	}
	assert.JSONEq(t, `{"multi_match":{
		"query":"running shoes",
		"fields":["search^1","name^5"],
		"type":"best_fields",
		"minimum_should_match":"1",
		"tie_breaker":0.3
	}}`, marshal(t, n))
}
