package search

import (
	"context"
	"encoding/json"

	"github.com/moonwalker/searchkit/pkg/aggregation"
	"github.com/moonwalker/searchkit/pkg/engine"
)

// Engine is the slice of the engine boundary the search pipeline needs.
type Engine interface {
	SafeSearch(ctx context.Context, index string, query []byte) *engine.SearchResult
}

type Document struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

// Result is the decoded, typed search outcome.
type Result struct {
	Documents    []Document
	TotalCount   int
	Aggregations map[string]*aggregation.Bucket
}

// DecodeResult tolerates empty and partial engine responses; a degraded
// engine result decodes to an empty result.
func DecodeResult(res *engine.SearchResult) *Result {
	r := &Result{Aggregations: map[string]*aggregation.Bucket{}}
	if res == nil {
		return r
	}

	r.TotalCount = res.Hits.Total.Value
	for _, hit := range res.Hits.Hits {
		r.Documents = append(r.Documents, Document{
			ID:     hit.ID,
			Score:  hit.Score,
			Source: hit.Source,
		})
	}
	if len(res.Aggregations) > 0 {
		r.Aggregations = aggregation.Decode(res.Aggregations)
	}
	return r
}

// Search assembles the request, runs it and decodes the response.
func (a *Assembler) Search(ctx context.Context, e Engine, p Params) (*Result, error) {
	req, err := a.Assemble(ctx, p)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	// listings paginate past the default total-count ceiling
	body = engine.WithTrackTotalHits(body)
	return DecodeResult(e.SafeSearch(ctx, req.Index, body)), nil
}
