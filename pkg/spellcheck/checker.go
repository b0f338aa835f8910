package spellcheck

import (
	"context"
	"strconv"

	"log/slog"

	"github.com/moonwalker/searchkit/pkg/cache"
)

const defaultCutoffRatio = 0.15

// Engine is the narrow slice of the engine boundary the checker needs.
type Engine interface {
	TermVectors(ctx context.Context, index string, doc map[string]interface{}, fields []string) ([]byte, error)
	DocumentCount(ctx context.Context, index string) (int64, error)
}

// Checker classifies query texts against a live index. Results are
// cached per (index, query text) since the underlying engine calls are
// relatively expensive; expiration is the cache's concern.
type Checker struct {
	engine Engine
	cache  cache.Cache

	// CutoffRatio scaled by the index document count gives the stopword
	// frequency threshold.
	CutoffRatio  float64
	UseAllTokens bool
}

func NewChecker(e Engine, c cache.Cache) *Checker {
	return &Checker{
		engine:      e,
		cache:       c,
		CutoffRatio: defaultCutoffRatio,
	}
}

func CacheKey(index string, queryText string) string {
	return "spelling:" + index + ":" + queryText
}

// Classify runs the term-vector lookup and classification for the query
// text. Any engine failure degrades to the conservative exact
// classification instead of propagating, so the query is never
// over-relaxed on bad data.
func (c *Checker) Classify(ctx context.Context, index string, queryText string) QueryType {
	data, err := cache.GetOrCompute(c.cache, CacheKey(index, queryText), 0, func() ([]byte, error) {
		queryType, err := c.classify(ctx, index, queryText)
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(queryType))), nil
	})
	if err != nil {
		slog.Error("spelling classification failed, assuming exact",
			"err", err.Error(),
			"index", index,
			"query", queryText,
		)
		return QueryTypeExact
	}

	parsed, err := strconv.Atoi(string(data))
	if err != nil {
		return QueryTypeExact
	}
	return QueryType(parsed)
}

func (c *Checker) classify(ctx context.Context, index string, queryText string) (QueryType, error) {
	docCount, err := c.engine.DocumentCount(ctx, index)
	if err != nil {
		return QueryTypeExact, err
	}

	cutoff := int64(c.CutoffRatio * float64(docCount))
	if cutoff < 1 {
		cutoff = 1
	}

	raw, err := c.engine.TermVectors(ctx, index, TermVectorDoc(queryText), termVectorFields)
	if err != nil {
		return QueryTypeExact, err
	}

	stats := ParseTermVectors(raw, queryText, c.UseAllTokens)
	return Classify(stats, cutoff), nil
}
