// $ go test -v pkg/spellcheck/*.go

package spellcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonwalker/searchkit/pkg/cache"
	"github.com/moonwalker/searchkit/pkg/mapping"
)

const cutoff = 100

func TestClassifyExact(t *testing.T) {
	// every position matched the whitespace analyzer below the cutoff
	stats := []TermStat{
		{Frequency: 10, Analyzers: []string{mapping.AnalyzerStandard, mapping.AnalyzerWhitespace}},
		{Frequency: 4, Analyzers: []string{mapping.AnalyzerWhitespace}},
	}
	assert.Equal(t, QueryTypeExact, Classify(stats, cutoff))

	// stopwords mixed with exact matches still classify exact
	stats = []TermStat{
		{Frequency: 500, Analyzers: []string{mapping.AnalyzerStandard}},
		{Frequency: 4, Analyzers: []string{mapping.AnalyzerReference}},
	}
	assert.Equal(t, QueryTypeExact, Classify(stats, cutoff))
}

func TestClassifyPureStopwords(t *testing.T) {
	stats := []TermStat{
		{Frequency: 100, Analyzers: []string{mapping.AnalyzerWhitespace}},
		{Frequency: 2000, Analyzers: []string{mapping.AnalyzerStandard}},
	}
	assert.Equal(t, QueryTypePureStopwords, Classify(stats, cutoff))
}

func TestClassifyMostExact(t *testing.T) {
	// nothing missing, but one term needs the full analyzer chain
	stats := []TermStat{
		{Frequency: 10, Analyzers: []string{mapping.AnalyzerWhitespace}},
		{Frequency: 8, Analyzers: []string{mapping.AnalyzerStandard}},
	}
	assert.Equal(t, QueryTypeMostExact, Classify(stats, cutoff))
}

func TestClassifyMostFuzzy(t *testing.T) {
	stats := []TermStat{
		{Frequency: 10, Analyzers: []string{mapping.AnalyzerWhitespace}},
		{Frequency: 0},
	}
	assert.Equal(t, QueryTypeMostFuzzy, Classify(stats, cutoff))
}

func TestClassifyFuzzy(t *testing.T) {
	// every position missing
	stats := []TermStat{{Frequency: 0}, {Frequency: 0}}
	assert.Equal(t, QueryTypeFuzzy, Classify(stats, cutoff))
}

func TestClassifyEmptyStats(t *testing.T) {
	assert.Equal(t, QueryTypeExact, Classify(nil, cutoff))
}

const termVectorsResponse = `{
	"term_vectors": {
		"spelling": {
			"terms": {
				"run": {"doc_freq": 50, "tokens": [{"position": 0}]},
				"shoe": {"doc_freq": 80, "tokens": [{"position": 1}]}
			}
		},
		"spelling.whitespace": {
			"terms": {
				"running": {"doc_freq": 40, "tokens": [{"position": 0}]},
				"shoes": {"doc_freq": 75, "tokens": [{"position": 1}]}
			}
		},
		"spelling.shingle": {
			"terms": {
				"running shoes": {"doc_freq": 7, "tokens": [{"position": 0}]}
			}
		}
	}
}`

func TestParseTermVectors(t *testing.T) {
	stats := ParseTermVectors([]byte(termVectorsResponse), "running shoes", false)
	require.Len(t, stats, 2)

	assert.Equal(t, int64(50), stats[0].Frequency)
	assert.Contains(t, stats[0].Analyzers, mapping.AnalyzerStandard)
	assert.Contains(t, stats[0].Analyzers, mapping.AnalyzerWhitespace)
	assert.NotContains(t, stats[0].Analyzers, mapping.AnalyzerShingle)

	// max frequency across analyzers wins at each position
	assert.Equal(t, int64(80), stats[1].Frequency)
	assert.Contains(t, stats[1].Analyzers, mapping.AnalyzerWhitespace)
}

func TestParseTermVectorsAllTokens(t *testing.T) {
	stats := ParseTermVectors([]byte(termVectorsResponse), "running shoes", true)
	assert.Contains(t, stats[0].Analyzers, mapping.AnalyzerShingle)
}

func TestParseTermVectorsMissingTerms(t *testing.T) {
	stats := ParseTermVectors([]byte(`{"term_vectors":{}}`), "qwertyuiop zzz", false)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(0), stats[0].Frequency)
	assert.Equal(t, int64(0), stats[1].Frequency)
}

type fakeEngine struct {
	raw      string
	docCount int64
	err      error
	calls    int
}

func (f *fakeEngine) TermVectors(ctx context.Context, index string, doc map[string]interface{}, fields []string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.raw), nil
}

func (f *fakeEngine) DocumentCount(ctx context.Context, index string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.docCount, nil
}

func TestCheckerClassifyAndCache(t *testing.T) {
	e := &fakeEngine{raw: termVectorsResponse, docCount: 1000}
	c := NewChecker(e, cache.NewMemory())

	queryType := c.Classify(context.Background(), "catalog_product", "running shoes")
	assert.Equal(t, QueryTypeExact, queryType)
	assert.Equal(t, 1, e.calls)

	// cached per (index, query text)
	queryType = c.Classify(context.Background(), "catalog_product", "running shoes")
	assert.Equal(t, QueryTypeExact, queryType)
	assert.Equal(t, 1, e.calls)
}

func TestCheckerDegradesToExact(t *testing.T) {
	e := &fakeEngine{err: errors.New("engine down")}
	c := NewChecker(e, nil)

	queryType := c.Classify(context.Background(), "catalog_product", "running shoes")
	assert.Equal(t, QueryTypeExact, queryType)
}
