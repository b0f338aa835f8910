package search

import (
	"github.com/moonwalker/searchkit/pkg/mapping"
	"github.com/moonwalker/searchkit/pkg/query"
	"github.com/moonwalker/searchkit/pkg/spellcheck"
)

const fulltextTieBreaker = 0.1

// FulltextQuery builds the free-text query over the weighted searchable
// properties plus the default search aggregate. The spelling class drives
// the relaxation strategy: exact classes query the whitespace variants,
// fuzzy classes stay on the analyzed chain with a relaxed
// minimum-should-match.
func FulltextQuery(m *mapping.Mapping, text string, queryType spellcheck.QueryType) query.Node {
	analyzer := mapping.AnalyzerStandard
	minimumShouldMatch := "100%"

	switch queryType {
	case spellcheck.QueryTypeExact, spellcheck.QueryTypeMostExact, spellcheck.QueryTypePureStopwords:
		analyzer = mapping.AnalyzerWhitespace
	case spellcheck.QueryTypeMostFuzzy:
		minimumShouldMatch = "75%"
	case spellcheck.QueryTypeFuzzy:
		minimumShouldMatch = "50%"
	}

	fields := m.WeightedSearchProperties(analyzer)
	if analyzer == mapping.AnalyzerStandard {
		fields = append(fields, mapping.DefaultSearchField+"^1")
	} else {
		fields = append(fields, mapping.DefaultSearchField+"."+analyzer+"^1")
	}

	return &query.MultiMatch{
		Fields:             fields,
		Query:              text,
		MinimumShouldMatch: minimumShouldMatch,
		TieBreaker:         fulltextTieBreaker,
	}
}
