package spellcheck

import (
	"github.com/moonwalker/searchkit/pkg/mapping"
)

// QueryType is the spelling quality of a whole query, driving how far
// downstream is allowed to relax the match.
type QueryType int

const (
	QueryTypeFuzzy QueryType = iota
	QueryTypeMostFuzzy
	QueryTypeMostExact
	QueryTypeExact
	QueryTypePureStopwords
)

func (t QueryType) String() string {
	switch t {
	case QueryTypeMostFuzzy:
		return "mostly_fuzzy"
	case QueryTypeMostExact:
		return "mostly_exact"
	case QueryTypeExact:
		return "exact"
	case QueryTypePureStopwords:
		return "pure_stopwords"
	}
	return "fuzzy"
}

// TermStat carries the engine-reported statistics for one query term
// position: its document frequency and the analyzers that indexed a
// nonzero-frequency match there.
type TermStat struct {
	Frequency int64
	Analyzers []string
}

// analyzers whose match means the term exists verbatim in the index
var exactAnalyzers = map[string]bool{
	mapping.AnalyzerWhitespace: true,
	mapping.AnalyzerReference:  true,
	mapping.AnalyzerEdgeNgram:  true,
}

func (s *TermStat) matchedExact() bool {
	for _, analyzer := range s.Analyzers {
		if exactAnalyzers[analyzer] {
			return true
		}
	}
	return false
}

// Classify aggregates per-position term states into a query
// classification. Terms at or above the cutoff frequency are stopwords,
// too common to be meaningful.
func Classify(stats []TermStat, cutoffFrequency int64) QueryType {
	total := len(stats)
	if total == 0 {
		return QueryTypeExact
	}

	var missing, stop, exact int
	for _, s := range stats {
		switch {
		case s.Frequency == 0:
			missing++
		case cutoffFrequency > 0 && s.Frequency >= cutoffFrequency:
			stop++
		case s.matchedExact():
			exact++
		}
	}

	switch {
	case stop == total:
		return QueryTypePureStopwords
	case stop+exact == total:
		return QueryTypeExact
	case missing == 0:
		return QueryTypeMostExact
	case total-missing > 0:
		return QueryTypeMostFuzzy
	}
	return QueryTypeFuzzy
}
