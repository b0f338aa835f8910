package spellcheck

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/moonwalker/searchkit/pkg/mapping"
)

// fields inspected by the term-vector lookup; the artificial document
// carries the query text in the spelling aggregate
var termVectorFields = []string{
	mapping.DefaultSpellingField,
	mapping.DefaultSpellingField + "." + mapping.AnalyzerWhitespace,
	mapping.DefaultSpellingField + "." + mapping.AnalyzerShingle,
	mapping.DefaultSearchField,
	mapping.DefaultSearchField + "." + mapping.AnalyzerWhitespace,
}

// TermVectorDoc is the artificial document sent to the engine's
// term-vector endpoint for the given query text.
func TermVectorDoc(queryText string) map[string]interface{} {
	return map[string]interface{}{
		mapping.DefaultSpellingField: queryText,
	}
}

// ParseTermVectors folds a raw term-vector response into per-position
// statistics for the query. Positions the engine reports nothing for
// keep a zero frequency ("missing"). When useAllTokens is false, the
// multi-word shingle variants are ignored and only single-token
// positions contribute.
func ParseTermVectors(raw []byte, queryText string, useAllTokens bool) []TermStat {
	positions := len(strings.Fields(queryText))
	stats := make([]TermStat, positions)

	gjson.GetBytes(raw, "term_vectors").ForEach(func(field, fieldData gjson.Result) bool {
		analyzer := analyzerOf(field.String())
		if !useAllTokens && analyzer == mapping.AnalyzerShingle {
			return true
		}

		fieldData.Get("terms").ForEach(func(term, termData gjson.Result) bool {
			freq := termData.Get("doc_freq").Int()
			if freq == 0 {
				return true
			}
			termData.Get("tokens").ForEach(func(_, token gjson.Result) bool {
				pos := token.Get("position").Int()
				if pos < 0 || pos >= int64(positions) {
					return true
				}
				s := &stats[pos]
				if freq > s.Frequency {
					s.Frequency = freq
				}
				if !containsAnalyzer(s.Analyzers, analyzer) {
					s.Analyzers = append(s.Analyzers, analyzer)
				}
				return true
			})
			return true
		})
		return true
	})

	return stats
}

// the analyzer of a mapping property is its sub-field suffix,
// the bare property name means the standard analyzer
func analyzerOf(property string) string {
	if i := strings.LastIndex(property, "."); i >= 0 {
		return property[i+1:]
	}
	return mapping.AnalyzerStandard
}

func containsAnalyzer(list []string, analyzer string) bool {
	for _, a := range list {
		if a == analyzer {
			return true
		}
	}
	return false
}
