package analytics

import "github.com/jobpulse/jobpulse/server/internal/normalize"

// Source column names in the postings file. "job level" carries a literal
// space; the other multi-word columns use underscores.
const (
	ColumnSkills  = "job_skills"
	ColumnLevel   = "job level"
	ColumnType    = "job_type"
	ColumnCompany = "company"
	ColumnCity    = "search_city"
	ColumnSummary = "job_summary"
)

// Ranked list lengths. Job levels and types are reported in full.
const (
	LimitSkills    = 20
	LimitCompanies = 10
	LimitCities    = 10
	LimitWords     = 20
)

func scalar(raw string) []string {
	if tok, ok := normalize.Scalar(raw); ok {
		return []string{tok}
	}
	return nil
}

func summaryWords(raw string) []string {
	return normalize.Text(raw, normalize.Stopwords, normalize.SummaryMinLength)
}

var (
	Skills    = Aggregator{Name: "top_skills", Column: ColumnSkills, Limit: LimitSkills, Tokenize: normalize.Multi}
	Levels    = Aggregator{Name: "job_levels", Column: ColumnLevel, Tokenize: scalar}
	Types     = Aggregator{Name: "job_types", Column: ColumnType, Tokenize: scalar}
	Companies = Aggregator{Name: "top_companies", Column: ColumnCompany, Limit: LimitCompanies, Tokenize: scalar}
	Cities    = Aggregator{Name: "top_search_cities", Column: ColumnCity, Limit: LimitCities, Tokenize: scalar}
	Words     = Aggregator{Name: "top_summary_words", Column: ColumnSummary, Limit: LimitWords, Tokenize: summaryWords}
)

// All lists the aggregators in report order.
var All = []Aggregator{Skills, Levels, Types, Companies, Cities, Words}
