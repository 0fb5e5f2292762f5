package api

import "github.com/jobpulse/jobpulse/server/internal/analytics"

// AnalyticsResponse is the payload for GET /api/analytics. Key names are part
// of the client contract.
type AnalyticsResponse struct {
	TopSkills       []SkillCount   `json:"top_skills"`
	JobLevels       []LevelCount   `json:"job_levels"`
	JobTypes        []JobTypeCount `json:"job_types"`
	TopCompanies    []CompanyCount `json:"top_companies"`
	TopSearchCities []CityCount    `json:"top_search_cities"`
	TopSummaryWords []WordCount    `json:"top_summary_words"`
}

// SkillCount is one entry of top_skills.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// LevelCount is one entry of job_levels.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// JobTypeCount is one entry of job_types.
type JobTypeCount struct {
	JobType string `json:"job_type"`
	Count   int    `json:"count"`
}

// CompanyCount is one entry of top_companies.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// CityCount is one entry of top_search_cities.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// WordCount is one entry of top_summary_words.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// HealthResponse is the payload for GET /api/health.
type HealthResponse struct {
	Status      string   `json:"status"` // "ok" | "unavailable"
	Source      string   `json:"source,omitempty"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	LoadedAt    string   `json:"loaded_at,omitempty"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// NewAnalyticsResponse maps a report onto the wire shape. Every list is
// non-nil so empty results encode as [] rather than null.
func NewAnalyticsResponse(r analytics.Report) AnalyticsResponse {
	return AnalyticsResponse{
		TopSkills: convert(r.TopSkills, func(e analytics.Entry) SkillCount {
			return SkillCount{Skill: e.Label, Count: e.Count}
		}),
		JobLevels: convert(r.JobLevels, func(e analytics.Entry) LevelCount {
			return LevelCount{Level: e.Label, Count: e.Count}
		}),
		JobTypes: convert(r.JobTypes, func(e analytics.Entry) JobTypeCount {
			return JobTypeCount{JobType: e.Label, Count: e.Count}
		}),
		TopCompanies: convert(r.TopCompanies, func(e analytics.Entry) CompanyCount {
			return CompanyCount{Company: e.Label, Count: e.Count}
		}),
		TopSearchCities: convert(r.TopSearchCities, func(e analytics.Entry) CityCount {
			return CityCount{City: e.Label, Count: e.Count}
		}),
		TopSummaryWords: convert(r.TopSummaryWords, func(e analytics.Entry) WordCount {
			return WordCount{Word: e.Label, Count: e.Count}
		}),
	}
}

func convert[T any](entries []analytics.Entry, f func(analytics.Entry) T) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, f(e))
	}
	return out
}
