package analytics

import (
	"fmt"

	"github.com/jobpulse/jobpulse/server/internal/dataset"
)

// Report holds the six ranked lists computed from one table.
type Report struct {
	TopSkills       []Entry
	JobLevels       []Entry
	JobTypes        []Entry
	TopCompanies    []Entry
	TopSearchCities []Entry
	TopSummaryWords []Entry
}

// Build runs every aggregator against t. A nil table yields an empty report.
func Build(t *dataset.Table) Report {
	if t == nil {
		t = dataset.FromRecords(nil, nil)
	}
	return Report{
		TopSkills:       Skills.Aggregate(t),
		JobLevels:       Levels.Aggregate(t),
		JobTypes:        Types.Aggregate(t),
		TopCompanies:    Companies.Aggregate(t),
		TopSearchCities: Cities.Aggregate(t),
		TopSummaryWords: Words.Aggregate(t),
	}
}

// TableSource supplies the table currently being served.
type TableSource interface {
	Table() *dataset.Table
}

// Engine computes reports against whatever table its source currently holds.
// Reports are computed fresh on every call; Engine keeps no state of its own
// and is safe for concurrent use.
type Engine struct {
	source TableSource
}

// NewEngine returns an Engine reading from source.
func NewEngine(source TableSource) *Engine {
	return &Engine{source: source}
}

// Report builds a report from the current table. The table pointer is read
// once, so a concurrent reload cannot mix two tables in one report.
// It returns dataset.ErrDataUnavailable when no table is loaded.
func (e *Engine) Report() (Report, *dataset.Table, error) {
	t := e.source.Table()
	if t == nil {
		return Report{}, nil, fmt.Errorf("analytics: no table loaded: %w", dataset.ErrDataUnavailable)
	}
	return Build(t), t, nil
}

// Table returns the table the next report would be built from, or nil.
func (e *Engine) Table() *dataset.Table {
	return e.source.Table()
}
