package analytics

import (
	"sort"

	"github.com/jobpulse/jobpulse/server/internal/dataset"
)

// Entry is one ranked label with its occurrence count.
type Entry struct {
	Label string
	Count int
}

// Tokenizer maps one non-null cell to the tokens it contributes.
type Tokenizer func(raw string) []string

// Aggregator counts the tokens of one column and ranks them.
type Aggregator struct {
	// Name is the report key, e.g. "top_skills".
	Name string

	// Column is the source column; an absent column yields no entries.
	Column string

	// Limit truncates the ranked list; 0 keeps every label.
	Limit int

	Tokenize Tokenizer
}

// Aggregate counts every token occurrence in the column and returns the
// entries ranked by count descending, ties broken by label ascending.
// It never modifies t.
func (a Aggregator) Aggregate(t *dataset.Table) []Entry {
	values, ok := t.Values(a.Column)
	if !ok {
		return []Entry{}
	}

	counts := make(map[string]int)
	for _, v := range values {
		for _, tok := range a.Tokenize(v) {
			counts[tok]++
		}
	}
	return Rank(counts, a.Limit)
}

// Rank converts a label→count map into a sorted, truncated list.
func Rank(counts map[string]int, limit int) []Entry {
	out := make([]Entry, 0, len(counts))
	for label, n := range counts {
		out = append(out, Entry{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
