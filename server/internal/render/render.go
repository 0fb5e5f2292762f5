// Package render prints analytics reports for terminals.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jobpulse/jobpulse/server/internal/analytics"
)

// Section is one titled ranked list.
type Section struct {
	Title   string
	Heading string
	Entries []analytics.Entry
}

// Sections lays out a report in print order.
func Sections(r analytics.Report) []Section {
	return []Section{
		{fmt.Sprintf("Top %d Most Wanted Skills", analytics.LimitSkills), "Skill", r.TopSkills},
		{"Job Levels Distribution", "Job Level", r.JobLevels},
		{"Job Types Distribution", "Job Type", r.JobTypes},
		{fmt.Sprintf("Top %d Companies with Most Job Postings", analytics.LimitCompanies), "Company", r.TopCompanies},
		{fmt.Sprintf("Top %d Search Cities", analytics.LimitCities), "City", r.TopSearchCities},
		{fmt.Sprintf("Top %d Most Common Words in Job Summaries", analytics.LimitWords), "Word", r.TopSummaryWords},
	}
}

// Report writes every section of r as an aligned two-column table.
func Report(w io.Writer, r analytics.Report) error {
	for i, s := range Sections(r) {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeSection(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSection(w io.Writer, s Section) error {
	var sb strings.Builder
	sb.WriteString(s.Title + ":\n")

	if len(s.Entries) == 0 {
		sb.WriteString("  (no data)\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	// Column widths by display width so CJK and emoji labels line up.
	labelWidth := runewidth.StringWidth(s.Heading)
	countWidth := len("Count")
	for _, e := range s.Entries {
		if lw := runewidth.StringWidth(e.Label); lw > labelWidth {
			labelWidth = lw
		}
		if cw := len(strconv.Itoa(e.Count)); cw > countWidth {
			countWidth = cw
		}
	}

	row := func(label, count string) {
		sb.WriteString("  ")
		sb.WriteString(runewidth.FillRight(label, labelWidth))
		sb.WriteString("  ")
		sb.WriteString(strings.Repeat(" ", countWidth-len(count)))
		sb.WriteString(count)
		sb.WriteString("\n")
	}

	row(s.Heading, "Count")
	row(strings.Repeat("-", labelWidth), strings.Repeat("-", countWidth))
	for _, e := range s.Entries {
		row(e.Label, strconv.Itoa(e.Count))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
