// Package analytics ranks the job-postings table into frequency summaries.
//
// Six Aggregators share one algorithm: read the column's non-null values,
// normalize them into tokens, count each occurrence, sort by count
// descending then label ascending, and truncate to the aggregator's limit:
//
//	top_skills         job_skills   comma list   20
//	job_levels         job level    scalar       all
//	job_types          job_type     scalar       all
//	top_companies      company      scalar       10
//	top_search_cities  search_city  scalar       10
//	top_summary_words  job_summary  free text    20
//
// A column missing from the table yields an empty list. Build runs all six
// against a table; Engine runs them against the table held by a Store.
package analytics
