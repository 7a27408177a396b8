// Package aggregate builds the query-time corpus from a session's records.
package aggregate

import "github.com/jfimbett/student-questions/internal/store/models"

// Filter returns the records whose group matches groupFilter, in input
// order. An empty filter matches everything. A non-empty filter is an exact,
// case-sensitive comparison; ungrouped records never match a non-empty
// filter. No deduplication, no trimming.
func Filter(records []models.ResponseRecord, groupFilter string) []models.ResponseRecord {
	if groupFilter == "" {
		return records
	}

	matched := make([]models.ResponseRecord, 0)
	for _, rec := range records {
		if rec.Group != nil && *rec.Group == groupFilter {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Corpus returns the answer texts of the matching records, in input order.
// The result being empty says nothing about whether the session itself was
// empty; callers decide what an empty corpus means.
func Corpus(records []models.ResponseRecord, groupFilter string) []string {
	matched := Filter(records, groupFilter)
	answers := make([]string, 0, len(matched))
	for _, rec := range matched {
		answers = append(answers, rec.Answer)
	}
	return answers
}
