package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jfimbett/student-questions/internal/store/models"
)

func strPtr(s string) *string { return &s }

func sampleRecords() []models.ResponseRecord {
	return []models.ResponseRecord{
		{FirstName: "Ana", LastName: "Lee", Group: strPtr("A"), Answer: "alpha"},
		{FirstName: "Ben", LastName: "Roy", Group: strPtr("B"), Answer: "beta"},
		{FirstName: "Cleo", LastName: "Fox", Answer: "ungrouped"},
		{FirstName: "Dan", LastName: "Kim", Group: strPtr("A"), Answer: "alpha two"},
	}
}

func TestCorpusNoFilterReturnsEverything(t *testing.T) {
	records := sampleRecords()

	corpus := Corpus(records, "")
	require.Equal(t, []string{"alpha", "beta", "ungrouped", "alpha two"}, corpus)
}

func TestCorpusFilterExactMatchOnly(t *testing.T) {
	records := sampleRecords()

	corpus := Corpus(records, "A")
	require.Equal(t, []string{"alpha", "alpha two"}, corpus)
}

func TestCorpusFilterIsCaseSensitive(t *testing.T) {
	records := sampleRecords()

	require.Empty(t, Corpus(records, "a"))
}

func TestCorpusFilterExcludesUngrouped(t *testing.T) {
	records := []models.ResponseRecord{
		{FirstName: "Cleo", LastName: "Fox", Answer: "no group"},
	}

	require.Empty(t, Corpus(records, "A"))
	require.Equal(t, []string{"no group"}, Corpus(records, ""))
}

func TestCorpusKeepsEmptyAnswers(t *testing.T) {
	records := []models.ResponseRecord{
		{FirstName: "Ana", LastName: "Lee", Group: strPtr("A"), Answer: ""},
		{FirstName: "Ben", LastName: "Roy", Group: strPtr("A"), Answer: "beta"},
	}

	require.Equal(t, []string{"", "beta"}, Corpus(records, "A"))
}

func TestCorpusEmptyInput(t *testing.T) {
	require.Empty(t, Corpus(nil, ""))
	require.Empty(t, Corpus(nil, "A"))
}

func TestCorpusScenario(t *testing.T) {
	records := []models.ResponseRecord{
		{FirstName: "Ana", LastName: "Lee", Group: strPtr("X"), Answer: "42"},
		{FirstName: "Ben", LastName: "Roy", Group: strPtr("Y"), Answer: "7"},
	}

	require.Equal(t, []string{"42"}, Corpus(records, "X"))
	require.Equal(t, []string{"42", "7"}, Corpus(records, ""))
	require.Empty(t, Corpus(records, "Z"))
}

func TestFilterPreservesRecords(t *testing.T) {
	records := sampleRecords()

	matched := Filter(records, "B")
	require.Len(t, matched, 1)
	require.Equal(t, "Ben", matched[0].FirstName)
	require.Equal(t, "beta", matched[0].Answer)
}
