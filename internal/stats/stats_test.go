package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeEmptyCorpus(t *testing.T) {
	cs, err := Compute(nil)
	require.NoError(t, err)
	require.Zero(t, cs.Records)
	require.Zero(t, cs.Words)
	require.Zero(t, cs.Sentences)
}

func TestComputeCountsRecordsAndSentences(t *testing.T) {
	cs, err := Compute([]string{
		"The answer is 42. I checked twice.",
		"Seven.",
	})
	require.NoError(t, err)
	require.Equal(t, 2, cs.Records)
	require.Equal(t, 3, cs.Sentences)
	require.Greater(t, cs.Words, 5)
}

func TestComputeSkipsEmptyAnswers(t *testing.T) {
	cs, err := Compute([]string{"", "One answer."})
	require.NoError(t, err)
	require.Equal(t, 2, cs.Records)
	require.Equal(t, 1, cs.Sentences)
}
