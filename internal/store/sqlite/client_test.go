package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jfimbett/student-questions/internal/store/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "responses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.InitSchema())
	return client
}

func strPtr(s string) *string { return &s }

func TestPutOverwritesSameIdentity(t *testing.T) {
	client := newTestClient(t)

	first := &models.ResponseRecord{
		FirstName: "Ana",
		LastName:  "Lee",
		Group:     strPtr("X"),
		Answer:    "first try",
	}
	require.NoError(t, client.Put("2024-01-01", first))

	second := &models.ResponseRecord{
		FirstName: "Ana",
		LastName:  "Lee",
		Group:     strPtr("Y"),
		Answer:    "second try",
	}
	require.NoError(t, client.Put("2024-01-01", second))

	records, err := client.ListSession("2024-01-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "second try", records[0].Answer)
	require.NotNil(t, records[0].Group)
	require.Equal(t, "Y", *records[0].Group)
}

func TestPartitionIsolation(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Put("2024-01-01", &models.ResponseRecord{
		FirstName: "Ana", LastName: "Lee", Answer: "day one",
	}))
	require.NoError(t, client.Put("2024-01-02", &models.ResponseRecord{
		FirstName: "Ben", LastName: "Roy", Answer: "day two",
	}))

	dayOne, err := client.ListSession("2024-01-01")
	require.NoError(t, err)
	require.Len(t, dayOne, 1)
	require.Equal(t, "day one", dayOne[0].Answer)

	dayTwo, err := client.ListSession("2024-01-02")
	require.NoError(t, err)
	require.Len(t, dayTwo, 1)
	require.Equal(t, "day two", dayTwo[0].Answer)
}

func TestListSessionEmpty(t *testing.T) {
	client := newTestClient(t)

	records, err := client.ListSession("2030-12-31")
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)

	exists, err := client.SessionExists("2030-12-31")
	require.NoError(t, err)
	require.False(t, exists)

	count, err := client.CountSession("2030-12-31")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSessionExists(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Put("2024-03-05", &models.ResponseRecord{
		FirstName: "Ana", LastName: "Lee", Answer: "here",
	}))

	exists, err := client.SessionExists("2024-03-05")
	require.NoError(t, err)
	require.True(t, exists)

	count, err := client.CountSession("2024-03-05")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGroupAbsentAndEmptyBothStoredAsAbsent(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Put("2024-01-01", &models.ResponseRecord{
		FirstName: "Ana", LastName: "Lee", Answer: "no group",
	}))
	require.NoError(t, client.Put("2024-01-01", &models.ResponseRecord{
		FirstName: "Ben", LastName: "Roy", Group: strPtr(""), Answer: "empty group",
	}))
	require.NoError(t, client.Put("2024-01-01", &models.ResponseRecord{
		FirstName: "Cleo", LastName: "Fox", Group: strPtr("X"), Answer: "grouped",
	}))

	records, err := client.ListSession("2024-01-01")
	require.NoError(t, err)
	require.Len(t, records, 3)

	byName := make(map[string]models.ResponseRecord)
	for _, rec := range records {
		byName[rec.FirstName] = rec
	}

	require.Nil(t, byName["Ana"].Group)
	require.Nil(t, byName["Ben"].Group)
	require.NotNil(t, byName["Cleo"].Group)
	require.Equal(t, "X", *byName["Cleo"].Group)
}

func TestListSessionSkipsMalformedRow(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Put("2024-01-01", &models.ResponseRecord{
		FirstName: "Ana", LastName: "Lee", Answer: "readable",
	}))

	// A corrupt legacy row: no answer at all.
	_, err := client.db.Exec(
		`INSERT INTO responses (session_date, first_name, last_name, grp, answer, created_at, updated_at)
		 VALUES (?, ?, ?, NULL, NULL, ?, ?)`,
		"2024-01-01", "Bad", "Row", time.Now().Unix(), time.Now().Unix(),
	)
	require.NoError(t, err)

	records, err := client.ListSession("2024-01-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Ana", records[0].FirstName)
}

func TestQueryHistoryNewestFirst(t *testing.T) {
	client := newTestClient(t)

	older := &models.QueryRecord{
		ID:               "q1",
		SessionDate:      "2024-01-01",
		OriginalQuestion: "What is 6x7?",
		Question:         "Did anyone get it right?",
		Response:         "Yes.",
		ResponseCount:    2,
		LatencyMS:        120,
		CreatedAt:        time.Now().Add(-time.Hour),
	}
	newer := &models.QueryRecord{
		ID:               "q2",
		SessionDate:      "2024-01-01",
		Group:            strPtr("X"),
		OriginalQuestion: "What is 6x7?",
		Question:         "Summarize group X",
		Response:         "All said 42.",
		ResponseCount:    1,
		LatencyMS:        80,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, client.InsertQueryRecord(older))
	require.NoError(t, client.InsertQueryRecord(newer))

	history, err := client.GetQueryHistory("2024-01-01", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "q2", history[0].ID)
	require.NotNil(t, history[0].Group)
	require.Equal(t, "X", *history[0].Group)
	require.Equal(t, "q1", history[1].ID)
	require.Nil(t, history[1].Group)

	limited, err := client.GetQueryHistory("2024-01-01", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	other, err := client.GetQueryHistory("2024-01-02", 10)
	require.NoError(t, err)
	require.Empty(t, other)
}
