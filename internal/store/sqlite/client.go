package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/internal/metrics"
	"github.com/jfimbett/student-questions/internal/store/models"
	"github.com/jfimbett/student-questions/pkg/logger"
)

// Client is the response store. Each session date is a partition of the
// responses table; one row per (session_date, first_name, last_name).
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("Response store initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		session_date TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		grp TEXT,
		answer TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (session_date, first_name, last_name)
	);
	CREATE INDEX IF NOT EXISTS idx_responses_session ON responses(session_date);
	CREATE INDEX IF NOT EXISTS idx_responses_group ON responses(session_date, grp);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		session_date TEXT NOT NULL,
		grp TEXT,
		original_question TEXT NOT NULL,
		question TEXT NOT NULL,
		response TEXT,
		response_count INTEGER,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_session ON query_history(session_date);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Response store schema initialized")
	return nil
}

// Put writes or overwrites the record at its identity key. The upsert is a
// single statement, so concurrent writes to the same key leave one of the
// complete records, never an interleaving. An empty-string group is stored
// as NULL: absent and empty are the same thing at the write boundary.
func (c *Client) Put(sessionDate string, rec *models.ResponseRecord) error {
	query := `
		INSERT INTO responses (session_date, first_name, last_name, grp, answer, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_date, first_name, last_name) DO UPDATE SET
			grp = excluded.grp,
			answer = excluded.answer,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	var group sql.NullString
	if rec.Group != nil && *rec.Group != "" {
		group = sql.NullString{String: *rec.Group, Valid: true}
	}

	_, err := c.db.Exec(
		query,
		sessionDate,
		rec.FirstName,
		rec.LastName,
		group,
		rec.Answer,
		now.Unix(),
		now.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to put response: %w", err)
	}

	logger.Debug("Response stored",
		zap.String("session_date", sessionDate),
		zap.String("first_name", rec.FirstName),
		zap.String("last_name", rec.LastName),
	)
	return nil
}

// ListSession returns every record in the session partition. A session with
// no submissions yields an empty slice, not an error. A row that cannot be
// read is skipped, logged, and counted; one bad record never denies access
// to the rest of the session. Listing order is not part of the contract.
func (c *Client) ListSession(sessionDate string) ([]models.ResponseRecord, error) {
	query := `
		SELECT first_name, last_name, grp, answer, created_at, updated_at
		FROM responses
		WHERE session_date = ?
		ORDER BY first_name, last_name
	`

	rows, err := c.db.Query(query, sessionDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list session: %w", err)
	}
	defer rows.Close()

	records := make([]models.ResponseRecord, 0)
	for rows.Next() {
		var firstName, lastName, answer sql.NullString
		var group sql.NullString
		var createdAt, updatedAt int64

		err := rows.Scan(&firstName, &lastName, &group, &answer, &createdAt, &updatedAt)
		if err != nil || !firstName.Valid || !lastName.Valid || !answer.Valid {
			metrics.MalformedRecordsSkipped.Inc()
			logger.Warn("Skipping malformed response record",
				zap.String("session_date", sessionDate),
				zap.Error(err),
			)
			continue
		}

		rec := models.ResponseRecord{
			SessionDate: sessionDate,
			FirstName:   firstName.String,
			LastName:    lastName.String,
			Answer:      answer.String,
			CreatedAt:   time.Unix(createdAt, 0),
			UpdatedAt:   time.Unix(updatedAt, 0),
		}
		if group.Valid {
			g := group.String
			rec.Group = &g
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return records, nil
}

// SessionExists distinguishes "no session" from "session with zero
// readable records" for callers that care about the difference.
func (c *Client) SessionExists(sessionDate string) (bool, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(1) FROM responses WHERE session_date = ?`, sessionDate).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return count > 0, nil
}

func (c *Client) CountSession(sessionDate string) (int, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(1) FROM responses WHERE session_date = ?`, sessionDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count session: %w", err)
	}
	return count, nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, session_date, grp, original_question, question, response, response_count, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var group sql.NullString
	if record.Group != nil {
		group = sql.NullString{String: *record.Group, Valid: true}
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.SessionDate,
		group,
		record.OriginalQuestion,
		record.Question,
		record.Response,
		record.ResponseCount,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	logger.Info("Query recorded",
		zap.String("query_id", record.ID),
		zap.String("session_date", record.SessionDate),
		zap.Int("response_count", record.ResponseCount),
	)

	return nil
}

func (c *Client) GetQueryHistory(sessionDate string, limit int) ([]models.QueryRecord, error) {
	query := `
		SELECT id, grp, original_question, question, response, response_count, latency_ms, created_at
		FROM query_history
		WHERE session_date = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, sessionDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get query history: %w", err)
	}
	defer rows.Close()

	records := make([]models.QueryRecord, 0)
	for rows.Next() {
		var r models.QueryRecord
		var group sql.NullString
		var createdAt int64

		err := rows.Scan(&r.ID, &group, &r.OriginalQuestion, &r.Question, &r.Response, &r.ResponseCount, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.SessionDate = sessionDate
		if group.Valid {
			g := group.String
			r.Group = &g
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return records, nil
}
