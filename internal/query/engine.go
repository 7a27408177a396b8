package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/internal/aggregate"
	"github.com/jfimbett/student-questions/internal/metrics"
	"github.com/jfimbett/student-questions/internal/store/models"
	"github.com/jfimbett/student-questions/pkg/logger"
)

// ErrNoResponses means the session/group combination yielded an empty
// corpus. It is a distinct outcome from a summarizer failure: the external
// call was never made.
var ErrNoResponses = errors.New("no responses found")

// corpusDelimiter joins answer texts into the summarization payload. The
// delimiter is stable and documented; the concatenation order is whatever
// the store listed and is not part of the contract.
const corpusDelimiter = " "

type Store interface {
	ListSession(sessionDate string) ([]models.ResponseRecord, error)
	InsertQueryRecord(record *models.QueryRecord) error
}

type Summarizer interface {
	SummarizeResponses(ctx context.Context, originalQuestion, corpus, followup string) (string, error)
}

// Engine runs one summarization query end to end. Each call is independent
// and stateless; nothing is cached between queries.
type Engine struct {
	store      Store
	summarizer Summarizer
}

type QueryRequest struct {
	SessionDate      string
	Group            string
	OriginalQuestion string
	Question         string
}

type QueryResponse struct {
	ID               string
	SessionDate      string
	Group            string
	OriginalQuestion string
	Question         string
	Answer           string
	ResponseCount    int
	LatencyMS        int
}

func NewEngine(store Store, summarizer Summarizer) *Engine {
	return &Engine{
		store:      store,
		summarizer: summarizer,
	}
}

func (e *Engine) ProcessQuery(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	startTime := time.Now()
	queryID := uuid.New().String()

	logger.Info("Processing summarization query",
		zap.String("query_id", queryID),
		zap.String("session_date", req.SessionDate),
		zap.String("group", req.Group),
	)

	records, err := e.store.ListSession(req.SessionDate)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to list session: %w", err)
	}

	corpus := aggregate.Corpus(records, req.Group)
	if len(corpus) == 0 {
		metrics.QueryTotal.WithLabelValues("no_responses").Inc()
		logger.Info("Query found no responses",
			zap.String("query_id", queryID),
			zap.String("session_date", req.SessionDate),
			zap.String("group", req.Group),
		)
		return nil, ErrNoResponses
	}

	joined := strings.Join(corpus, corpusDelimiter)

	answer, err := e.summarizer.SummarizeResponses(ctx, req.OriginalQuestion, joined, req.Question)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("summarizer_error").Inc()
		return nil, err
	}

	latency := int(time.Since(startTime).Milliseconds())

	record := &models.QueryRecord{
		ID:               queryID,
		SessionDate:      req.SessionDate,
		OriginalQuestion: req.OriginalQuestion,
		Question:         req.Question,
		Response:         answer,
		ResponseCount:    len(corpus),
		LatencyMS:        latency,
		CreatedAt:        time.Now(),
	}
	if req.Group != "" {
		g := req.Group
		record.Group = &g
	}

	// The answer is already in hand; a failed history write is logged, not
	// surfaced.
	if err := e.store.InsertQueryRecord(record); err != nil {
		logger.Warn("Failed to record query", zap.String("query_id", queryID), zap.Error(err))
	}

	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.QueryDuration.Observe(time.Since(startTime).Seconds())

	logger.Info("Query processed",
		zap.String("query_id", queryID),
		zap.Int("response_count", len(corpus)),
		zap.Int("latency_ms", latency),
	)

	return &QueryResponse{
		ID:               queryID,
		SessionDate:      req.SessionDate,
		Group:            req.Group,
		OriginalQuestion: req.OriginalQuestion,
		Question:         req.Question,
		Answer:           answer,
		ResponseCount:    len(corpus),
		LatencyMS:        latency,
	}, nil
}
