package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	cache "github.com/jfimbett/student-questions/internal/cache/redis"
	"github.com/jfimbett/student-questions/internal/llm"
	"github.com/jfimbett/student-questions/internal/query"
	"github.com/jfimbett/student-questions/pkg/logger"
)

type QueryHandler struct {
	engine  *query.Engine
	counter *cache.Client
}

func NewQueryHandler(engine *query.Engine, counter *cache.Client) *QueryHandler {
	return &QueryHandler{
		engine:  engine,
		counter: counter,
	}
}

// HandleQuery runs the summarization pipeline for one session. The failure
// taxonomy is visible in the status codes: an empty corpus is a 404 with a
// specific message, a summarizer outage is a 502 the operator can retry.
func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	sessionDate := c.Params("date")

	var req struct {
		OriginalQuestion string `json:"original_question"`
		Question         string `json:"question"`
		Group            string `json:"group"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question is required",
		})
	}

	queryReq := query.QueryRequest{
		SessionDate:      sessionDate,
		Group:            req.Group,
		OriginalQuestion: req.OriginalQuestion,
		Question:         req.Question,
	}

	response, err := h.engine.ProcessQuery(c.Context(), queryReq)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrNoResponses):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No responses found for this session and group",
			})
		case errors.Is(err, llm.ErrSummarizerUnavailable):
			logger.Error("Summarizer unavailable", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Summarizer unavailable, please retry",
			})
		case errors.Is(err, llm.ErrSummarizer):
			logger.Error("Summarizer failed", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Summarizer request failed",
			})
		default:
			logger.Error("Failed to process query", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to process query",
			})
		}
	}

	if err := h.counter.RecordQuery(c.Context(), sessionDate); err != nil {
		logger.Warn("Failed to record query counter", zap.Error(err))
	}

	resp := fiber.Map{
		"id":                response.ID,
		"session_date":      response.SessionDate,
		"original_question": response.OriginalQuestion,
		"question":          response.Question,
		"answer":            response.Answer,
		"response_count":    response.ResponseCount,
		"latency_ms":        response.LatencyMS,
	}
	if response.Group != "" {
		resp["group"] = response.Group
	}

	return c.JSON(resp)
}
