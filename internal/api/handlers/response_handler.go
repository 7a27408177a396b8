package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/internal/aggregate"
	cache "github.com/jfimbett/student-questions/internal/cache/redis"
	"github.com/jfimbett/student-questions/internal/metrics"
	"github.com/jfimbett/student-questions/internal/stats"
	"github.com/jfimbett/student-questions/internal/store/models"
	"github.com/jfimbett/student-questions/internal/store/sqlite"
	"github.com/jfimbett/student-questions/pkg/logger"
)

type ResponseHandler struct {
	store   *sqlite.Client
	counter *cache.Client
	hub     *WatchHub
}

func NewResponseHandler(store *sqlite.Client, counter *cache.Client, hub *WatchHub) *ResponseHandler {
	return &ResponseHandler{
		store:   store,
		counter: counter,
		hub:     hub,
	}
}

// SubmitResponse stores one respondent answer. A resubmission under the same
// (session_date, first_name, last_name) silently overwrites the previous
// answer.
func (h *ResponseHandler) SubmitResponse(c *fiber.Ctx) error {
	var req struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Group       string `json:"group"`
		Answer      string `json:"answer"`
		SessionDate string `json:"session_date"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sessionDate := req.SessionDate
	if sessionDate == "" {
		sessionDate = time.Now().Format("2006-01-02")
	}

	rec := &models.ResponseRecord{
		SessionDate: sessionDate,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Answer:      req.Answer,
	}
	if req.Group != "" {
		g := req.Group
		rec.Group = &g
	}

	if err := h.store.Put(sessionDate, rec); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to store response", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store response",
		})
	}

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()

	if err := h.counter.RecordSubmission(c.Context(), sessionDate, req.FirstName, req.LastName); err != nil {
		logger.Warn("Failed to record submission counter", zap.Error(err))
	}

	h.hub.Publish(sessionDate, rec)

	resp := fiber.Map{
		"session_date": sessionDate,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
	}
	if rec.Group != nil {
		resp["group"] = *rec.Group
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListResponses returns the {group, answer} pairs of a session, optionally
// filtered by group, plus corpus statistics. An unknown session is an empty
// list, not an error.
func (h *ResponseHandler) ListResponses(c *fiber.Ctx) error {
	sessionDate := c.Params("date")
	groupFilter := c.Query("group")

	records, err := h.store.ListSession(sessionDate)
	if err != nil {
		logger.Error("Failed to list session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list responses",
		})
	}

	matched := aggregate.Filter(records, groupFilter)

	items := make([]fiber.Map, 0, len(matched))
	answers := make([]string, 0, len(matched))
	for _, rec := range matched {
		item := fiber.Map{
			"answer": rec.Answer,
		}
		if rec.Group != nil {
			item["group"] = *rec.Group
		} else {
			item["group"] = nil
		}
		items = append(items, item)
		answers = append(answers, rec.Answer)
	}

	corpusStats, err := stats.Compute(answers)
	if err != nil {
		logger.Warn("Failed to compute corpus stats", zap.Error(err))
	}

	metrics.ListingsTotal.Inc()

	resp := fiber.Map{
		"session_date": sessionDate,
		"count":        len(items),
		"responses":    items,
		"stats":        corpusStats,
	}
	if groupFilter != "" {
		resp["group"] = groupFilter
	}

	return c.JSON(resp)
}
