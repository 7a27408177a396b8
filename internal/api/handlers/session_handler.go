package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	cache "github.com/jfimbett/student-questions/internal/cache/redis"
	"github.com/jfimbett/student-questions/internal/store/sqlite"
	"github.com/jfimbett/student-questions/pkg/logger"
)

type SessionHandler struct {
	store   *sqlite.Client
	counter *cache.Client
}

func NewSessionHandler(store *sqlite.Client, counter *cache.Client) *SessionHandler {
	return &SessionHandler{
		store:   store,
		counter: counter,
	}
}

// GetSession is the existence probe: it tells "no session" apart from
// "session with zero responses" for callers that want to show the
// difference. Both are HTTP 200.
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionDate := c.Params("date")

	exists, err := h.store.SessionExists(sessionDate)
	if err != nil {
		logger.Error("Failed to check session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check session",
		})
	}

	count, err := h.store.CountSession(sessionDate)
	if err != nil {
		logger.Error("Failed to count session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check session",
		})
	}

	resp := fiber.Map{
		"session_date": sessionDate,
		"exists":       exists,
		"responses":    count,
	}

	if counters, err := h.counter.GetSessionCounters(c.Context(), sessionDate); err != nil {
		logger.Warn("Failed to read session counters", zap.Error(err))
	} else if counters != nil {
		resp["counters"] = counters
	}

	return c.JSON(resp)
}

func (h *SessionHandler) GetQueryHistory(c *fiber.Ctx) error {
	sessionDate := c.Params("date")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be an integer between 1 and 200",
			})
		}
		limit = parsed
	}

	records, err := h.store.GetQueryHistory(sessionDate, limit)
	if err != nil {
		logger.Error("Failed to get query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get query history",
		})
	}

	items := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		item := fiber.Map{
			"id":                r.ID,
			"original_question": r.OriginalQuestion,
			"question":          r.Question,
			"response":          r.Response,
			"response_count":    r.ResponseCount,
			"latency_ms":        r.LatencyMS,
			"created_at":        r.CreatedAt.Unix(),
		}
		if r.Group != nil {
			item["group"] = *r.Group
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{
		"session_date": sessionDate,
		"history":      items,
	})
}
