package handlers

import (
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/internal/metrics"
	"github.com/jfimbett/student-questions/pkg/logger"
)

// WatchHandler streams raw submissions for one session to an operator as
// they arrive. It forwards individual records only; any aggregation stays
// pull-based on the query side.
type WatchHandler struct {
	hub *WatchHub
}

func NewWatchHandler(hub *WatchHub) *WatchHandler {
	return &WatchHandler{hub: hub}
}

func (h *WatchHandler) HandleConnection(c *websocket.Conn) {
	sessionDate := c.Params("date")

	logger.Info("Watch connection established", zap.String("session_date", sessionDate))
	metrics.WatchConnections.Inc()

	ch := h.hub.Subscribe(sessionDate)
	done := make(chan struct{})

	defer func() {
		h.hub.Unsubscribe(sessionDate, ch)
		metrics.WatchConnections.Dec()
		c.Close()
		logger.Info("Watch connection closed", zap.String("session_date", sessionDate))
	}()

	// Drain the read side so we notice the peer going away.
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello := map[string]interface{}{
		"type":         "watching",
		"session_date": sessionDate,
	}
	if err := c.WriteJSON(hello); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case rec := <-ch:
			msg := map[string]interface{}{
				"type":       "response",
				"first_name": rec.FirstName,
				"last_name":  rec.LastName,
				"answer":     rec.Answer,
			}
			if rec.Group != nil {
				msg["group"] = *rec.Group
			}

			if err := c.WriteJSON(msg); err != nil {
				logger.Debug("Failed to write watch message", zap.Error(err))
				return
			}
		}
	}
}
