package handlers

import (
	"sync"

	"github.com/jfimbett/student-questions/internal/store/models"
)

// WatchHub fans newly stored responses out to websocket watchers, grouped by
// session date. Delivery is best-effort: a watcher that cannot keep up loses
// events rather than blocking submissions.
type WatchHub struct {
	mu       sync.Mutex
	watchers map[string]map[chan *models.ResponseRecord]struct{}
}

func NewWatchHub() *WatchHub {
	return &WatchHub{
		watchers: make(map[string]map[chan *models.ResponseRecord]struct{}),
	}
}

func (h *WatchHub) Subscribe(sessionDate string) chan *models.ResponseRecord {
	ch := make(chan *models.ResponseRecord, 16)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watchers[sessionDate] == nil {
		h.watchers[sessionDate] = make(map[chan *models.ResponseRecord]struct{})
	}
	h.watchers[sessionDate][ch] = struct{}{}

	return ch
}

func (h *WatchHub) Unsubscribe(sessionDate string, ch chan *models.ResponseRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.watchers[sessionDate]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.watchers, sessionDate)
		}
	}
}

func (h *WatchHub) Publish(sessionDate string, rec *models.ResponseRecord) {
	if h == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.watchers[sessionDate] {
		select {
		case ch <- rec:
		default:
		}
	}
}
