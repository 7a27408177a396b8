package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jfimbett/student-questions/internal/store/models"
)

func TestHubDeliversToSessionWatchers(t *testing.T) {
	hub := NewWatchHub()

	ch := hub.Subscribe("2024-01-01")
	defer hub.Unsubscribe("2024-01-01", ch)

	other := hub.Subscribe("2024-01-02")
	defer hub.Unsubscribe("2024-01-02", other)

	rec := &models.ResponseRecord{FirstName: "Ana", LastName: "Lee", Answer: "42"}
	hub.Publish("2024-01-01", rec)

	select {
	case got := <-ch:
		require.Equal(t, "Ana", got.FirstName)
	default:
		t.Fatal("expected a delivered record")
	}

	select {
	case <-other:
		t.Fatal("watcher of another session should not receive the record")
	default:
	}
}

func TestHubPublishDoesNotBlockOnSlowWatcher(t *testing.T) {
	hub := NewWatchHub()

	ch := hub.Subscribe("2024-01-01")
	defer hub.Unsubscribe("2024-01-01", ch)

	rec := &models.ResponseRecord{FirstName: "Ana", LastName: "Lee", Answer: "42"}
	// Overfill the buffer; extra events are dropped, not blocked on.
	for i := 0; i < 100; i++ {
		hub.Publish("2024-01-01", rec)
	}
}

func TestHubPublishWithoutWatchers(t *testing.T) {
	hub := NewWatchHub()
	hub.Publish("2024-01-01", &models.ResponseRecord{FirstName: "Ana"})
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewWatchHub()

	ch := hub.Subscribe("2024-01-01")
	hub.Unsubscribe("2024-01-01", ch)

	hub.Publish("2024-01-01", &models.ResponseRecord{FirstName: "Ana"})

	select {
	case <-ch:
		t.Fatal("unsubscribed watcher should not receive records")
	default:
	}
}
