package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jfimbett/student-questions/pkg/circuitbreaker"
)

var (
	// ErrSummarizerUnavailable covers timeouts, connection failures and an
	// open circuit breaker. The operator can simply re-submit the query.
	ErrSummarizerUnavailable = errors.New("summarizer unavailable")

	// ErrSummarizer covers every other summarizer failure (bad request,
	// quota, upstream 5xx body).
	ErrSummarizer = errors.New("summarizer request failed")
)

// classify maps a raw transport error onto the summarizer error taxonomy so
// callers can branch with errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, circuitbreaker.ErrCircuitOpen) ||
		errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrSummarizerUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrSummarizerUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "temporarily"),
		strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrSummarizerUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrSummarizer, err)
	}
}
