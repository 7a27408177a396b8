// Package redis keeps best-effort operational counters per session. It never
// caches summarizer output: every query must reach the external summarizer.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/pkg/logger"
	"github.com/jfimbett/student-questions/pkg/utils"
)

// Client is nil-safe: a nil receiver turns every operation into a no-op so
// the service runs unchanged without redis.
type Client struct {
	client *redis.Client
}

type SessionCounters struct {
	Submissions int64 `json:"submissions"`
	Respondents int64 `json:"respondents"`
	Queries     int64 `json:"queries"`
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis stats client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) RecordSubmission(ctx context.Context, sessionDate, firstName, lastName string) error {
	if c == nil {
		return nil
	}

	identity := utils.HashString(firstName + "\x00" + lastName)

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, fmt.Sprintf("session:%s:submissions", sessionDate))
	pipe.SAdd(ctx, fmt.Sprintf("session:%s:respondents", sessionDate), identity)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

func (c *Client) RecordQuery(ctx context.Context, sessionDate string) error {
	if c == nil {
		return nil
	}

	err := c.client.Incr(ctx, fmt.Sprintf("session:%s:queries", sessionDate)).Err()
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

func (c *Client) GetSessionCounters(ctx context.Context, sessionDate string) (*SessionCounters, error) {
	if c == nil {
		return nil, nil
	}

	counters := &SessionCounters{}

	submissions, err := c.client.Get(ctx, fmt.Sprintf("session:%s:submissions", sessionDate)).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get submission count: %w", err)
	}
	counters.Submissions = submissions

	respondents, err := c.client.SCard(ctx, fmt.Sprintf("session:%s:respondents", sessionDate)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get respondent count: %w", err)
	}
	counters.Respondents = respondents

	queries, err := c.client.Get(ctx, fmt.Sprintf("session:%s:queries", sessionDate)).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get query count: %w", err)
	}
	counters.Queries = queries

	return counters, nil
}
