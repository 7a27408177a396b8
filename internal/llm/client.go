package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/internal/metrics"
	"github.com/jfimbett/student-questions/pkg/circuitbreaker"
	"github.com/jfimbett/student-questions/pkg/logger"
)

const systemPrompt = `You are a teaching assistant. You will be shown a question that was posed to a class, the free-text answers the students gave, and a follow-up question from the instructor about those answers. Answer the follow-up question based only on the student responses.`

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	client := openai.NewClient(apiKey)

	cb := circuitbreaker.NewCircuitBreaker("summarizer", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	if timeoutSec == 0 {
		timeoutSec = 30
	}

	logger.Info("Summarizer client initialized",
		zap.String("model", model),
		zap.Int("timeout_sec", timeoutSec),
	)

	return &Client{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
	}
}

// SummarizeResponses asks the model the followup question over the joined
// response corpus. Exactly one completion attempt per call; a failed call is
// surfaced to the operator, never retried here. The context deadline bounds
// how long the external call may block.
func (c *Client) SummarizeResponses(ctx context.Context, originalQuestion, corpus, followup string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(`My students have answered the following question: %s

Here are the responses:

%s

Based on the responses answer this:

%s`, originalQuestion, corpus, followup)

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userPrompt,
		},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(
			ctx,
			openai.ChatCompletionRequest{
				Model:       c.model,
				Messages:    messages,
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			},
		)

		if err != nil {
			return fmt.Errorf("failed to create completion: %w", err)
		}

		metrics.SummarizerTokensUsed.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.SummarizerTokensUsed.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))

		logger.Debug("Summarization generated",
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)

		content = resp.Choices[0].Message.Content
		return nil
	})

	if err != nil {
		return "", classify(err)
	}

	return content, nil
}
