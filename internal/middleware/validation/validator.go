package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	sqlInjectionPattern = regexp.MustCompile(`(?i)(union\s+select|insert\s+into|drop\s+table|exec\s|<script)`)
	xssPattern          = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)
)

type Config struct {
	MaxNameLength     int
	MaxAnswerLength   int
	MaxQuestionLength int
	Logger            *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxNameLength == 0 {
		cfg.MaxNameLength = 200
	}
	if cfg.MaxAnswerLength == 0 {
		cfg.MaxAnswerLength = 20000
	}
	if cfg.MaxQuestionLength == 0 {
		cfg.MaxQuestionLength = 5000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		path := c.Path()

		if strings.HasSuffix(path, "/responses") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			for _, field := range []string{"first_name", "last_name", "answer"} {
				value, ok := req[field].(string)
				if !ok || strings.TrimSpace(value) == "" {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": field + " is required and must be a string",
					})
				}
			}

			firstName, _ := req["first_name"].(string)
			lastName, _ := req["last_name"].(string)
			if len(firstName) > cfg.MaxNameLength || len(lastName) > cfg.MaxNameLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Name exceeds maximum length",
				})
			}

			answer, _ := req["answer"].(string)
			if len(answer) > cfg.MaxAnswerLength {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Answer exceeds maximum length",
				})
			}

			if date, ok := req["session_date"].(string); ok && date != "" {
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "session_date must be YYYY-MM-DD",
					})
				}
			}
		}

		if strings.HasSuffix(path, "/query") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			question, ok := req["question"].(string)
			if !ok || strings.TrimSpace(question) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "question is required and must be a string",
				})
			}

			if len(question) > cfg.MaxQuestionLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Question exceeds maximum length",
				})
			}

			if containsSQLInjection(question) || containsXSS(question) {
				cfg.Logger.Warn("Suspicious query content rejected",
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid question content",
				})
			}
		}

		return c.Next()
	}
}

func containsSQLInjection(input string) bool {
	return sqlInjectionPattern.MatchString(input)
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}
