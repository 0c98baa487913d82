package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/bot/handlers"
	"github.com/zgojin/tempban-bot/pkg/metrics"
)

// Metrics measures execution time and status for update handlers.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordUpdate(handlerName(c), status, time.Since(start))

		return err
	}
}

func handlerName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		if idx := strings.IndexAny(text, " @"); idx > 0 {
			return text[:idx]
		}
		return text
	}

	return "chat"
}
