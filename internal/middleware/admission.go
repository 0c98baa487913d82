// Package middleware provides the router middleware chain: the admission
// gate, metrics, and seen-user bookkeeping.
package middleware

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/bot/handlers"
	"github.com/zgojin/tempban-bot/internal/tempban"
	"github.com/zgojin/tempban-bot/pkg/metrics"
)

// Admission is the hard gate in front of every handler: senders currently
// blocked by the ban registry are dropped with no reply and no further
// processing. Administrators always pass.
func Admission(gate *tempban.Service, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if gate == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			allowed := gate.Admit(handlers.Event(c))
			metrics.RecordAdmission(allowed)
			if !allowed {
				return nil
			}

			return next(c)
		}
	}
}
