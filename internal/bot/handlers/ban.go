package handlers

import (
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/tempban"
)

// NewBanHandler handles the /ban command. The target is taken from the
// replied-to message or the first user mention, with plain usernames
// resolved to numeric identifiers through resolve; an optional first
// argument overrides the default duration in minutes. Outcomes are decided
// entirely by the ban core and are not echoed back to the chat.
func NewBanHandler(gate *tempban.Service, resolve UsernameResolver, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		var minutes *int
		if args := c.Args(); len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				minutes = &v
			} else {
				log.Warn("ignoring unparseable ban duration", slog.String("arg", args[0]))
			}
		}

		gate.HandleBanRequest(EventWithResolver(c, resolve, log), minutes)
		return nil
	}
}
