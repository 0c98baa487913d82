package middleware

import (
	"context"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/bot/handlers"
	"github.com/zgojin/tempban-bot/internal/domain"
	"github.com/zgojin/tempban-bot/internal/repository"
)

// SeenUsers records every sender the bot interacts with, without blocking
// the update flow.
func SeenUsers(repo repository.UserRepository, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if repo != nil && c != nil && c.Sender() != nil {
				sender := c.Sender()

				go func() {
					now := time.Now().UTC()
					user := &domain.User{
						TelegramID:  sender.ID,
						Username:    sender.Username,
						FirstName:   sender.FirstName,
						LastName:    sender.LastName,
						FirstSeenAt: now,
						LastSeenAt:  now,
					}

					if err := repo.Upsert(context.Background(), user); err != nil {
						log.Warn("failed to record seen user", slog.Int64("user_id", sender.ID), slog.Any("error", err))
					}
				}()
			}

			return next(c)
		}
	}
}
