package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/history"
	"github.com/zgojin/tempban-bot/internal/llm"
	"github.com/zgojin/tempban-bot/internal/moderation"
	"github.com/zgojin/tempban-bot/internal/tempban"
	"github.com/zgojin/tempban-bot/pkg/logger"
)

// NewChatHandler is the default handler: it screens the message, forwards it
// with recent context to the language-model backend, and replies with the
// completion. A moderation hit triggers the automated ban path instead of a
// backend call.
func NewChatHandler(
	provider llm.Provider,
	hist *history.Store,
	screen *moderation.Screen,
	gate *tempban.Service,
	autoBanMinutes int,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		msg := c.Message()
		if msg == nil || msg.Text == "" || c.Sender() == nil {
			return nil
		}

		ctx := logger.WithCorrelationID(context.Background(), "")

		if phrase, flagged := screen.Flag(msg.Text); flagged {
			log.Warn("message flagged by moderation screen",
				slog.Int64("user_id", c.Sender().ID),
				slog.String("phrase", phrase),
			)

			var minutes *int
			if autoBanMinutes > 0 {
				minutes = &autoBanMinutes
			}
			gate.AutoBan(Event(c), minutes)
			return nil
		}

		chatID := msg.Chat.ID

		turns, err := hist.Recent(ctx, chatID)
		if err != nil {
			// Degraded context is better than no reply.
			log.Warn("failed to load conversation history", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}

		userTurn := llm.Message{Role: llm.RoleUser, Content: msg.Text}
		reply, err := provider.Complete(ctx, llm.Request{Messages: append(turns, userTurn)})
		if err != nil {
			return err
		}

		if err := hist.Append(ctx, chatID, userTurn); err != nil {
			log.Warn("failed to append history turn", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}
		if err := hist.Append(ctx, chatID, llm.Message{Role: llm.RoleAssistant, Content: reply}); err != nil {
			log.Warn("failed to append history turn", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}

		return c.Send(reply)
	}
}
