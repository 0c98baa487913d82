// Package bot wires the Telegram transport to the ban core and the
// language-model pipeline.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/bot/handlers"
	errors "github.com/zgojin/tempban-bot/internal/errors"
	"github.com/zgojin/tempban-bot/internal/history"
	"github.com/zgojin/tempban-bot/internal/llm"
	"github.com/zgojin/tempban-bot/internal/middleware"
	"github.com/zgojin/tempban-bot/internal/moderation"
	"github.com/zgojin/tempban-bot/internal/repository"
	"github.com/zgojin/tempban-bot/internal/tempban"
	"github.com/zgojin/tempban-bot/pkg/config"
)

// CommandBan triggers the explicit ban flow.
const CommandBan = "/ban"

// Deps carries the collaborators the transport layer dispatches into.
type Deps struct {
	Gate       *tempban.Service
	Provider   llm.Provider
	History    *history.Store
	Screen     *moderation.Screen
	Users      repository.UserRepository
	ErrHandler *errors.Handler
}

// Bot wraps telebot.Bot with the application router.
type Bot struct {
	telebot *telebot.Bot
	router  *Router
	log     *slog.Logger
	cfg     config.Config
}

// New builds a Telegram bot instance configured according to the application
// settings.
func New(cfg config.Config, log *slog.Logger, deps Deps) (*Bot, error) {
	settings := telebot.Settings{Token: cfg.Bot.Token}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{Listen: cfg.Bot.Listen}
	} else {
		settings.Poller = &telebot.LongPoller{Timeout: cfg.Bot.Timeout}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot: tb,
		router:  NewRouter(log),
		log:     log,
		cfg:     cfg,
	}

	b.setupRouter(deps)
	tb.Handle(telebot.OnText, b.router.Route)

	return b, nil
}

// Start runs the Telegram event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the Telegram event loop.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot")
	}
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// usernameResolver resolves plain @username mentions against the seen-users
// table. Without a repository nothing resolves and such mentions are dropped.
func usernameResolver(users repository.UserRepository, log *slog.Logger) handlers.UsernameResolver {
	if users == nil {
		return nil
	}

	return func(username string) (int64, bool) {
		user, err := users.FindByUsername(context.Background(), username)
		if err != nil {
			log.Warn("failed to resolve username", slog.String("username", username), slog.Any("error", err))
			return 0, false
		}
		return user.TelegramID, true
	}
}

func (b *Bot) setupRouter(deps Deps) {
	b.router.Use(RecoveryMiddleware(b.log, deps.ErrHandler))
	b.router.Use(ErrorHandlingMiddleware(deps.ErrHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	// The admission gate runs before any handler: blocked senders stop here.
	b.router.Use(middleware.Admission(deps.Gate, b.log))
	b.router.Use(middleware.SeenUsers(deps.Users, b.log))

	b.router.RegisterCommand(CommandBan, handlers.NewBanHandler(deps.Gate, usernameResolver(deps.Users, b.log), b.log))
	b.router.SetDefault(handlers.NewChatHandler(
		deps.Provider,
		deps.History,
		deps.Screen,
		deps.Gate,
		b.cfg.Moderation.AutoBanMinutes,
		b.log,
	))
}
