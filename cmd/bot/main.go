package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zgojin/tempban-bot/internal/bot"
	"github.com/zgojin/tempban-bot/internal/database"
	errs "github.com/zgojin/tempban-bot/internal/errors"
	"github.com/zgojin/tempban-bot/internal/health"
	"github.com/zgojin/tempban-bot/internal/history"
	"github.com/zgojin/tempban-bot/internal/lifecycle"
	"github.com/zgojin/tempban-bot/internal/llm"
	"github.com/zgojin/tempban-bot/internal/moderation"
	"github.com/zgojin/tempban-bot/internal/repository"
	"github.com/zgojin/tempban-bot/internal/tempban"
	"github.com/zgojin/tempban-bot/pkg/config"
	"github.com/zgojin/tempban-bot/pkg/graceful"
	"github.com/zgojin/tempban-bot/pkg/logger"
	redispkg "github.com/zgojin/tempban-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	log.Info("starting tempban bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("ops_addr", cfg.Server.Addr),
	)

	store := config.NewStore(v, log)
	registry := tempban.NewRegistry()
	gate := tempban.NewService(registry, cfg.Moderation.Administrators, cfg.Moderation.DefaultBanMinutes, store, log)
	store.WatchAdministrators(gate.SetAdministrators)

	errHandler := errs.NewHandler(log, cfg.Sentry.Enabled)
	checker := health.NewChecker(log)
	shutdown := lifecycle.NewShutdown(log)

	var users repository.UserRepository
	if cfg.Database.Enabled {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping database", slog.Any("error", err))
			os.Exit(1)
		}
		if err := database.NewMigrator(db, log).ApplyDir(ctx, "migrations"); err != nil {
			log.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}

		users = repository.NewUserRepository(db, log)
		checker.AddCheck("postgres", health.NewDBChecker(db))
		shutdown.Register("postgres", func(context.Context) error { return db.Close() })
	}

	var hist *history.Store
	if cfg.Redis.Enabled {
		rdb, err := redispkg.New(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}

		hist = history.NewStore(rdb.Client, cfg.LLM.MaxHistory, cfg.Redis.HistoryTTL)
		checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
		shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
	}

	b, err := bot.New(*cfg, log, bot.Deps{
		Gate:       gate,
		Provider:   llm.NewClient(cfg.LLM, log),
		History:    hist,
		Screen:     moderation.NewScreen(cfg.Moderation.BlockedPhrases, log),
		Users:      users,
		ErrHandler: errHandler,
	})
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	shutdown.Register("telegram", func(context.Context) error {
		b.Stop()
		return nil
	})

	go b.Start()

	srv := graceful.NewServer(log, &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           logger.Middleware(opsMux(checker)),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("ops server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("tempban bot stopped")
}

func opsMux(checker *health.Checker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		for _, status := range results {
			if status != "OK" {
				w.WriteHeader(http.StatusServiceUnavailable)
				break
			}
		}
		_ = json.NewEncoder(w).Encode(results)
	})

	return mux
}
