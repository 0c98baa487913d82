// Package repository persists seen-user records in PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zgojin/tempban-bot/internal/domain"
)

// UserRepository defines persistence operations for seen users.
type UserRepository interface {
	FindByTelegramID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// FindByTelegramID retrieves a user record by Telegram identifier.
func (r *userRepository) FindByTelegramID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
		SELECT id, telegram_id, username, first_name, last_name, first_seen_at, last_seen_at
		FROM users
		WHERE telegram_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.FirstSeenAt,
		&user.LastSeenAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch user", slog.Int64("telegram_id", id), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select user by telegram id: %w", err)
	}

	return &user, nil
}

// FindByUsername retrieves the most recently seen user record carrying the
// given username. Usernames are reassignable on Telegram, so the newest
// sighting wins.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
		SELECT id, telegram_id, username, first_name, last_name, first_seen_at, last_seen_at
		FROM users
		WHERE username = $1
		ORDER BY last_seen_at DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, username)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.FirstSeenAt,
		&user.LastSeenAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch user", slog.String("username", username), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select user by username: %w", err)
	}

	return &user, nil
}

// Upsert inserts the user on first contact and refreshes profile fields and
// last_seen_at on subsequent ones.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (telegram_id, username, first_name, last_name, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			last_seen_at = EXCLUDED.last_seen_at
	`

	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LastSeenAt,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert user", slog.Int64("telegram_id", user.TelegramID), slog.Any("error", err))
		}
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}
