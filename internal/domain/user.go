package domain

import "time"

// User is one Telegram account the bot has interacted with.
type User struct {
	ID          int64
	TelegramID  int64
	Username    string
	FirstName   string
	LastName    string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}
