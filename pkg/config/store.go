package config

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// KeyAdministrators is the configuration key holding the administrator list
// the ban core reads from and persists to.
const KeyAdministrators = "moderation.administrators"

// Store is the mutable configuration collaborator: key-value reads plus an
// explicit save back to the loaded config file. It serializes access so the
// watcher callback and handlers can share it.
type Store struct {
	mu  sync.Mutex
	v   *viper.Viper
	log *slog.Logger
}

// NewStore wraps the viper instance returned by Load.
func NewStore(v *viper.Viper, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{v: v, log: log}
}

// StringSlice returns the string list stored under key, or fallback when the
// key is absent.
func (s *Store) StringSlice(key string, fallback []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.v.IsSet(key) {
		return fallback
	}
	return s.v.GetStringSlice(key)
}

// Int returns the integer stored under key, or fallback when absent.
func (s *Store) Int(key string, fallback int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.v.IsSet(key) {
		return fallback
	}
	return s.v.GetInt(key)
}

// Set records a value under key in memory. Save commits it.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.v.Set(key, value)
	s.mu.Unlock()
}

// Save writes the current configuration back to the file it was loaded from.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.WriteConfig()
}

// SaveAdministrators replaces and persists the administrator list. This is
// the persistence hook the ban core calls when the bot enrolls itself.
func (s *Store) SaveAdministrators(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(KeyAdministrators, ids)
	return s.v.WriteConfig()
}

// WatchAdministrators reloads the administrator list whenever the config
// file changes on disk and hands it to onChange, so edits made through ops
// tooling take effect without a restart.
func (s *Store) WatchAdministrators(onChange func([]string)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		s.log.Info("configuration file changed",
			slog.String("file", e.Name),
			slog.String("op", e.Op.String()),
		)

		s.mu.Lock()
		admins := s.v.GetStringSlice(KeyAdministrators)
		s.mu.Unlock()

		onChange(admins)
	})
	s.v.WatchConfig()
}
