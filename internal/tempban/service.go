package tempban

import (
	"log/slog"
	"sync"

	"github.com/zgojin/tempban-bot/internal/identity"
)

// retaliationFloorMinutes is the minimum sentence applied to a normal user
// who attempts to ban an administrator, regardless of the requested duration.
const retaliationFloorMinutes = 5

// AdminStore persists the administrator list back to configuration. Failures
// are best-effort: in-memory enrollment stands even when the save fails.
type AdminStore interface {
	SaveAdministrators(ids []string) error
}

// Service owns the ban state for one bot process: the registry, the
// administrator set, and the lazily resolved bot identity. One instance is
// created on startup and passed explicitly to the transport layer.
type Service struct {
	mu             sync.Mutex
	registry       *Registry
	admins         []identity.ID
	botID          identity.ID
	defaultMinutes int
	store          AdminStore
	log            *slog.Logger
}

// NewService builds a Service from the configured administrator list and
// default ban duration.
func NewService(registry *Registry, administrators []string, defaultMinutes int, store AdminStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if defaultMinutes <= 0 {
		defaultMinutes = retaliationFloorMinutes
	}

	admins := make([]identity.ID, 0, len(administrators))
	for _, raw := range administrators {
		if id := identity.Normalize(raw); id != "" {
			admins = append(admins, id)
		}
	}

	return &Service{
		registry:       registry,
		admins:         admins,
		defaultMinutes: defaultMinutes,
		store:          store,
		log:            log,
	}
}

// ResolveBotID returns the bot's canonical identity, resolving it from the
// event on first call and caching it for the rest of the process lifetime.
// First resolution enrolls the bot into the administrator set and persists
// the updated set.
func (s *Service) ResolveBotID(ev Event) identity.ID {
	s.mu.Lock()
	if s.botID != "" {
		botID := s.botID
		s.mu.Unlock()
		return botID
	}

	botID := identity.Normalize(ev.SelfID())
	s.botID = botID

	var saved []string
	if botID != "" && !s.isAdminLocked(botID) {
		s.admins = append(s.admins, botID)
		saved = s.adminStringsLocked()
	}
	s.mu.Unlock()

	if saved != nil {
		s.log.Info("bot enrolled as administrator", slog.String("bot_id", botID.String()))
		if s.store != nil {
			if err := s.store.SaveAdministrators(saved); err != nil {
				s.log.Warn("failed to persist administrator list", slog.Any("error", err))
			}
		}
	}

	return botID
}

// Admit decides whether the event's sender may reach the language-model
// backend. Administrators always pass; everyone else is checked against the
// registry. A false return means the request must be dropped with no reply.
func (s *Service) Admit(ev Event) bool {
	s.ResolveBotID(ev)
	sender := identity.Normalize(ev.SenderID())

	if s.IsAdministrator(sender) {
		return true
	}

	if s.registry.IsBlocked(sender) {
		attrs := []any{slog.String("user_id", sender.String())}
		if unblockAt, ok := s.registry.UnblockTime(sender); ok {
			attrs = append(attrs, slog.Time("unblock_at", unblockAt))
		}
		s.log.Info("blocked user intercepted", attrs...)
		return false
	}

	return true
}

// HandleBanRequest processes an explicit ban command. The optional minutes
// argument overrides the configured default duration. Every failure is a
// logged no-op; the host pipeline never sees an error.
func (s *Service) HandleBanRequest(ev Event, minutes *int) {
	botID := s.ResolveBotID(ev)
	sender := identity.Normalize(ev.SenderID())
	target := s.extractTarget(ev, botID)
	duration := s.effectiveMinutes(minutes)

	if s.IsAdministrator(sender) {
		s.adminBan(sender, target, duration)
		return
	}
	s.userBan(sender, target, duration)
}

// AutoBan blocks the event's sender on behalf of automated moderation.
// Administrators are immune; there is no privilege dispatch and no
// retaliation on this path.
func (s *Service) AutoBan(ev Event, minutes *int) {
	s.ResolveBotID(ev)
	target := identity.Normalize(ev.SenderID())

	if s.IsAdministrator(target) {
		s.log.Warn("refusing to auto-ban administrator", slog.String("user_id", target.String()))
		return
	}

	duration := s.effectiveMinutes(minutes)
	if duration <= 0 {
		s.log.Warn("auto-ban rejected: duration must be positive", slog.Int("minutes", duration))
		return
	}

	s.registry.Ban(target, duration)
	recordBan(BanPathAuto)
	s.log.Info("auto-banned user", slog.String("user_id", target.String()), slog.Int("minutes", duration))
}

// IsAdministrator reports whether the canonical identifier belongs to the
// administrator set.
func (s *Service) IsAdministrator(id identity.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdminLocked(id)
}

// SetAdministrators replaces the administrator set, keeping the resolved bot
// identity enrolled. Called when the configuration file changes on disk.
func (s *Service) SetAdministrators(administrators []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admins := make([]identity.ID, 0, len(administrators)+1)
	for _, raw := range administrators {
		if id := identity.Normalize(raw); id != "" {
			admins = append(admins, id)
		}
	}
	s.admins = admins

	if s.botID != "" && !s.isAdminLocked(s.botID) {
		s.admins = append(s.admins, s.botID)
	}

	s.log.Info("administrator list reloaded", slog.Int("count", len(s.admins)))
}

func (s *Service) adminBan(sender, target identity.ID, duration int) {
	switch {
	case target == "":
		s.log.Warn("ban rejected: no target mentioned", slog.String("sender_id", sender.String()))
	case s.IsAdministrator(target):
		s.log.Warn("ban rejected: target is an administrator",
			slog.String("sender_id", sender.String()),
			slog.String("target_id", target.String()),
		)
	case duration <= 0:
		s.log.Warn("ban rejected: duration must be positive", slog.Int("minutes", duration))
	default:
		s.registry.Ban(target, duration)
		recordBan(BanPathAdmin)
		s.log.Info("administrator banned user",
			slog.String("sender_id", sender.String()),
			slog.String("target_id", target.String()),
			slog.Int("minutes", duration),
		)
	}
}

func (s *Service) userBan(sender, target identity.ID, duration int) {
	if target == "" {
		target = sender
	}

	if duration <= 0 {
		s.log.Warn("ban rejected: duration must be positive", slog.Int("minutes", duration))
		return
	}

	switch {
	case s.IsAdministrator(target):
		// Attempting to ban an administrator backfires on the attacker.
		actual := duration
		if actual < retaliationFloorMinutes {
			actual = retaliationFloorMinutes
		}
		s.registry.Ban(sender, actual)
		recordBan(BanPathRetaliation)
		s.log.Info("user tried to ban an administrator and was banned instead",
			slog.String("sender_id", sender.String()),
			slog.String("target_id", target.String()),
			slog.Int("minutes", actual),
		)
	case target == sender:
		s.registry.Ban(sender, duration)
		recordBan(BanPathSelf)
		s.log.Info("user self-banned",
			slog.String("sender_id", sender.String()),
			slog.Int("minutes", duration),
		)
	default:
		s.log.Warn("ban rejected: normal users may only ban themselves",
			slog.String("sender_id", sender.String()),
			slog.String("target_id", target.String()),
		)
	}
}

// extractTarget returns the first mention that is neither the broadcast
// marker nor the bot itself, or "" when no such mention exists.
func (s *Service) extractTarget(ev Event, botID identity.ID) identity.ID {
	for _, m := range ev.Mentions() {
		if m.Broadcast {
			continue
		}
		id := identity.Normalize(m.UserID)
		if id == "" || id == botID {
			continue
		}
		return id
	}
	return ""
}

func (s *Service) effectiveMinutes(minutes *int) int {
	if minutes != nil {
		return *minutes
	}
	return s.defaultMinutes
}

func (s *Service) isAdminLocked(id identity.ID) bool {
	for _, admin := range s.admins {
		if admin == id {
			return true
		}
	}
	return false
}

func (s *Service) adminStringsLocked() []string {
	out := make([]string, len(s.admins))
	for i, id := range s.admins {
		out[i] = id.String()
	}
	return out
}
