package handlers

import (
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/tempban"
)

// broadcastMentions are usernames addressing everyone rather than a specific
// user; they never qualify as a ban target.
var broadcastMentions = map[string]bool{
	"all":      true,
	"everyone": true,
	"here":     true,
}

// UsernameResolver maps a Telegram username to the numeric identifier the
// registry keys on. ok is false when the username is unknown.
type UsernameResolver func(username string) (int64, bool)

// Event adapts a telebot update to the event interface the ban core
// consumes. Plain @username mentions are dropped; use EventWithResolver
// where they must resolve to targets.
func Event(c telebot.Context) tempban.Event {
	return EventWithResolver(c, nil, nil)
}

// EventWithResolver adapts a telebot update, resolving plain @username
// mentions to numeric identifiers through resolve. Senders are identified by
// numeric ID everywhere, so an unresolvable username can never match anyone;
// such mentions are dropped with a warning rather than passed through.
func EventWithResolver(c telebot.Context, resolve UsernameResolver, log *slog.Logger) tempban.Event {
	if log == nil {
		log = slog.Default()
	}
	return &telebotEvent{c: c, resolve: resolve, log: log}
}

type telebotEvent struct {
	c       telebot.Context
	resolve UsernameResolver
	log     *slog.Logger
}

func (e *telebotEvent) SelfID() any {
	if b := e.c.Bot(); b != nil && b.Me != nil {
		return b.Me.ID
	}
	return nil
}

func (e *telebotEvent) SenderID() any {
	if sender := e.c.Sender(); sender != nil {
		return sender.ID
	}
	return nil
}

// Mentions lists the message's user references in order: the replied-to
// sender first, then text mentions.
func (e *telebotEvent) Mentions() []tempban.Mention {
	msg := e.c.Message()
	if msg == nil {
		return nil
	}

	var mentions []tempban.Mention
	if msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		mentions = append(mentions, tempban.Mention{UserID: msg.ReplyTo.Sender.ID})
	}

	for _, entity := range msg.Entities {
		switch entity.Type {
		case telebot.EntityTMention:
			if entity.User != nil {
				mentions = append(mentions, tempban.Mention{UserID: entity.User.ID})
			}
		case telebot.EntityMention:
			username := strings.TrimPrefix(msg.EntityText(entity), "@")
			if broadcastMentions[strings.ToLower(username)] {
				mentions = append(mentions, tempban.Mention{Broadcast: true, UserID: username})
				continue
			}

			if e.resolve != nil {
				if id, ok := e.resolve(username); ok {
					mentions = append(mentions, tempban.Mention{UserID: id})
					continue
				}
			}

			e.log.Warn("dropping unresolvable username mention", slog.String("username", username))
		}
	}

	return mentions
}
