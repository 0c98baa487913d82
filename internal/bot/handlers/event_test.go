package handlers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	telebot "gopkg.in/telebot.v3"

	"github.com/zgojin/tempban-bot/internal/tempban"
)

type fakeContext struct {
	telebot.Context
	bot    *telebot.Bot
	msg    *telebot.Message
	sender *telebot.User
}

func (c *fakeContext) Bot() *telebot.Bot         { return c.bot }
func (c *fakeContext) Message() *telebot.Message { return c.msg }
func (c *fakeContext) Sender() *telebot.User     { return c.sender }

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mentionMessage builds a message whose text carries one entity spanning the
// given UTF-16 offset and length.
func mentionMessage(text string, entityType telebot.EntityType, offset, length int, user *telebot.User) *telebot.Message {
	return &telebot.Message{
		Text: text,
		Entities: []telebot.MessageEntity{
			{Type: entityType, Offset: offset, Length: length, User: user},
		},
	}
}

func TestEvent_Mentions(t *testing.T) {
	resolveAlice := func(username string) (int64, bool) {
		if username == "alice" {
			return 42, true
		}
		return 0, false
	}

	testCases := []struct {
		name     string
		msg      *telebot.Message
		resolve  UsernameResolver
		expected []tempban.Mention
	}{
		{
			name:     "resolved username becomes numeric mention",
			msg:      mentionMessage("/ban @alice 10", telebot.EntityMention, 5, 6, nil),
			resolve:  resolveAlice,
			expected: []tempban.Mention{{UserID: int64(42)}},
		},
		{
			name:    "unresolvable username is dropped",
			msg:     mentionMessage("/ban @bob 10", telebot.EntityMention, 5, 4, nil),
			resolve: resolveAlice,
		},
		{
			name: "no resolver drops plain usernames",
			msg:  mentionMessage("/ban @alice 10", telebot.EntityMention, 5, 6, nil),
		},
		{
			name:     "broadcast username is kept as broadcast",
			msg:      mentionMessage("/ban @all", telebot.EntityMention, 5, 4, nil),
			resolve:  resolveAlice,
			expected: []tempban.Mention{{Broadcast: true, UserID: "all"}},
		},
		{
			name:     "text mention carries the numeric id",
			msg:      mentionMessage("/ban Alice", telebot.EntityTMention, 5, 5, &telebot.User{ID: 42}),
			expected: []tempban.Mention{{UserID: int64(42)}},
		},
		{
			name: "replied-to sender comes first",
			msg: &telebot.Message{
				Text:    "/ban",
				ReplyTo: &telebot.Message{Sender: &telebot.User{ID: 7}},
			},
			expected: []tempban.Mention{{UserID: int64(7)}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeContext{msg: tc.msg}
			ev := EventWithResolver(c, tc.resolve, testHandlerLogger())
			assert.Equal(t, tc.expected, ev.Mentions())
		})
	}
}

// A ban issued against a plain @username must land on the same identifier
// admission checks, so the target's next message is actually rejected.
func TestEvent_UsernameBanBlocksNumericSender(t *testing.T) {
	gate := tempban.NewService(tempban.NewRegistry(), []string{"100"}, 5, nil, testHandlerLogger())
	bot := &telebot.Bot{Me: &telebot.User{ID: 555}}
	resolve := func(username string) (int64, bool) { return 42, username == "alice" }

	adminCmd := &fakeContext{
		bot:    bot,
		sender: &telebot.User{ID: 100},
		msg:    mentionMessage("/ban @alice", telebot.EntityMention, 5, 6, nil),
	}
	gate.HandleBanRequest(EventWithResolver(adminCmd, resolve, testHandlerLogger()), nil)

	aliceUpdate := &fakeContext{
		bot:    bot,
		sender: &telebot.User{ID: 42},
		msg:    &telebot.Message{Text: "hi"},
	}
	assert.False(t, gate.Admit(Event(aliceUpdate)), "banned user must be rejected by numeric sender id")
}
