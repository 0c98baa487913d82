package tempban

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zgojin/tempban-bot/internal/identity"
)

type mockAdminStore struct {
	mock.Mock
}

func (m *mockAdminStore) SaveAdministrators(ids []string) error {
	args := m.Called(ids)
	return args.Error(0)
}

type fakeEvent struct {
	self     any
	sender   any
	mentions []Mention
}

func (e *fakeEvent) SelfID() any         { return e.self }
func (e *fakeEvent) SenderID() any       { return e.sender }
func (e *fakeEvent) Mentions() []Mention { return e.mentions }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func minutes(m int) *int { return &m }

func newTestService(t *testing.T, now *time.Time, admins []string) (*Service, *Registry, *mockAdminStore) {
	t.Helper()

	registry := newTestRegistry(now)
	store := &mockAdminStore{}
	store.On("SaveAdministrators", mock.Anything).Return(nil).Maybe()

	return NewService(registry, admins, 7, store, testLogger()), registry, store
}

func TestService_ResolveBotID(t *testing.T) {
	now := time.Now()

	t.Run("enrolls bot once and persists", func(t *testing.T) {
		registry := newTestRegistry(&now)
		store := &mockAdminStore{}
		store.On("SaveAdministrators", []string{"900", "555"}).Return(nil).Once()

		svc := NewService(registry, []string{"qq_900"}, 7, store, testLogger())

		ev := &fakeEvent{self: "bot_555", sender: 1}
		assert.Equal(t, identity.ID("555"), svc.ResolveBotID(ev))
		assert.True(t, svc.IsAdministrator("555"))

		// Second resolution is cached and must not persist again.
		assert.Equal(t, identity.ID("555"), svc.ResolveBotID(&fakeEvent{self: "bot_999"}))
		store.AssertExpectations(t)
	})

	t.Run("already enrolled bot triggers no save", func(t *testing.T) {
		registry := newTestRegistry(&now)
		store := &mockAdminStore{}

		svc := NewService(registry, []string{"555"}, 7, store, testLogger())
		svc.ResolveBotID(&fakeEvent{self: int64(555)})

		store.AssertNotCalled(t, "SaveAdministrators", mock.Anything)
	})

	t.Run("persistence failure keeps in-memory enrollment", func(t *testing.T) {
		registry := newTestRegistry(&now)
		store := &mockAdminStore{}
		store.On("SaveAdministrators", mock.Anything).Return(errors.New("disk full")).Once()

		svc := NewService(registry, nil, 7, store, testLogger())
		svc.ResolveBotID(&fakeEvent{self: int64(555)})

		assert.True(t, svc.IsAdministrator("555"))
	})
}

func TestService_Admit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, registry, _ := newTestService(t, &now, []string{"100"})

	t.Run("unknown user allowed", func(t *testing.T) {
		assert.True(t, svc.Admit(&fakeEvent{self: int64(555), sender: int64(1)}))
	})

	t.Run("blocked user rejected until expiry", func(t *testing.T) {
		registry.Ban("1", 10)
		assert.False(t, svc.Admit(&fakeEvent{self: int64(555), sender: int64(1)}))
		assert.False(t, svc.Admit(&fakeEvent{self: int64(555), sender: "qq_1"}), "prefixed form is the same user")

		now = now.Add(11 * time.Minute)
		assert.True(t, svc.Admit(&fakeEvent{self: int64(555), sender: int64(1)}))
	})

	t.Run("administrator allowed regardless of registry", func(t *testing.T) {
		registry.Ban("100", 60)
		assert.True(t, svc.Admit(&fakeEvent{self: int64(555), sender: int64(100)}))
	})

	t.Run("bot identity allowed after enrollment", func(t *testing.T) {
		registry.Ban("555", 60)
		assert.True(t, svc.Admit(&fakeEvent{self: int64(555), sender: int64(555)}))
	})
}

func TestService_HandleBanRequest_AdminPath(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	admin := int64(100)
	bot := int64(555)

	testCases := []struct {
		name     string
		event    *fakeEvent
		minutes  *int
		expected map[identity.ID]time.Duration
	}{
		{
			name: "bans mentioned user for requested duration",
			event: &fakeEvent{self: bot, sender: admin, mentions: []Mention{
				{UserID: int64(42)},
			}},
			minutes:  minutes(30),
			expected: map[identity.ID]time.Duration{"42": 30 * time.Minute},
		},
		{
			name: "default duration when none requested",
			event: &fakeEvent{self: bot, sender: admin, mentions: []Mention{
				{UserID: int64(42)},
			}},
			expected: map[identity.ID]time.Duration{"42": 7 * time.Minute},
		},
		{
			name:     "no mention is a no-op",
			event:    &fakeEvent{self: bot, sender: admin},
			minutes:  minutes(30),
			expected: nil,
		},
		{
			name: "cannot ban another administrator",
			event: &fakeEvent{self: bot, sender: admin, mentions: []Mention{
				{UserID: int64(101)},
			}},
			minutes:  minutes(30),
			expected: nil,
		},
		{
			name: "cannot ban the bot",
			event: &fakeEvent{self: bot, sender: admin, mentions: []Mention{
				{UserID: bot},
			}},
			minutes:  minutes(30),
			expected: nil,
		},
		{
			name: "non-positive duration is a no-op",
			event: &fakeEvent{self: bot, sender: admin, mentions: []Mention{
				{UserID: int64(42)},
			}},
			minutes:  minutes(0),
			expected: nil,
		},
		{
			name: "broadcast mention is skipped",
			event: &fakeEvent{self: bot, sender: admin, mentions: []Mention{
				{Broadcast: true, UserID: "all"},
				{UserID: int64(42)},
			}},
			minutes:  minutes(15),
			expected: map[identity.ID]time.Duration{"42": 15 * time.Minute},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc, registry, _ := newTestService(t, &now, []string{"100", "101"})

			svc.HandleBanRequest(tc.event, tc.minutes)

			assert.Len(t, registry.entries, len(tc.expected))
			for id, d := range tc.expected {
				unblockAt, ok := registry.UnblockTime(id)
				assert.True(t, ok, "expected %s to be banned", id)
				assert.Equal(t, now.Add(d), unblockAt)
			}
		})
	}
}

func TestService_HandleBanRequest_UserPath(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	user := int64(42)
	bot := int64(555)

	testCases := []struct {
		name     string
		event    *fakeEvent
		minutes  *int
		expected map[identity.ID]time.Duration
	}{
		{
			name:     "no mention defaults to self-ban",
			event:    &fakeEvent{self: bot, sender: user},
			minutes:  minutes(10),
			expected: map[identity.ID]time.Duration{"42": 10 * time.Minute},
		},
		{
			name: "explicit self-ban has no duration floor",
			event: &fakeEvent{self: bot, sender: user, mentions: []Mention{
				{UserID: user},
			}},
			minutes:  minutes(2),
			expected: map[identity.ID]time.Duration{"42": 2 * time.Minute},
		},
		{
			name: "banning an administrator backfires with the floor",
			event: &fakeEvent{self: bot, sender: user, mentions: []Mention{
				{UserID: int64(100)},
			}},
			minutes:  minutes(2),
			expected: map[identity.ID]time.Duration{"42": 5 * time.Minute},
		},
		{
			name: "retaliation keeps longer requested durations",
			event: &fakeEvent{self: bot, sender: user, mentions: []Mention{
				{UserID: int64(100)},
			}},
			minutes:  minutes(30),
			expected: map[identity.ID]time.Duration{"42": 30 * time.Minute},
		},
		{
			name: "cannot ban another normal user",
			event: &fakeEvent{self: bot, sender: user, mentions: []Mention{
				{UserID: int64(43)},
			}},
			minutes:  minutes(10),
			expected: nil,
		},
		{
			name:     "non-positive duration is a no-op",
			event:    &fakeEvent{self: bot, sender: user},
			minutes:  minutes(-1),
			expected: nil,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc, registry, _ := newTestService(t, &now, []string{"100"})

			svc.HandleBanRequest(tc.event, tc.minutes)

			assert.Len(t, registry.entries, len(tc.expected))
			for id, d := range tc.expected {
				unblockAt, ok := registry.UnblockTime(id)
				assert.True(t, ok, "expected %s to be banned", id)
				assert.Equal(t, now.Add(d), unblockAt)
			}
		})
	}
}

func TestService_AutoBan(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("administrators are immune", func(t *testing.T) {
		svc, registry, _ := newTestService(t, &now, []string{"100"})

		svc.AutoBan(&fakeEvent{self: int64(555), sender: int64(100)}, minutes(10))
		assert.Zero(t, registry.Size())
	})

	t.Run("normal user banned for default duration", func(t *testing.T) {
		svc, registry, _ := newTestService(t, &now, []string{"100"})

		svc.AutoBan(&fakeEvent{self: int64(555), sender: int64(42)}, nil)

		unblockAt, ok := registry.UnblockTime("42")
		assert.True(t, ok)
		assert.Equal(t, now.Add(7*time.Minute), unblockAt)
	})

	t.Run("requested duration overrides default", func(t *testing.T) {
		svc, registry, _ := newTestService(t, &now, []string{"100"})

		svc.AutoBan(&fakeEvent{self: int64(555), sender: int64(42)}, minutes(90))

		unblockAt, ok := registry.UnblockTime("42")
		assert.True(t, ok)
		assert.Equal(t, now.Add(90*time.Minute), unblockAt)
	})
}

func TestService_ExtractTarget(t *testing.T) {
	now := time.Now()
	svc, _, _ := newTestService(t, &now, nil)
	botID := svc.ResolveBotID(&fakeEvent{self: int64(555)})

	testCases := []struct {
		name     string
		mentions []Mention
		expected identity.ID
	}{
		{name: "no mentions", mentions: nil, expected: ""},
		{name: "broadcast only", mentions: []Mention{{Broadcast: true, UserID: "all"}}, expected: ""},
		{name: "bot mention only", mentions: []Mention{{UserID: int64(555)}}, expected: ""},
		{
			name: "first qualifying mention wins",
			mentions: []Mention{
				{Broadcast: true, UserID: "all"},
				{UserID: int64(555)},
				{UserID: "qq_42"},
				{UserID: int64(43)},
			},
			expected: "42",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ev := &fakeEvent{self: int64(555), mentions: tc.mentions}
			assert.Equal(t, tc.expected, svc.extractTarget(ev, botID))
		})
	}
}

func TestService_SetAdministrators(t *testing.T) {
	now := time.Now()
	svc, _, _ := newTestService(t, &now, []string{"100"})
	svc.ResolveBotID(&fakeEvent{self: int64(555)})

	svc.SetAdministrators([]string{"qq_200"})

	assert.False(t, svc.IsAdministrator("100"))
	assert.True(t, svc.IsAdministrator("200"))
	assert.True(t, svc.IsAdministrator("555"), "bot identity stays enrolled across reloads")
}
