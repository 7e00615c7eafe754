package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotapulse/dota-pulse-bot/config"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
)

type fakeChannel struct {
	mu        sync.Mutex
	sent      []*notification.Notification
	available bool
	fail      error
}

func (c *fakeChannel) Type() notification.ChannelType { return notification.ChannelTypeTelegram }

func (c *fakeChannel) Send(_ context.Context, n *notification.Notification, _ notification.DeliveryOptions) notification.DeliveryResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return notification.NewFailureResult(c.Type(), c.fail, true)
	}
	c.sent = append(c.sent, n)
	return notification.NewSuccessResult(c.Type(), "100")
}

func (c *fakeChannel) IsAvailable(context.Context) bool { return c.available }

func (c *fakeChannel) SupportsRecipient(*notification.Notification) bool { return true }

type fakeAccounts struct {
	acc *account.Account
}

func (f *fakeAccounts) Upsert(context.Context, *account.Account) error { return nil }

func (f *fakeAccounts) GetByTelegramID(_ context.Context, id account.TelegramID) (*account.Account, error) {
	if f.acc != nil && f.acc.TelegramID == id {
		return f.acc, nil
	}
	return nil, account.ErrAccountNotFound
}

func (f *fakeAccounts) GetBySteamID(context.Context, account.SteamID) (*account.Account, error) {
	return nil, account.ErrAccountNotFound
}

func (f *fakeAccounts) Update(context.Context, *account.Account) error    { return nil }
func (f *fakeAccounts) Delete(context.Context, account.TelegramID) error  { return nil }
func (f *fakeAccounts) GetAll(context.Context) ([]*account.Account, error) { return nil, nil }
func (f *fakeAccounts) Count(context.Context) (int, error)                { return 0, nil }
func (f *fakeAccounts) ExistsByTelegramID(context.Context, account.TelegramID) (bool, error) {
	return false, nil
}

type recordingLog struct {
	mu      sync.Mutex
	entries []*notification.Notification
}

func (l *recordingLog) Record(_ context.Context, n *notification.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, n)
	return nil
}

func testRecipient(t *testing.T) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(account.NewAccountParams{
		TelegramID: 42,
		SteamID:    86745912,
	})
	assert.NoError(t, err)
	return acc
}

func mustNotification(t *testing.T, typ notification.Type) *notification.Notification {
	t.Helper()
	n, err := notification.New(typ, 42, "<b>test</b>")
	assert.NoError(t, err)
	return n
}

func TestNotificationServiceDeliversAndRecords(t *testing.T) {
	channel := &fakeChannel{available: true}
	log := &recordingLog{}
	svc := NewNotificationService(&fakeAccounts{acc: testRecipient(t)}, nil, log, nil)
	svc.RegisterChannel(channel)

	n := mustNotification(t, notification.TypeMatchCard)
	result := svc.Send(context.Background(), n)

	assert.True(t, result.Success)
	assert.Equal(t, notification.StatusSent, n.Status)
	assert.Len(t, channel.sent, 1)
	assert.Len(t, log.entries, 1)
}

func TestNotificationServiceRespectsRecipientPreferences(t *testing.T) {
	acc := testRecipient(t)
	prefs := acc.Preferences
	prefs.MatchCards = false
	acc.UpdatePreferences(prefs)

	channel := &fakeChannel{available: true}
	log := &recordingLog{}
	svc := NewNotificationService(&fakeAccounts{acc: acc}, nil, log, nil)
	svc.RegisterChannel(channel)

	n := mustNotification(t, notification.TypeMatchCard)
	result := svc.Send(context.Background(), n)

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, notification.ErrSkippedByPreferences)
	assert.Equal(t, notification.StatusSkipped, n.Status)
	assert.Empty(t, channel.sent)
	// The skip is still logged.
	assert.Len(t, log.entries, 1)
}

func TestNotificationServiceSystemMessagesBypassPreferences(t *testing.T) {
	acc := testRecipient(t)
	prefs := acc.Preferences
	prefs.MatchCards = false
	prefs.StreakAlerts = false
	prefs.DailyReport = false
	prefs.RankAlerts = false
	acc.UpdatePreferences(prefs)

	channel := &fakeChannel{available: true}
	svc := NewNotificationService(&fakeAccounts{acc: acc}, nil, nil, nil)
	svc.RegisterChannel(channel)

	result := svc.Send(context.Background(), mustNotification(t, notification.TypeSystem))

	assert.True(t, result.Success)
	assert.Len(t, channel.sent, 1)
}

func TestNotificationServiceFeatureFlagGates(t *testing.T) {
	flags := config.LoadFeatureFlags()
	assert.NoError(t, flags.DisableFeature(config.FeatureNotifyStreakAlert))

	channel := &fakeChannel{available: true}
	svc := NewNotificationService(&fakeAccounts{acc: testRecipient(t)}, flags, nil, nil)
	svc.RegisterChannel(channel)

	result := svc.Send(context.Background(), mustNotification(t, notification.TypeStreakAlert))

	assert.False(t, result.Success)
	assert.Empty(t, channel.sent)

	// The match card feature stays on and goes through.
	result = svc.Send(context.Background(), mustNotification(t, notification.TypeMatchCard))
	assert.True(t, result.Success)
	assert.Len(t, channel.sent, 1)
}

func TestNotificationServiceNoChannelRegistered(t *testing.T) {
	svc := NewNotificationService(&fakeAccounts{}, nil, nil, nil)

	result := svc.Send(context.Background(), mustNotification(t, notification.TypeMatchCard))

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, notification.ErrChannelNotFound)
}

func TestNotificationServiceUnavailableChannel(t *testing.T) {
	channel := &fakeChannel{available: false}
	svc := NewNotificationService(&fakeAccounts{}, nil, nil, nil)
	svc.RegisterChannel(channel)

	result := svc.Send(context.Background(), mustNotification(t, notification.TypeMatchCard))

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, notification.ErrChannelUnavailable)
}

func TestNotificationServiceChannelFailureMarksFailed(t *testing.T) {
	sendErr := errors.New("telegram: 502")
	channel := &fakeChannel{available: true, fail: sendErr}
	svc := NewNotificationService(&fakeAccounts{acc: testRecipient(t)}, nil, nil, nil)
	svc.RegisterChannel(channel)

	n := mustNotification(t, notification.TypeMatchCard)
	result := svc.Send(context.Background(), n)

	assert.False(t, result.Success)
	assert.True(t, result.Retryable)
	assert.Equal(t, notification.StatusFailed, n.Status)
	assert.Equal(t, 1, n.Attempts)
}
