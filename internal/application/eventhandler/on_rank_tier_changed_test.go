package eventhandler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/notification"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

type fakeSender struct {
	sent []*notification.Notification
	fail error
}

func (s *fakeSender) Send(_ context.Context, n *notification.Notification) notification.DeliveryResult {
	if s.fail != nil {
		return notification.NewFailureResult(notification.ChannelTypeTelegram, s.fail, true)
	}
	s.sent = append(s.sent, n)
	return notification.NewSuccessResult(notification.ChannelTypeTelegram, "1")
}

func TestRankTierPromotionSendsAlert(t *testing.T) {
	sender := &fakeSender{}
	handler := NewOnRankTierChangedHandler(sender, nil)

	err := handler.Handle(shared.NewRankTierChangedEvent(555, 86745912, 54, 55))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, notification.TypeRankAlert, sender.sent[0].Type)
	assert.Equal(t, shared.TelegramID(555), sender.sent[0].TelegramChatID)
	assert.Contains(t, sender.sent[0].Message, "Повышение")
	assert.Contains(t, sender.sent[0].Message, "Legend 5")
}

func TestRankTierDemotionUsesNeutralWording(t *testing.T) {
	sender := &fakeSender{}
	handler := NewOnRankTierChangedHandler(sender, nil)

	err := handler.Handle(shared.NewRankTierChangedEvent(555, 86745912, 55, 54))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].Message, "Повышение")
	assert.Contains(t, sender.sent[0].Message, "Медаль обновлена")
	assert.Contains(t, sender.sent[0].Message, "Legend 4")
}

func TestRankTierHiddenProfileIsIgnored(t *testing.T) {
	sender := &fakeSender{}
	handler := NewOnRankTierChangedHandler(sender, nil)

	// Upstream started hiding the medal: tier drops to zero.
	err := handler.Handle(shared.NewRankTierChangedEvent(555, 86745912, 55, 0))

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestRankTierWrongEventTypeIsSkipped(t *testing.T) {
	sender := &fakeSender{}
	handler := NewOnRankTierChangedHandler(sender, nil)

	err := handler.Handle(shared.NewRatingChangedEvent(555, 101, 4000, 4030))

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestRankTierDeliveryFailureIsNotFatal(t *testing.T) {
	sender := &fakeSender{fail: errors.New("telegram down")}
	handler := NewOnRankTierChangedHandler(sender, nil)

	err := handler.Handle(shared.NewRankTierChangedEvent(555, 86745912, 54, 55))

	assert.NoError(t, err)
}

func TestEventAuditCountsByType(t *testing.T) {
	audit := NewEventAuditHandler(nil)

	require.NoError(t, audit.Handle(shared.NewRankTierChangedEvent(555, 86745912, 54, 55)))
	require.NoError(t, audit.Handle(shared.NewRatingChangedEvent(555, 101, 4000, 4030)))
	require.NoError(t, audit.Handle(shared.NewRatingChangedEvent(555, 102, 4030, 4060)))

	counts := audit.Counts()
	assert.Equal(t, int64(1), counts[shared.EventRankTierChanged])
	assert.Equal(t, int64(2), counts[shared.EventRatingChanged])
}
