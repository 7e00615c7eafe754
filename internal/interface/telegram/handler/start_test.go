package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

func TestStartHandler_Handle_Unbound(t *testing.T) {
	h := NewStartHandler(newFakeAccountRepo(), presenter.NewKeyboardBuilder())

	resp, err := h.Handle(context.Background(), &Request{TelegramID: 100, ChatID: 100})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "Привет! Я Dota 2 трекер — выбери действие:", resp.Text)
	assert.Equal(t, "HTML", resp.ParseMode)
	assert.False(t, resp.EditInPlace)

	require.NotNil(t, resp.Keyboard)
	assert.Equal(t, "🔗 Указать точный MMR", resp.Keyboard.Rows[4][0].Text)
}

func TestStartHandler_Handle_Bound(t *testing.T) {
	repo := newFakeAccountRepo()
	storedAccount(t, repo, 100)
	h := NewStartHandler(repo, presenter.NewKeyboardBuilder())

	resp, err := h.Handle(context.Background(), &Request{TelegramID: 100, ChatID: 100})

	require.NoError(t, err)
	require.NotNil(t, resp.Keyboard)
	assert.Equal(t, "🔁 Указать точный MMR", resp.Keyboard.Rows[4][0].Text)
}

func TestStartHandler_HandleBackToMain_EditsInPlace(t *testing.T) {
	h := NewStartHandler(newFakeAccountRepo(), presenter.NewKeyboardBuilder())

	resp, err := h.HandleBackToMain(context.Background(), &Request{TelegramID: 100, MessageID: 42})

	require.NoError(t, err)
	assert.Equal(t, "Главное меню:", resp.Text)
	assert.True(t, resp.EditInPlace)
	require.NotNil(t, resp.Keyboard)
	assert.Equal(t, presenter.CallbackStatus, resp.Keyboard.Rows[0][0].CallbackData)
}

func TestStartHandler_HandleHelp(t *testing.T) {
	h := NewStartHandler(newFakeAccountRepo(), presenter.NewKeyboardBuilder())

	resp, err := h.HandleHelp(context.Background(), &Request{TelegramID: 100})

	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Что я умею")
	assert.Contains(t, resp.Text, "±30 за рейтинговый матч")
	assert.Contains(t, resp.Text, "<code>mmr 4321</code>")
	assert.Contains(t, resp.Text, "от 0 до 20000")
	require.NotNil(t, resp.Keyboard)
}
