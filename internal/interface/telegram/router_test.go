package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/handler"
)

// silentScreen records the request and returns no response, so the router
// never touches the Telegram client.
func silentScreen(captured **handler.Request) ScreenFunc {
	return func(_ context.Context, req *handler.Request) (*handler.Response, error) {
		*captured = req
		return nil, nil
	}
}

func TestRouter_HandleCommand_DispatchesAndTrimsArgs(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var got *handler.Request
	r.RegisterCommand("start", silentScreen(&got))

	err := r.HandleCommand(context.Background(), "start", CommandContext{
		TelegramID: 100,
		ChatID:     200,
		MessageID:  7,
		Args:       "  deep_link  ",
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(100), got.TelegramID)
	assert.Equal(t, int64(200), got.ChatID)
	assert.Equal(t, 7, got.MessageID)
	assert.Equal(t, "deep_link", got.Args)
}

func TestRouter_HandleCommand_PropagatesHandlerError(t *testing.T) {
	r := NewRouter(RouterConfig{})

	boom := errors.New("boom")
	r.RegisterCommand("status", func(_ context.Context, _ *handler.Request) (*handler.Response, error) {
		return nil, boom
	})

	err := r.HandleCommand(context.Background(), "status", CommandContext{TelegramID: 100})

	assert.ErrorIs(t, err, boom)
}

func TestRouter_HandleCallback_LongestPrefixWins(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var short, long *handler.Request
	r.RegisterCallbackPrefix("settings", silentScreen(&short))
	r.RegisterCallbackPrefix("settings:toggle:", silentScreen(&long))

	err := r.HandleCallback(context.Background(), "settings:toggle:daily_report", CallbackContext{
		TelegramID: 100,
		ChatID:     200,
		MessageID:  7,
	})

	require.NoError(t, err)
	assert.Nil(t, short)
	require.NotNil(t, long)
	assert.Equal(t, "daily_report", long.Args)
}

func TestRouter_HandleCallback_ExactMatchHasEmptyArgs(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var got *handler.Request
	r.RegisterCallbackPrefix("heroes_menu", silentScreen(&got))

	err := r.HandleCallback(context.Background(), "heroes_menu", CallbackContext{TelegramID: 100})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Args)
}

func TestRouter_HandleCallback_UnknownIsSilent(t *testing.T) {
	r := NewRouter(RouterConfig{})

	err := r.HandleCallback(context.Background(), "legacy_button", CallbackContext{
		TelegramID: 100,
		Data:       "legacy_button",
	})

	assert.NoError(t, err)
}

func TestRouter_HandleTextInput(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var gotText string
	r.RegisterTextInputHandler(func(_ context.Context, req *handler.Request, text string) (*handler.Response, error) {
		gotText = text
		return nil, nil
	})

	err := r.HandleTextInput(context.Background(), TextInputContext{
		TelegramID: 100,
		ChatID:     200,
		Text:       "mmr 4321",
	})

	require.NoError(t, err)
	assert.Equal(t, "mmr 4321", gotText)
}

func TestRouter_HandleTextInput_NoHandlerIsNoop(t *testing.T) {
	r := NewRouter(RouterConfig{})

	err := r.HandleTextInput(context.Background(), TextInputContext{Text: "hello"})

	assert.NoError(t, err)
}

func TestRouter_GetRegisteredCommands(t *testing.T) {
	r := NewRouter(RouterConfig{})

	var sink *handler.Request
	r.RegisterCommand("start", silentScreen(&sink))
	r.RegisterCommand("help", silentScreen(&sink))

	cmds := r.GetRegisteredCommands()

	assert.ElementsMatch(t, []string{"start", "help"}, cmds)
}
