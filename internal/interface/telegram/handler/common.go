// Package handler contains Telegram menu handlers.
// Each handler serves one screen of the bot: it runs the application-layer
// query or command, formats the result through a presenter and returns a
// Response for the router to deliver.
package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED REQUEST / RESPONSE
// ══════════════════════════════════════════════════════════════════════════════

// Request contains the parsed update data common to all handlers.
type Request struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID for sending responses.
	ChatID int64

	// MessageID is the original message ID (for editing).
	MessageID int

	// Args is the free text after a command, if any.
	Args string
}

// Response contains the reply to deliver.
type Response struct {
	// Text is the message text (HTML formatted), or the photo caption
	// when Photo is set.
	Text string

	// ParseMode is the Telegram parse mode (HTML).
	ParseMode string

	// Keyboard is the inline keyboard to attach. Ignored for photos.
	Keyboard *presenter.InlineKeyboard

	// Photo is a rendered PNG chart. When set the router delivers the
	// response via sendPhoto with Text as the caption.
	Photo []byte

	// EditInPlace requests editing the triggering message instead of
	// sending a new one.
	EditInPlace bool
}

// HTML wraps text into an HTML response with an optional keyboard.
func HTML(text string, kb *presenter.InlineKeyboard) *Response {
	return &Response{
		Text:      text,
		ParseMode: "HTML",
		Keyboard:  kb,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DICTIONARIES
// Hero names come from the cached OpenDota dictionaries; the refresh job
// keeps them warm. A cold or unavailable cache degrades to numeric ids.
// ══════════════════════════════════════════════════════════════════════════════

// DictionarySource reads id-to-name dictionaries.
type DictionarySource interface {
	GetAll(ctx context.Context, name string) (map[int]string, error)
}

// Dictionaries resolves display names with graceful degradation.
type Dictionaries struct {
	source DictionarySource
	logger *slog.Logger
}

// NewDictionaries creates a Dictionaries helper.
func NewDictionaries(source DictionarySource, logger *slog.Logger) *Dictionaries {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dictionaries{
		source: source,
		logger: logger,
	}
}

// HeroNames returns the hero dictionary. Failures are logged and yield an
// empty map so screens render with placeholder names instead of erroring.
func (d *Dictionaries) HeroNames(ctx context.Context) map[int]string {
	if d == nil || d.source == nil {
		return map[int]string{}
	}

	names, err := d.source.GetAll(ctx, "heroes")
	if err != nil {
		d.logger.Warn("hero dictionary unavailable", "error", err)
		return map[int]string{}
	}
	return names
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

const notBoundText = "Сначала привяжи Steam (кнопка Привязать / Сменить Steam)."

// notBoundResponse is returned by every screen that needs a bound account.
func notBoundResponse(kb *presenter.KeyboardBuilder) *Response {
	return HTML(notBoundText, kb.MainMenuKeyboard(false))
}

// isNotBound reports whether the error means no account is linked yet.
func isNotBound(err error) bool {
	return errors.Is(err, account.ErrAccountNotFound)
}
