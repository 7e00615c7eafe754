package handler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dotapulse/dota-pulse-bot/internal/application/command"
	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BIND HANDLER
// Handles account binding and manual rating input. Both arrive as free-text
// messages: a Steam ID / profile URL binds (or rebinds) the account, and
// "mmr 4321" pins the exact rating.
// ══════════════════════════════════════════════════════════════════════════════

// mmrPattern matches manual rating input: "mmr 4321", "mmr: 4321", "mmr4321".
var mmrPattern = regexp.MustCompile(`(?i)^\s*mmr\s*[:=]?\s*(\d{2,5})\s*$`)

// steamHosts are profile URL hosts recognised as binding input.
var steamHosts = []string{"steamcommunity.com", "opendota.com", "dotabuff.com"}

// BindHandler handles Steam binding and exact-MMR input.
type BindHandler struct {
	linkCmd      *command.LinkAccountHandler
	setRatingCmd *command.SetRatingHandler
	keyboards    *presenter.KeyboardBuilder
}

// NewBindHandler creates a new BindHandler.
func NewBindHandler(
	linkCmd *command.LinkAccountHandler,
	setRatingCmd *command.SetRatingHandler,
	keyboards *presenter.KeyboardBuilder,
) *BindHandler {
	return &BindHandler{
		linkCmd:      linkCmd,
		setRatingCmd: setRatingCmd,
		keyboards:    keyboards,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// PROMPTS
// ─────────────────────────────────────────────────────────────────────────────

// HandleBindPrompt asks the user to send their Steam ID.
func (h *BindHandler) HandleBindPrompt(ctx context.Context, req *Request) (*Response, error) {
	return HTML("Пришли Steam ID (steam32/steam64) или ссылку вида https://steamcommunity.com/profiles/7656...", nil), nil
}

// HandleSetRatingPrompt asks the user to send their exact MMR.
func (h *BindHandler) HandleSetRatingPrompt(ctx context.Context, req *Request) (*Response, error) {
	return HTML("Пришли точный MMR как сообщение: <code>mmr 4321</code>", nil), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// TEXT INPUT
// ─────────────────────────────────────────────────────────────────────────────

// HandleText routes a free-text message. Unrecognised text is ignored so
// the bot does not spam chats it happens to be in.
func (h *BindHandler) HandleText(ctx context.Context, req *Request, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	if m := mmrPattern.FindStringSubmatch(text); m != nil {
		return h.handleSetRating(ctx, req, m[1])
	}

	if looksLikeSteamInput(text) {
		return h.handleBind(ctx, req, text)
	}

	return nil, nil
}

// handleSetRating pins the exact rating from a "mmr NNNN" message.
func (h *BindHandler) handleSetRating(ctx context.Context, req *Request, raw string) (*Response, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return HTML("Неправильное значение MMR.", nil), nil
	}

	result, err := h.setRatingCmd.Handle(ctx, command.SetRatingCommand{
		TelegramID: req.TelegramID,
		Rating:     value,
	})
	switch {
	case err == nil:
		return HTML(fmt.Sprintf("✅ Точный MMR сохранён: %d", result.NewRating), nil), nil
	case isNotBound(err):
		return notBoundResponse(h.keyboards), nil
	case errors.Is(err, account.ErrInvalidRating):
		return HTML("Неправильное значение MMR.", nil), nil
	default:
		return nil, err
	}
}

// handleBind binds or rebinds the Steam account from a free-text message.
func (h *BindHandler) handleBind(ctx context.Context, req *Request, input string) (*Response, error) {
	result, err := h.linkCmd.Handle(ctx, command.LinkAccountCommand{
		TelegramID: req.TelegramID,
		Input:      input,
	})
	switch {
	case err == nil:
		text := fmt.Sprintf("✅ Привязан Steam32: %d. Используй меню.", result.SteamID)
		if result.Backfilled > 0 {
			text += fmt.Sprintf("\nЗагружено матчей из истории: %d.", result.Backfilled)
		}
		return HTML(text, h.keyboards.MainMenuKeyboard(true)), nil
	case errors.Is(err, account.ErrInvalidSteamID):
		return HTML("Не удалось распознать Steam ID. Отправь ссылку вида /profiles/7656... или числовой steam64/steam32.", nil), nil
	case errors.Is(err, command.ErrProfileNotVerified):
		return HTML("Профиль не найден в OpenDota. Убедись, что профиль доступен и ты входил в OpenDota ранее.", nil), nil
	case errors.Is(err, command.ErrUpstreamUnavailable):
		return HTML("OpenDota сейчас недоступна. Попробуй привязать аккаунт позже.", nil), nil
	default:
		return nil, err
	}
}

// looksLikeSteamInput reports whether the text resembles a Steam ID or a
// profile URL. Anything else is treated as chatter and ignored.
func looksLikeSteamInput(text string) bool {
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return true
	}

	lower := strings.ToLower(text)
	for _, host := range steamHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
