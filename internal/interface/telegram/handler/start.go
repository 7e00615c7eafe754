package handler

import (
	"context"
	"fmt"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/account"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Handles /start and /help and the back-to-main-menu callback. The greeting
// keyboard adapts to whether a Steam account is already bound.
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler handles the /start command and main menu navigation.
type StartHandler struct {
	accountRepo account.Repository
	keyboards   *presenter.KeyboardBuilder
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(accountRepo account.Repository, keyboards *presenter.KeyboardBuilder) *StartHandler {
	return &StartHandler{
		accountRepo: accountRepo,
		keyboards:   keyboards,
	}
}

// Handle processes the /start command.
func (h *StartHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	bound := h.isBound(ctx, req.TelegramID)
	return HTML("Привет! Я Dota 2 трекер — выбери действие:", h.keyboards.MainMenuKeyboard(bound)), nil
}

// HandleBackToMain processes the back-to-main-menu callback by editing the
// menu message in place.
func (h *StartHandler) HandleBackToMain(ctx context.Context, req *Request) (*Response, error) {
	bound := h.isBound(ctx, req.TelegramID)

	resp := HTML("Главное меню:", h.keyboards.MainMenuKeyboard(bound))
	resp.EditInPlace = true
	return resp, nil
}

// HandleHelp processes the /help command.
func (h *StartHandler) HandleHelp(ctx context.Context, req *Request) (*Response, error) {
	bound := h.isBound(ctx, req.TelegramID)

	text := "<b>Что я умею</b>\n" +
		"• Слежу за новыми матчами и присылаю карточку после каждой игры\n" +
		"• Веду условный MMR (±30 за рейтинговый матч) и предупреждаю о сериях\n" +
		"• Сообщаю о смене медали и присылаю вечерние итоги дня\n" +
		"• Показываю статистику: герои, активность, тренд MMR, винрейт по ролям\n\n" +
		"<b>Как начать</b>\n" +
		"Пришли Steam ID (steam32/steam64) или ссылку на профиль, чтобы привязать аккаунт.\n" +
		fmt.Sprintf("Точный MMR можно указать сообщением <code>mmr 4321</code> (от %d до %d).",
			account.MinRatingValue, account.MaxRatingValue)

	return HTML(text, h.keyboards.MainMenuKeyboard(bound)), nil
}

func (h *StartHandler) isBound(ctx context.Context, telegramID int64) bool {
	exists, err := h.accountRepo.ExistsByTelegramID(ctx, account.TelegramID(telegramID))
	return err == nil && exists
}
