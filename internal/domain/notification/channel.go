package notification

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL TYPE
// ══════════════════════════════════════════════════════════════════════════════

// ChannelType определяет тип канала доставки уведомлений.
type ChannelType string

const (
	// ChannelTypeTelegram - доставка через Telegram Bot API.
	ChannelTypeTelegram ChannelType = "telegram"
)

// String возвращает строковое представление типа канала.
func (ct ChannelType) String() string {
	return string(ct)
}

// ══════════════════════════════════════════════════════════════════════════════
// DELIVERY RESULT
// ══════════════════════════════════════════════════════════════════════════════

// DeliveryResult представляет результат доставки уведомления.
type DeliveryResult struct {
	// Success - успешно ли доставлено.
	Success bool

	// MessageID - ID отправленного сообщения в канале.
	MessageID string

	// Channel - канал, через который было отправлено.
	Channel ChannelType

	// DeliveredAt - время доставки.
	DeliveredAt time.Time

	// Error - ошибка доставки (если Success = false).
	Error error

	// Retryable - можно ли повторить отправку.
	Retryable bool
}

// NewSuccessResult создаёт результат успешной доставки.
func NewSuccessResult(channel ChannelType, messageID string) DeliveryResult {
	return DeliveryResult{
		Success:     true,
		MessageID:   messageID,
		Channel:     channel,
		DeliveredAt: time.Now().UTC(),
	}
}

// NewFailureResult создаёт результат неудачной доставки.
func NewFailureResult(channel ChannelType, err error, retryable bool) DeliveryResult {
	return DeliveryResult{
		Success:     false,
		Channel:     channel,
		DeliveredAt: time.Now().UTC(),
		Error:       err,
		Retryable:   retryable,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DELIVERY OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// DeliveryOptions содержит опции для отправки уведомления.
type DeliveryOptions struct {
	// ParseMode - режим разметки текста (HTML, MarkdownV2).
	ParseMode string

	// DisableNotification - отправить беззвучно.
	DisableNotification bool

	// DisableWebPagePreview - не показывать превью ссылок.
	DisableWebPagePreview bool

	// InlineKeyboard - inline-клавиатура с кнопками.
	InlineKeyboard [][]InlineButton

	// Timeout - таймаут отправки.
	Timeout time.Duration
}

// DefaultDeliveryOptions возвращает опции по умолчанию: HTML-разметка
// и отключённые превью ссылок (карточки матчей содержат ссылку на разбор).
func DefaultDeliveryOptions() DeliveryOptions {
	return DeliveryOptions{
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		Timeout:               30 * time.Second,
	}
}

// WithSilent создаёт копию опций с беззвучной отправкой.
func (opts DeliveryOptions) WithSilent() DeliveryOptions {
	opts.DisableNotification = true
	return opts
}

// WithInlineKeyboard создаёт копию опций с клавиатурой.
func (opts DeliveryOptions) WithInlineKeyboard(keyboard [][]InlineButton) DeliveryOptions {
	opts.InlineKeyboard = keyboard
	return opts
}

// ══════════════════════════════════════════════════════════════════════════════
// INLINE BUTTON
// ══════════════════════════════════════════════════════════════════════════════

// InlineButton представляет кнопку для inline-клавиатуры.
type InlineButton struct {
	// Text - текст на кнопке.
	Text string

	// CallbackData - данные для callback (до 64 байт).
	CallbackData string

	// URL - ссылка (если кнопка-ссылка).
	URL string
}

// NewCallbackButton создаёт кнопку с callback.
func NewCallbackButton(text, callbackData string) InlineButton {
	return InlineButton{Text: text, CallbackData: callbackData}
}

// NewURLButton создаёт кнопку-ссылку.
func NewURLButton(text, url string) InlineButton {
	return InlineButton{Text: text, URL: url}
}

// IsValid проверяет корректность кнопки.
func (b InlineButton) IsValid() bool {
	if b.Text == "" {
		return false
	}
	return b.CallbackData != "" || b.URL != ""
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION CHANNEL INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// NotificationChannel определяет интерфейс канала доставки уведомлений.
// Это абстракция над конкретной системой доставки.
type NotificationChannel interface {
	// Type возвращает тип канала.
	Type() ChannelType

	// Send отправляет уведомление.
	Send(ctx context.Context, notification *Notification, opts DeliveryOptions) DeliveryResult

	// IsAvailable проверяет доступность канала.
	IsAvailable(ctx context.Context) bool

	// SupportsRecipient проверяет, поддерживается ли получатель.
	SupportsRecipient(notification *Notification) bool
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SENDER
// ══════════════════════════════════════════════════════════════════════════════

// Sender определяет высокоуровневый интерфейс отправки: проверяет
// настройки получателя, выбирает канал и ведёт учёт доставки.
type Sender interface {
	// Send отправляет одно уведомление через подходящий канал.
	Send(ctx context.Context, notification *Notification) DeliveryResult

	// RegisterChannel регистрирует канал доставки.
	RegisterChannel(channel NotificationChannel)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrChannelUnavailable - канал недоступен.
	ErrChannelUnavailable = errors.New("notification channel is unavailable")

	// ErrChannelNotFound - канал не найден.
	ErrChannelNotFound = errors.New("notification channel not found")

	// ErrUnsupportedRecipient - получатель не поддерживается каналом.
	ErrUnsupportedRecipient = errors.New("recipient not supported by channel")

	// ErrRecipientBlocked - получатель заблокировал бота.
	ErrRecipientBlocked = errors.New("recipient has blocked the bot")

	// ErrChatNotFound - чат не найден.
	ErrChatNotFound = errors.New("chat not found")

	// ErrSkippedByPreferences - получатель отключил этот тип уведомлений.
	ErrSkippedByPreferences = errors.New("notification skipped by recipient preferences")
)
