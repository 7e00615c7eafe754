// Package notification содержит доменную модель исходящих уведомлений бота:
// карточки матчей, алерты о сериях и смене ранга, ежедневные отчёты.
package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет вид уведомления. Значения совпадают с ключами
// пользовательских настроек доставки в домене account.
type Type string

const (
	// TypeMatchCard - карточка нового сыгранного матча.
	TypeMatchCard Type = "match_card"

	// TypeStreakAlert - алерт о серии побед или поражений.
	TypeStreakAlert Type = "streak_alert"

	// TypeRankAlert - алерт о смене медали.
	TypeRankAlert Type = "rank_alert"

	// TypeDailyReport - ежедневный итоговый отчёт.
	TypeDailyReport Type = "daily_report"

	// TypeSystem - служебное сообщение. Ответы на команды интерфейсный
	// слой отправляет напрямую, этот тип для редких системных случаев.
	TypeSystem Type = "system"
)

// IsValid проверяет корректность типа.
func (t Type) IsValid() bool {
	switch t {
	case TypeMatchCard, TypeStreakAlert, TypeRankAlert, TypeDailyReport, TypeSystem:
		return true
	default:
		return false
	}
}

// PreferenceKey возвращает ключ настройки доставки для этого типа.
// Системные сообщения не отключаются.
func (t Type) PreferenceKey() string {
	if t == TypeSystem {
		return ""
	}
	return string(t)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status - статус доставки уведомления.
type Status string

const (
	// StatusPending - создано, но ещё не отправлено.
	StatusPending Status = "pending"

	// StatusSent - успешно доставлено.
	StatusSent Status = "sent"

	// StatusFailed - доставка не удалась.
	StatusFailed Status = "failed"

	// StatusSkipped - пропущено: получатель отключил этот тип.
	StatusSkipped Status = "skipped"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidType - неизвестный тип уведомления.
	ErrInvalidType = errors.New("notification: invalid type")

	// ErrEmptyMessage - пустой текст уведомления.
	ErrEmptyMessage = errors.New("notification: empty message")

	// ErrNoRecipient - не указан получатель.
	ErrNoRecipient = errors.New("notification: no recipient")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification - одно исходящее сообщение конкретному получателю.
type Notification struct {
	// ID - уникальный идентификатор уведомления.
	ID string

	// Type - вид уведомления.
	Type Type

	// TelegramChatID - чат получателя.
	TelegramChatID shared.TelegramID

	// Message - текст в HTML-разметке Telegram.
	Message string

	// Photo - PNG-изображение (график), отправляется как фото с Message
	// в подписи. nil для обычных текстовых сообщений.
	Photo []byte

	// Status и учёт попыток доставки.
	Status    Status
	Attempts  int
	LastError string

	// CreatedAt, SentAt - времена жизненного цикла.
	CreatedAt time.Time
	SentAt    *time.Time
}

// New создаёт уведомление со статусом pending.
func New(typ Type, chatID shared.TelegramID, message string) (*Notification, error) {
	if !typ.IsValid() {
		return nil, ErrInvalidType
	}
	if chatID == 0 {
		return nil, ErrNoRecipient
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}

	return &Notification{
		ID:             uuid.NewString(),
		Type:           typ,
		TelegramChatID: chatID,
		Message:        message,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// WithPhoto прикрепляет PNG-изображение.
func (n *Notification) WithPhoto(png []byte) *Notification {
	n.Photo = png
	return n
}

// HasPhoto сообщает, есть ли у уведомления изображение.
func (n *Notification) HasPhoto() bool {
	return len(n.Photo) > 0
}

// MarkSent помечает уведомление доставленным.
func (n *Notification) MarkSent() {
	now := time.Now().UTC()
	n.Status = StatusSent
	n.SentAt = &now
}

// MarkFailed фиксирует неудачную попытку доставки.
func (n *Notification) MarkFailed(err error) {
	n.Attempts++
	n.Status = StatusFailed
	if err != nil {
		n.LastError = err.Error()
	}
}

// MarkSkipped помечает уведомление пропущенным из-за настроек получателя.
func (n *Notification) MarkSkipped() {
	n.Status = StatusSkipped
}
