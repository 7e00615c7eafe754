// Package telegram implements the Telegram bot interface of the tracker.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/telegram"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/handler"
	"github.com/dotapulse/dota-pulse-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging for routing decisions.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// These types carry context information through the routing process.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext contains context for command handling.
type CommandContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the command was sent.
	ChatID int64

	// MessageID is the ID of the message containing the command.
	MessageID int

	// Args is the command arguments (text after the command).
	Args string

	// Message is the original Telegram message.
	Message *telegram.Message

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CallbackContext contains context for callback query handling.
type CallbackContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the callback originated.
	ChatID int64

	// MessageID is the ID of the message with the inline keyboard.
	MessageID int

	// QueryID is the callback query ID (for answering).
	QueryID string

	// Data is the callback data string.
	Data string

	// Query is the original callback query.
	Query *telegram.CallbackQuery

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// TextInputContext contains context for plain text handling (Steam ID or
// exact MMR sent as a message).
type TextInputContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID.
	ChatID int64

	// MessageID is the message ID.
	MessageID int

	// Text is the input text.
	Text string

	// Message is the original message.
	Message *telegram.Message

	// Client is the Telegram client.
	Client *telegram.Client
}

// ══════════════════════════════════════════════════════════════════════════════
// SCREEN FUNCTIONS
// Every menu screen is a function from a shared request to a shared response;
// the router owns the delivery (send, edit in place, or photo upload).
// ══════════════════════════════════════════════════════════════════════════════

// ScreenFunc renders one screen of the bot.
type ScreenFunc func(ctx context.Context, req *handler.Request) (*handler.Response, error)

// TextInputFunc handles a plain text message.
type TextInputFunc func(ctx context.Context, req *handler.Request, text string) (*handler.Response, error)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Routes incoming updates to appropriate handlers.
// ══════════════════════════════════════════════════════════════════════════════

// Router routes Telegram updates to appropriate handlers.
type Router struct {
	config RouterConfig
	logger *slog.Logger

	// Command handlers by command name (without /)
	commandHandlers   map[string]ScreenFunc
	commandHandlersMu sync.RWMutex

	// Callback handlers by prefix
	callbackPrefixHandlers   map[string]ScreenFunc
	callbackPrefixHandlersMu sync.RWMutex

	// Text input handler (Steam binding and exact MMR input)
	textInputHandler   TextInputFunc
	textInputHandlerMu sync.RWMutex

	// Default handlers for unknown commands/callbacks
	defaultCommandHandler  func(ctx context.Context, cmdCtx CommandContext) error
	defaultCallbackHandler func(ctx context.Context, cbCtx CallbackContext) error
}

// NewRouter creates a new router.
func NewRouter(config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	r := &Router{
		config:                 config,
		logger:                 config.Logger,
		commandHandlers:        make(map[string]ScreenFunc),
		callbackPrefixHandlers: make(map[string]ScreenFunc),
	}

	r.defaultCommandHandler = r.handleUnknownCommand
	r.defaultCallbackHandler = r.handleUnknownCallback

	return r
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION METHODS
// ══════════════════════════════════════════════════════════════════════════════

// RegisterCommand registers a handler for a specific command.
// The command should be without the leading "/".
func (r *Router) RegisterCommand(command string, fn ScreenFunc) {
	r.commandHandlersMu.Lock()
	defer r.commandHandlersMu.Unlock()

	r.commandHandlers[command] = fn

	if r.config.Debug {
		r.logger.Debug("registered command handler", "command", command)
	}
}

// RegisterCallbackPrefix registers a handler for callbacks matching a prefix.
// For parametrized callbacks the prefix includes the trailing delimiter
// (e.g. "settings:toggle:"); the remainder arrives in Request.Args.
func (r *Router) RegisterCallbackPrefix(prefix string, fn ScreenFunc) {
	r.callbackPrefixHandlersMu.Lock()
	defer r.callbackPrefixHandlersMu.Unlock()

	r.callbackPrefixHandlers[prefix] = fn

	if r.config.Debug {
		r.logger.Debug("registered callback prefix handler", "prefix", prefix)
	}
}

// RegisterTextInputHandler registers the handler for plain text messages.
func (r *Router) RegisterTextInputHandler(fn TextInputFunc) {
	r.textInputHandlerMu.Lock()
	defer r.textInputHandlerMu.Unlock()

	r.textInputHandler = fn
}

// SetDefaultCommandHandler sets the handler for unknown commands.
func (r *Router) SetDefaultCommandHandler(fn func(ctx context.Context, cmdCtx CommandContext) error) {
	r.defaultCommandHandler = fn
}

// SetDefaultCallbackHandler sets the handler for unknown callbacks.
func (r *Router) SetDefaultCallbackHandler(fn func(ctx context.Context, cbCtx CallbackContext) error) {
	r.defaultCallbackHandler = fn
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING METHODS
// ══════════════════════════════════════════════════════════════════════════════

// HandleCommand routes a command to its handler.
func (r *Router) HandleCommand(ctx context.Context, command string, cmdCtx CommandContext) error {
	r.commandHandlersMu.RLock()
	fn, ok := r.commandHandlers[command]
	r.commandHandlersMu.RUnlock()

	if !ok {
		if r.config.Debug {
			r.logger.Debug("no handler for command", "command", command)
		}
		return r.defaultCommandHandler(ctx, cmdCtx)
	}

	req := &handler.Request{
		TelegramID: cmdCtx.TelegramID,
		ChatID:     cmdCtx.ChatID,
		MessageID:  cmdCtx.MessageID,
		Args:       strings.TrimSpace(cmdCtx.Args),
	}

	resp, err := fn(ctx, req)
	if err != nil {
		return err
	}

	return r.deliver(ctx, cmdCtx.Client, cmdCtx.ChatID, cmdCtx.MessageID, resp)
}

// HandleCallback routes a callback to its handler by longest matching prefix.
func (r *Router) HandleCallback(ctx context.Context, data string, cbCtx CallbackContext) error {
	r.callbackPrefixHandlersMu.RLock()
	var matchedPrefix string
	var matched ScreenFunc
	for prefix, fn := range r.callbackPrefixHandlers {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			matched = fn
		}
	}
	r.callbackPrefixHandlersMu.RUnlock()

	if matched == nil {
		if r.config.Debug {
			r.logger.Debug("no handler for callback", "data", data)
		}
		return r.defaultCallbackHandler(ctx, cbCtx)
	}

	req := &handler.Request{
		TelegramID: cbCtx.TelegramID,
		ChatID:     cbCtx.ChatID,
		MessageID:  cbCtx.MessageID,
		Args:       strings.TrimPrefix(data, matchedPrefix),
	}

	resp, err := matched(ctx, req)
	if err != nil {
		return err
	}

	return r.deliver(ctx, cbCtx.Client, cbCtx.ChatID, cbCtx.MessageID, resp)
}

// HandleTextInput routes a plain text message to the registered handler.
// Unrecognized text is ignored so group chatter does not trigger replies.
func (r *Router) HandleTextInput(ctx context.Context, inputCtx TextInputContext) error {
	r.textInputHandlerMu.RLock()
	fn := r.textInputHandler
	r.textInputHandlerMu.RUnlock()

	if fn == nil {
		return nil
	}

	req := &handler.Request{
		TelegramID: inputCtx.TelegramID,
		ChatID:     inputCtx.ChatID,
		MessageID:  inputCtx.MessageID,
	}

	resp, err := fn(ctx, req, inputCtx.Text)
	if err != nil {
		return err
	}

	return r.deliver(ctx, inputCtx.Client, inputCtx.ChatID, inputCtx.MessageID, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEFAULT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleUnknownCommand handles commands that don't have a registered handler.
func (r *Router) handleUnknownCommand(ctx context.Context, cmdCtx CommandContext) error {
	text := "❓ <b>Неизвестная команда</b>\n\n" +
		"Доступные команды:\n" +
		"• /start — главное меню\n" +
		"• /help — что умеет бот"

	_, err := cmdCtx.Client.SendHTML(ctx, cmdCtx.ChatID, text)
	return err
}

// handleUnknownCallback handles callbacks that don't have a registered handler.
func (r *Router) handleUnknownCallback(ctx context.Context, cbCtx CallbackContext) error {
	// Just log it, don't send a message to avoid spam
	r.logger.Warn("unknown callback", "data", cbCtx.Data)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DELIVERY
// ══════════════════════════════════════════════════════════════════════════════

// deliver sends a handler response to the chat. A nil response means the
// handler deliberately stayed silent.
func (r *Router) deliver(
	ctx context.Context,
	client *telegram.Client,
	chatID int64,
	messageID int,
	resp *handler.Response,
) error {
	if resp == nil {
		return nil
	}

	if len(resp.Photo) > 0 {
		_, err := client.SendPhoto(ctx, telegram.SendPhotoParams{
			ChatID:    chatID,
			PNG:       resp.Photo,
			Caption:   resp.Text,
			ParseMode: resp.ParseMode,
		})
		return err
	}

	if resp.EditInPlace && messageID > 0 {
		return r.editResponse(ctx, client, chatID, messageID, resp.Text, resp.ParseMode, resp.Keyboard)
	}

	return r.sendResponse(ctx, client, chatID, resp.Text, resp.ParseMode, resp.Keyboard)
}

// sendResponse sends a new message with optional inline keyboard.
func (r *Router) sendResponse(
	ctx context.Context,
	client *telegram.Client,
	chatID int64,
	text, parseMode string,
	keyboard *presenter.InlineKeyboard,
) error {
	params := telegram.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
		// Match links in lists would otherwise unfurl into previews.
		DisableWebPreview: true,
	}

	if keyboard != nil {
		params.ReplyMarkup = convertKeyboard(keyboard)
	}

	_, err := client.SendMessage(ctx, params)
	return err
}

// editResponse edits an existing message with optional inline keyboard.
func (r *Router) editResponse(
	ctx context.Context,
	client *telegram.Client,
	chatID int64,
	messageID int,
	text, parseMode string,
	keyboard *presenter.InlineKeyboard,
) error {
	var kb *telegram.InlineKeyboardMarkup
	if keyboard != nil {
		kb = convertKeyboard(keyboard)
	}

	_, err := client.EditMessageText(ctx, chatID, int64(messageID), text, parseMode, kb)
	return err
}

// convertKeyboard converts presenter.InlineKeyboard to telegram.InlineKeyboardMarkup.
func convertKeyboard(kb *presenter.InlineKeyboard) *telegram.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(kb.Rows)),
	}

	for i, row := range kb.Rows {
		markup.InlineKeyboard[i] = make([]telegram.InlineKeyboardButton, len(row))
		for j, btn := range row {
			markup.InlineKeyboard[i][j] = telegram.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			}
		}
	}

	return markup
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTE INFO (for introspection)
// ══════════════════════════════════════════════════════════════════════════════

// GetRegisteredCommands returns a list of registered command names.
func (r *Router) GetRegisteredCommands() []string {
	r.commandHandlersMu.RLock()
	defer r.commandHandlersMu.RUnlock()

	commands := make([]string, 0, len(r.commandHandlers))
	for cmd := range r.commandHandlers {
		commands = append(commands, cmd)
	}
	return commands
}

// GetRegisteredCallbackPrefixes returns a list of registered callback prefixes.
func (r *Router) GetRegisteredCallbackPrefixes() []string {
	r.callbackPrefixHandlersMu.RLock()
	defer r.callbackPrefixHandlersMu.RUnlock()

	prefixes := make([]string, 0, len(r.callbackPrefixHandlers))
	for prefix := range r.callbackPrefixHandlers {
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}
