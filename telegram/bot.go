package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type EventHandle[T any] struct {
	handlers []HandleFunc[T]
	eventMu  sync.RWMutex
}

type HandleFunc[T any] func(ctx context.Context, b *Bot, event T) error

func (handle *EventHandle[T]) Subscribe(handler HandleFunc[T]) {
	handle.eventMu.Lock()
	defer handle.eventMu.Unlock()
	// copy on write, dispatch may be iterating the old slice
	newHandlers := make([]HandleFunc[T], len(handle.handlers)+1)
	copy(newHandlers, handle.handlers)
	newHandlers[len(handle.handlers)] = handler
	handle.handlers = newHandlers
}

// dispatch runs every handler in subscription order and returns the first error.
// A panicking handler is reported as an error.
func (handle *EventHandle[T]) dispatch(ctx context.Context, b *Bot, event T) (err error) {
	handle.eventMu.RLock()
	handlers := handle.handlers
	handle.eventMu.RUnlock()

	for _, handler := range handlers {
		if hErr := safeCall(ctx, b, event, handler); hErr != nil && err == nil {
			err = hErr
		}
	}
	return err
}

func safeCall[T any](ctx context.Context, b *Bot, event T, handler HandleFunc[T]) (err error) {
	defer func() {
		if pan := recover(); pan != nil {
			b.logger.Errorf("event handler panic: %v\n%s", pan, debug.Stack())
			err = fmt.Errorf("event handler panic: %v", pan)
		}
	}()
	return handler(ctx, b, event)
}

// Bot routes webhook updates to the handlers modules subscribed and answers through a Sender
type Bot struct {
	sender     *Sender
	commands   []Command
	authorizer Authorizer
	metrics    *Metrics
	logger     logrus.FieldLogger
	debug      bool

	MessageEvent       EventHandle[Message]
	CallbackQueryEvent EventHandle[CallbackQuery]
}

type BotWrapperConfig func(b *Bot)

// SetAuthorizer guards the webhook endpoint
func SetAuthorizer(a Authorizer) BotWrapperConfig {
	return func(b *Bot) {
		b.authorizer = a
	}
}

func SetMetrics(m *Metrics) BotWrapperConfig {
	return func(b *Bot) {
		b.metrics = m
	}
}

// SetDebug logs every inbound update
func SetDebug(debug bool) BotWrapperConfig {
	return func(b *Bot) {
		b.debug = debug
	}
}

func NewBot(sender *Sender, configs ...BotWrapperConfig) *Bot {
	b := &Bot{
		sender:     sender,
		authorizer: PolicyAllow,
		logger:     GetModuleLogger("bot"),
	}
	for i := range configs {
		configs[i](b)
	}
	return b
}

func (b *Bot) Sender() *Sender {
	return b.sender
}

// Send replies in chatID, see Sender.Send
func (b *Bot) Send(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (json.RawMessage, error) {
	return b.sender.Send(ctx, chatID, text, markup)
}

func (b *Bot) RegisterCommand(commands ...Command) error {
	for _, command := range commands {
		if err := command.Serve(b); err != nil {
			return err
		}
		b.commands = append(b.commands, command)
	}
	return nil
}

// TGCommands lists the slash commands of every registered module, in registration order
func (b *Bot) TGCommands() []tgbotapi.BotCommand {
	var cmd []tgbotapi.BotCommand
	for _, c := range b.commands {
		cmd = append(cmd, c.ID()...)
	}
	return cmd
}

// HandleUpdate dispatches one update. Callback queries are always answered once the
// handlers return, whatever they did. The returned error is the first handler error,
// in practice a failed reply.
func (b *Bot) HandleUpdate(ctx context.Context, u Update) error {
	kind := u.Kind()
	if b.metrics != nil {
		b.metrics.Updates.WithLabelValues(kind.String()).Inc()
	}
	switch kind {
	case UpdateMessage:
		return b.MessageEvent.dispatch(ctx, b, *u.Message)
	case UpdateCallbackQuery:
		err := b.CallbackQueryEvent.dispatch(ctx, b, *u.CallbackQuery)
		b.sender.Acknowledge(ctx, u.CallbackQuery.ID)
		return err
	}
	return nil
}
