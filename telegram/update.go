package telegram

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrMalformedUpdate marks an update that cannot be dispatched
var ErrMalformedUpdate = errors.New("malformed update")

type UpdateKind int

const (
	// UpdateIgnored is any update kind the bot does not answer (edits, channel posts, ...)
	UpdateIgnored UpdateKind = iota
	UpdateMessage
	UpdateCallbackQuery
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateMessage:
		return "message"
	case UpdateCallbackQuery:
		return "callback_query"
	default:
		return "ignored"
	}
}

// Message is an inbound chat message
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}

// CallbackQuery is an inline button press
type CallbackQuery struct {
	ID        string
	ChatID    int64 // chat of the message carrying the button
	MessageID int
	Data      string
}

// Update holds at most one of Message and CallbackQuery
type Update struct {
	ID            int
	Message       *Message
	CallbackQuery *CallbackQuery
}

func (u Update) Kind() UpdateKind {
	switch {
	case u.Message != nil:
		return UpdateMessage
	case u.CallbackQuery != nil:
		return UpdateCallbackQuery
	default:
		return UpdateIgnored
	}
}

// DecodeUpdate validates a raw Bot API update and narrows it to the variants the bot handles.
// Updates carrying neither a message nor a callback query decode to UpdateIgnored.
func DecodeUpdate(raw tgbotapi.Update) (Update, error) {
	u := Update{ID: raw.UpdateID}
	if raw.Message != nil && raw.CallbackQuery != nil {
		return u, fmt.Errorf("update %d has both message and callback_query: %w", raw.UpdateID, ErrMalformedUpdate)
	}
	if m := raw.Message; m != nil {
		if m.Chat == nil {
			return u, fmt.Errorf("update %d: message without chat: %w", raw.UpdateID, ErrMalformedUpdate)
		}
		u.Message = &Message{
			ChatID:    m.Chat.ID,
			MessageID: m.MessageID,
			Text:      m.Text,
		}
	}
	if q := raw.CallbackQuery; q != nil {
		if q.ID == "" {
			return u, fmt.Errorf("update %d: callback_query without id: %w", raw.UpdateID, ErrMalformedUpdate)
		}
		// inline-mode buttons carry no message, there is no chat to answer in
		if q.Message == nil || q.Message.Chat == nil {
			return u, fmt.Errorf("update %d: callback_query %s without message: %w", raw.UpdateID, q.ID, ErrMalformedUpdate)
		}
		u.CallbackQuery = &CallbackQuery{
			ID:        q.ID,
			ChatID:    q.Message.Chat.ID,
			MessageID: q.Message.MessageID,
			Data:      q.Data,
		}
	}
	return u, nil
}
