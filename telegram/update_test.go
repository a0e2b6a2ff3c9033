package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdate(t *testing.T) {
	chat := &tgbotapi.Chat{ID: 99}

	t.Run("message", func(t *testing.T) {
		u, err := DecodeUpdate(tgbotapi.Update{
			UpdateID: 1,
			Message:  &tgbotapi.Message{MessageID: 5, Chat: chat, Text: "/start"},
		})
		require.NoError(t, err)
		assert.Equal(t, UpdateMessage, u.Kind())
		assert.Equal(t, Message{ChatID: 99, MessageID: 5, Text: "/start"}, *u.Message)
	})

	t.Run("callback", func(t *testing.T) {
		u, err := DecodeUpdate(tgbotapi.Update{
			UpdateID: 2,
			CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "q1",
				Data:    "prices",
				Message: &tgbotapi.Message{MessageID: 6, Chat: chat},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, UpdateCallbackQuery, u.Kind())
		assert.Equal(t, CallbackQuery{ID: "q1", ChatID: 99, MessageID: 6, Data: "prices"}, *u.CallbackQuery)
	})

	t.Run("ignored", func(t *testing.T) {
		u, err := DecodeUpdate(tgbotapi.Update{
			UpdateID:      3,
			EditedMessage: &tgbotapi.Message{Chat: chat, Text: "edited"},
		})
		require.NoError(t, err)
		assert.Equal(t, UpdateIgnored, u.Kind())
		assert.Equal(t, "ignored", u.Kind().String())
	})

	malformed := map[string]tgbotapi.Update{
		"both": {
			Message:       &tgbotapi.Message{Chat: chat},
			CallbackQuery: &tgbotapi.CallbackQuery{ID: "q", Message: &tgbotapi.Message{Chat: chat}},
		},
		"message without chat":  {Message: &tgbotapi.Message{Text: "hi"}},
		"callback without id":   {CallbackQuery: &tgbotapi.CallbackQuery{Message: &tgbotapi.Message{Chat: chat}}},
		"inline callback":       {CallbackQuery: &tgbotapi.CallbackQuery{ID: "q", InlineMessageID: "abc"}},
		"callback without chat": {CallbackQuery: &tgbotapi.CallbackQuery{ID: "q", Message: &tgbotapi.Message{}}},
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeUpdate(raw)
			assert.True(t, errors.Is(err, ErrMalformedUpdate), "got %v", err)
		})
	}
}
