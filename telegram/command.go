package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Command interface {
	// ID lists the slash commands the module answers, published with setMyCommands
	ID() []tgbotapi.BotCommand

	// Serve subscribes the module's handlers on bot
	Serve(bot *Bot) error
}
