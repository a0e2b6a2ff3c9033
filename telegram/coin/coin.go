package coin

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/yangrq1018/safemoney-bot/quote"
	"github.com/yangrq1018/safemoney-bot/telegram"
)

// istanbul is Turkey's offset, fixed at UTC+3 since 2016
var istanbul = time.FixedZone("+03", 3*60*60)

// Coin answers the menu, price and conversion commands. It keeps no state between updates.
type Coin struct {
	source    quote.PriceSource
	converter quote.Converter
	coins     []quote.Code
	loc       *time.Location
	now       func() time.Time
	logger    logrus.FieldLogger
}

type CoinConfig func(c *Coin)

// WithCoins sets the supported coins and their display order
func WithCoins(coins []quote.Code) CoinConfig {
	return func(c *Coin) {
		c.coins = coins
	}
}

// WithLocation sets the zone of the price timestamp
func WithLocation(loc *time.Location) CoinConfig {
	return func(c *Coin) {
		c.loc = loc
	}
}

func WithClock(now func() time.Time) CoinConfig {
	return func(c *Coin) {
		c.now = now
	}
}

func NewCoin(source quote.PriceSource, converter quote.Converter, configs ...CoinConfig) *Coin {
	c := &Coin{
		source:    source,
		converter: converter,
		coins:     quote.DefaultCoins,
		loc:       istanbul,
		now:       time.Now,
		logger:    telegram.GetModuleLogger("coin"),
	}
	for i := range configs {
		configs[i](c)
	}
	return c
}

func (c *Coin) ID() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: strings.TrimPrefix(commandStart, "/"), Description: "Ana menü"},
		{Command: strings.TrimPrefix(commandMenu, "/"), Description: "Ana menü"},
		{Command: strings.TrimPrefix(commandConvert, "/"), Description: "Para çevir, örnek: /convert 100 TRY BTC"},
	}
}

func (c *Coin) Serve(bot *telegram.Bot) error {
	if c.source == nil || c.converter == nil {
		return errors.New("coin: price source and converter are required")
	}
	bot.MessageEvent.Subscribe(c.handleMessage)
	bot.CallbackQueryEvent.Subscribe(c.handleCallback)
	return nil
}

func (c *Coin) handleMessage(ctx context.Context, b *telegram.Bot, m telegram.Message) error {
	text := strings.ToLower(m.Text)
	switch {
	case text == commandStart || text == commandMenu:
		return c.sendMainMenu(ctx, b, m.ChatID)
	case strings.HasPrefix(text, commandConvert):
		req, err := ParseConvert(text)
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return c.send(ctx, b, m.ChatID, invalidAmountText, nil)
		case err != nil:
			return c.send(ctx, b, m.ChatID, usageText, nil)
		}
		return c.convert(ctx, b, m.ChatID, req)
	}
	return nil
}

func (c *Coin) handleCallback(ctx context.Context, b *telegram.Bot, q telegram.CallbackQuery) error {
	action := ParseCallbackData(q.Data)
	switch action.Kind {
	case ShowPrices:
		return c.sendPrices(ctx, b, q.ChatID)
	case ShowConversionMenu:
		markup := conversionMenuKeyboard(c.coins)
		return c.send(ctx, b, q.ChatID, conversionMenuText, &markup)
	case ConvertToFiat:
		return c.send(ctx, b, q.ChatID, promptText(action.Code, quote.TRY), nil)
	case ConvertFromFiat:
		return c.send(ctx, b, q.ChatID, promptText(quote.TRY, action.Code), nil)
	case ShowMainMenu:
		return c.sendMainMenu(ctx, b, q.ChatID)
	default:
		c.logger.WithField("data", q.Data).Debug("unknown callback data")
	}
	return nil
}

func (c *Coin) send(ctx context.Context, b *telegram.Bot, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	_, err := b.Send(ctx, chatID, text, markup)
	return err
}

func (c *Coin) sendMainMenu(ctx context.Context, b *telegram.Bot, chatID int64) error {
	markup := mainMenuKeyboard()
	return c.send(ctx, b, chatID, mainMenuText, &markup)
}

func (c *Coin) sendPrices(ctx context.Context, b *telegram.Bot, chatID int64) error {
	quotes, err := c.source.Quotes(ctx, c.coins)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"source":  c.source.Name(),
		}).WithError(err).Error("fetch prices")
		return c.send(ctx, b, chatID, pricesFailedText, nil)
	}
	markup := pricesKeyboard()
	return c.send(ctx, b, chatID, pricesText(c.coins, quotes, c.now().In(c.loc)), &markup)
}

func (c *Coin) convert(ctx context.Context, b *telegram.Bot, chatID int64, req ConversionRequest) error {
	var (
		result float64
		err    error
	)
	switch {
	case req.From == quote.TRY && quote.IsSupported(c.coins, req.To):
		result, err = c.converter.FiatToCrypto(ctx, req.Amount, req.To)
	case req.To == quote.TRY && quote.IsSupported(c.coins, req.From):
		result, err = c.converter.CryptoToFiat(ctx, req.Amount, req.From)
	default:
		markup := conversionResultKeyboard()
		return c.send(ctx, b, chatID, unsupportedPairText, &markup)
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"from":    req.From,
			"to":      req.To,
			"amount":  req.Amount,
		}).WithError(err).Error("convert")
		return c.send(ctx, b, chatID, conversionFailedText, nil)
	}
	markup := conversionResultKeyboard()
	return c.send(ctx, b, chatID, conversionText(req, result), &markup)
}
