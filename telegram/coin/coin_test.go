package coin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yangrq1018/safemoney-bot/quote"
	"github.com/yangrq1018/safemoney-bot/telegram"
	"github.com/yangrq1018/safemoney-bot/telegram/telegramtest"
)

type stubSource struct {
	quotes quote.Quotes
	err    error
	calls  [][]quote.Code
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Quotes(_ context.Context, codes []quote.Code) (quote.Quotes, error) {
	s.calls = append(s.calls, codes)
	return s.quotes, s.err
}

type conversion struct {
	op     string
	amount float64
	code   quote.Code
}

type stubConverter struct {
	result float64
	err    error
	calls  []conversion
}

func (s *stubConverter) FiatToCrypto(_ context.Context, amount float64, code quote.Code) (float64, error) {
	s.calls = append(s.calls, conversion{"fiat_to_crypto", amount, code})
	return s.result, s.err
}

func (s *stubConverter) CryptoToFiat(_ context.Context, amount float64, code quote.Code) (float64, error) {
	s.calls = append(s.calls, conversion{"crypto_to_fiat", amount, code})
	return s.result, s.err
}

type fixture struct {
	bot       *telegram.Bot
	api       *telegramtest.API
	source    *stubSource
	converter *stubConverter
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		api: telegramtest.NewAPI(t),
		source: &stubSource{quotes: quote.Quotes{
			"btc":  2500000,
			"usdt": 32.45,
			"doge": 5.1234,
		}},
		converter: &stubConverter{},
	}
	f.bot = telegram.NewBot(telegram.NewSender("42:token", telegram.WithEndpoint(f.api.Endpoint())))
	clock := func() time.Time { return time.Date(2024, 3, 5, 9, 7, 3, 0, time.UTC) }
	require.NoError(t, f.bot.RegisterCommand(NewCoin(f.source, f.converter, WithClock(clock))))
	return f
}

func (f *fixture) message(t *testing.T, text string) error {
	t.Helper()
	return f.bot.HandleUpdate(context.Background(), telegram.Update{
		ID:      1,
		Message: &telegram.Message{ChatID: 1001, MessageID: 1, Text: text},
	})
}

func (f *fixture) callback(t *testing.T, id, data string) error {
	t.Helper()
	return f.bot.HandleUpdate(context.Background(), telegram.Update{
		ID:            2,
		CallbackQuery: &telegram.CallbackQuery{ID: id, ChatID: 1001, MessageID: 7, Data: data},
	})
}

func (f *fixture) onlyMessage(t *testing.T) telegramtest.SentMessage {
	t.Helper()
	msgs := f.api.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1001), msgs[0].ChatID)
	assert.Equal(t, "Markdown", msgs[0].ParseMode)
	return msgs[0]
}

func TestIgnoredText(t *testing.T) {
	for _, text := range []string{"", "hello", "/help", "/starting", "start", "/start now"} {
		t.Run(text, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.message(t, text))
			assert.Empty(t, f.api.Calls())
		})
	}
}

func TestMainMenu(t *testing.T) {
	for _, text := range []string{"/start", "/menu", "/START", "/Menu"} {
		t.Run(text, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.message(t, text))
			msg := f.onlyMessage(t)
			assert.Contains(t, msg.Text, "*SafeMoneyRobot*")
			buttons := msg.Buttons()
			require.Len(t, buttons, 2)
			assert.True(t, strings.HasSuffix(buttons[0][0], "Güncel Fiyatlar=prices"))
			assert.True(t, strings.HasSuffix(buttons[1][0], "Para Çevirici=convert_menu"))
		})
	}
}

func TestMainMenuIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.message(t, "/start"))
	require.NoError(t, f.callback(t, "q1", "main_menu"))

	sends := f.api.CallsTo("sendMessage")
	require.Len(t, sends, 2)
	assert.Equal(t, string(sends[0].Body), string(sends[1].Body))
}

func TestConvertFiatToCrypto(t *testing.T) {
	f := newFixture(t)
	f.converter.result = 0.0021
	require.NoError(t, f.message(t, "/convert 100 TRY BTC"))

	assert.Equal(t, []conversion{{"fiat_to_crypto", 100, quote.BTC}}, f.converter.calls)
	msg := f.onlyMessage(t)
	assert.Contains(t, msg.Text, "100 ₺ = 0,00210000 BTC")
	assert.Contains(t, msg.Text, "*Dönüşüm Sonucu*")
	buttons := msg.Buttons()
	require.Len(t, buttons, 2)
	assert.True(t, strings.HasSuffix(buttons[0][0], "Başka Bir Dönüşüm=convert_menu"))
	assert.True(t, strings.HasSuffix(buttons[1][0], "Ana Menü=main_menu"))
}

func TestConvertCryptoToFiat(t *testing.T) {
	f := newFixture(t)
	f.converter.result = 1250000
	// lowercase codes and extra whitespace are accepted
	require.NoError(t, f.message(t, "/convert   0.5 btc\ttry"))

	assert.Equal(t, []conversion{{"crypto_to_fiat", 0.5, quote.BTC}}, f.converter.calls)
	assert.Contains(t, f.onlyMessage(t).Text, "0,5 BTC = 1.250.000 ₺")
}

func TestConvertRejected(t *testing.T) {
	tests := []struct {
		text    string
		reply   string
		buttons bool
	}{
		{"/convert abc TRY BTC", invalidAmountText, false},
		{"/convert 1,5 TRY BTC", invalidAmountText, false},
		{"/convert 1e400 TRY BTC", invalidAmountText, false},
		{"/convert 50 XRP TRY", unsupportedPairText, true},
		{"/convert 50 TRY TRY", unsupportedPairText, true},
		{"/convert 50 BTC DOGE", unsupportedPairText, true},
		{"/convert", usageText, false},
		{"/convert 100 TRY", usageText, false},
		{"/convert 100 TRY BTC now", usageText, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.message(t, tt.text))
			assert.Empty(t, f.converter.calls)
			msg := f.onlyMessage(t)
			assert.Equal(t, tt.reply, msg.Text)
			if !tt.buttons {
				assert.Nil(t, msg.ReplyMarkup)
				return
			}
			// the pair can be picked again from the conversion menu
			buttons := msg.Buttons()
			require.Len(t, buttons, 2)
			assert.True(t, strings.HasSuffix(buttons[0][0], "Başka Bir Dönüşüm=convert_menu"))
			assert.True(t, strings.HasSuffix(buttons[1][0], "Ana Menü=main_menu"))
		})
	}
}

func TestConvertIgnoresCommandSuffix(t *testing.T) {
	f := newFixture(t)
	f.converter.result = 0.0021
	require.NoError(t, f.message(t, "/convertx 100 TRY BTC"))

	assert.Equal(t, []conversion{{"fiat_to_crypto", 100, quote.BTC}}, f.converter.calls)
	assert.Contains(t, f.onlyMessage(t).Text, "100 ₺ = 0,00210000 BTC")
}

func TestConvertFailure(t *testing.T) {
	f := newFixture(t)
	f.converter.err = quote.ErrNoQuote
	require.NoError(t, f.message(t, "/convert 100 TRY DOGE"))

	msg := f.onlyMessage(t)
	assert.Equal(t, conversionFailedText, msg.Text)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestPrices(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.callback(t, "q1", "prices"))

	require.Len(t, f.source.calls, 1)
	assert.Equal(t, quote.DefaultCoins, f.source.calls[0])

	msg := f.onlyMessage(t)
	want := pricesHeader +
		"*BTC*: 2.500.000 ₺\n" +
		"*USDT*: 32,45 ₺\n" +
		"*DOGE*: 5,123 ₺\n" +
		"\n_Son güncelleme: 05.03.2024 12:07:03_"
	assert.Equal(t, want, msg.Text)
	buttons := msg.Buttons()
	require.Len(t, buttons, 2)
	assert.Len(t, buttons[0], 1)
	assert.Len(t, buttons[1], 1)
	assert.True(t, strings.HasSuffix(buttons[0][0], "Yenile=prices"))
	assert.True(t, strings.HasSuffix(buttons[1][0], "Ana Menü=main_menu"))
	assert.Len(t, f.api.CallsTo("answerCallbackQuery"), 1)
}

func TestPricesFailure(t *testing.T) {
	f := newFixture(t)
	f.source.err = errors.New("coingecko: http 503")
	require.NoError(t, f.callback(t, "q1", "prices"))

	msg := f.onlyMessage(t)
	assert.Equal(t, pricesFailedText, msg.Text)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestConversionMenu(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.callback(t, "q1", "convert_menu"))

	msg := f.onlyMessage(t)
	assert.Contains(t, msg.Text, "*Para Çevirici*")
	buttons := msg.Buttons()
	require.Len(t, buttons, len(quote.DefaultCoins)+1)
	assert.Equal(t, []string{"TRY → BTC=convert_from_try_BTC", "BTC → TRY=convert_to_try_BTC"}, buttons[0])
	assert.Equal(t, []string{"TRY → DOGE=convert_from_try_DOGE", "DOGE → TRY=convert_to_try_DOGE"}, buttons[4])
	assert.True(t, strings.HasSuffix(buttons[5][0], "Ana Menü=main_menu"))
}

func TestConversionPrompt(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.callback(t, "cb-doge", "convert_to_try_DOGE"))

	calls := f.api.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "sendMessage", calls[0].Method)
	assert.Equal(t, "answerCallbackQuery", calls[1].Method)
	assert.JSONEq(t, `{"callback_query_id":"cb-doge"}`, string(calls[1].Body))

	msg := f.onlyMessage(t)
	assert.Equal(t, "Lütfen dönüştürmek istediğiniz DOGE miktarını girin.\n\nÖrnek: /convert 100 DOGE TRY", msg.Text)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestUnknownCallbackAcknowledged(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.callback(t, "cb-x", "launch_rockets"))

	assert.Empty(t, f.api.Messages())
	calls := f.api.CallsTo("answerCallbackQuery")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"callback_query_id":"cb-x"}`, string(calls[0].Body))
}

func TestSendFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.api.Fail("sendMessage", http.StatusBadRequest, "Bad Request: chat not found")

	err := f.message(t, "/start")
	var apiErr *telegram.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		data string
		want Action
	}{
		{"prices", Action{Kind: ShowPrices}},
		{"convert_menu", Action{Kind: ShowConversionMenu}},
		{"main_menu", Action{Kind: ShowMainMenu}},
		{"convert_to_try_XMR", Action{Kind: ConvertToFiat, Code: quote.XMR}},
		{"convert_from_try_TRX", Action{Kind: ConvertFromFiat, Code: quote.TRX}},
		{"convert_to_try_", Action{Kind: Unknown}},
		{"PRICES", Action{Kind: Unknown}},
		{"", Action{Kind: Unknown}},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got := ParseCallbackData(tt.data)
			assert.Equal(t, tt.want, got)
			if got.Kind != Unknown {
				assert.Equal(t, tt.data, got.Data())
			}
		})
	}
}

func TestParseConvert(t *testing.T) {
	req, err := ParseConvert("/convert 12.75 try usdt")
	require.NoError(t, err)
	assert.Equal(t, ConversionRequest{Amount: 12.75, From: quote.TRY, To: quote.USDT}, req)

	_, err = ParseConvert("/convert NaN TRY BTC")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseConvert("/convert 1 TRY")
	assert.ErrorIs(t, err, ErrUsage)
	req, err = ParseConvert("/convertx 1 TRY BTC")
	require.NoError(t, err)
	assert.Equal(t, ConversionRequest{Amount: 1, From: quote.TRY, To: quote.BTC}, req)
}
