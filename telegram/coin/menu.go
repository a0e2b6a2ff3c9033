package coin

import (
	"fmt"
	"strings"
	"time"

	"github.com/enescakir/emoji"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yangrq1018/safemoney-bot/quote"
	"github.com/yangrq1018/safemoney-bot/util"
)

// Reply texts, Markdown
var (
	mainMenuText = emoji.Robot.String() + " *SafeMoneyRobot*\n\n" +
		"Merhaba! Kripto para fiyatlarını görmek veya dönüşüm yapmak için aşağıdaki menüyü kullanabilirsiniz."
	conversionMenuText = emoji.CounterclockwiseArrowsButton.String() + " *Para Çevirici*\n\n" +
		"Lütfen yapmak istediğiniz dönüşüm işlemini seçin:"
	pricesHeader          = emoji.MoneyBag.String() + " *Güncel Kripto Para Fiyatları (TL)*\n\n"
	conversionResultTitle = emoji.CurrencyExchange.String() + " *Dönüşüm Sonucu*\n\n"
)

const (
	pricesFailedText     = "Fiyatlar alınırken bir hata oluştu. Lütfen daha sonra tekrar deneyin."
	conversionFailedText = "Dönüşüm yapılırken bir hata oluştu. Lütfen daha sonra tekrar deneyin."
	invalidAmountText    = "Geçersiz miktar. Lütfen sayısal bir değer girin."
	unsupportedPairText  = "Desteklenmeyen para birimi. Lütfen TRY ve desteklenen kripto paralar arasında dönüşüm yapın."
	usageText            = "Doğru format: /convert [miktar] [kaynak para birimi] [hedef para birimi]\nÖrnek: /convert 100 TRY BTC"

	// dd.mm.yyyy HH:MM:SS
	timestampLayout = "02.01.2006 15:04:05"
	cryptoFraction  = 8
)

func button(text string, a Action) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, a.Data())
}

func mainMenuRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(button(emoji.LeftArrow.String()+" Ana Menü", Action{Kind: ShowMainMenu}))
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(emoji.MoneyBag.String()+" Güncel Fiyatlar", Action{Kind: ShowPrices})),
		tgbotapi.NewInlineKeyboardRow(button(emoji.CounterclockwiseArrowsButton.String()+" Para Çevirici", Action{Kind: ShowConversionMenu})),
	)
}

func pricesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(emoji.CounterclockwiseArrowsButton.String()+" Yenile", Action{Kind: ShowPrices})),
		mainMenuRow(),
	)
}

// conversionMenuKeyboard has one row per coin, in the configured order, then the way back
func conversionMenuKeyboard(coins []quote.Code) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(coins)+1)
	for _, code := range coins {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button(fmt.Sprintf("%s → %s", quote.TRY, code), Action{Kind: ConvertFromFiat, Code: code}),
			button(fmt.Sprintf("%s → %s", code, quote.TRY), Action{Kind: ConvertToFiat, Code: code}),
		))
	}
	rows = append(rows, mainMenuRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func conversionResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(emoji.CounterclockwiseArrowsButton.String()+" Başka Bir Dönüşüm", Action{Kind: ShowConversionMenu})),
		mainMenuRow(),
	)
}

// pricesText lists the quoted coins in order, coins without a quote are left out
func pricesText(coins []quote.Code, quotes quote.Quotes, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(pricesHeader)
	for _, code := range coins {
		price, ok := quotes[code.Key()]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "*%s*: %s %s\n", code, util.FormatDecimal(price, util.DefaultFraction), quote.TRY.Symbol())
	}
	fmt.Fprintf(&sb, "\n_Son güncelleme: %s_", at.Format(timestampLayout))
	return sb.String()
}

func promptText(from, to quote.Code) string {
	return fmt.Sprintf("Lütfen dönüştürmek istediğiniz %s miktarını girin.\n\nÖrnek: %s 100 %s %s", from, commandConvert, from, to)
}

// conversionText renders "<amount> <from> = <result> <to>", TRY shown as ₺.
// Crypto results keep exactly eight fraction digits, fiat the locale default.
func conversionText(req ConversionRequest, result float64) string {
	var left, right string
	if req.From == quote.TRY {
		left = fmt.Sprintf("%s %s", util.FormatDecimal(req.Amount, util.DefaultFraction), quote.TRY.Symbol())
		right = fmt.Sprintf("%s %s", util.FormatFixed(result, cryptoFraction), req.To)
	} else {
		left = fmt.Sprintf("%s %s", util.FormatDecimal(req.Amount, cryptoFraction), req.From)
		right = fmt.Sprintf("%s %s", util.FormatDecimal(result, util.DefaultFraction), quote.TRY.Symbol())
	}
	return conversionResultTitle + left + " = " + right
}
