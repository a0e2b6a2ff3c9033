package quote

import (
	"strings"

	"github.com/thoas/go-funk"
)

// Code is an upper-case currency ticker such as BTC or TRY
type Code string

// TRY is the reference fiat every conversion starts from or ends at
const TRY Code = "TRY"

const (
	BTC  Code = "BTC"
	USDT Code = "USDT"
	TRX  Code = "TRX"
	XMR  Code = "XMR"
	DOGE Code = "DOGE"
)

// DefaultCoins lists the supported crypto currencies in display order
var DefaultCoins = []Code{BTC, USDT, TRX, XMR, DOGE}

func (c Code) String() string {
	return string(c)
}

// Key is the lower-case form quotes are keyed by
func (c Code) Key() string {
	return strings.ToLower(string(c))
}

// Symbol is what users see next to an amount, ₺ for the lira and the ticker otherwise
func (c Code) Symbol() string {
	if c == TRY {
		return "₺"
	}
	return string(c)
}

// IsSupported reports whether c is one of coins
func IsSupported(coins []Code, c Code) bool {
	return funk.Contains(coins, c)
}

// Codes converts tickers into codes, normalizing case
func Codes(tickers []string) []Code {
	codes := make([]Code, 0, len(tickers))
	for _, t := range tickers {
		codes = append(codes, Code(strings.ToUpper(strings.TrimSpace(t))))
	}
	return codes
}
