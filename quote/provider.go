package quote

import (
	"context"
	"errors"
)

// ErrNoQuote is returned when the source has no usable price for a code
var ErrNoQuote = errors.New("no quote available")

// Quotes maps a lower-case code (see Code.Key) to its price in the reference fiat
type Quotes map[string]float64

// PriceSource returns current prices in the reference fiat.
// Codes without a price are left out of the result.
type PriceSource interface {
	Quotes(ctx context.Context, codes []Code) (Quotes, error)
	Name() string
}

// Converter converts amounts between the reference fiat and a crypto currency
type Converter interface {
	FiatToCrypto(ctx context.Context, amount float64, code Code) (float64, error)
	CryptoToFiat(ctx context.Context, amount float64, code Code) (float64, error)
}
