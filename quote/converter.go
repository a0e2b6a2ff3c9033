package quote

import (
	"context"
	"fmt"
)

// PriceConverter converts with the spot price of a single PriceSource
type PriceConverter struct {
	source PriceSource
}

func NewPriceConverter(source PriceSource) *PriceConverter {
	return &PriceConverter{source: source}
}

func (p *PriceConverter) price(ctx context.Context, code Code) (float64, error) {
	quotes, err := p.source.Quotes(ctx, []Code{code})
	if err != nil {
		return 0, err
	}
	v, ok := quotes[code.Key()]
	if !ok || v <= 0 {
		return 0, fmt.Errorf("%s: %s: %w", p.source.Name(), code, ErrNoQuote)
	}
	return v, nil
}

// FiatToCrypto returns how much of code amount of fiat buys
func (p *PriceConverter) FiatToCrypto(ctx context.Context, amount float64, code Code) (float64, error) {
	v, err := p.price(ctx, code)
	if err != nil {
		return 0, err
	}
	return amount / v, nil
}

// CryptoToFiat returns the fiat value of amount units of code
func (p *PriceConverter) CryptoToFiat(ctx context.Context, amount float64, code Code) (float64, error) {
	v, err := p.price(ctx, code)
	if err != nil {
		return 0, err
	}
	return amount * v, nil
}
